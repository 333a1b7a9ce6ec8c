package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	pkgredis "github.com/angelmondragon/vendorverse-backend/pkg/redis"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errMissingAccessID     = errors.New("access id is required")
)

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is what the auth middleware asks on every request.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// record is the redis value for one access id. Only a digest of the
// refresh token is kept.
type record struct {
	Digest   []byte `json:"d"`
	IssuedAt int64  `json:"iat"`
}

// Manager issues and rotates refresh tokens. Each access token id (jti) owns
// at most one refresh token; rotating retires the old id.
type Manager struct {
	store store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager requires the refresh lifetime to outlast the access token, or
// a client could never refresh.
func NewManager(client *pkgredis.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return newManager(client, cfg)
}

func newManager(s store, cfg config.JWTConfig) (*Manager, error) {
	ttl := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case ttl <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case ttl <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl %s must exceed access token ttl %s", ttl, accessTTL)
	}
	return &Manager{store: s, ttl: ttl, now: time.Now}, nil
}

// NewAccessID returns a fresh jti.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate mints the refresh token for accessID.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", errMissingAccessID
	}
	token, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.save(ctx, accessID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate trades a valid (accessID, refresh token) pair for a new pair. A
// token can be rotated once; replaying it returns ErrInvalidRefreshToken.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return "", "", ErrInvalidRefreshToken
	}
	rec, err := m.load(ctx, oldAccessID)
	if err != nil {
		return "", "", err
	}
	want := sha256.Sum256([]byte(provided))
	if subtle.ConstantTimeCompare(rec.Digest, want[:]) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	// retire the old id first so a concurrent replay cannot also succeed
	if err := m.store.Del(ctx, m.store.AccessSessionKey(oldAccessID)); err != nil {
		return "", "", fmt.Errorf("retire session: %w", err)
	}

	accessID := NewAccessID()
	token, err := m.Generate(ctx, accessID)
	if err != nil {
		return "", "", err
	}
	return accessID, token, nil
}

// Revoke drops the session for accessID. Revoking an unknown id is a no-op.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errMissingAccessID
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errMissingAccessID
	}
	_, err := m.load(ctx, accessID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrInvalidRefreshToken):
		return false, nil
	default:
		return false, err
	}
}

func (m *Manager) save(ctx context.Context, accessID, token string) error {
	sum := sha256.Sum256([]byte(token))
	payload, err := json.Marshal(record{Digest: sum[:], IssuedAt: m.now().Unix()})
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), string(payload), m.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// load maps a missing or unreadable record to ErrInvalidRefreshToken.
func (m *Manager) load(ctx context.Context, accessID string) (record, error) {
	raw, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID))
	if errors.Is(err, goredis.Nil) {
		return record{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return record{}, fmt.Errorf("load session: %w", err)
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || len(rec.Digest) == 0 {
		return record{}, ErrInvalidRefreshToken
	}
	return rec, nil
}

func newRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
