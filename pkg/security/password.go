package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"

	"github.com/angelmondragon/vendorverse-backend/pkg/config"
)

// MinPasswordLength is counted in runes.
const MinPasswordLength = 6

var (
	ErrInvalidHash  = errors.New("invalid argon2id hash")
	ErrWeakPassword = fmt.Errorf("password should be at least %d characters", MinPasswordLength)
)

var b64 = base64.RawStdEncoding

// params are the argon2id knobs encoded into every PHC string.
type params struct {
	memory  uint32
	time    uint32
	threads uint8
	saltLen uint32
	keyLen  uint32
}

func paramsFor(cfg config.PasswordConfig) params {
	return params{
		memory:  bounded(cfg.ArgonMemoryKB, 8, 512*1024),
		time:    bounded(cfg.ArgonTime, 1, 10),
		threads: uint8(bounded(cfg.ArgonParallelism, 1, 255)),
		saltLen: bounded(cfg.ArgonSaltLen, 8, 64),
		keyLen:  bounded(cfg.ArgonKeyLen, 16, 64),
	}
}

func (p params) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// weakerThan reports whether any cost knob of p is below want.
func (p params) weakerThan(want params) bool {
	return p.memory < want.memory || p.time < want.time || p.keyLen < want.keyLen || p.saltLen < want.saltLen
}

// CheckPasswordStrength enforces the minimum length.
func CheckPasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword returns a PHC formatted argon2id hash:
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<threads>$<salt>$<key>
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if err := CheckPasswordStrength(password); err != nil {
		return "", err
	}
	p := paramsFor(cfg)
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := p.derive(password, salt)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads, b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword reports whether password produced encoded. A malformed
// hash is an error, a mismatch is not.
func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, key, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, p.derive(password, salt)) == 1, nil
}

// NeedsRehash is true when encoded is unreadable or was produced with
// weaker parameters than cfg.
func NeedsRehash(encoded string, cfg config.PasswordConfig) bool {
	p, _, _, err := parseHash(encoded)
	return err != nil || p.weakerThan(paramsFor(cfg))
}

func parseHash(encoded string) (params, []byte, []byte, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return params{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params{}, nil, nil, ErrInvalidHash
	}

	var p params
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return params{}, nil, nil, ErrInvalidHash
	}
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return params{}, nil, nil, ErrInvalidHash
	}

	salt, err := b64.DecodeString(fields[4])
	if err != nil || len(salt) == 0 {
		return params{}, nil, nil, ErrInvalidHash
	}
	key, err := b64.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return params{}, nil, nil, ErrInvalidHash
	}
	p.saltLen = uint32(len(salt))
	p.keyLen = uint32(len(key))
	return p, salt, key, nil
}

func bounded(v, lo, hi int) uint32 {
	return uint32(min(max(v, lo), hi))
}
