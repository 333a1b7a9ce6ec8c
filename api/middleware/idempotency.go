package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/vendorverse-backend/api/responses"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/vendorverse-backend/pkg/redis"
)

const (
	productWriteTTL = 24 * time.Hour
	checkoutTTL     = 7 * 24 * time.Hour
	// inFlightTTL bounds how long a crashed request can hold its key.
	inFlightTTL = time.Minute
)

// IdempotencyRule marks a route whose POSTs must carry an Idempotency-Key.
// Path matches exactly unless Prefix is set.
type IdempotencyRule struct {
	Method string
	Path   string
	Prefix bool
	TTL    time.Duration
}

func (r IdempotencyRule) matches(method, path string) bool {
	if r.Method != method {
		return false
	}
	if r.Prefix {
		return strings.HasPrefix(path, r.Path)
	}
	return path == r.Path
}

// DefaultIdempotencyRules covers supplier product creation and every
// checkout confirmation.
var DefaultIdempotencyRules = []IdempotencyRule{
	{Method: http.MethodPost, Path: "/api/v1/supplier/products", TTL: productWriteTTL},
	{Method: http.MethodPost, Path: "/api/v1/vendor/checkout/", Prefix: true, TTL: checkoutTTL},
}

type idempotencyRecord struct {
	Pending     bool              `json:"pending,omitempty"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the first response for a repeated (user, route, key)
// triple. A key is reserved while its request runs so concurrent duplicates
// are refused, and released again when the handler fails with a 5xx.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger, rules ...IdempotencyRule) func(http.Handler) http.Handler {
	if len(rules) == 0 {
		rules = DefaultIdempotencyRules
	}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			path := strings.TrimSuffix(r.URL.Path, "/")
			ttl, ok := ruleTTL(rules, r.Method, path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := hashBody(body)
			key := store.IdempotencyKey(strings.Join([]string{UserIDFromContext(ctx), r.Method, path}, "|"), clientKey)

			reserved, err := reserve(ctx, store, key, hash)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if !reserved {
				replay(ctx, store, logg, w, key, hash)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			finish(ctx, store, logg, key, hash, ttl, capture)
		})
	}
}

func ruleTTL(rules []IdempotencyRule, method, path string) (time.Duration, bool) {
	for _, rule := range rules {
		if rule.matches(method, path) {
			return rule.TTL, true
		}
	}
	return 0, false
}

func reserve(ctx context.Context, store pkgredis.IdempotencyStore, key, hash string) (bool, error) {
	marker, err := json.Marshal(idempotencyRecord{Pending: true, RequestHash: hash})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency marker")
	}
	ok, err := store.SetNX(ctx, key, string(marker), inFlightTTL)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key")
	}
	return ok, nil
}

func replay(ctx context.Context, store pkgredis.IdempotencyStore, logg *logger.Logger, w http.ResponseWriter, key, hash string) {
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// expired between SetNX and Get; the client can simply retry
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request is being processed, retry shortly"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != hash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.Pending:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request is being processed, retry shortly"))
	default:
		for name, value := range record.Headers {
			w.Header().Set(name, value)
		}
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(record.Status)
		if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
			_, _ = w.Write(decoded)
		}
	}
}

func finish(ctx context.Context, store pkgredis.IdempotencyStore, logg *logger.Logger, key, hash string, ttl time.Duration, capture *responseCapture) {
	status := defaultStatus(capture.status)
	if status >= http.StatusInternalServerError {
		if err := store.Del(ctx, key); err != nil {
			logError(ctx, logg, "release idempotency key", err)
		}
		return
	}

	record := idempotencyRecord{
		Status:      status,
		Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
		RequestHash: hash,
	}
	if ct := capture.Header().Get("Content-Type"); ct != "" {
		record.Headers = map[string]string{"Content-Type": ct}
	}
	payload, err := json.Marshal(record)
	if err != nil {
		logError(ctx, logg, "encode idempotency record", err)
		return
	}
	if err := store.Set(ctx, key, string(payload), ttl); err != nil {
		logError(ctx, logg, "persist idempotency record", err)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
