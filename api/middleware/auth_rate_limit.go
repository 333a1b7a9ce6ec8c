package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/vendorverse-backend/api/responses"
	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/vendorverse-backend/pkg/redis"
)

// maxAuthBody caps how much of a sign-in body is buffered to find the email.
const maxAuthBody = 64 << 10

// AuthRateLimitPolicy throttles one auth endpoint per client IP and per
// email address. A zero limit disables that dimension.
type AuthRateLimitPolicy struct {
	Name     string
	Window   time.Duration
	PerIP    int64
	PerEmail int64
}

func SignInRateLimitPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{Name: "signin", Window: cfg.SignInWindow, PerIP: int64(cfg.SignInIPLimit), PerEmail: int64(cfg.SignInEmailLimit)}
}

func SignUpRateLimitPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{Name: "signup", Window: cfg.SignUpWindow, PerIP: int64(cfg.SignUpIPLimit), PerEmail: int64(cfg.SignUpEmailLimit)}
}

func (p AuthRateLimitPolicy) active() bool {
	return p.Window > 0 && (p.PerIP > 0 || p.PerEmail > 0)
}

// scope is the counter name handed to the limiter, e.g. "signin:ip:10.0.0.1".
func (p AuthRateLimitPolicy) scope(dimension, subject string) string {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		name = "auth"
	}
	return name + ":" + dimension + ":" + subject
}

// AuthRateLimit rejects requests with 429 once either counter for the
// policy is exhausted. Emails are hashed before they reach redis or logs.
func AuthRateLimit(policy AuthRateLimitPolicy, limiter pkgredis.RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.PerIP > 0 {
				if ip := clientIP(r); ip != "" && !admit(w, r, limiter, logg, policy, "ip", ip, policy.PerIP) {
					return
				}
			}

			if policy.PerEmail > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := emailFromBody(body); email != "" && !admit(w, r, limiter, logg, policy, "email", sha256Hex(email), policy.PerEmail) {
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// admit counts one hit and writes the rejection itself when the caller
// should stop.
func admit(w http.ResponseWriter, r *http.Request, limiter pkgredis.RateLimiter, logg *logger.Logger, policy AuthRateLimitPolicy, dimension, subject string, limit int64) bool {
	ctx := r.Context()
	allowed, count, err := limiter.FixedWindowAllow(ctx, policy.scope(dimension, subject), limit, policy.Window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
		return false
	}
	if allowed {
		return true
	}

	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":    policy.Name,
			"dimension": dimension,
			"subject":   subject,
			"attempts":  count,
			"limit":     limit,
		}), "auth.rate_limited")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
	return false
}

// clientIP trusts the first X-Forwarded-For hop, then X-Real-IP.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}

func sha256Hex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
