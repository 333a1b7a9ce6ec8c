package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/vendorverse-backend/api/responses"
	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	pkgAuth "github.com/angelmondragon/vendorverse-backend/pkg/auth"
	"github.com/angelmondragon/vendorverse-backend/pkg/auth/session"
	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

// Auth admits requests whose bearer token verifies and whose session has not
// been revoked, and puts the caller's identity on the context.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reject := func(err error) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="vendorverse"`)
				responses.WriteError(ctx, logg, w, err)
			}

			raw := BearerToken(r)
			if raw == "" {
				reject(pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			claims, err := pkgAuth.ParseAccessToken(cfg, raw)
			switch {
			case errors.Is(err, pkgAuth.ErrTokenExpired):
				reject(pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token expired").WithDetails(map[string]string{"reason": "expired"}))
				return
			case err != nil:
				reject(pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			case claims.SessionID() == "":
				reject(pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if sessions != nil {
				live, err := sessions.HasSession(ctx, claims.SessionID())
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !live {
					reject(pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked"))
					return
				}
			}

			ctx = WithIdentity(ctx, identity.Identity{
				UserID:    claims.UserID,
				Email:     claims.Email,
				Role:      claims.Role,
				SessionID: claims.SessionID(),
			})
			if logg != nil {
				ctx = logg.WithRole(logg.WithUserID(ctx, claims.UserID.String()), claims.Role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken reads the Authorization header. The "Bearer" scheme is
// optional and case-insensitive.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	return header
}
