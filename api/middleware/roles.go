package middleware

import (
	"net/http"

	"github.com/angelmondragon/vendorverse-backend/api/responses"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

// RequireRole rejects callers without the given role. Must run after Auth.
func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := IdentityFromContext(r.Context()).Require(role); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
