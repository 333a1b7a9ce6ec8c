package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

// Logging writes one access line per request once the handler returns.
// Streams log when the client disconnects.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			rec := &statusRecorder{ResponseWriter: w}
			r = r.WithContext(ctx)
			next.ServeHTTP(rec, r)

			ctx = logg.WithFields(ctx, map[string]any{
				"route":       routePattern(r),
				"status":      defaultStatus(rec.status),
				"bytes":       rec.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			logg.Info(ctx, "request.complete")
		})
	}
}
