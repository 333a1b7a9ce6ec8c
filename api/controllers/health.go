package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/vendorverse-backend/api/responses"
	"github.com/angelmondragon/vendorverse-backend/internal/catalog"
	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is satisfied by the db and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

type snapshotSource interface {
	Snapshot() catalog.Snapshot
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VendorVerse-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the datastores. The catalog sync state is reported but
// does not fail readiness since reads keep serving the last snapshot.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger, sync snapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VendorVerse-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := []struct {
			name string
			p    Pinger
		}{{"database", dbP}, {"redis", redisP}}
		for _, c := range checks {
			if c.p == nil {
				continue
			}
			if err := c.p.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, c.name+" not ready"))
				return
			}
		}

		body := map[string]string{"status": "ready"}
		if sync != nil {
			body["catalog"] = sync.Snapshot().State.String()
		}
		responses.WriteSuccess(w, body)
	}
}
