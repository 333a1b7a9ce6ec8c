package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/vendorverse-backend/api/middleware"
	"github.com/angelmondragon/vendorverse-backend/api/responses"
	"github.com/angelmondragon/vendorverse-backend/api/validators"
	"github.com/angelmondragon/vendorverse-backend/internal/catalog"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

// Viewer is the part of the views registry the stream endpoints use.
type Viewer interface {
	Open(owner uuid.UUID, query string) *catalog.View
	Get(owner uuid.UUID, id string) (*catalog.View, error)
	Close(id string)
}

type catalogStatus struct {
	State   enums.SyncState `json:"state"`
	Version uint64          `json:"version"`
	Count   int             `json:"count"`
	Err     string          `json:"error,omitempty"`
	At      time.Time       `json:"at"`
}

type viewQueryRequest struct {
	Query string `json:"query" validate:"max=200"`
}

type viewQueryResponse struct {
	ViewID  string `json:"view_id"`
	Query   string `json:"query"`
	Pending bool   `json:"pending"`
}

// CatalogList returns the current snapshot filtered by ?q=.
func CatalogList(source snapshotSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if source == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, catalog.Project(source.Snapshot(), validators.SearchQuery(r)))
	}
}

func CatalogStatus(source snapshotSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if source == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		snap := source.Snapshot()
		responses.WriteSuccess(w, catalogStatus{
			State:   snap.State,
			Version: snap.Version,
			Count:   len(snap.Products),
			Err:     snap.Err,
			At:      snap.At,
		})
	}
}

// CatalogStream opens a live view and streams its results as server-sent
// events until the client goes away or the catalog shuts down.
func CatalogStream(views Viewer, keepAlive time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		who := middleware.IdentityFromContext(ctx)
		if who.IsZero() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		view := views.Open(who.UserID, validators.SearchQuery(r))
		defer views.Close(view.ID)

		stream, err := responses.NewEventStream(w)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "streaming unsupported"))
			return
		}
		if logg != nil {
			ctx = logg.WithField(ctx, "view_id", view.ID)
			logg.Debug(ctx, "catalog stream opened")
		}
		if err := stream.Send("view", map[string]string{"view_id": view.ID}); err != nil {
			return
		}

		if keepAlive <= 0 {
			keepAlive = 25 * time.Second
		}
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		results := view.Results()
		for {
			select {
			case <-ctx.Done():
				return
			case res, ok := <-results:
				if !ok {
					_ = stream.Send("closed", map[string]string{"view_id": view.ID})
					return
				}
				if err := stream.Send("snapshot", res); err != nil {
					return
				}
			case <-ticker.C:
				if err := stream.KeepAlive(); err != nil {
					return
				}
			}
		}
	}
}

// CatalogViewQuery changes the search of an open stream. A blank query clears
// the search at once; anything else is applied after the debounce period.
func CatalogViewQuery(views Viewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who := middleware.IdentityFromContext(r.Context())
		view, err := views.Get(who.UserID, chi.URLParam(r, "viewId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body viewQueryRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := strings.TrimSpace(body.Query)
		if query == "" {
			view.ClearQuery()
		} else {
			view.SetQuery(query)
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, viewQueryResponse{
			ViewID:  view.ID,
			Query:   query,
			Pending: query != "",
		})
	}
}
