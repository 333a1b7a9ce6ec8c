package catalog

import (
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/metrics"
	"github.com/google/uuid"
)

// Views tracks open views so a later request can change the query of a
// stream opened by an earlier one.
type Views struct {
	mu       sync.Mutex
	views    map[string]*View
	source   watchable
	debounce time.Duration
	metrics  *metrics.CatalogSyncMetrics
}

func NewViews(source watchable, debounce time.Duration, m *metrics.CatalogSyncMetrics) *Views {
	return &Views{
		views:    map[string]*View{},
		source:   source,
		debounce: debounce,
		metrics:  m,
	}
}

// Open creates and registers a view owned by owner.
func (r *Views) Open(owner uuid.UUID, query string) *View {
	v := NewView(r.source, owner, query, r.debounce)
	r.mu.Lock()
	r.views[v.ID] = v
	r.mu.Unlock()
	r.metrics.ViewOpened()
	return v
}

// Get returns the view only to its owner. Anyone else gets NOT_FOUND so
// view ids cannot be probed.
func (r *Views) Get(owner uuid.UUID, id string) (*View, error) {
	r.mu.Lock()
	v, ok := r.views[id]
	r.mu.Unlock()
	if !ok || v.Owner != owner {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "view not found")
	}
	return v, nil
}

// Close unregisters and closes the view.
func (r *Views) Close(id string) {
	r.mu.Lock()
	v, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()
	if ok {
		v.Close()
		r.metrics.ViewClosed()
	}
}

// CloseOwnedBy closes every view of owner, used on sign-out.
func (r *Views) CloseOwnedBy(owner uuid.UUID) {
	r.mu.Lock()
	var ids []string
	for id, v := range r.views {
		if v.Owner == owner {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Close(id)
	}
}

// CloseAll closes every open view.
func (r *Views) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.views))
	for id := range r.views {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Close(id)
	}
}

func (r *Views) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}
