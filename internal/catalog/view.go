package catalog

import (
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/vendorverse-backend/internal/products"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	"github.com/google/uuid"
)

// Result is a filtered projection of one snapshot.
type Result struct {
	Version  uint64                `json:"version"`
	Query    string                `json:"query"`
	Products []products.ProductDTO `json:"products"`
	Count    int                   `json:"count"`
	Total    int                   `json:"total"`
	State    enums.SyncState       `json:"state"`
	Err      string                `json:"error,omitempty"`
}

// Project filters snap by query.
func Project(snap Snapshot, query string) Result {
	query = strings.TrimSpace(query)
	matched := Filter(snap.Products, query)
	return Result{
		Version:  snap.Version,
		Query:    query,
		Products: matched,
		Count:    len(matched),
		Total:    len(snap.Products),
		State:    snap.State,
		Err:      snap.Err,
	}
}

type watchable interface {
	Watch() (<-chan Snapshot, func())
}

// View follows the live catalog for one client and applies its search
// query. Typing goes through a debouncer; clearing the search is immediate.
type View struct {
	ID    string
	Owner uuid.UUID

	mu     sync.Mutex
	query  string
	last   Snapshot
	ready  bool
	out    chan Result
	closed bool

	debouncer   *Debouncer
	cancelWatch func()
	loopDone    chan struct{}
	closeOnce   sync.Once
}

// NewView opens a view over source with an initial query.
func NewView(source watchable, owner uuid.UUID, query string, debounce time.Duration) *View {
	v := &View{
		ID:       uuid.NewString(),
		Owner:    owner,
		query:    strings.TrimSpace(query),
		out:      make(chan Result, 1),
		loopDone: make(chan struct{}),
	}
	v.debouncer = NewDebouncer(debounce, v.applyQuery)

	snaps, cancel := source.Watch()
	v.cancelWatch = cancel
	go v.loop(snaps)
	return v
}

// Results delivers the latest result. It is closed when the view or the
// underlying sync closes.
func (v *View) Results() <-chan Result {
	return v.out
}

// SetQuery schedules query to apply once typing settles.
func (v *View) SetQuery(query string) {
	v.debouncer.Trigger(query)
}

// ClearQuery drops the query at once, cancelling any pending one.
func (v *View) ClearQuery() {
	v.debouncer.Immediate("")
}

// Query returns the applied query.
func (v *View) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Close stops the debouncer and the watch, then closes Results.
func (v *View) Close() {
	v.closeOnce.Do(func() {
		v.debouncer.Stop()
		v.cancelWatch()
		<-v.loopDone

		v.mu.Lock()
		v.shutLocked()
		v.mu.Unlock()
	})
}

func (v *View) loop(snaps <-chan Snapshot) {
	defer close(v.loopDone)
	for snap := range snaps {
		v.mu.Lock()
		v.last = snap
		v.ready = true
		v.emitLocked()
		v.mu.Unlock()
	}

	v.mu.Lock()
	v.shutLocked()
	v.mu.Unlock()
}

func (v *View) applyQuery(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = strings.TrimSpace(query)
	if v.ready {
		v.emitLocked()
	}
}

func (v *View) emitLocked() {
	if v.closed {
		return
	}
	offer(v.out, Project(v.last, v.query))
}

func (v *View) shutLocked() {
	if !v.closed {
		v.closed = true
		close(v.out)
	}
}
