package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/vendorverse-backend/internal/products"
	"github.com/angelmondragon/vendorverse-backend/pkg/changefeed"
	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
	"github.com/angelmondragon/vendorverse-backend/pkg/metrics"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

var (
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("catalog sync already started")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("catalog sync closed")

	errStreamEnded = errors.New("change feed subscription ended")
)

// Loader fetches the full product collection in server order.
type Loader interface {
	ListAll(ctx context.Context) ([]models.Product, error)
}

// Snapshot is one immutable state of the projection. Products must be
// treated as read-only; it is shared between readers.
type Snapshot struct {
	Version  uint64                `json:"version"`
	Products []products.ProductDTO `json:"products"`
	State    enums.SyncState       `json:"state"`
	Err      string                `json:"error,omitempty"`
	At       time.Time             `json:"at"`
}

// Options tunes the sync loop.
type Options struct {
	Collection      string
	RetryInitial    time.Duration
	RetryMax        time.Duration
	RetryMultiplier float64
	Metrics         *metrics.CatalogSyncMetrics
}

// OptionsFromConfig maps the catalog config section onto Options.
func OptionsFromConfig(cfg config.CatalogConfig, m *metrics.CatalogSyncMetrics) Options {
	return Options{
		Collection:      changefeed.CollectionProducts,
		RetryInitial:    cfg.SyncRetryInitial,
		RetryMax:        cfg.SyncRetryMax,
		RetryMultiplier: cfg.SyncRetryMultiplier,
		Metrics:         m,
	}
}

// Sync mirrors the product collection: it subscribes to change
// notifications and replaces its list with a fresh full load on each one.
type Sync struct {
	loader Loader
	feed   changefeed.Subscriber
	opts   Options
	logg   *logger.Logger

	mu    sync.RWMutex
	snap  Snapshot
	index map[uuid.UUID]int

	watchMu  sync.Mutex
	watchers map[int]chan Snapshot
	nextID   int
	sealed   bool

	lifecycle sync.Mutex
	started   bool
	closed    bool
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewSync(loader Loader, feed changefeed.Subscriber, opts Options, logg *logger.Logger) (*Sync, error) {
	if loader == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if feed == nil {
		return nil, fmt.Errorf("change feed subscriber required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.Collection == "" {
		opts.Collection = changefeed.CollectionProducts
	}
	if opts.RetryInitial <= 0 {
		opts.RetryInitial = 500 * time.Millisecond
	}
	if opts.RetryMax < opts.RetryInitial {
		opts.RetryMax = 30 * time.Second
	}
	if opts.RetryMultiplier < 1 {
		opts.RetryMultiplier = 2
	}
	return &Sync{
		loader:   loader,
		feed:     feed,
		opts:     opts,
		logg:     logg,
		snap:     Snapshot{State: enums.SyncStateConnecting, Products: []products.ProductDTO{}},
		index:    map[uuid.UUID]int{},
		watchers: map[int]chan Snapshot{},
	}, nil
}

// Start launches the subscription loop. It returns immediately; progress is
// visible through Snapshot and Watch.
func (s *Sync) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx)
	return nil
}

// Close stops the loop, waits for it and closes every watcher channel.
// Safe to call more than once.
func (s *Sync) Close() error {
	s.lifecycle.Lock()
	if s.closed {
		s.lifecycle.Unlock()
		return nil
	}
	s.closed = true
	cancel, done := s.cancel, s.done
	s.lifecycle.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	s.mu.Lock()
	s.snap.State = enums.SyncStateClosed
	s.snap.At = time.Now().UTC()
	s.mu.Unlock()

	s.watchMu.Lock()
	s.sealed = true
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
	s.watchMu.Unlock()
	return nil
}

// Snapshot returns the current state.
func (s *Sync) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Product looks a product up in the current snapshot.
func (s *Sync) Product(id uuid.UUID) (products.ProductDTO, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return products.ProductDTO{}, false
	}
	return s.snap.Products[i], true
}

// Watch returns a channel that receives the current snapshot and then every
// change. Delivery is latest-wins: a slow reader skips intermediate
// snapshots. The channel is closed by cancel or Close.
func (s *Sync) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.watchMu.Lock()
	if s.sealed {
		s.watchMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	ch <- s.Snapshot()
	s.watchMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.watchMu.Lock()
			defer s.watchMu.Unlock()
			if existing, ok := s.watchers[id]; ok {
				close(existing)
				delete(s.watchers, id)
			}
		})
	}
}

func (s *Sync) run(ctx context.Context) {
	defer close(s.done)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.opts.RetryInitial
	bo.MaxInterval = s.opts.RetryMax
	bo.Multiplier = s.opts.RetryMultiplier
	bo.Reset()

	for {
		stage, err := s.session(ctx, bo)
		if ctx.Err() != nil {
			return
		}
		s.fail(ctx, stage, err)

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			wait = s.opts.RetryMax
		}
		s.opts.Metrics.IncRetry(s.opts.Collection)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// session subscribes, loads, then reloads on every notification until the
// subscription or a load fails. Subscribing before the first load means no
// write can slip between the two.
func (s *Sync) session(ctx context.Context, bo *backoff.ExponentialBackOff) (string, error) {
	sub, err := s.feed.Subscribe(ctx, s.opts.Collection)
	if err != nil {
		return metrics.StageSubscribe, err
	}
	defer sub.Close()

	if err := s.reload(ctx); err != nil {
		return metrics.StageLoad, err
	}
	bo.Reset()

	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event, ok := <-events:
			if !ok {
				return metrics.StageStream, streamErr(sub)
			}
			if event.Op == changefeed.OpResync {
				s.opts.Metrics.IncRetry(s.opts.Collection)
				s.logg.Warn(s.logg.WithField(ctx, "collection", s.opts.Collection), "catalog.feed.resync")
			}
			open := drain(events)
			if err := s.reload(ctx); err != nil {
				return metrics.StageLoad, err
			}
			if !open {
				return metrics.StageStream, streamErr(sub)
			}
		}
	}
}

// drain swallows notifications that queued up during a reload; one reload
// covers all of them. It reports false if the channel was closed.
func drain(events <-chan changefeed.Event) bool {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

func streamErr(sub changefeed.Subscription) error {
	if err := sub.Err(); err != nil {
		return err
	}
	return errStreamEnded
}

func (s *Sync) reload(ctx context.Context) error {
	start := time.Now()
	rows, err := s.loader.ListAll(ctx)
	s.opts.Metrics.ObserveReload(s.opts.Collection, time.Since(start))
	if err != nil {
		return err
	}
	s.apply(ctx, products.FromModels(rows))
	return nil
}

func (s *Sync) apply(ctx context.Context, list []products.ProductDTO) {
	index := make(map[uuid.UUID]int, len(list))
	for i, p := range list {
		index[p.ID] = i
	}

	s.mu.Lock()
	previous := s.snap.State
	s.snap = Snapshot{
		Version:  s.snap.Version + 1,
		Products: list,
		State:    enums.SyncStateLive,
		At:       time.Now().UTC(),
	}
	s.index = index
	snap := s.snap
	s.mu.Unlock()

	s.opts.Metrics.SnapshotApplied(s.opts.Collection, len(list))
	if previous != enums.SyncStateLive {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"collection": s.opts.Collection,
			"version":    snap.Version,
			"documents":  len(list),
		}), "catalog sync live")
	}
	s.broadcast(snap)
}

// fail keeps the last good products and moves the state to error.
func (s *Sync) fail(ctx context.Context, stage string, err error) {
	s.opts.Metrics.IncError(s.opts.Collection, stage)

	s.mu.Lock()
	s.snap.State = enums.SyncStateError
	s.snap.Err = err.Error()
	s.snap.At = time.Now().UTC()
	snap := s.snap
	s.mu.Unlock()

	s.logg.Error(s.logg.WithFields(ctx, map[string]any{
		"collection": s.opts.Collection,
		"stage":      stage,
	}), "catalog sync failed", err)
	s.broadcast(snap)
}

func (s *Sync) broadcast(snap Snapshot) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		offer(ch, snap)
	}
}

// offer replaces whatever is buffered in ch with v. Callers hold the lock
// that makes them the only sender.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
