package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Error stages reported by the catalog sync loop.
const (
	StageSubscribe = "subscribe"
	StageLoad      = "load"
	StageStream    = "stream"
)

// CatalogSyncMetrics records the health of live collection subscriptions.
type CatalogSyncMetrics struct {
	reload    *prometheus.HistogramVec
	snapshots *prometheus.CounterVec
	failures  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	size      *prometheus.GaugeVec
	viewers   prometheus.Gauge
}

// NewCatalogSyncMetrics registers the sync metrics on the provided registerer.
func NewCatalogSyncMetrics(reg prometheus.Registerer) *CatalogSyncMetrics {
	if reg == nil {
		return &CatalogSyncMetrics{}
	}
	reload := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_snapshot_reload_seconds",
		Help:    "Time spent loading a full collection snapshot.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})
	snapshots := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_snapshots_applied_total",
		Help: "Snapshots that replaced the in-memory collection.",
	}, []string{"collection"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_errors_total",
		Help: "Subscription and snapshot failures.",
	}, []string{"collection", "stage"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_retries_total",
		Help: "Backoff retries of the subscription loop.",
	}, []string{"collection"})
	size := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "catalog_snapshot_size",
		Help: "Number of documents in the current snapshot.",
	}, []string{"collection"})
	viewers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_open_views",
		Help: "Live catalog views currently streaming.",
	})
	reg.MustRegister(reload, snapshots, failures, retries, size, viewers)
	return &CatalogSyncMetrics{
		reload:    reload,
		snapshots: snapshots,
		failures:  failures,
		retries:   retries,
		size:      size,
		viewers:   viewers,
	}
}

// ObserveReload records how long a snapshot load took.
func (c *CatalogSyncMetrics) ObserveReload(collection string, duration time.Duration) {
	if c == nil || c.reload == nil {
		return
	}
	c.reload.WithLabelValues(normalizeLabel(collection)).Observe(duration.Seconds())
}

// SnapshotApplied counts an applied snapshot and records its size.
func (c *CatalogSyncMetrics) SnapshotApplied(collection string, documents int) {
	if c == nil || c.snapshots == nil {
		return
	}
	label := normalizeLabel(collection)
	c.snapshots.WithLabelValues(label).Inc()
	c.size.WithLabelValues(label).Set(float64(documents))
}

// IncError counts a failure at the given stage.
func (c *CatalogSyncMetrics) IncError(collection, stage string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(collection), normalizeLabel(stage)).Inc()
}

// IncRetry counts a backoff retry.
func (c *CatalogSyncMetrics) IncRetry(collection string) {
	if c == nil || c.retries == nil {
		return
	}
	c.retries.WithLabelValues(normalizeLabel(collection)).Inc()
}

// ViewOpened and ViewClosed track open streaming views.
func (c *CatalogSyncMetrics) ViewOpened() {
	if c == nil || c.viewers == nil {
		return
	}
	c.viewers.Inc()
}

func (c *CatalogSyncMetrics) ViewClosed() {
	if c == nil || c.viewers == nil {
		return
	}
	c.viewers.Dec()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
