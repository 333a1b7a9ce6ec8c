package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorverse-backend/internal/catalog"
	"github.com/angelmondragon/vendorverse-backend/internal/products"
	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
)

type staticSnapshot struct {
	snap catalog.Snapshot
}

func (s staticSnapshot) Snapshot() catalog.Snapshot {
	return s.snap
}

// onceSource hands each watcher one snapshot and then ends the feed.
type onceSource struct {
	snap catalog.Snapshot
}

func (s onceSource) Watch() (<-chan catalog.Snapshot, func()) {
	ch := make(chan catalog.Snapshot, 1)
	ch <- s.snap
	close(ch)
	return ch, func() {}
}

// openSource keeps the feed open until cancelled.
type openSource struct{}

func (openSource) Watch() (<-chan catalog.Snapshot, func()) {
	ch := make(chan catalog.Snapshot)
	done := make(chan struct{})
	go func() {
		<-done
		close(ch)
	}()
	return ch, func() { close(done) }
}

func sampleSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Version: 3,
		State:   enums.SyncStateLive,
		Products: []products.ProductDTO{
			{ID: uuid.New(), Name: "Green Tea"},
			{ID: uuid.New(), Name: "Coffee Beans"},
			{ID: uuid.New(), Name: "Tea Kettle"},
		},
	}
}

func TestCatalogListFiltersByQuery(t *testing.T) {
	source := staticSnapshot{snap: sampleSnapshot()}

	rec := httptest.NewRecorder()
	CatalogList(source, testLogger())(rec, newRequest(http.MethodGet, "/?q=+tea+", "", vendor(), nil))
	var result catalog.Result
	decodeData(t, rec, &result)
	if result.Query != "tea" || result.Count != 2 || result.Total != 3 || result.Version != 3 {
		t.Fatalf("unexpected result %+v", result)
	}

	rec = httptest.NewRecorder()
	CatalogStatus(source, testLogger())(rec, newRequest(http.MethodGet, "/", "", vendor(), nil))
	if !strings.Contains(rec.Body.String(), `"count":3`) || !strings.Contains(rec.Body.String(), `"state":"live"`) {
		t.Fatalf("unexpected status body %s", rec.Body.String())
	}
}

func TestCatalogStreamSendsSnapshotsUntilClosed(t *testing.T) {
	views := catalog.NewViews(onceSource{snap: sampleSnapshot()}, 10*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	req := newRequest(http.MethodGet, "/stream?q=coffee", "", vendor(), nil)
	done := make(chan struct{})
	go func() {
		CatalogStream(views, time.Minute, testLogger())(rec, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end with its source")
	}

	body := rec.Body.String()
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected event stream content type, got %q", got)
	}
	for _, want := range []string{"event: view", "event: snapshot", `"count":1`, "event: closed"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in stream body:\n%s", want, body)
		}
	}
	if views.Len() != 0 {
		t.Fatalf("expected view to be unregistered, %d open", views.Len())
	}
}

func TestCatalogStreamStopsWithClient(t *testing.T) {
	views := catalog.NewViews(openSource{}, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := newRequest(http.MethodGet, "/stream", "", vendor(), nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		CatalogStream(views, time.Minute, testLogger())(httptest.NewRecorder(), req)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after the client left")
	}
	if views.Len() != 0 {
		t.Fatalf("expected view to be closed, %d open", views.Len())
	}
}

func TestCatalogViewQuery(t *testing.T) {
	views := catalog.NewViews(openSource{}, 10*time.Millisecond, nil)
	t.Cleanup(views.CloseAll)

	owner := vendor()
	view := views.Open(owner.UserID, "")

	rec := httptest.NewRecorder()
	CatalogViewQuery(views, testLogger())(rec, newRequest(http.MethodPost, "/", `{"query":"  tea "}`, owner, map[string]string{"viewId": view.ID}))
	if rec.Code != http.StatusAccepted || !strings.Contains(rec.Body.String(), `"pending":true`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	CatalogViewQuery(views, testLogger())(rec, newRequest(http.MethodPost, "/", `{"query":""}`, owner, map[string]string{"viewId": view.ID}))
	if !strings.Contains(rec.Body.String(), `"pending":false`) || view.Query() != "" {
		t.Fatalf("expected the query to clear at once, got %s (applied %q)", rec.Body.String(), view.Query())
	}

	rec = httptest.NewRecorder()
	CatalogViewQuery(views, testLogger())(rec, newRequest(http.MethodPost, "/", `{"query":"tea"}`, vendor(), map[string]string{"viewId": view.ID}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another vendor's view, got %d", rec.Code)
	}
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	source := staticSnapshot{snap: catalog.Snapshot{State: enums.SyncStateError}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), stubPinger{}, stubPinger{}, source)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"catalog":"error"`) {
		t.Fatalf("expected ready with catalog state, got %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-VendorVerse-Env") != "dev" {
		t.Fatal("expected env header")
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), stubPinger{}, stubPinger{err: errors.New("down")}, source)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when redis is down, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthLive(cfg)(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected live 200, got %d", rec.Code)
	}
}
