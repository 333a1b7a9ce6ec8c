package responses

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEventStreamFormatsEvents(t *testing.T) {
	w := httptest.NewRecorder()
	stream, err := NewEventStream(w)
	if err != nil {
		t.Fatalf("new stream: %v", err)
	}
	if err := stream.Send("snapshot", map[string]int{"version": 3}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := stream.KeepAlive(); err != nil {
		t.Fatalf("keepalive: %v", err)
	}

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !w.Flushed {
		t.Fatal("expected stream to flush")
	}
	want := "event: snapshot\ndata: {\"version\":3}\n\n: keep-alive\n\n"
	if got := w.Body.String(); !strings.HasSuffix(got, want) {
		t.Fatalf("unexpected body %q", got)
	}
}
