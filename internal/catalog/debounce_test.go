package catalog

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	values []string
	fired  chan string
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan string, 16)}
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	r.fired <- v
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

func TestDebouncerDeliversOnlyTheFinalValue(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(80*time.Millisecond, rec.record)
	defer d.Stop()

	for _, v := range []string{"a", "ap", "app", "appl"} {
		d.Trigger(v)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case v := <-rec.fired:
		if v != "appl" {
			t.Fatalf("expected final value, got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced callback never fired")
	}

	time.Sleep(120 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("expected exactly one callback, got %d", rec.count())
	}
	if d.Pending() {
		t.Fatal("expected no pending value")
	}
}

func TestDebouncerImmediateCancelsPending(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(30*time.Millisecond, rec.record)
	defer d.Stop()

	d.Trigger("tom")
	d.Immediate("")

	if v := <-rec.fired; v != "" {
		t.Fatalf("expected immediate empty value, got %q", v)
	}
	time.Sleep(60 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("pending value must be dropped, got %d callbacks", rec.count())
	}
}

func TestDebouncerStopPreventsDelivery(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(20*time.Millisecond, rec.record)

	d.Trigger("late")
	d.Stop()
	d.Trigger("after stop")
	d.Immediate("after stop")

	time.Sleep(50 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("expected no callbacks after stop, got %d", rec.count())
	}
}

func TestDebouncerDefaultsDelay(t *testing.T) {
	d := NewDebouncer(0, func(string) {})
	if d.delay != DefaultDebounce {
		t.Fatalf("expected default delay, got %v", d.delay)
	}
}
