package catalog

import (
	"sync"
	"time"
)

// DefaultDebounce is the settle time applied to search input.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer delivers only the last value of a burst once input has been
// quiet for the configured delay. Each Trigger bumps a generation counter so
// a timer that already fired for an older value drops it.
type Debouncer struct {
	mu      sync.Mutex
	run     sync.Mutex
	delay   time.Duration
	fn      func(string)
	timer   *time.Timer
	gen     uint64
	stopped bool
}

func NewDebouncer(delay time.Duration, fn func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger (re)starts the timer for value.
func (d *Debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, value) })
}

// Immediate cancels any pending value and delivers value now.
func (d *Debouncer) Immediate(value string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.gen++
	gen := d.gen
	d.cancelTimerLocked()
	d.mu.Unlock()

	d.fire(gen, value)
}

// Pending reports whether a value is waiting for its timer.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop drops any pending value and waits for a running callback to return.
// Nothing is delivered afterwards. Must not be called from the callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.gen++
	d.cancelTimerLocked()
	d.mu.Unlock()

	d.run.Lock()
	d.run.Unlock()
}

func (d *Debouncer) fire(gen uint64, value string) {
	d.run.Lock()
	defer d.run.Unlock()

	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn(value)
}

func (d *Debouncer) cancelTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
