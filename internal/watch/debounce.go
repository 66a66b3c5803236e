package watch

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of triggers into one request, delivered delay after the last
// trigger. At most one request is pending at a time.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	out   chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, out: make(chan struct{}, 1)}
}

// Trigger restarts the debounce window.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// fire enqueues a request unless one is already pending.
func (d *debouncer) fire() {
	select {
	case d.out <- struct{}{}:
	default:
	}
}

// C delivers coalesced requests.
func (d *debouncer) C() <-chan struct{} { return d.out }

// Stop cancels a pending window.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
