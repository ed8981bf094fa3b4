// Package debounce delays a function until calls to it have been quiet for a
// fixed window.
package debounce

import (
	"sync"
	"time"
)

// DefaultWait is the quiescence window used for search input.
const DefaultWait = 300 * time.Millisecond

// Debouncer runs only the most recently triggered function, once no newer
// trigger has arrived for the configured wait.
type Debouncer struct {
	mu    sync.Mutex
	wait  time.Duration
	timer *time.Timer
	gen   uint64
}

// New creates a Debouncer. A non-positive wait falls back to DefaultWait.
func New(wait time.Duration) *Debouncer {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Debouncer{wait: wait}
}

// Wait returns the configured window.
func (d *Debouncer) Wait() time.Duration {
	return d.wait
}

// Trigger cancels any pending call and schedules fn after the window.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		// A timer that already fired before Stop can still land here.
		stale := gen != d.gen
		d.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
}

// Stop cancels the pending call, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
}
