package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration collapses the burst of events a single brew
// run produces into one notification.
const DefaultDebounceDuration = 500 * time.Millisecond

// Debouncer coalesces rapid triggers into a single callback after a
// quiet period.
type Debouncer struct {
	d     time.Duration
	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{d: d}
}

// Duration returns the configured quiet period.
func (db *Debouncer) Duration() time.Duration {
	return db.d
}

// Trigger schedules fn to run after the quiet period, resetting the
// clock if a trigger is already pending. Only the latest fn runs.
func (db *Debouncer) Trigger(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.timer != nil {
		db.timer.Stop()
	}
	db.timer = time.AfterFunc(db.d, fn)
}

// Cancel drops any pending trigger.
func (db *Debouncer) Cancel() {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
}
