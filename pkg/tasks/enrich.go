package tasks

import (
	"context"
	"time"

	"github.com/whooof/brewsty/pkg/model"
)

const (
	// DefaultMaxConcurrentInfo bounds how many detail lookups may be in
	// flight at once.
	DefaultMaxConcurrentInfo = 15

	// DefaultInfoTimeout is how long a detail lookup may stay silent
	// before it is reported as failed.
	DefaultInfoTimeout = 10 * time.Second
)

// pendingInfo is one queued, not-yet-launched detail lookup.
type pendingInfo struct {
	name  string
	ptype model.PackageType
}

// infoTask is one in-flight detail lookup.
type infoTask struct {
	name      string
	ptype     model.PackageType
	startedAt time.Time
	cell      *ResultCell[model.Package]

	// cancel is non-nil when cancel-on-timeout is enabled; firing it
	// interrupts the underlying provider call instead of abandoning it.
	cancel context.CancelFunc
}

// EnrichmentQueue tracks the high-fan-out per-package detail lookups. It
// enforces a maximum in-flight count, an unbounded FIFO queue beyond that
// cap, per-package dedup, and a per-lookup timeout that converts silent
// non-completion into a synthesized failure record.
//
// Like TaskSet, the queue's own state is mutated only by the coordinator's
// calling goroutine and needs no locks; workers communicate exclusively
// through the result cells.
type EnrichmentQueue struct {
	maxConcurrent int
	timeout       time.Duration

	inFlight map[string]*infoTask
	pending  []pendingInfo

	// now is replaceable so timeout behavior is testable without sleeping.
	now func() time.Time

	log *eventLog
}

// NewEnrichmentQueue returns a queue with the given bound and timeout;
// zero values select the defaults.
func NewEnrichmentQueue(maxConcurrent int, timeout time.Duration) *EnrichmentQueue {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentInfo
	}
	if timeout <= 0 {
		timeout = DefaultInfoTimeout
	}
	return &EnrichmentQueue{
		maxConcurrent: maxConcurrent,
		timeout:       timeout,
		inFlight:      make(map[string]*infoTask),
		now:           time.Now,
		log:           newEventLog("enrichment"),
	}
}

// Tracks reports whether name is currently in flight or queued. A package
// appears in at most one of the two.
func (q *EnrichmentQueue) Tracks(name string) bool {
	if _, ok := q.inFlight[name]; ok {
		return true
	}
	for _, p := range q.pending {
		if p.name == name {
			return true
		}
	}
	return false
}

// IsLoading reports whether a lookup for name is in flight right now.
func (q *EnrichmentQueue) IsLoading(name string) bool {
	_, ok := q.inFlight[name]
	return ok
}

// CanAdmitMore reports whether another lookup may be launched without
// exceeding the concurrency bound.
func (q *EnrichmentQueue) CanAdmitMore() bool {
	return len(q.inFlight) < q.maxConcurrent
}

// InFlightCount returns the number of lookups currently in flight.
func (q *EnrichmentQueue) InFlightCount() int {
	return len(q.inFlight)
}

// PendingCount returns the number of queued, not-yet-launched lookups.
func (q *EnrichmentQueue) PendingCount() int {
	return len(q.pending)
}

// Enqueue appends a lookup to the pending FIFO. Requests already tracked
// are merged silently.
func (q *EnrichmentQueue) Enqueue(name string, ptype model.PackageType) {
	if q.Tracks(name) {
		q.log.event(logDebug, "info_request_merged", map[string]any{
			"package": name,
		})
		return
	}
	q.pending = append(q.pending, pendingInfo{name: name, ptype: ptype})
}

// DrainPending pops up to n entries from the front of the pending queue,
// earliest-requested first, for the caller to launch.
func (q *EnrichmentQueue) DrainPending(n int) []pendingInfo {
	if n > len(q.pending) {
		n = len(q.pending)
	}
	if n <= 0 {
		return nil
	}
	batch := make([]pendingInfo, n)
	copy(batch, q.pending)
	q.pending = append(q.pending[:0], q.pending[n:]...)
	return batch
}

// launch registers an in-flight lookup with its completion cell. The
// startedAt stamp is taken here so the timeout clock covers the whole
// provider call.
func (q *EnrichmentQueue) launch(name string, ptype model.PackageType, cell *ResultCell[model.Package], cancel context.CancelFunc) {
	q.inFlight[name] = &infoTask{
		name:      name,
		ptype:     ptype,
		startedAt: q.now(),
		cell:      cell,
		cancel:    cancel,
	}
}

// PollAll sweeps the in-flight set once. Lookups whose cells hold a value
// are completed into res; lookups past the timeout are synthesized as
// failed detail records and dropped from tracking (the underlying work, if
// still running, is abandoned unless a cancel handle was attached). All
// others stay in flight for the next frame.
func (q *EnrichmentQueue) PollAll(res *TaskResult) {
	now := q.now()
	for name, t := range q.inFlight {
		if now.Sub(t.startedAt) > q.timeout {
			q.log.event(logWarn, "info_load_timeout", map[string]any{
				"package": name,
				"elapsed": now.Sub(t.startedAt).String(),
			})
			if t.cancel != nil {
				t.cancel()
			}
			failed := model.NewPackage(name, t.ptype)
			failed.DetailLoadFailed = true
			res.addPackageInfo(failed)
			delete(q.inFlight, name)
			continue
		}

		pkg, ok := t.cell.TryTake()
		if !ok {
			continue
		}
		if t.cancel != nil {
			t.cancel()
		}
		res.addPackageInfo(pkg)
		delete(q.inFlight, name)
	}
}
