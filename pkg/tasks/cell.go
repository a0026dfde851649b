package tasks

import "sync"

// ResultCell is a single-write, single-read slot used to hand a value from
// a background worker to the polling coordinator. The writer calls Put
// exactly once; the poller calls TryTake every frame until it yields the
// value, after which the cell is discarded.
//
// TryTake never blocks: if the writer currently holds the guard, the poller
// simply sees "not ready" and retries next frame. A frame that races a
// mid-write never observes a half-written value and never stalls.
type ResultCell[T any] struct {
	mu  sync.Mutex
	val T
	set bool
}

// NewResultCell returns an empty cell.
func NewResultCell[T any]() *ResultCell[T] {
	return &ResultCell[T]{}
}

// Put stores v in the cell. The first write wins; subsequent writes are
// dropped and reported with a false return. Put may block briefly if a
// TryTake is in progress, never longer.
func (c *ResultCell[T]) Put(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set {
		return false
	}
	c.val = v
	c.set = true
	return true
}

// TryTake attempts a non-blocking read. It returns (zero, false) when the
// guard is contended or no value has been stored yet. On success the value
// is removed from the cell.
func (c *ResultCell[T]) TryTake() (T, bool) {
	var zero T
	if !c.mu.TryLock() {
		return zero, false
	}
	defer c.mu.Unlock()
	if !c.set {
		return zero, false
	}
	v := c.val
	c.val = zero
	c.set = false
	return v, true
}
