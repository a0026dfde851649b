package tasks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Executor owns the pool of background goroutines that execute task work.
// It is created once at startup and lives for the whole process; Close is
// only called on shutdown.
type Executor struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool
	log    *eventLog
}

// NewExecutor returns a ready Executor.
func NewExecutor() *Executor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		ctx:    ctx,
		cancel: cancel,
		log:    newEventLog("executor"),
	}
}

// Context returns the executor's base context. It is cancelled by Close, so
// provider calls made from spawned work stop (best effort) on shutdown.
func (e *Executor) Context() context.Context {
	return e.ctx
}

// Spawn schedules work on its own goroutine and returns immediately. The
// work function receives the executor's base context and is responsible for
// writing its own result cells before returning. A panic inside work is
// confined to that task and logged.
//
// Spawning on a closed executor is a process-health violation, not business
// logic, and panics loudly.
func (e *Executor) Spawn(work func(ctx context.Context)) {
	if e.closed.Load() {
		panic("tasks: Spawn called on closed Executor")
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				e.log.event(logError, "task_panic", map[string]any{
					"panic": fmt.Sprintf("%v", r),
					"stack": string(debug.Stack()),
				})
			}
		}()
		work(e.ctx)
	}()
}

// RunBlocking executes work to completion on the calling goroutine, bounded
// by timeout (no bound when timeout is zero). It exists for short,
// user-initiated previews that need an answer before a modal can be shown;
// it must never be called from the per-frame poll path.
func RunBlocking[T any](e *Executor, timeout time.Duration, work func(ctx context.Context) (T, error)) (T, error) {
	if e.closed.Load() {
		panic("tasks: RunBlocking called on closed Executor")
	}
	ctx := e.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return work(ctx)
}

// Close cancels the base context and waits up to wait for outstanding work
// to drain. Close is idempotent.
func (e *Executor) Close(wait time.Duration) {
	if e.closed.Swap(true) {
		return
	}
	e.cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(wait):
		e.log.event(logWarn, "shutdown_timeout", nil)
	}
}
