package tasks

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_SpawnRunsWork(t *testing.T) {
	e := NewExecutor()
	defer e.Close(time.Second)

	done := make(chan struct{})
	e.Spawn(func(ctx context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("spawned work never ran")
	}
}

func TestExecutor_PanicConfinedToTask(t *testing.T) {
	e := NewExecutor()
	defer e.Close(time.Second)

	e.Spawn(func(ctx context.Context) {
		panic("boom")
	})

	// A panic in one task must not take down the executor.
	done := make(chan struct{})
	e.Spawn(func(ctx context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("executor unusable after a task panic")
	}
}

func TestExecutor_SpawnAfterClosePanics(t *testing.T) {
	e := NewExecutor()
	e.Close(time.Second)

	defer func() {
		if recover() == nil {
			t.Error("Spawn on a closed executor should panic")
		}
	}()
	e.Spawn(func(ctx context.Context) {})
}

func TestExecutor_CloseCancelsContext(t *testing.T) {
	e := NewExecutor()

	started := make(chan struct{})
	stopped := make(chan struct{})
	e.Spawn(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(stopped)
	})
	<-started

	e.Close(time.Second)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the executor context")
	}
}

func TestExecutor_CloseIdempotent(t *testing.T) {
	e := NewExecutor()
	e.Close(time.Second)
	e.Close(time.Second)
}

func TestRunBlocking_ReturnsResult(t *testing.T) {
	e := NewExecutor()
	defer e.Close(time.Second)

	v, err := RunBlocking(e, time.Second, func(ctx context.Context) (int, error) {
		return 99, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 99 {
		t.Errorf("expected 99, got %d", v)
	}
}

func TestRunBlocking_TimeoutCancelsWork(t *testing.T) {
	e := NewExecutor()
	defer e.Close(time.Second)

	_, err := RunBlocking(e, 20*time.Millisecond, func(ctx context.Context) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(5 * time.Second):
			return 1, nil
		}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
