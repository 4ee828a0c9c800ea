package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTask_CoalescesBurst(t *testing.T) {
	var calls atomic.Int32
	task := New(100*time.Millisecond, func() { calls.Add(1) })
	defer task.Stop()

	for i := 0; i < 5; i++ {
		task.Schedule()
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(250 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 call for a burst, got %d", got)
	}
}

func TestTask_SeparateWindows(t *testing.T) {
	var calls atomic.Int32
	task := New(100*time.Millisecond, func() { calls.Add(1) })
	defer task.Stop()

	task.Schedule()
	time.Sleep(150 * time.Millisecond)
	task.Schedule()
	time.Sleep(250 * time.Millisecond)

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestTask_FlushRunsNow(t *testing.T) {
	var calls atomic.Int32
	task := New(time.Hour, func() { calls.Add(1) })
	defer task.Stop()

	task.Schedule()
	task.Flush()
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected flush to run immediately, got %d calls", got)
	}
	if task.Pending() {
		t.Fatal("flush should clear the pending window")
	}
}

func TestTask_CancelAndStop(t *testing.T) {
	var calls atomic.Int32
	task := New(20*time.Millisecond, func() { calls.Add(1) })

	task.Schedule()
	task.Cancel()
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("cancelled task ran %d times", got)
	}

	task.Schedule()
	task.Stop()
	task.Schedule()
	task.Flush()
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("stopped task ran %d times", got)
	}
}

func TestTask_FiredTimerAfterCancelIsDiscarded(t *testing.T) {
	var calls atomic.Int32
	task := New(time.Hour, func() { calls.Add(1) })
	defer task.Stop()

	task.Schedule()
	task.mu.Lock()
	stale := task.gen
	task.mu.Unlock()
	task.Cancel()

	// Simulate a timer callback that was already running when Cancel happened.
	task.fire(stale)
	if got := calls.Load(); got != 0 {
		t.Fatalf("stale fire ran fn %d times", got)
	}
}
