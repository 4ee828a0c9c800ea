// Package debounce provides a trailing-edge debounced task shared by the
// search box and the marker rebuild path.
package debounce

import (
	"sync"
	"time"
)

// Task runs fn once after the last Schedule call has been quiet for delay.
//
// A Task has a single owner. fn always runs on its own goroutine (timer
// goroutine or the caller of Flush), never while the Task's lock is held,
// so fn may call back into Schedule or Cancel.
type Task struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// New returns an idle Task.
func New(delay time.Duration, fn func()) *Task {
	return &Task{delay: delay, fn: fn}
}

// Schedule (re)starts the debounce window.
func (t *Task) Schedule() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopTimerLocked()
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.delay, func() { t.fire(gen) })
}

// Flush cancels the pending window and runs fn immediately on the caller's
// goroutine. It is a no-op after Stop.
func (t *Task) Flush() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopTimerLocked()
	t.gen++
	t.mu.Unlock()
	t.fn()
}

// Cancel drops the pending run, if any.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTimerLocked()
	t.gen++
}

// Pending reports whether a run is scheduled.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Stop cancels the pending run and turns every later call into a no-op.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTimerLocked()
	t.gen++
	t.stopped = true
}

func (t *Task) fire(gen uint64) {
	t.mu.Lock()
	// A timer that already fired can still reach here after Cancel/Stop;
	// the generation check discards it.
	if t.stopped || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()
	t.fn()
}

func (t *Task) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
