package mapview

import (
	"context"
	"sync"

	"wayfarer/internal/debounce"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/types"
)

// Scheduler coalesces bursts of input changes into one Rebuild. If the
// debounce window elapses while a rebuild is still running, exactly one more
// rebuild runs right after it with the newest input.
type Scheduler struct {
	renderer *Renderer
	task     *debounce.Task

	mu      sync.Mutex
	in      Input
	running bool
	rerun   bool
	closed  bool
	runs    int
	last    Pass
	lastErr error
	idle    *sync.Cond
}

func NewScheduler(r *Renderer) *Scheduler {
	s := &Scheduler{renderer: r}
	s.idle = sync.NewCond(&s.mu)
	s.task = debounce.New(r.opts.RebuildDebounce, s.run)
	return s
}

func (s *Scheduler) SetLocations(ls []location.Location) {
	s.update(func(in *Input) { in.Locations = ls })
}

func (s *Scheduler) SetTrips(ts []location.Trip) {
	s.update(func(in *Input) { in.Trips = ts })
}

// SelectTrip focuses id; the empty id clears the selection.
func (s *Scheduler) SelectTrip(id types.ID) {
	s.update(func(in *Input) { in.SelectedTrip = id })
}

// SetCurrentPosition sets or, with nil, clears the current-position pin.
func (s *Scheduler) SetCurrentPosition(p *types.Point) {
	if p != nil {
		cp := *p
		p = &cp
	}
	s.update(func(in *Input) { in.Current = p })
}

func (s *Scheduler) SetClustering(on bool) {
	s.update(func(in *Input) { in.Clustering = on })
}

func (s *Scheduler) update(fn func(*Input)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn(&s.in)
	s.mu.Unlock()
	s.task.Schedule()
}

// Flush runs the pending rebuild now, on the caller's goroutine.
func (s *Scheduler) Flush() {
	s.task.Flush()
}

func (s *Scheduler) run() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.running {
		s.rerun = true
		s.mu.Unlock()
		return
	}
	s.running = true
	in := s.in
	s.mu.Unlock()

	for {
		pass, err := s.renderer.Rebuild(context.Background(), in)

		s.mu.Lock()
		s.runs++
		s.last, s.lastErr = pass, err
		if s.closed || !s.rerun {
			s.running = false
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		}
		s.rerun = false
		in = s.in
		s.mu.Unlock()
	}
}

// Runs is the number of rebuilds executed so far.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Last returns the result of the most recent rebuild.
func (s *Scheduler) Last() (Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastErr
}

// Wait blocks while a rebuild is running.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	for s.running {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

// Close cancels the pending rebuild. Input changes after Close are ignored
// and a timer that already fired finds nothing to do.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.task.Stop()
}
