// Package moderation implements the timed moderation subsystem: deferred
// one-shot timers that revert throttle and ban state, message expiry, and the
// periodic sweeper that keeps the message log within its time-to-live.
package moderation

import (
	"sync"
	"time"
)

// Scheduler runs one-shot callbacks after a delay. Timers are tracked so
// that Stop can cancel everything outstanding at shutdown; fired timers are
// pruned, so repeated throttle/ban re-arm cycles do not leak entries.
type Scheduler struct {
	mu      sync.Mutex
	seq     uint64
	timers  map[uint64]*time.Timer
	stopped bool
}

// NewScheduler creates a Scheduler ready for use.
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[uint64]*time.Timer)}
}

// After schedules fn to run no earlier than delay from now. Calls after Stop
// are ignored.
func (s *Scheduler) After(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	id := s.seq
	s.seq++
	s.timers[id] = time.AfterFunc(delay, func() {
		s.forget(id)
		fn()
	})
}

func (s *Scheduler) forget(id uint64) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()
}

// Pending returns the number of timers that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all outstanding timers and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
