package app

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler arms one-shot deferred callbacks. Callbacks are not cancelled when
// the game moves on; each one re-checks the state it was armed for and becomes a
// no-op when that state is gone. Stop only exists to release timers at shutdown.
type Scheduler struct {
	clock clockwork.Clock

	mu      sync.Mutex
	pending map[uint64]clockwork.Timer
	nextID  uint64
	stopped bool
}

func NewScheduler(clock clockwork.Clock) *Scheduler {
	return &Scheduler{
		clock:   clock,
		pending: make(map[uint64]clockwork.Timer),
	}
}

// At runs fn at the given instant, or as soon as possible if it already passed.
func (s *Scheduler) At(when time.Time, fn func()) {
	delay := when.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.nextID++
	id := s.nextID
	s.pending[id] = nil
	s.mu.Unlock()

	t := s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		_, live := s.pending[id]
		delete(s.pending, id)
		s.mu.Unlock()
		if live {
			fn()
		}
	})

	s.mu.Lock()
	if _, ok := s.pending[id]; ok {
		s.pending[id] = t
	}
	s.mu.Unlock()
}

// Pending reports how many callbacks have been armed but not yet fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop releases every outstanding timer; later calls to At are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.pending {
		if t != nil {
			t.Stop()
		}
		delete(s.pending, id)
	}
}
