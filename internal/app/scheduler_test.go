package app

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestSchedulerFiresAtDeadline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewScheduler(clock)

	fired := make(chan struct{}, 1)
	s.At(clock.Now().Add(5*time.Second), func() { fired <- struct{}{} })
	if s.Pending() != 1 {
		t.Fatalf("expected 1 pending callback, got %d", s.Pending())
	}

	clock.Advance(4 * time.Second)
	select {
	case <-fired:
		t.Fatalf("callback fired early")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(time.Second)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("callback did not fire")
	}
}

func TestSchedulerStopReleasesTimers(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewScheduler(clock)

	fired := make(chan struct{}, 2)
	s.At(clock.Now().Add(time.Second), func() { fired <- struct{}{} })
	s.Stop()
	s.At(clock.Now().Add(time.Second), func() { fired <- struct{}{} })

	if s.Pending() != 0 {
		t.Fatalf("expected no pending callbacks after stop, got %d", s.Pending())
	}
	clock.Advance(2 * time.Second)
	select {
	case <-fired:
		t.Fatalf("callback fired after stop")
	case <-time.After(20 * time.Millisecond):
	}
}
