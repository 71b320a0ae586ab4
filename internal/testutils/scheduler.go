package testutils

import (
	"sync"
	"time"

	"github.com/aretw0/kiosk/pkg/ports"
)

// ManualScheduler implements ports.Scheduler with explicit pumping. Armed
// callbacks run only when the test calls Fire, on the test goroutine, so
// session runs become fully deterministic.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []*manualTimer
}

type manualTimer struct {
	s         *ManualScheduler
	fn        func()
	delay     time.Duration
	fired     bool
	cancelled bool
}

// NewManualScheduler returns an empty scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule arms fn. The delay is recorded but never waited on.
func (s *ManualScheduler) Schedule(d time.Duration, fn func()) ports.TimerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, fn: fn, delay: d}
	s.queue = append(s.queue, t)
	return t
}

// Cancel marks the timer dead. Safe to call after firing.
func (t *manualTimer) Cancel() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.fired || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

// Pending counts timers that are armed and not cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.queue {
		if !t.fired && !t.cancelled {
			n++
		}
	}
	return n
}

// NextDelay returns the recorded delay of the oldest live timer, or -1.
func (s *ManualScheduler) NextDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.queue {
		if !t.fired && !t.cancelled {
			return t.delay
		}
	}
	return -1
}

// Fire runs the oldest live timer. The callback executes with no scheduler
// lock held, so it may re-arm freely. Returns false when nothing is pending.
func (s *ManualScheduler) Fire() bool {
	s.mu.Lock()
	var next *manualTimer
	for _, t := range s.queue {
		if !t.fired && !t.cancelled {
			next = t
			break
		}
	}
	if next == nil {
		s.mu.Unlock()
		return false
	}
	next.fired = true
	s.queue = compact(s.queue)
	s.mu.Unlock()

	next.fn()
	return true
}

// RunUntilIdle fires timers until none remain, up to max fires. Returns how
// many fired. The cap keeps a broken re-arming loop from hanging the test.
func (s *ManualScheduler) RunUntilIdle(max int) int {
	fired := 0
	for fired < max && s.Fire() {
		fired++
	}
	return fired
}

func compact(queue []*manualTimer) []*manualTimer {
	out := queue[:0]
	for _, t := range queue {
		if !t.fired && !t.cancelled {
			out = append(out, t)
		}
	}
	return out
}
