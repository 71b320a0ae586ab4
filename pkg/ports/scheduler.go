package ports

import "time"

// TimerHandle identifies one armed timer. Cancel reports whether the fire was
// prevented; cancelling an already-fired or already-cancelled handle is safe
// and returns false.
type TimerHandle interface {
	Cancel() bool
}

// Scheduler arms the delayed callbacks that drive auto-typing. Sessions hold
// at most one outstanding handle and cancel it before arming the next, so
// implementations never see overlapping timers for one session.
//
// The production implementation wraps time.AfterFunc; tests substitute a
// manually pumped scheduler for deterministic runs.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) TimerHandle
}
