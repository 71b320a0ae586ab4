// Package schedule provides the production Scheduler backed by the runtime
// timer heap.
package schedule

import (
	"time"

	"github.com/aretw0/kiosk/pkg/ports"
)

// Timer implements ports.Scheduler on top of time.AfterFunc. Callbacks run on
// their own goroutine, as the runtime delivers them.
type Timer struct{}

// New returns the real scheduler.
func New() Timer {
	return Timer{}
}

// Schedule arms fn to run after d.
func (Timer) Schedule(d time.Duration, fn func()) ports.TimerHandle {
	return handle{t: time.AfterFunc(d, fn)}
}

type handle struct {
	t *time.Timer
}

// Cancel stops the timer. Safe after firing; reports whether the fire was
// actually prevented.
func (h handle) Cancel() bool {
	return h.t.Stop()
}
