package domain

import (
	"context"
	"time"
)

// Event is a typed input to the intake state machine. Scheduled events carry
// the step they were armed for so the machine can refuse fires that outlived
// their step (see ErrStaleStep).
type Event interface {
	isEvent()
}

// BeginPrompt enters an even step: auto-typing of prompt Step/2 starts.
type BeginPrompt struct {
	Step int
}

// EmitChar appends the next character of the active prompt to the buffer.
type EmitChar struct {
	Step int
}

// Settle is the single transition that commits the fully typed prompt as a
// system line and advances the step. Commit and advance are one atomic
// transition; no observer can see the line without the step move.
type Settle struct {
	Step int
}

// SetInput wholesale-replaces the visitor's draft. Only legal while the
// machine is awaiting input.
type SetInput struct {
	Text string
}

// Submit commits the trimmed draft as the answer to the current prompt.
type Submit struct{}

// Invoke fires the launch gate.
type Invoke struct{}

func (BeginPrompt) isEvent() {}
func (EmitChar) isEvent()    {}
func (Settle) isEvent()      {}
func (SetInput) isEvent()    {}
func (Submit) isEvent()      {}
func (Invoke) isEvent()      {}

// Schedule describes the follow-up a transition wants armed: which event to
// deliver and after how long. A nil *Schedule means the machine is waiting on
// the outside world (visitor input or launch). There is at most one pending
// schedule per step; arming a new one implies cancelling the old.
type Schedule struct {
	Event Event
	Delay time.Duration
}

// LineEvent reports a committed transcript line.
type LineEvent struct {
	SessionID string        `json:"session_id"`
	Line      Line          `json:"line"`
	Step      int           `json:"step"`    // Step at which the commit happened (before the advance)
	Elapsed   time.Duration `json:"elapsed"` // For system lines: time from BeginPrompt to commit
}

// StepEvent reports a step advance.
type StepEvent struct {
	SessionID string `json:"session_id"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Phase     Phase  `json:"phase"` // Phase entered at To
}

// LaunchEvent reports the gate firing.
type LaunchEvent struct {
	SessionID string   `json:"session_id"`
	Answers   []string `json:"answers"`
}

// RefusalEvent reports an operation the machine refused (out-of-turn input,
// empty submit, launch while not ready). Refusals are local and recoverable;
// hooks see them so hosts can count or surface them.
type RefusalEvent struct {
	SessionID string `json:"session_id"`
	Op        string `json:"op"`
	Err       error  `json:"-"`
}

// Hooks defines callbacks for session observability. All fields are optional
// and invoked synchronously while the session lock is held, so they must
// return quickly.
type Hooks struct {
	OnStarted       func(context.Context, *StepEvent)
	OnLineCommitted func(context.Context, *LineEvent)
	OnStepAdvanced  func(context.Context, *StepEvent)
	OnLaunched      func(context.Context, *LaunchEvent)
	OnRefused       func(context.Context, *RefusalEvent)
}
