package domain

import (
	"strings"
	"time"
)

// Phase describes what the machine is doing at the current step.
type Phase string

const (
	PhasePrompting     Phase = "prompting"      // Even step: the machine is typing (or settling) a prompt
	PhaseAwaitingInput Phase = "awaiting_input" // Odd step: the visitor owns the input line
	PhaseDone          Phase = "done"           // Terminal step: every prompt answered
)

// ActionState describes the launch gate.
type ActionState string

const (
	ActionIdle    ActionState = "idle"    // The interview is still in progress
	ActionEnabled ActionState = "enabled" // Done, every answer recorded, launch available
	ActionRunning ActionState = "running" // Launch invoked; the latch never reverts
)

// PhaseFor derives the phase from a step counter over a script with
// promptCount prompts. Steps walk 0..2N: even steps present prompt step/2,
// odd steps collect the answer to prompt (step-1)/2, and step 2N is terminal.
func PhaseFor(step, promptCount int) Phase {
	if step >= 2*promptCount {
		return PhaseDone
	}
	if step%2 == 0 {
		return PhasePrompting
	}
	return PhaseAwaitingInput
}

// State represents the current snapshot of one intake session.
//
// The transcript is append-only and alternates system/user lines; its length
// equals Step at every step boundary before completion and 2N at completion.
// Buffer is transient working text: the partially typed prompt on even steps,
// the visitor's uncommitted draft on odd steps. It is cleared on step entry
// and on every commit.
type State struct {
	// ID is the session identifier.
	ID string `json:"id"`

	// Step is the position in the interview, 0..2N. It only ever moves
	// forward, by exactly one.
	Step int `json:"step"`

	// Transcript holds every committed line, in commit order.
	Transcript []Line `json:"transcript"`

	// Buffer is the transient working text for the current step.
	Buffer string `json:"buffer"`

	// Typing is true strictly while prompt characters are still being
	// emitted. It drops before the settle window opens.
	Typing bool `json:"typing"`

	// Answers has one fixed slot per prompt. Each slot is written exactly
	// once, by the commit that answers its prompt, and never mutated after.
	Answers []string `json:"answers"`

	// Launched latches once the launch action fires. It never resets.
	Launched bool `json:"launched"`

	// Seq is the line ID counter.
	Seq int `json:"seq"`

	// Sealed carries an opaque encrypted payload when a persistence
	// middleware has sealed the state. A sealed state has no other content;
	// only the middleware that sealed it can open it again.
	Sealed string `json:"sealed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a clean state for a script with promptCount prompts,
// positioned before the first prompt has begun typing.
func NewState(id string, promptCount int) *State {
	now := time.Now().UTC()
	return &State{
		ID:         id,
		Step:       0,
		Transcript: make([]Line, 0, 2*promptCount),
		Answers:    make([]string, promptCount),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// PromptCount returns how many prompts this session tracks.
func (s *State) PromptCount() int {
	return len(s.Answers)
}

// FinalStep returns the terminal step index (2N).
func (s *State) FinalStep() int {
	return 2 * len(s.Answers)
}

// Done reports whether the interview has reached its terminal step.
func (s *State) Done() bool {
	return s.Step >= s.FinalStep()
}

// Phase derives the current phase from the step counter.
func (s *State) Phase() Phase {
	return PhaseFor(s.Step, len(s.Answers))
}

// PromptIndex returns which prompt the current step belongs to, or -1 at the
// terminal step.
func (s *State) PromptIndex() int {
	if s.Done() {
		return -1
	}
	return s.Step / 2
}

// Action derives the launch gate state. Enabled requires the terminal step,
// no prior launch, and a non-blank answer in every slot.
func (s *State) Action() ActionState {
	if s.Launched {
		return ActionRunning
	}
	if !s.Done() {
		return ActionIdle
	}
	for _, a := range s.Answers {
		if strings.TrimSpace(a) == "" {
			return ActionIdle
		}
	}
	return ActionEnabled
}

// PushLine appends a committed line to the transcript and returns it.
// The ID counter is monotonic; retired IDs are never reused.
func (s *State) PushLine(kind LineKind, text string) Line {
	s.Seq++
	line := Line{ID: s.Seq, Kind: kind, Text: text}
	s.Transcript = append(s.Transcript, line)
	return line
}

// Clone returns a deep copy, safe to hand across goroutine or storage
// boundaries without aliasing the live transcript or answers.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Transcript = append([]Line(nil), s.Transcript...)
	out.Answers = append([]string(nil), s.Answers...)
	return &out
}
