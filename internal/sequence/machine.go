package sequence

import (
	"fmt"
	"strings"

	"github.com/aretw0/kiosk/pkg/domain"
)

// Machine is the pure intake state machine. It owns no clock, no lock, and no
// I/O: every transition is a named function of (prior state, event) that
// mutates the passed state in place and optionally returns the follow-up to
// arm. Hosts own scheduling and serialization.
type Machine struct {
	script *domain.Script
}

// New builds a machine for a script. The script is normalized and validated
// once here; the machine assumes both from then on.
func New(script *domain.Script) (*Machine, error) {
	if script == nil {
		return nil, fmt.Errorf("%w: nil script", domain.ErrScriptInvalid)
	}
	script.Normalize()
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &Machine{script: script}, nil
}

// Script returns the validated script driving this machine.
func (m *Machine) Script() *domain.Script {
	return m.script
}

// NewState creates a fresh state sized for this machine's script.
func (m *Machine) NewState(sessionID string) *domain.State {
	return domain.NewState(sessionID, m.script.PromptCount())
}

// Restore checks that a stored state can be driven by this machine's script.
func (m *Machine) Restore(state *domain.State) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", domain.ErrSessionNotFound)
	}
	if state.PromptCount() != m.script.PromptCount() {
		return fmt.Errorf("%w: state tracks %d prompts, script has %d",
			domain.ErrScriptInvalid, state.PromptCount(), m.script.PromptCount())
	}
	if state.Step < 0 || state.Step > state.FinalStep() {
		return fmt.Errorf("%w: step %d out of range", domain.ErrScriptInvalid, state.Step)
	}
	return nil
}

// Start returns the schedule that sets a state in motion: typing of the
// current prompt begins immediately. States parked on an input step or at the
// terminal step have nothing to arm.
func (m *Machine) Start(state *domain.State) *domain.Schedule {
	if state.Done() || state.Step%2 != 0 {
		return nil
	}
	return &domain.Schedule{Event: domain.BeginPrompt{Step: state.Step}}
}

// Snapshot builds the read model for a state under this machine's script.
func (m *Machine) Snapshot(state *domain.State) domain.Snapshot {
	return domain.NewSnapshot(m.script, state)
}

// Apply routes an event to its transition. On error the state is unchanged;
// on success the returned schedule (possibly nil) supersedes any outstanding
// one for the session.
func (m *Machine) Apply(state *domain.State, event domain.Event) (*domain.Schedule, error) {
	switch ev := event.(type) {
	case domain.BeginPrompt:
		return m.beginPrompt(state, ev)
	case domain.EmitChar:
		return m.emitChar(state, ev)
	case domain.Settle:
		return m.settle(state, ev)
	case domain.SetInput:
		return nil, m.setInput(state, ev)
	case domain.Submit:
		return m.submit(state)
	case domain.Invoke:
		return nil, m.invoke(state)
	default:
		return nil, fmt.Errorf("unknown event %T", event)
	}
}

// beginPrompt enters an even step: typing starts on an empty buffer.
func (m *Machine) beginPrompt(state *domain.State, ev domain.BeginPrompt) (*domain.Schedule, error) {
	if ev.Step != state.Step {
		return nil, domain.ErrStaleStep
	}
	if state.Done() || state.Step%2 != 0 {
		return nil, fmt.Errorf("%w: begin prompt at step %d", domain.ErrStaleStep, state.Step)
	}
	if state.Typing {
		// A second begin against the same step means a schedule leaked.
		return nil, domain.ErrStaleStep
	}

	state.Typing = true
	state.Buffer = ""
	return &domain.Schedule{Event: domain.EmitChar{Step: state.Step}, Delay: m.script.CharInterval}, nil
}

// emitChar appends the next rune of the active prompt. After the final rune
// the typing flag drops and the settle window opens.
func (m *Machine) emitChar(state *domain.State, ev domain.EmitChar) (*domain.Schedule, error) {
	if ev.Step != state.Step || !state.Typing {
		return nil, domain.ErrStaleStep
	}

	prompt := []rune(m.script.Prompts[state.Step/2])
	pos := len([]rune(state.Buffer))
	if pos >= len(prompt) {
		return nil, domain.ErrStaleStep
	}

	state.Buffer += string(prompt[pos])

	if pos+1 == len(prompt) {
		state.Typing = false
		return &domain.Schedule{Event: domain.Settle{Step: state.Step}, Delay: m.script.SettleDelay}, nil
	}
	return &domain.Schedule{Event: domain.EmitChar{Step: state.Step}, Delay: m.script.CharInterval}, nil
}

// settle commits the fully typed prompt and advances, as one transition.
// Nothing observes the committed line without the step move.
func (m *Machine) settle(state *domain.State, ev domain.Settle) (*domain.Schedule, error) {
	if ev.Step != state.Step || state.Typing {
		return nil, domain.ErrStaleStep
	}
	if state.Done() || state.Step%2 != 0 {
		return nil, domain.ErrStaleStep
	}

	state.PushLine(domain.LineSystem, m.script.Prompts[state.Step/2])
	state.Buffer = ""
	state.Step++
	// The new step is always odd: the visitor owns the line now.
	return nil, nil
}

// setInput wholesale-replaces the visitor's draft. Trimming happens at
// commit, never here, so internal whitespace survives editing.
func (m *Machine) setInput(state *domain.State, ev domain.SetInput) error {
	if state.Done() || state.Step%2 == 0 || state.Typing {
		return domain.ErrOutOfTurn
	}
	state.Buffer = ev.Text
	return nil
}

// submit commits the trimmed draft: user line appended, answer slot written,
// buffer cleared, step advanced. A blank draft refuses and changes nothing.
func (m *Machine) submit(state *domain.State) (*domain.Schedule, error) {
	if state.Done() || state.Step%2 == 0 || state.Typing {
		return nil, domain.ErrOutOfTurn
	}

	answer := strings.TrimSpace(state.Buffer)
	if answer == "" {
		return nil, domain.ErrEmptyAnswer
	}

	state.PushLine(domain.LineUser, answer)
	state.Answers[(state.Step-1)/2] = answer
	state.Buffer = ""
	state.Step++

	if state.Done() {
		return nil, nil
	}
	return &domain.Schedule{Event: domain.BeginPrompt{Step: state.Step}}, nil
}

// invoke fires the gate. The RUNNING latch is permanent; the handoff itself
// belongs to the host.
func (m *Machine) invoke(state *domain.State) error {
	if state.Launched {
		return domain.ErrAlreadyRunning
	}
	if state.Action() != domain.ActionEnabled {
		return domain.ErrNotReady
	}
	state.Launched = true
	return nil
}
