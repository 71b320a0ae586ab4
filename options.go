package kiosk

import (
	"log/slog"

	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/ports"
)

// Option defines a functional option for configuring a Session.
type Option func(*Session)

// WithScript injects the interview script directly, bypassing the default
// Loam initialization.
func WithScript(script *domain.Script) Option {
	return func(s *Session) {
		s.script = script
	}
}

// WithLoader injects a custom ScriptLoader, bypassing the default Loam
// initialization.
func WithLoader(l ports.ScriptLoader) Option {
	return func(s *Session) {
		s.loader = l
	}
}

// WithSessionID fixes the session identifier instead of generating one.
func WithSessionID(id string) Option {
	return func(s *Session) {
		s.sessionID = id
	}
}

// WithState resumes from a previously stored state. The state must match the
// script's prompt count; an interrupted prompt is retyped from scratch on
// Start, committed lines and answers are kept as stored.
func WithState(state *domain.State) Option {
	return func(s *Session) {
		s.restored = state
	}
}

// WithScheduler substitutes the timer source. Tests use a manually pumped
// scheduler here to make auto-typing deterministic.
func WithScheduler(sched ports.Scheduler) Option {
	return func(s *Session) {
		s.scheduler = sched
	}
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithStore persists the session state at every commit boundary.
func WithStore(store ports.TranscriptStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithLauncher binds the gate action to a launcher. Without one, Launch
// still latches the running state and the handoff is skipped.
func WithLauncher(l ports.Launcher) Option {
	return func(s *Session) {
		s.launcher = l
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}
