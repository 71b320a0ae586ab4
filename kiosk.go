package kiosk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/loam"

	"github.com/aretw0/kiosk/internal/schedule"
	"github.com/aretw0/kiosk/internal/sequence"
	loamAdapter "github.com/aretw0/kiosk/pkg/adapters/loam"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/ports"
)

// Session is the high-level entry point for the Kiosk library. It wraps the
// pure sequence machine with the things the machine deliberately does not
// own: a scheduler for the auto-typing timers, a mutex serializing event
// application, snapshot fan-out, persistence, and the launch handoff.
type Session struct {
	mu      sync.Mutex
	machine *sequence.Machine
	state   *domain.State

	scheduler ports.Scheduler
	pending   ports.TimerHandle // at most one armed timer, cancelled before re-arming

	loader   ports.ScriptLoader
	script   *domain.Script
	store    ports.TranscriptStore
	launcher ports.Launcher
	hooks    domain.Hooks
	logger   *slog.Logger

	subs    map[int]chan domain.Snapshot
	nextSub int

	sessionID string
	restored  *domain.State
	started   bool
	closed    bool

	done     chan struct{}
	doneOnce sync.Once

	promptBegan time.Time

	// Name labels the session's script source (directory or document name).
	Name string
}

var _ ports.SessionControl = (*Session)(nil)

// New initializes a new Kiosk session.
// By default, scriptPath names a Loam document: either a directory holding an
// "intake.md" script or a direct path to a ".md" file. The WithScript and
// WithLoader options bypass Loam entirely, in which case scriptPath may be
// empty and only serves as a label.
func New(scriptPath string, opts ...Option) (*Session, error) {
	s := &Session{
		subs: make(map[int]chan domain.Snapshot),
		done: make(chan struct{}),
	}

	// Apply options first to check if a script or loader is provided.
	for _, opt := range opts {
		opt(s)
	}

	if s.script == nil && s.loader == nil {
		if scriptPath == "" {
			return nil, fmt.Errorf("scriptPath is required when no script or loader is provided")
		}

		dir, docID := splitScriptPath(scriptPath)
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		s.Name = docID

		// Strict mode keeps frontmatter numerics unambiguous; read-only mode
		// keeps Loam from sandboxing the directory. The session never writes
		// script documents.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		s.loader = loamAdapter.New(repo, docID)
	} else if s.Name == "" && scriptPath != "" {
		s.Name = filepath.Base(scriptPath)
	}

	if s.script == nil {
		script, err := s.loader.Load(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load script: %w", err)
		}
		s.script = script
	}

	machine, err := sequence.New(s.script)
	if err != nil {
		return nil, err
	}
	s.machine = machine

	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.Name != "" {
		s.logger = s.logger.With("script", s.Name)
	}
	if s.scheduler == nil {
		s.scheduler = schedule.New()
	}
	if s.sessionID == "" {
		s.sessionID = fmt.Sprintf("kiosk-%d", time.Now().UnixNano())
	}

	if s.restored != nil {
		if err := machine.Restore(s.restored); err != nil {
			return nil, err
		}
		s.state = s.restored
		s.sessionID = s.restored.ID
	} else {
		s.state = machine.NewState(s.sessionID)
	}

	return s, nil
}

// splitScriptPath resolves a user-supplied path into a Loam directory and a
// document ID. A ".md" suffix addresses one document; anything else is a
// directory holding the default "intake" document.
func splitScriptPath(path string) (dir, docID string) {
	if strings.HasSuffix(path, ".md") {
		return filepath.Dir(path), strings.TrimSuffix(filepath.Base(path), ".md")
	}
	return path, "intake"
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.sessionID
}

// Script returns the validated script driving this session.
func (s *Session) Script() *domain.Script {
	return s.machine.Script()
}

// Start sets the session in motion. For a fresh state the first prompt begins
// auto-typing immediately; a restored state picks up where it left off, with
// an interrupted prompt retyped from its first character.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSessionClosed
	}
	if s.started {
		return fmt.Errorf("session %s already started", s.sessionID)
	}
	s.started = true

	// A state parked mid-prompt has a half-typed buffer that never committed.
	// Typing restarts clean; committed lines are untouched.
	if !s.state.Done() && s.state.Phase() == domain.PhasePrompting {
		s.state.Typing = false
		s.state.Buffer = ""
	}

	s.logger.Info("Session started", "session_id", s.sessionID, "step", s.state.Step)
	s.emitStarted(ctx)

	if sched := s.machine.Start(s.state); sched != nil {
		s.armLocked(sched)
	} else if s.state.Done() {
		s.finishLocked()
	}
	s.persistLocked(ctx)
	s.broadcastLocked()
	return nil
}

// SetInput wholesale-replaces the visitor's draft for the current prompt.
func (s *Session) SetInput(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSessionClosed
	}
	if err := s.applyLocked(context.Background(), domain.SetInput{Text: text}); err != nil {
		s.emitRefused(context.Background(), "set_input", err)
		return err
	}
	return nil
}

// Submit commits the current draft as the answer to the current prompt.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSessionClosed
	}
	if err := s.applyLocked(context.Background(), domain.Submit{}); err != nil {
		s.emitRefused(context.Background(), "submit", err)
		return err
	}
	return nil
}

// Launch fires the gate. The session latches into its running state before
// the handoff; a launcher error surfaces to the caller but never rewinds the
// latch. Recovery from a failed handoff belongs to the host.
func (s *Session) Launch(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if err := s.applyLocked(ctx, domain.Invoke{}); err != nil {
		s.emitRefused(ctx, "launch", err)
		s.mu.Unlock()
		return err
	}

	req := domain.NewLaunchRequest(s.machine.Script(), s.state)
	if s.hooks.OnLaunched != nil {
		s.hooks.OnLaunched(ctx, &domain.LaunchEvent{SessionID: s.sessionID, Answers: req.Answers})
	}
	s.logger.Info("Launch gate fired", "session_id", s.sessionID, "answers", len(req.Answers))
	s.persistLocked(ctx)
	launcher := s.launcher
	s.mu.Unlock()

	if launcher == nil {
		s.logger.Debug("Launch: no launcher bound, handoff skipped")
		return nil
	}
	if err := launcher.Launch(ctx, req); err != nil {
		s.logger.Error("Launch handoff failed", "err", err, "session_id", s.sessionID)
		return fmt.Errorf("launch handoff: %w", err)
	}
	return nil
}

// Snapshot returns the current read model.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Snapshot(s.state)
}

// Subscribe registers a snapshot feed primed with the current state. Slow
// consumers lose intermediate frames, never the latest one.
func (s *Session) Subscribe() (<-chan domain.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		ch := make(chan domain.Snapshot)
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	ch := make(chan domain.Snapshot, 8)
	ch <- s.machine.Snapshot(s.state)
	if s.subs == nil {
		s.subs = make(map[int]chan domain.Snapshot)
	}
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Done is closed when the interview reaches its terminal step or the session
// is closed early.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close cancels any armed timer and tears down subscriptions. A cancelled
// timer that already fired is dropped by the stale-step guard.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.finishLocked()
	s.logger.Debug("Session closed", "session_id", s.sessionID)
	return nil
}

// dispatch is the timer path: scheduled events land here. Stale fires (the
// step moved on, or the session closed under the timer) are dropped without
// touching state.
func (s *Session) dispatch(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if err := s.applyLocked(context.Background(), ev); err != nil {
		s.logger.Debug("Scheduled event dropped", "err", err, "session_id", s.sessionID)
	}
}

// applyLocked runs one event through the machine and owns everything that
// follows a successful transition: hooks, persistence, re-arming, fan-out.
// Callers hold s.mu. On error the state and the armed timer are untouched.
func (s *Session) applyLocked(ctx context.Context, ev domain.Event) error {
	prevStep := s.state.Step
	prevLines := len(s.state.Transcript)

	sched, err := s.machine.Apply(s.state, ev)
	if err != nil {
		return err
	}
	s.state.UpdatedAt = time.Now().UTC()

	if _, ok := ev.(domain.BeginPrompt); ok {
		s.promptBegan = time.Now()
	}

	committed := len(s.state.Transcript) > prevLines
	if committed && s.hooks.OnLineCommitted != nil {
		line := s.state.Transcript[len(s.state.Transcript)-1]
		evt := &domain.LineEvent{SessionID: s.sessionID, Line: line, Step: prevStep}
		if line.Kind == domain.LineSystem && !s.promptBegan.IsZero() {
			evt.Elapsed = time.Since(s.promptBegan)
		}
		s.hooks.OnLineCommitted(ctx, evt)
	}
	if s.state.Step != prevStep {
		if s.hooks.OnStepAdvanced != nil {
			s.hooks.OnStepAdvanced(ctx, &domain.StepEvent{
				SessionID: s.sessionID,
				From:      prevStep,
				To:        s.state.Step,
				Phase:     s.state.Phase(),
			})
		}
		if s.state.Done() {
			s.finishLocked()
		}
	}

	// Commits are the durability boundary; keystrokes and typed characters
	// are not worth a round-trip each.
	if committed {
		s.persistLocked(ctx)
	}

	s.armLocked(sched)
	s.broadcastLocked()
	return nil
}

// armLocked replaces the outstanding timer. Cancelling before arming keeps
// the one-timer invariant even when a transition supersedes its own schedule.
func (s *Session) armLocked(sched *domain.Schedule) {
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
	if sched == nil || s.closed {
		return
	}
	ev := sched.Event
	s.pending = s.scheduler.Schedule(sched.Delay, func() {
		s.dispatch(ev)
	})
}

func (s *Session) persistLocked(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.sessionID, s.state.Clone()); err != nil {
		s.logger.Error("State save failed", "err", err, "session_id", s.sessionID)
	}
}

// broadcastLocked fans the current snapshot out to subscribers. A full
// channel loses its oldest frame to make room, so the latest frame is always
// deliverable and a quiet period can never strand a consumer on stale data.
func (s *Session) broadcastLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.machine.Snapshot(s.state)
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (s *Session) finishLocked() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) emitStarted(ctx context.Context) {
	if s.hooks.OnStarted != nil {
		s.hooks.OnStarted(ctx, &domain.StepEvent{
			SessionID: s.sessionID,
			From:      s.state.Step,
			To:        s.state.Step,
			Phase:     s.state.Phase(),
		})
	}
}

func (s *Session) emitRefused(ctx context.Context, op string, err error) {
	s.logger.Debug("Operation refused", "op", op, "err", err, "session_id", s.sessionID)
	if s.hooks.OnRefused != nil {
		s.hooks.OnRefused(ctx, &domain.RefusalEvent{SessionID: s.sessionID, Op: op, Err: err})
	}
}
