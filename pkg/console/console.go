package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/kiosk/internal/presentation/tui"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/ports"
)

// Console drives one session against a terminal: it renders the snapshot
// feed through a Handler and turns visitor lines into draft-and-submit
// operations. Input is pulled one line at a time, only when the session is
// actually awaiting it, so piped input cannot race the auto-typing.
type Console struct {
	handler  Handler
	logger   *slog.Logger
	input    io.Reader
	output   io.Writer
	renderer ContentRenderer
	rich     *bool // nil auto-detects from the output terminal
	jsonMode bool
	banner   bool

	bannerShown bool
}

// New creates a Console bound to stdin/stdout by default.
func New(opts ...Option) *Console {
	c := &Console{
		input:  os.Stdin,
		output: os.Stdout,
		banner: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Run starts the session and drives it until the interview completes and the
// gate fires, input closes, or ctx is cancelled.
func (c *Console) Run(ctx context.Context, session ports.SessionControl) error {
	handler := c.resolveHandler()
	if r, ok := handler.(interface{ Reset() }); ok {
		r.Reset()
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()
	runCtx := signals.Context()

	if c.banner && !c.bannerShown && c.output == os.Stdout && c.richMode() {
		tui.PrintBanner()
		c.bannerShown = true
	}

	frames, unsubscribe := session.Subscribe()
	defer unsubscribe()

	if err := session.Start(runCtx); err != nil {
		return err
	}

	lines := make(chan inputResult)
	readRequests := make(chan struct{}, 1)
	defer close(readRequests)
	go func() {
		for range readRequests {
			text, err := handler.ReadLine(runCtx)
			select {
			case lines <- inputResult{text: text, err: err}:
			case <-runCtx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	requestRead := func() {
		select {
		case readRequests <- struct{}{}:
		default:
		}
	}

	var last domain.Snapshot
	introShown := false
	requestedFor := -1 // step a line is already being read for

	for {
		select {
		case <-runCtx.Done():
			handler.Notify(context.Background(), "Interrupted.")
			return runCtx.Err()

		case snap, ok := <-frames:
			fmt.Fprintf(os.Stderr, "DBG frame ok=%v step=%d phase=%s action=%s buf=%q reqFor=%d\n", ok, snap.Step, snap.Phase, snap.Action, snap.Buffer, requestedFor)
			if !ok {
				fmt.Fprintf(os.Stderr, "DBG EXIT frames-closed\n")
				return nil
			}
			if !introShown {
				if snap.Intro != "" {
					handler.Intro(runCtx, snap.Intro)
				}
				introShown = true
			}
			if err := handler.Render(runCtx, snap); err != nil {
				return fmt.Errorf("render error: %w", err)
			}
			last = snap
			if last.Action == domain.ActionRunning {
				// The gate fired; the final frame is on screen.
				fmt.Fprintf(os.Stderr, "DBG EXIT running-rendered\n")
				return nil
			}
			if c.needsInput(last) && requestedFor != last.Step {
				requestedFor = last.Step
				fmt.Fprintf(os.Stderr, "DBG requestRead(frames) step=%d\n", requestedFor)
				requestRead()
			}

		case res := <-lines:
			fmt.Fprintf(os.Stderr, "DBG line text=%q err=%v reqFor=%d lastStep=%d lastPhase=%s lastAction=%s\n", res.text, res.err, requestedFor, last.Step, last.Phase, last.Action)
			if res.err != nil {
				signals.CheckRace()
				if runCtx.Err() != nil {
					continue // the ctx case will report it
				}
				if errors.Is(res.err, io.EOF) {
					c.logger.Debug("Console input closed")
					fmt.Fprintf(os.Stderr, "DBG EXIT eof\n")
					return nil
				}
				return fmt.Errorf("input error: %w", res.err)
			}
			if c.dispatch(runCtx, session, handler, last, res.text) {
				requestedFor = -1
			}
			last = session.Snapshot()
			if c.needsInput(last) && requestedFor != last.Step {
				requestedFor = last.Step
				fmt.Fprintf(os.Stderr, "DBG requestRead(lines) step=%d\n", requestedFor)
				requestRead()
			}
		}
	}
}

// needsInput reports whether the session is waiting on the visitor: an
// answer during the interview, or the launch keypress at the gate.
func (c *Console) needsInput(snap domain.Snapshot) bool {
	return snap.Phase == domain.PhaseAwaitingInput ||
		(snap.Phase == domain.PhaseDone && snap.Action == domain.ActionEnabled)
}

// dispatch routes one visitor line by the current phase. It returns true
// when the line was consumed without advancing the session, so the caller
// re-arms the read.
func (c *Console) dispatch(ctx context.Context, session ports.SessionControl, handler Handler, last domain.Snapshot, text string) bool {
	switch {
	case last.Phase == domain.PhaseAwaitingInput:
		if err := session.SetInput(text); err != nil {
			c.notifyRefusal(ctx, handler, err)
			return true
		}
		if err := session.Submit(); err != nil {
			c.notifyRefusal(ctx, handler, err)
			return true
		}
		return false

	case last.Phase == domain.PhaseDone && last.Action == domain.ActionEnabled:
		t := strings.TrimSpace(text)
		if t != "" && !strings.EqualFold(t, "run") {
			handler.Notify(ctx, "Press Enter (or type 'run') to launch.")
			return true
		}
		if err := session.Launch(ctx); err != nil {
			handler.Notify(ctx, "Launch failed: "+err.Error())
			return !errors.Is(err, domain.ErrAlreadyRunning)
		}
		return false

	default:
		handler.Notify(ctx, "One moment, the prompt is still typing.")
		return true
	}
}

func (c *Console) notifyRefusal(ctx context.Context, handler Handler, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyAnswer):
		handler.Notify(ctx, "An answer is required.")
	case errors.Is(err, domain.ErrOutOfTurn):
		handler.Notify(ctx, "One moment, the prompt is still typing.")
	default:
		handler.Notify(ctx, err.Error())
	}
}

// resolveHandler ensures a valid Handler is set, memoizing it so repeated
// Run calls share one input pump.
func (c *Console) resolveHandler() Handler {
	if c.handler != nil {
		return c.handler
	}
	if c.jsonMode {
		c.handler = NewJSONHandler(c.input, c.output)
		return c.handler
	}

	rich := c.richMode()
	th := NewTextHandler(c.input, c.output, WithRichOutput(rich))
	if c.renderer != nil {
		th.Renderer = c.renderer
	} else if rich {
		th.Renderer = tui.NewRenderer()
	}
	c.handler = th
	return th
}

// richMode reports whether output should use colors and echo awareness.
func (c *Console) richMode() bool {
	if c.rich != nil {
		return *c.rich
	}
	if f, ok := c.output.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
