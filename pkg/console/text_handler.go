package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/kiosk/internal/presentation/tui"
	"github.com/aretw0/kiosk/pkg/domain"
)

// TextHandler implements incremental terminal rendering. Committed transcript
// lines print exactly once; the line being auto-typed grows in place, one
// delta per frame, so the visitor watches the prompt appear character by
// character.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer
	Rich     bool // colorized glyphs, echo-aware answer suppression

	reader    *bufio.Reader
	inputChan chan inputResult
	startOnce sync.Once

	lastLine    int               // highest committed line ID printed
	activeStep  int               // step whose typing line is on screen, -1 when none
	activeRunes int               // runes of the active line already written
	inputStep   int               // last step the input glyph was printed for
	pendingEcho bool              // next committed answer is already on screen via terminal echo
	lastAction  domain.ActionState
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextRenderer configures the intro markdown renderer.
func WithTextRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithRichOutput toggles colorized output and terminal-echo awareness.
func WithRichOutput(rich bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Rich = rich
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer:     w,
		reader:     bufio.NewReader(r),
		activeStep: -1,
		inputStep:  -1,
		lastAction: domain.ActionIdle,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// Reset prepares the handler to render a new session from scratch. The input
// pump survives; watch mode reuses one handler across reloads so there is
// never more than one stdin reader.
func (h *TextHandler) Reset() {
	h.lastLine = 0
	h.activeStep = -1
	h.activeRunes = 0
	h.inputStep = -1
	h.pendingEcho = false
	h.lastAction = domain.ActionIdle
}

// pump moves reader lines onto a channel so ReadLine can honor context
// cancellation. The channel is unbuffered: lines queue inside the reader
// until the loop actually asks for one.
func (h *TextHandler) pump() {
	for {
		text, err := h.reader.ReadString('\n')

		if text != "" {
			h.inputChan <- inputResult{text: text}
		}

		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			// Backoff to prevent CPU spikes on persistent read failure.
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// Intro renders the script introduction, through the markdown renderer when
// one is configured.
func (h *TextHandler) Intro(ctx context.Context, markdown string) error {
	output := markdown
	if h.Renderer != nil {
		if rendered, err := h.Renderer(markdown); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(h.Writer, strings.TrimSpace(output))
	fmt.Fprintln(h.Writer)
	return nil
}

// Render draws one frame incrementally against the previous one.
func (h *TextHandler) Render(ctx context.Context, snap domain.Snapshot) error {
	for _, line := range snap.Transcript {
		if line.ID <= h.lastLine {
			continue
		}
		h.commitLine(line)
		h.lastLine = line.ID
	}

	switch snap.Phase {
	case domain.PhasePrompting:
		h.drawTyping(snap)
	case domain.PhaseAwaitingInput:
		if h.inputStep != snap.Step {
			fmt.Fprint(h.Writer, "> ")
			h.inputStep = snap.Step
		}
	case domain.PhaseDone:
		h.drawGate(snap)
	}
	return nil
}

// commitLine prints a freshly committed transcript line. A system line whose
// text is already on screen from typing just needs its newline; an answer the
// visitor typed themselves is already on screen via terminal echo.
func (h *TextHandler) commitLine(line domain.Line) {
	if line.Kind == domain.LineSystem {
		if h.activeStep >= 0 {
			fmt.Fprintln(h.Writer)
			h.activeStep = -1
			h.activeRunes = 0
			return
		}
		fmt.Fprintln(h.Writer, h.styleSystem(line.Text))
		return
	}

	if h.pendingEcho {
		h.pendingEcho = false
		return
	}
	fmt.Fprintln(h.Writer, "> "+line.Text)
}

// drawTyping appends the newly typed runes of the active prompt. A shrinking
// buffer (a retyped prompt after resume) forces a carriage-return redraw.
func (h *TextHandler) drawTyping(snap domain.Snapshot) {
	if h.activeStep != snap.Step {
		if h.activeStep >= 0 {
			fmt.Fprintln(h.Writer)
		}
		h.activeStep = snap.Step
		h.activeRunes = 0
	}

	runes := []rune(snap.Buffer)
	if len(runes) < h.activeRunes {
		// Blank the stale tail before retyping from the left margin.
		fmt.Fprint(h.Writer, "\r"+strings.Repeat(" ", h.activeRunes)+"\r"+h.styleSystem(string(runes)))
		h.activeRunes = len(runes)
		return
	}
	if delta := string(runes[h.activeRunes:]); delta != "" {
		fmt.Fprint(h.Writer, h.styleSystem(delta))
	}
	h.activeRunes = len(runes)
}

// drawGate prints launch gate transitions once each.
func (h *TextHandler) drawGate(snap domain.Snapshot) {
	if snap.Action == h.lastAction {
		return
	}
	h.lastAction = snap.Action

	glyph := h.gateGlyph(snap.Action)
	switch snap.Action {
	case domain.ActionEnabled:
		fmt.Fprintf(h.Writer, "\n%s Press Enter to launch.\n", glyph)
	case domain.ActionRunning:
		fmt.Fprintf(h.Writer, "%s\n", glyph)
	}
}

func (h *TextHandler) gateGlyph(state domain.ActionState) string {
	if h.Rich {
		return tui.Gate(state)
	}
	switch state {
	case domain.ActionRunning:
		return "[ running ]"
	default:
		return "[ run ]"
	}
}

func (h *TextHandler) styleSystem(s string) string {
	if h.Rich {
		return tui.SystemText(s)
	}
	return s
}

// ReadLine blocks for one sanitized line. Rejected input prompts a retry
// instead of failing the session.
func (h *TextHandler) ReadLine(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			text := strings.TrimRight(res.text, "\r\n")

			clean, err := SanitizeInput(text)
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n> ", err)
				continue
			}
			if h.Rich {
				// The terminal already echoed this line under the glyph.
				h.pendingEcho = true
			}
			return clean, nil
		}
	}
}

// Notify presents a meta-message outside the transcript flow.
func (h *TextHandler) Notify(ctx context.Context, msg string) error {
	fmt.Fprintf(h.Writer, "\n[kiosk] %s\n", msg)
	return nil
}
