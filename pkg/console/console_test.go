package console_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/kiosk"
	"github.com/aretw0/kiosk/internal/testutils"
	"github.com/aretw0/kiosk/pkg/console"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/ports"
)

type captureLauncher struct {
	mu   sync.Mutex
	reqs []domain.LaunchRequest
}

func (l *captureLauncher) Launch(ctx context.Context, req domain.LaunchRequest) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, req)
	return nil
}

func (l *captureLauncher) calls() []domain.LaunchRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.LaunchRequest(nil), l.reqs...)
}

func newSession(t *testing.T, launcher ports.Launcher, prompts ...string) *kiosk.Session {
	t.Helper()
	sess, err := kiosk.New("",
		kiosk.WithScript(testutils.Script(prompts...)),
		kiosk.WithSessionID("console-test"),
		kiosk.WithLauncher(launcher),
	)
	if err != nil {
		t.Fatalf("kiosk.New failed: %v", err)
	}
	return sess
}

// runConsole drives Run on its own goroutine and joins it with a timeout, so
// a wedged loop fails the test instead of hanging the suite.
func runConsole(t *testing.T, ctx context.Context, c *console.Console, sess *kiosk.Session) error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, sess)
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("console run timed out")
		return nil
	}
}

func TestConsole_RunInterview(t *testing.T) {
	launcher := &captureLauncher{}
	sess := newSession(t, launcher, "Name?", "Favorite color?")
	defer sess.Close()

	// Two answers, then a bare Enter at the gate.
	in := strings.NewReader("  Ada Lovelace  \nBlue\n\n")
	out := &bytes.Buffer{}
	c := console.New(console.WithIO(in, out))

	if err := runConsole(t, context.Background(), c, sess); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Name?", "Favorite color?", "[ run ] Press Enter to launch.", "[ running ]"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	calls := launcher.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 launch, got %d", len(calls))
	}
	wantAnswers := []string{"Ada Lovelace", "Blue"}
	if len(calls[0].Answers) != len(wantAnswers) {
		t.Fatalf("expected answers %v, got %v", wantAnswers, calls[0].Answers)
	}
	for i, want := range wantAnswers {
		if calls[0].Answers[i] != want {
			t.Errorf("answer %d: expected %q, got %q", i, want, calls[0].Answers[i])
		}
	}
}

func TestConsole_EmptyAnswerRetry(t *testing.T) {
	launcher := &captureLauncher{}
	sess := newSession(t, launcher, "Name?")
	defer sess.Close()

	// A bare Enter at the prompt is refused; the next line answers.
	in := strings.NewReader("\nBob\n\n")
	out := &bytes.Buffer{}
	c := console.New(console.WithIO(in, out))

	if err := runConsole(t, context.Background(), c, sess); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !strings.Contains(out.String(), "An answer is required.") {
		t.Errorf("expected refusal notice, got:\n%s", out.String())
	}
	calls := launcher.calls()
	if len(calls) != 1 || len(calls[0].Answers) != 1 || calls[0].Answers[0] != "Bob" {
		t.Errorf("unexpected launch calls: %+v", calls)
	}
}

func TestConsole_GateRejectsOtherText(t *testing.T) {
	launcher := &captureLauncher{}
	sess := newSession(t, launcher, "Name?")
	defer sess.Close()

	// "status" is not a launch keyword; "run" is, in any case.
	in := strings.NewReader("Bob\nstatus\nRUN\n")
	out := &bytes.Buffer{}
	c := console.New(console.WithIO(in, out))

	if err := runConsole(t, context.Background(), c, sess); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !strings.Contains(out.String(), "Press Enter (or type 'run') to launch.") {
		t.Errorf("expected gate hint, got:\n%s", out.String())
	}
	if len(launcher.calls()) != 1 {
		t.Fatalf("expected exactly 1 launch, got %d", len(launcher.calls()))
	}
}

func TestConsole_InterruptedByContext(t *testing.T) {
	launcher := &captureLauncher{}
	sess := newSession(t, launcher, "Name?")
	defer sess.Close()

	// A pipe that never delivers keeps the console waiting on the visitor.
	pr, pw := io.Pipe()
	defer pw.Close()
	out := &bytes.Buffer{}
	c := console.New(console.WithIO(pr, out))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, sess)
	}()

	// Let the first prompt finish typing before pulling the plug.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("console did not stop on cancellation")
	}

	if !strings.Contains(out.String(), "Interrupted.") {
		t.Errorf("expected interruption notice, got:\n%s", out.String())
	}
	if len(launcher.calls()) != 0 {
		t.Errorf("launcher must not fire on interruption")
	}
}

func TestConsole_JSONMode(t *testing.T) {
	launcher := &captureLauncher{}
	sess := newSession(t, launcher, "Name?")
	defer sess.Close()

	in := strings.NewReader("\"Ada\"\n\n")
	out := &bytes.Buffer{}
	c := console.New(console.WithIO(in, out), console.WithJSONLines())

	if err := runConsole(t, context.Background(), c, sess); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	dec := json.NewDecoder(out)
	var frames []console.Frame
	for dec.More() {
		var f console.Frame
		if err := dec.Decode(&f); err != nil {
			t.Fatalf("invalid frame: %v", err)
		}
		frames = append(frames, f)
	}
	if len(frames) == 0 {
		t.Fatal("no frames emitted")
	}

	sawAwaiting := false
	for _, f := range frames {
		if f.Event == "snapshot" && f.Snapshot != nil && f.Snapshot.Phase == domain.PhaseAwaitingInput {
			sawAwaiting = true
		}
	}
	if !sawAwaiting {
		t.Error("expected an awaiting_input frame")
	}

	final := frames[len(frames)-1]
	if final.Snapshot == nil || final.Snapshot.Action != domain.ActionRunning {
		t.Errorf("expected final frame to be running, got %+v", final)
	}
	if len(launcher.calls()) != 1 {
		t.Fatalf("expected 1 launch, got %d", len(launcher.calls()))
	}
}

func TestConsole_EOFAbandons(t *testing.T) {
	launcher := &captureLauncher{}
	sess := newSession(t, launcher, "Name?", "Favorite color?")
	defer sess.Close()

	// Input dries up after the first answer; the run ends quietly.
	in := strings.NewReader("Ada\n")
	out := &bytes.Buffer{}
	c := console.New(console.WithIO(in, out))

	if err := runConsole(t, context.Background(), c, sess); err != nil {
		t.Fatalf("expected clean exit on EOF, got %v", err)
	}
	if len(launcher.calls()) != 0 {
		t.Errorf("launcher must not fire on abandoned session")
	}
}
