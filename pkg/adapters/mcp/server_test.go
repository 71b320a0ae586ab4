package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aretw0/kiosk"
	"github.com/aretw0/kiosk/internal/testutils"
	"github.com/aretw0/kiosk/pkg/console"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/ports"
)

func newTestServer(sched ports.Scheduler, prompts ...string) *Server {
	factory := func(id string) (ports.SessionControl, error) {
		return kiosk.New("",
			kiosk.WithSessionID(id),
			kiosk.WithScript(testutils.Script(prompts...)),
			kiosk.WithScheduler(sched),
		)
	}
	return NewServer(factory)
}

func args(kv ...string) map[string]interface{} {
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func TestToolWalkthrough(t *testing.T) {
	ctx := context.Background()
	sched := testutils.NewManualScheduler()
	s := newTestServer(sched, "Name?")
	defer s.Close()

	resp, err := s.handleBegin(ctx, mcp.CallToolRequest{}, args("session_id", "m1"))
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if resp.Snapshot.SessionID != "m1" {
		t.Errorf("expected session m1, got %q", resp.Snapshot.SessionID)
	}
	if resp.Snapshot.Phase != domain.PhasePrompting {
		t.Errorf("expected prompting phase right after begin, got %s", resp.Snapshot.Phase)
	}

	if _, err := s.handleBegin(ctx, mcp.CallToolRequest{}, args("session_id", "m1")); err == nil {
		t.Error("duplicate begin should fail")
	}

	// The prompt is still typing: drafts are out of turn.
	if _, err := s.handleType(ctx, mcp.CallToolRequest{}, args("session_id", "m1", "text", "early")); !errors.Is(err, domain.ErrOutOfTurn) {
		t.Errorf("expected ErrOutOfTurn while typing, got %v", err)
	}

	sched.RunUntilIdle(100)

	resp, err = s.handleSnapshot(ctx, mcp.CallToolRequest{}, args("session_id", "m1"))
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if resp.Snapshot.Phase != domain.PhaseAwaitingInput {
		t.Fatalf("expected awaiting_input after pumping, got %s", resp.Snapshot.Phase)
	}

	resp, err = s.handleType(ctx, mcp.CallToolRequest{}, args("session_id", "m1", "text", "  Ada  "))
	if err != nil {
		t.Fatalf("type: %v", err)
	}
	if resp.Snapshot.Buffer != "  Ada  " {
		t.Errorf("draft not stored verbatim: %q", resp.Snapshot.Buffer)
	}

	resp, err = s.handleSubmit(ctx, mcp.CallToolRequest{}, args("session_id", "m1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Snapshot.Phase != domain.PhaseDone {
		t.Errorf("expected done after final submit, got %s", resp.Snapshot.Phase)
	}
	if resp.Snapshot.Action != domain.ActionEnabled {
		t.Errorf("expected enabled gate, got %s", resp.Snapshot.Action)
	}
	if len(resp.Snapshot.Answers) != 1 || resp.Snapshot.Answers[0] != "Ada" {
		t.Errorf("unexpected answers: %v", resp.Snapshot.Answers)
	}

	resp, err = s.handleLaunch(ctx, mcp.CallToolRequest{}, args("session_id", "m1"))
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if resp.Snapshot.Action != domain.ActionRunning {
		t.Errorf("expected running gate, got %s", resp.Snapshot.Action)
	}
	if _, err := s.handleLaunch(ctx, mcp.CallToolRequest{}, args("session_id", "m1")); !errors.Is(err, domain.ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning on relaunch, got %v", err)
	}

	end, err := s.handleEnd(ctx, mcp.CallToolRequest{}, args("session_id", "m1"))
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !end.Closed {
		t.Error("expected closed confirmation")
	}
	if _, err := s.handleSnapshot(ctx, mcp.CallToolRequest{}, args("session_id", "m1")); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after end, got %v", err)
	}
}

func TestToolValidation(t *testing.T) {
	ctx := context.Background()
	sched := testutils.NewManualScheduler()
	s := newTestServer(sched, "Name?")
	defer s.Close()

	if _, err := s.handleSnapshot(ctx, mcp.CallToolRequest{}, args()); err == nil || !strings.Contains(err.Error(), "session_id") {
		t.Errorf("expected missing-argument error, got %v", err)
	}
	if _, err := s.handleSnapshot(ctx, mcp.CallToolRequest{}, args("session_id", "ghost")); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	if _, err := s.handleBegin(ctx, mcp.CallToolRequest{}, args("session_id", "v1")); err != nil {
		t.Fatalf("begin: %v", err)
	}
	sched.RunUntilIdle(100)

	big := strings.Repeat("a", 5000)
	if _, err := s.handleType(ctx, mcp.CallToolRequest{}, args("session_id", "v1", "text", big)); !errors.Is(err, console.ErrInputTooLarge) {
		t.Errorf("expected ErrInputTooLarge, got %v", err)
	}
}

func TestGeneratedSessionID(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(testutils.NewManualScheduler(), "Name?")
	defer s.Close()

	resp, err := s.handleBegin(ctx, mcp.CallToolRequest{}, args())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !strings.HasPrefix(resp.Snapshot.SessionID, "mcp-") {
		t.Errorf("expected generated mcp- ID, got %q", resp.Snapshot.SessionID)
	}
	if got := s.sessionIDs(); len(got) != 1 {
		t.Errorf("expected one live session, got %v", got)
	}
}
