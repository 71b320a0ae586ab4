package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/kiosk/pkg/adapters/memory"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/persistence/middleware"
)

func TestRedactionMiddleware_MasksMatchingAnswers(t *testing.T) {
	// Setup: mask answers to prompts mentioning token or password
	underlyingStore := memory.NewStore()
	mw := middleware.NewRedactionMiddleware([]string{"(?i)token", "(?i)password"})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	sessionID := "redact-session"

	state := domain.NewState(sessionID, 3)
	state.PushLine(domain.LineSystem, "What is your name?")
	state.PushLine(domain.LineUser, "Ada")
	state.PushLine(domain.LineSystem, "Paste the API token:")
	state.PushLine(domain.LineUser, "tok-abc123")
	state.PushLine(domain.LineSystem, "Which region?")
	state.PushLine(domain.LineUser, "eu-west-1")
	state.Answers[0] = "Ada"
	state.Answers[1] = "tok-abc123"
	state.Answers[2] = "eu-west-1"
	state.Step = 6

	// 1. Save
	if err := secureStore.Save(ctx, sessionID, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Verify in-memory state is NOT modified (immutability check)
	if state.Answers[1] != "tok-abc123" || state.Transcript[3].Text != "tok-abc123" {
		t.Error("Middleware modified original state in memory!")
	}

	// 2. Load from underlying store (should be masked)
	storedState, err := underlyingStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}

	if storedState.Answers[0] != "Ada" {
		t.Error("Name answer shouldn't be masked")
	}
	if storedState.Answers[1] != "***" {
		t.Errorf("Token answer should be masked, got: %v", storedState.Answers[1])
	}
	if storedState.Answers[2] != "eu-west-1" {
		t.Error("Region answer shouldn't be masked")
	}

	// The user line answering the token prompt is masked; the prompt itself
	// and the other user lines are kept.
	if storedState.Transcript[2].Text != "Paste the API token:" {
		t.Error("Prompt text should be kept")
	}
	if storedState.Transcript[3].Text != "***" {
		t.Errorf("Token transcript line should be masked, got: %v", storedState.Transcript[3].Text)
	}
	if storedState.Transcript[1].Text != "Ada" {
		t.Error("Name transcript line shouldn't be masked")
	}
}

func TestRedactionMiddleware_MasksDraftBuffer(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw := middleware.NewRedactionMiddleware([]string{"(?i)token"})
	secureStore := mw(underlyingStore)

	ctx := context.Background()

	// Visitor is mid-answer on the token prompt (odd step, draft in buffer).
	state := domain.NewState("draft-session", 1)
	state.PushLine(domain.LineSystem, "Paste the API token:")
	state.Step = 1
	state.Buffer = "tok-partial"

	if err := secureStore.Save(ctx, "draft-session", state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	storedState, err := underlyingStore.Load(ctx, "draft-session")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if storedState.Buffer != "***" {
		t.Errorf("Draft for a sensitive prompt should be masked, got: %v", storedState.Buffer)
	}
}

func TestRedactionMiddleware_LoadPassesThrough(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw := middleware.NewRedactionMiddleware([]string{"(?i)token"})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	state := domain.NewState("s", 1)
	state.Answers[0] = "clear-text"
	if err := underlyingStore.Save(ctx, "s", state); err != nil {
		t.Fatal(err)
	}

	loaded, err := secureStore.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Answers[0] != "clear-text" {
		t.Error("Redaction is one-way; Load must return the stored state untouched")
	}
}
