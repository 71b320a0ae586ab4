package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/kiosk/pkg/adapters/memory"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/persistence/middleware"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func answeredState(id string) *domain.State {
	state := domain.NewState(id, 2)
	state.PushLine(domain.LineSystem, "What is the API token?")
	state.PushLine(domain.LineUser, "tok-abc123")
	state.Answers[0] = "tok-abc123"
	state.Step = 2
	return state
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	// Setup
	underlyingStore := memory.NewStore()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	sessionID := "test-session"
	originalState := answeredState(sessionID)

	// 1. Save
	if err := secureStore.Save(ctx, sessionID, originalState); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// 2. Verify underlying store directly (should be sealed)
	storedState, err := underlyingStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if len(storedState.Transcript) != 0 || len(storedState.Answers) != 0 {
		t.Fatalf("Expected answers and transcript to be hidden, found: %+v", storedState)
	}
	if storedState.Sealed == "" {
		t.Fatal("Expected sealed envelope field to be set")
	}
	if storedState.Step != 2 {
		t.Errorf("Envelope should keep progress readable, got step %d", storedState.Step)
	}

	// 3. Load via middleware (should be decrypted)
	loadedState, err := secureStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loadedState.Answers[0] != "tok-abc123" {
		t.Errorf("Expected 'tok-abc123', got %v", loadedState.Answers[0])
	}
	if len(loadedState.Transcript) != 2 {
		t.Errorf("Expected 2 transcript lines, got %d", len(loadedState.Transcript))
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	// Setup
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	// Create middleware with OLD key to save initial state
	mwOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	secureStoreOld := mwOld(underlyingStore)

	ctx := context.Background()
	sessionID := "rotation-session"

	// 1. Save with OLD key
	if err := secureStoreOld.Save(ctx, sessionID, answeredState(sessionID)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// 2. Load with NEW key (active) + OLD key (fallback)
	mwNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	secureStoreNew := mwNew(underlyingStore)

	loadedState, err := secureStoreNew.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if loadedState.Answers[0] != "tok-abc123" {
		t.Error("Decryption with fallback key failed")
	}

	// 3. Save again (now sealed with NEW key)
	if err := secureStoreNew.Save(ctx, sessionID, loadedState); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}

	// 4. Verify we CANNOT load with just the OLD key anymore
	_, err = secureStoreOld.Load(ctx, sessionID)
	if err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlainState(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()

	// A plain, unsealed state sneaks into the backend.
	if err := underlyingStore.Save(ctx, "plain", answeredState("plain")); err != nil {
		t.Fatal(err)
	}

	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)

	if _, err := secureStore.Load(ctx, "plain"); err == nil {
		t.Error("Expected fail-secure error for a state without an envelope")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}
