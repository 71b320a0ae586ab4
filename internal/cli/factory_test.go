package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/kiosk/internal/logging"
	"github.com/aretw0/kiosk/pkg/domain"
)

func seedScriptDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	doc := `---
title: Factory intake
prompts:
  - "Name?"
  - "Team?"
---
Welcome.`
	if err := os.WriteFile(filepath.Join(dir, "intake.md"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestBuildFactory_CreatesSessions(t *testing.T) {
	scriptDir := seedScriptDir(t)
	factory, err := BuildFactory(FactoryOptions{
		ScriptPath: scriptDir,
		StorePath:  t.TempDir(),
		Logger:     logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("BuildFactory failed: %v", err)
	}
	defer factory.Close()

	sess, err := factory.NewSession("web-1")
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer sess.Close()

	snap := sess.Snapshot()
	if snap.Title != "Factory intake" {
		t.Errorf("unexpected title %q", snap.Title)
	}
	if snap.Phase != domain.PhasePrompting || snap.Step != 0 {
		t.Errorf("fresh session should park before the first prompt, got %+v", snap)
	}
}

func TestBuildFactory_RestoresPersistedState(t *testing.T) {
	scriptDir := seedScriptDir(t)
	storeDir := t.TempDir()
	logger := logging.NewNop()

	store, closeStore, err := BuildStore(StoreOptions{Path: storeDir}, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()

	// Park a session mid-interview: first prompt answered, second pending.
	state := domain.NewState("web-9", 2)
	state.PushLine(domain.LineSystem, "Name?")
	state.PushLine(domain.LineUser, "Ada")
	state.Answers[0] = "Ada"
	state.Step = 2
	if err := store.Save(context.Background(), "web-9", state); err != nil {
		t.Fatal(err)
	}

	factory, err := BuildFactory(FactoryOptions{
		ScriptPath: scriptDir,
		StorePath:  storeDir,
		Logger:     logger,
	})
	if err != nil {
		t.Fatalf("BuildFactory failed: %v", err)
	}
	defer factory.Close()

	sess, err := factory.NewSession("web-9")
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer sess.Close()

	snap := sess.Snapshot()
	if snap.Step != 2 {
		t.Errorf("expected restored step 2, got %d", snap.Step)
	}
	if len(snap.Transcript) != 2 || snap.Transcript[1].Text != "Ada" {
		t.Errorf("expected restored transcript, got %+v", snap.Transcript)
	}
}

func TestBuildFactory_RejectsMissingScript(t *testing.T) {
	if _, err := BuildFactory(FactoryOptions{
		ScriptPath: t.TempDir(),
		StorePath:  t.TempDir(),
		Logger:     logging.NewNop(),
	}); err == nil {
		t.Fatal("expected an error for a directory without a script")
	}
}
