package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiosk/pkg/domain"
)

// RunTranscriptStoreContract runs a suite of tests to verify that a
// TranscriptStore implementation adheres to the defined interface contract.
// Every store adapter runs this against a real (or emulated) backend.
func RunTranscriptStoreContract(t *testing.T, store TranscriptStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, 3)
		state.PushLine(domain.LineSystem, "What is your name?")
		state.PushLine(domain.LineUser, "Ada")
		state.Answers[0] = "Ada"
		state.Step = 2
		state.Buffer = "partially typed"
		state.Typing = true

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Step, loaded.Step)
		assert.Equal(t, state.Buffer, loaded.Buffer)
		assert.Equal(t, state.Typing, loaded.Typing)
		require.Len(t, loaded.Transcript, 2)
		assert.Equal(t, domain.LineSystem, loaded.Transcript[0].Kind)
		assert.Equal(t, "Ada", loaded.Transcript[1].Text)
		assert.Equal(t, []string{"Ada", "", ""}, loaded.Answers)
	})

	t.Run("Loaded state is isolated", func(t *testing.T) {
		state := domain.NewState(sessionID, 1)
		state.PushLine(domain.LineSystem, "q")
		require.NoError(t, store.Save(ctx, sessionID, state))

		first, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		first.PushLine(domain.LineUser, "mutation")
		first.Answers[0] = "mutation"

		second, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, second.Transcript, 1, "mutating a loaded state must not leak into the store")
		assert.Equal(t, "", second.Answers[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, 1))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, 1))
		_ = store.Save(ctx, id2, domain.NewState(id2, 1))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
