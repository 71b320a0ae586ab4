package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiosk/pkg/adapters/memory"
	"github.com/aretw0/kiosk/pkg/domain"
)

func TestMemoryLoader_Load(t *testing.T) {
	loader := memory.NewFromPrompts("intake", "Name?", "Team?")

	script, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "intake", script.Title)
	assert.Equal(t, []string{"Name?", "Team?"}, script.Prompts)
	assert.Equal(t, domain.DefaultCharInterval, script.CharInterval, "defaults should be filled in")
	assert.Equal(t, domain.DefaultSettleDelay, script.SettleDelay)
}

func TestMemoryLoader_Isolation(t *testing.T) {
	source := &domain.Script{
		Title:   "intake",
		Prompts: []string{"Name?"},
		Launch:  &domain.LaunchSpec{Launcher: "deploy", Env: map[string]string{"REGION": "eu"}},
	}
	loader := memory.NewLoader(source)

	// Mutating the source after construction must not leak into loads.
	source.Prompts[0] = "tampered"
	source.Launch.Env["REGION"] = "tampered"

	script, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Name?", script.Prompts[0])
	assert.Equal(t, "eu", script.Launch.Env["REGION"])

	// Mutating a loaded copy must not leak into later loads either.
	script.Prompts[0] = "tampered"
	again, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Name?", again.Prompts[0])
}

func TestMemoryLoader_InvalidScript(t *testing.T) {
	loader := memory.NewLoader(&domain.Script{Title: "empty"})

	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrScriptInvalid)
}
