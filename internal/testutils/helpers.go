package testutils

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiosk/pkg/domain"
)

// SetupTestRepo creates a temporary directory and initializes a Loam
// repository in it. It returns the absolute path to the temp dir and the
// initialized repository, failing the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	tmpDir := t.TempDir()

	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// Script builds a normalized in-memory script with instant pacing, the usual
// fixture for session tests that pump a manual scheduler.
func Script(prompts ...string) *domain.Script {
	sc := &domain.Script{
		Title:        "fixture",
		Prompts:      prompts,
		CharInterval: -1,
		SettleDelay:  -1,
	}
	sc.Normalize()
	return sc
}
