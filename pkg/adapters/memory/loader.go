package memory

import (
	"context"

	"github.com/aretw0/kiosk/pkg/domain"
)

// Loader implements ports.ScriptLoader from a script held in memory.
// Useful for tests and for embedding a script directly in a binary.
type Loader struct {
	script *domain.Script
}

// NewLoader creates a Loader serving a copy of the given script.
func NewLoader(script *domain.Script) *Loader {
	return &Loader{script: script.Clone()}
}

// NewFromPrompts builds a loader for a bare list of prompts with default
// pacing. This improves DX for tests that don't care about pacing or launch.
func NewFromPrompts(title string, prompts ...string) *Loader {
	return NewLoader(&domain.Script{
		Title:   title,
		Prompts: prompts,
	})
}

// Load returns a copy of the held script.
func (l *Loader) Load(ctx context.Context) (*domain.Script, error) {
	script := l.script.Clone()
	script.Normalize()
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return script, nil
}
