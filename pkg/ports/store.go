package ports

import (
	"context"

	"github.com/aretw0/kiosk/pkg/domain"
)

// TranscriptStore defines the interface for persisting session state.
// This allows durable sessions: a transcript survives the process that
// collected it and can be inspected or resumed later.
type TranscriptStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
