package ports

import (
	"context"

	"github.com/aretw0/kiosk/pkg/domain"
)

// SessionControl is the driving port for one live intake session. Hosts
// (console, HTTP, MCP) speak to sessions through this interface so they never
// depend on the engine's concrete type.
type SessionControl interface {
	// Start sets the session in motion: the first (or resumed) prompt begins
	// auto-typing. Calling Start twice is an error.
	Start(ctx context.Context) error

	// SetInput wholesale-replaces the visitor's draft.
	// Refused with domain.ErrOutOfTurn outside the input phase.
	SetInput(text string) error

	// Submit commits the current draft as the answer to the current prompt.
	// Refused with domain.ErrEmptyAnswer when the trimmed draft is blank.
	Submit() error

	// Launch fires the gate: the answers snapshot is handed to the launcher
	// and the session latches into its running state.
	Launch(ctx context.Context) error

	// Snapshot returns the current read model.
	Snapshot() domain.Snapshot

	// Subscribe registers a snapshot feed. Slow consumers lose intermediate
	// frames but always receive the latest. The returned func unsubscribes.
	Subscribe() (<-chan domain.Snapshot, func())

	// Done is closed when the interview reaches its terminal step, or when
	// the session is closed early.
	Done() <-chan struct{}

	// Close cancels any armed timer and tears down subscriptions.
	Close() error
}
