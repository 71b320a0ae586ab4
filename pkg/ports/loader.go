package ports

import (
	"context"

	"github.com/aretw0/kiosk/pkg/domain"
)

// ScriptLoader defines how a session retrieves its interview script.
// This decouples the script source (Loam, FS, Memory) from the engine.
type ScriptLoader interface {
	// Load retrieves the script. Implementations return the script already
	// parsed; normalization and validation stay with the machine.
	Load(ctx context.Context) (*domain.Script, error)
}

// Watchable defines an interface for loaders that can notify about backend
// changes. This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying script
	// changes. It abstracts away the specific event details, signaling only
	// that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
