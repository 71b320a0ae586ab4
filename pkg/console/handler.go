package console

import (
	"context"

	"github.com/aretw0/kiosk/pkg/domain"
)

// Handler defines the presentation strategy for a session feed.
// This allows switching between incremental text rendering (TTY) and
// JSON-lines (structured) modes without touching the run loop.
type Handler interface {
	// Intro presents the script's introduction once, before the first prompt.
	Intro(ctx context.Context, markdown string) error

	// Render presents one snapshot frame. Frames arrive in order; handlers
	// may draw incrementally against the previous frame.
	Render(ctx context.Context, snap domain.Snapshot) error

	// ReadLine blocks for one line of visitor input, honoring ctx
	// cancellation where the underlying reader allows it.
	ReadLine(ctx context.Context) (string, error)

	// Notify presents a meta-message (refusals, launch results) distinct
	// from transcript content.
	Notify(ctx context.Context, msg string) error
}

// ContentRenderer transforms intro markdown before output. This allows TUI
// rendering (markdown to ANSI) without coupling the handler to a renderer.
type ContentRenderer func(string) (string, error)
