package ports

import (
	"context"

	"github.com/aretw0/kiosk/pkg/domain"
)

// Launcher receives the answers when the gate fires. The handoff is
// fire-and-forget from the session's perspective: whatever the launcher does
// with the request, the session stays in its running state. An error from
// Launch surfaces to the caller for the host to handle; it never rewinds the
// session.
type Launcher interface {
	Launch(ctx context.Context, req domain.LaunchRequest) error
}

// LauncherFunc adapts a plain function to the Launcher interface.
type LauncherFunc func(ctx context.Context, req domain.LaunchRequest) error

// Launch implements Launcher.
func (f LauncherFunc) Launch(ctx context.Context, req domain.LaunchRequest) error {
	return f(ctx, req)
}
