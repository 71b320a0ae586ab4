package kiosk

import (
	"context"

	"github.com/aretw0/kiosk/pkg/console"
)

// Run is the one-call convenience: it loads the script at scriptPath, builds
// a session with the given options, and drives it through an interactive
// console on stdin/stdout until the interview completes or ctx is cancelled.
//
// Hosts that need their own presentation should build a Session with New and
// drive it directly.
func Run(ctx context.Context, scriptPath string, opts ...Option) error {
	session, err := New(scriptPath, opts...)
	if err != nil {
		return err
	}
	defer session.Close()

	return console.New().Run(ctx, session)
}
