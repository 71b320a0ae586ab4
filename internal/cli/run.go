package cli

import (
	"fmt"
	"time"

	"github.com/aretw0/kiosk/pkg/domain"
)

// RunOptions carries every knob of the run command.
type RunOptions struct {
	ScriptPath    string
	Plain         bool // force simple output even on a TTY
	JSON          bool // JSON-lines IO for piping
	Debug         bool
	Watch         bool
	Fresh         bool
	SessionID     string
	StorePath     string
	RedisURL      string
	LaunchersPath string
	CharInterval  time.Duration // zero keeps the script's pacing
	SettleDelay   time.Duration
}

// Execute handles the run command, dispatching to session or watch mode.
func Execute(opts RunOptions) error {
	if opts.Watch {
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		return RunWatch(opts)
	}
	return RunSession(opts)
}

// applyPacing overrides the script pacing from flags. Zero flags keep the
// script's values.
func applyPacing(script *domain.Script, charInterval, settleDelay time.Duration) {
	if charInterval > 0 {
		script.CharInterval = charInterval
	}
	if settleDelay > 0 {
		script.SettleDelay = settleDelay
	}
}
