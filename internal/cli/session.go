package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/kiosk"
	loamAdapter "github.com/aretw0/kiosk/pkg/adapters/loam"
	"github.com/aretw0/kiosk/pkg/console"
	"github.com/aretw0/kiosk/pkg/domain"
)

// RunSession executes one interactive intake session in the terminal.
func RunSession(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	repo, docID, err := OpenScriptRepo(opts.ScriptPath)
	if err != nil {
		return err
	}
	loader := loamAdapter.New(repo, docID)

	script, err := loader.Load(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}
	applyPacing(script, opts.CharInterval, opts.SettleDelay)

	scriptDir, _ := ResolveScript(opts.ScriptPath)
	launcher, err := BuildLauncher(opts.LaunchersPath, scriptDir, logger)
	if err != nil {
		return err
	}

	sessionOpts := []kiosk.Option{
		kiosk.WithScript(script),
		kiosk.WithLogger(logger),
	}
	if launcher != nil {
		sessionOpts = append(sessionOpts, kiosk.WithLauncher(launcher))
	}
	if opts.Debug {
		sessionOpts = append(sessionOpts, kiosk.WithHooks(createDebugHooks(logger)))
	}

	// Persistence is opt-in through --session; the store choice and the
	// resume decision both hang off it.
	persistent := opts.SessionID != ""
	if persistent {
		store, closeStore, err := BuildStore(StoreOptions{Path: opts.StorePath, RedisURL: opts.RedisURL}, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		if opts.Fresh {
			ResetSession(store, opts.SessionID)
		} else if state, err := store.Load(context.Background(), opts.SessionID); err == nil {
			sessionOpts = append(sessionOpts, kiosk.WithState(state))
			if !opts.JSON {
				printSystemMessage("Resuming session '%s' at step %d.", opts.SessionID, state.Step)
			}
		} else if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to load session %q: %w", opts.SessionID, err)
		}

		sessionOpts = append(sessionOpts,
			kiosk.WithSessionID(opts.SessionID),
			kiosk.WithStore(store),
		)
	}

	sess, err := kiosk.New(docID, sessionOpts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	consoleOpts := []console.Option{console.WithLogger(logger)}
	if opts.JSON {
		consoleOpts = append(consoleOpts, console.WithJSONLines())
	}
	if opts.Plain {
		consoleOpts = append(consoleOpts, console.WithRichMode(false), console.WithoutBanner())
	}
	cons := console.New(consoleOpts...)

	runErr := cons.Run(context.Background(), sess)

	if !opts.JSON && (runErr == nil || isInterrupted(runErr)) {
		snap := sess.Snapshot()
		if snap.Action == domain.ActionRunning {
			printSystemMessage("Session '%s' handed off.", sess.ID())
		} else if persistent {
			printSystemMessage("Session '%s' parked at step %d. Use --session %s to resume.",
				sess.ID(), snap.Step, sess.ID())
		}
	}

	return handleExecutionError(runErr)
}
