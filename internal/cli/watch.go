package cli

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/kiosk"
	loamAdapter "github.com/aretw0/kiosk/pkg/adapters/loam"
	"github.com/aretw0/kiosk/pkg/console"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/ports"
)

// RunWatch executes the intake in development mode, reloading when the
// script document changes. State persists across reloads under a path-scoped
// session ID, so editing a later prompt does not restart a half-answered
// interview.
func RunWatch(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	// Scope the default session by path hash to keep projects apart.
	if opts.SessionID == "" {
		hash := md5.Sum([]byte(opts.ScriptPath))
		opts.SessionID = fmt.Sprintf("watch-%x", hash[:4])
	}

	store, closeStore, err := BuildStore(StoreOptions{Path: opts.StorePath, RedisURL: opts.RedisURL}, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if opts.Fresh {
		ResetSession(store, opts.SessionID)
	}

	logger.Info("Watcher started", "path", opts.ScriptPath, "session_id", opts.SessionID)
	printSystemMessage("Watching '%s' as session '%s'.", opts.ScriptPath, opts.SessionID)

	signals := console.NewSignalManager(context.Background())
	defer signals.Stop()

	// One console for the whole watch: its handler owns the only stdin
	// reader, so reloads never spawn ghost input pumps.
	consoleOpts := []console.Option{console.WithLogger(logger)}
	if opts.Plain {
		consoleOpts = append(consoleOpts, console.WithRichMode(false), console.WithoutBanner())
	}
	cons := console.New(consoleOpts...)

	for {
		again, err := watchIteration(signals.Context(), cons, store, opts, logger)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		logger.Info("Watcher restarting")
	}
}

// watchIteration runs one session until it finishes, a reload interrupts it,
// or a signal stops the watch. It reports whether to iterate again.
func watchIteration(parent context.Context, cons *console.Console, store ports.TranscriptStore, opts RunOptions, logger *slog.Logger) (bool, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	repo, docID, err := OpenScriptRepo(opts.ScriptPath)
	if err != nil {
		logger.Error("Script repository unavailable", "err", err)
		return backoff(parent)
	}
	loader := loamAdapter.New(repo, docID)

	script, err := loader.Load(ctx)
	if err != nil {
		logger.Error("Script load failed", "err", err)
		printSystemMessage("Script error: %v", err)
		return waitForChange(parent, ctx, loader)
	}
	applyPacing(script, opts.CharInterval, opts.SettleDelay)

	scriptDir, _ := ResolveScript(opts.ScriptPath)
	launcher, err := BuildLauncher(opts.LaunchersPath, scriptDir, logger)
	if err != nil {
		return false, err
	}

	sessionOpts := []kiosk.Option{
		kiosk.WithScript(script),
		kiosk.WithLogger(logger),
		kiosk.WithSessionID(opts.SessionID),
		kiosk.WithStore(store),
	}
	if launcher != nil {
		sessionOpts = append(sessionOpts, kiosk.WithLauncher(launcher))
	}
	if opts.Debug {
		sessionOpts = append(sessionOpts, kiosk.WithHooks(createDebugHooks(logger)))
	}

	if state, err := store.Load(ctx, opts.SessionID); err == nil {
		// An edit can reshape the script; a state that no longer fits
		// starts the interview over instead of resuming.
		if state.PromptCount() == script.PromptCount() && state.Step <= script.FinalStep() {
			sessionOpts = append(sessionOpts, kiosk.WithState(state))
		} else {
			printSystemMessage("Script shape changed, restarting the interview.")
			ResetSession(store, opts.SessionID)
		}
	}

	sess, err := kiosk.New(docID, sessionOpts...)
	if err != nil {
		logger.Error("Session init failed", "err", err)
		return waitForChange(parent, ctx, loader)
	}

	watchCh, watchErr := loader.Watch(ctx)
	if watchErr != nil {
		logger.Warn("Watch unavailable, reloads disabled", "err", watchErr)
	}

	reloaded := make(chan struct{}, 1)
	if watchCh != nil {
		go func() {
			select {
			case <-ctx.Done():
			case _, ok := <-watchCh:
				if !ok {
					return
				}
				fmt.Println()
				printSystemMessage("Change detected, reloading.")
				// Let the filesystem settle before the next load.
				time.Sleep(100 * time.Millisecond)
				reloaded <- struct{}{}
				cancel()
			}
		}()
	}

	runErr := cons.Run(ctx, sess)
	sess.Close()

	if parent.Err() != nil {
		return false, nil
	}
	select {
	case <-reloaded:
		return true, nil
	default:
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return true, nil
		}
		return false, runErr
	}

	snap := sess.Snapshot()
	if snap.Action != domain.ActionRunning {
		// Input closed mid-interview; interactive mode cannot continue.
		return false, nil
	}

	// A completed interview clears its dev state so the next edit starts a
	// fresh run-through.
	ResetSession(store, opts.SessionID)
	printSystemMessage("Interview complete. Waiting for changes...")
	select {
	case <-parent.Done():
		return false, nil
	case <-ctx.Done():
		return true, nil
	}
}

// backoff waits out transient failures before the next iteration.
func backoff(parent context.Context) (bool, error) {
	select {
	case <-parent.Done():
		return false, nil
	case <-time.After(2 * time.Second):
		return true, nil
	}
}

// waitForChange parks a broken script until it changes again.
func waitForChange(parent, ctx context.Context, loader *loamAdapter.Loader) (bool, error) {
	watchCh, err := loader.Watch(ctx)
	if err != nil {
		return backoff(parent)
	}
	select {
	case <-parent.Done():
		return false, nil
	case _, ok := <-watchCh:
		return ok, nil
	}
}
