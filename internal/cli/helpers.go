package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	goredis "github.com/redis/go-redis/v9"

	fileAdapter "github.com/aretw0/kiosk/internal/adapters/file"
	redisAdapter "github.com/aretw0/kiosk/internal/adapters/redis"
	"github.com/aretw0/kiosk/internal/logging"
	"github.com/aretw0/kiosk/pkg/adapters/process"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/persistence/middleware"
	"github.com/aretw0/kiosk/pkg/ports"
)

// createLogger configures the command logger. Debug mode writes to stderr so
// logs never corrupt the stdout flow UI.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// ResolveScript splits a user-supplied path into the Loam directory and the
// document ID inside it. A ".md" suffix addresses one document; anything else
// is a directory holding the default "intake" document.
func ResolveScript(path string) (dir, docID string) {
	if path == "" {
		path = "."
	}
	if strings.HasSuffix(path, ".md") {
		return filepath.Dir(path), strings.TrimSuffix(filepath.Base(path), ".md")
	}
	return path, "intake"
}

// OpenScriptRepo initializes the read-only Loam repository holding a script.
func OpenScriptRepo(path string) (core.Repository, string, error) {
	dir, docID := ResolveScript(path)
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to initialize loam: %w", err)
	}
	return repo, docID, nil
}

// StoreOptions selects the state store shared by run, serve and the session
// commands.
type StoreOptions struct {
	Path     string // file store directory, "" means .kiosk/sessions
	RedisURL string // takes precedence over Path when set
}

// BuildStore opens the transcript store the options describe and applies the
// persistence middleware configured through the environment. The returned
// func releases the backing connection, if any.
func BuildStore(opts StoreOptions, logger *slog.Logger) (ports.TranscriptStore, func(), error) {
	var store ports.TranscriptStore
	closer := func() {}

	if opts.RedisURL != "" {
		client, err := openRedis(opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		rs := redisAdapter.NewFromClient(client)
		store = rs
		closer = func() { rs.Close() }
	} else {
		store = fileAdapter.New(opts.Path)
	}

	store, err := applyStoreMiddleware(store, logger)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return store, closer, nil
}

func openRedis(url string) (*goredis.Client, error) {
	ropts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return goredis.NewClient(ropts), nil
}

// applyStoreMiddleware wraps the store per the environment:
// KIOSK_ENCRYPTION_KEY (64 hex chars) seals state at rest, KIOSK_REDACT
// (comma-separated patterns) masks answers to matching prompts.
func applyStoreMiddleware(store ports.TranscriptStore, logger *slog.Logger) (ports.TranscriptStore, error) {
	var mws []middleware.Middleware

	if raw := os.Getenv("KIOSK_ENCRYPTION_KEY"); raw != "" {
		key, err := hex.DecodeString(strings.TrimSpace(raw))
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("KIOSK_ENCRYPTION_KEY must be 64 hex characters (32 bytes)")
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: key,
		}))
	}

	if raw := os.Getenv("KIOSK_REDACT"); raw != "" {
		var patterns []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) > 0 {
			mws = append(mws, middleware.NewRedactionMiddleware(patterns))
		}
	}

	if len(mws) > 0 {
		logger.Debug("Persistence middleware active", "layers", len(mws))
		store = middleware.Chain(store, mws...)
	}
	return store, nil
}

// LoadRegistry reads the launcher registry file. An empty path falls back to
// a launchers.yaml next to the script when one exists; a nil registry means
// no launchers are configured.
func LoadRegistry(launchersPath, scriptDir string) (map[string]process.LauncherConfig, error) {
	path := launchersPath
	if path == "" {
		candidate := filepath.Join(scriptDir, "launchers.yaml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path == "" {
		return nil, nil
	}
	return process.LoadLaunchers(path)
}

// BuildLauncher assembles the process launcher from the registry file. A nil
// launcher means launches are logged and skipped.
func BuildLauncher(launchersPath, scriptDir string, logger *slog.Logger) (ports.Launcher, error) {
	registry, err := LoadRegistry(launchersPath, scriptDir)
	if err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, nil
	}
	logger.Debug("Launcher registry loaded", "launchers", len(registry))
	return process.New(
		process.WithRegistry(registry),
		process.WithBaseDir(scriptDir),
	), nil
}

// createDebugHooks logs every session lifecycle event, for --debug runs.
func createDebugHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnStarted: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Session started", "session_id", e.SessionID, "step", e.To)
		},
		OnLineCommitted: func(ctx context.Context, e *domain.LineEvent) {
			logger.Debug("Line committed", "kind", e.Line.Kind, "step", e.Step, "elapsed", e.Elapsed)
		},
		OnStepAdvanced: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Step advanced", "from", e.From, "to", e.To, "phase", e.Phase)
		},
		OnLaunched: func(ctx context.Context, e *domain.LaunchEvent) {
			logger.Debug("Gate fired", "session_id", e.SessionID, "answers", len(e.Answers))
		},
		OnRefused: func(ctx context.Context, e *domain.RefusalEvent) {
			logger.Debug("Operation refused", "op", e.Op, "err", e.Err)
		},
	}
}

// ResetSession clears persisted state for the given ID.
func ResetSession(store ports.TranscriptStore, sessionID string) {
	if sessionID == "" {
		return
	}
	_ = store.Delete(context.Background(), sessionID)
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a clean exit; everything else
// propagates to the command.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
