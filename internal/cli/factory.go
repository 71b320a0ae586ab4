package cli

import (
	"context"
	"fmt"
	"log/slog"

	fileAdapter "github.com/aretw0/kiosk/internal/adapters/file"
	redisAdapter "github.com/aretw0/kiosk/internal/adapters/redis"

	"github.com/aretw0/kiosk"
	loamAdapter "github.com/aretw0/kiosk/pkg/adapters/loam"
	redisLock "github.com/aretw0/kiosk/pkg/adapters/redis"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/ports"
	"github.com/aretw0/kiosk/pkg/session"
)

// FactoryOptions wires the shared dependencies for server-hosted sessions
// (HTTP and MCP).
type FactoryOptions struct {
	ScriptPath    string
	LaunchersPath string
	StorePath     string
	RedisURL      string
	Logger        *slog.Logger
	Hooks         domain.Hooks
}

// Factory builds ready-to-start sessions for the server adapters and owns
// the resources behind them.
type Factory struct {
	NewSession func(id string) (ports.SessionControl, error)

	closers []func()
}

// Close releases the factory's backing connections.
func (f *Factory) Close() {
	for _, fn := range f.closers {
		fn()
	}
}

// BuildFactory assembles loader, store, launcher and session manager into a
// session factory. With redis it also installs the distributed locker so
// replicas sharing the store never interleave saves.
func BuildFactory(opts FactoryOptions) (*Factory, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repo, docID, err := OpenScriptRepo(opts.ScriptPath)
	if err != nil {
		return nil, err
	}
	loader := loamAdapter.New(repo, docID)

	// Probe the script once so a broken path fails at boot, not per request.
	if _, err := loader.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load script: %w", err)
	}

	var (
		store   ports.TranscriptStore
		closers []func()
	)
	mgrOpts := []session.Option{session.WithLogger(logger)}

	if opts.RedisURL != "" {
		client, err := openRedis(opts.RedisURL)
		if err != nil {
			return nil, err
		}
		rs := redisAdapter.NewFromClient(client)
		store = rs
		closers = append(closers, func() { rs.Close() })
		mgrOpts = append(mgrOpts, session.WithLocker(redisLock.NewLocker(client, "kiosk:lock")))
	} else {
		store = fileAdapter.New(opts.StorePath)
	}

	store, err = applyStoreMiddleware(store, logger)
	if err != nil {
		for _, fn := range closers {
			fn()
		}
		return nil, err
	}

	// The manager is itself a TranscriptStore: sessions save through it and
	// inherit its per-session and cross-replica serialization.
	mgr := session.NewManager(store, mgrOpts...)

	scriptDir, _ := ResolveScript(opts.ScriptPath)
	launcher, err := BuildLauncher(opts.LaunchersPath, scriptDir, logger)
	if err != nil {
		for _, fn := range closers {
			fn()
		}
		return nil, err
	}

	newSession := func(id string) (ports.SessionControl, error) {
		sessionOpts := []kiosk.Option{
			// Loading through the loader, not a cached script, means new
			// sessions pick up script edits without a server restart.
			kiosk.WithLoader(loader),
			kiosk.WithSessionID(id),
			kiosk.WithLogger(logger),
			kiosk.WithStore(mgr),
			kiosk.WithHooks(opts.Hooks),
		}
		if launcher != nil {
			sessionOpts = append(sessionOpts, kiosk.WithLauncher(launcher))
		}
		if state, err := mgr.Load(context.Background(), id); err == nil {
			sessionOpts = append(sessionOpts, kiosk.WithState(state))
		}
		return kiosk.New(docID, sessionOpts...)
	}

	return &Factory{NewSession: newSession, closers: closers}, nil
}
