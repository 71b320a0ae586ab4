// Package process hands finished interviews to local commands. It follows a
// strict registry pattern: only launchers declared in the registry file (or
// registered programmatically) can ever be executed.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aretw0/kiosk/pkg/domain"
)

// ErrNotRegistered is returned when a launch names a launcher that is not in
// the allow-list.
var ErrNotRegistered = errors.New("launcher not registered")

// RegisteredLauncher defines an allowed command execution.
type RegisteredLauncher struct {
	Command string
	Args    []string
	Env     map[string]string
}

// Launcher implements ports.Launcher by executing local processes.
type Launcher struct {
	registry map[string]RegisteredLauncher
	baseDir  string
}

// Option configures the launcher.
type Option func(*Launcher)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(launchers map[string]LauncherConfig) Option {
	return func(l *Launcher) {
		for name, cfg := range launchers {
			l.registry[name] = RegisteredLauncher{
				Command: cfg.Command,
				Args:    cfg.Args,
				Env:     cfg.Environment,
			}
		}
	}
}

// WithBaseDir sets the working directory for launched processes.
func WithBaseDir(dir string) Option {
	return func(l *Launcher) {
		l.baseDir = dir
	}
}

// New creates a process launcher.
func New(opts ...Option) *Launcher {
	l := &Launcher{
		registry: make(map[string]RegisteredLauncher),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register adds a trusted command to the allow-list.
func (l *Launcher) Register(name string, command string, args ...string) {
	l.registry[name] = RegisteredLauncher{
		Command: command,
		Args:    args,
	}
}

// Launch executes the launcher named by the request.
//
// Answers are passed as environment variables (KIOSK_ANSWER_1..N), never as
// command-line flags. Answers are free text typed by a visitor; interpolating
// them into argv would invite flag and shell injection.
func (l *Launcher) Launch(ctx context.Context, req domain.LaunchRequest) error {
	proc, ok := l.registry[req.Launcher]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotRegistered, req.Launcher)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = l.baseDir
	cmd.Env = append(cmd.Environ(), launchEnv(req, proc)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("launcher %q failed: %w. Stderr: %s", req.Launcher, err, strings.TrimSpace(stderr.String()))
	}

	return nil
}

// launchEnv flattens the request into KEY=VALUE pairs. Static env from the
// registry entry comes first, then the script's launch env, then the answer
// variables, so the interview payload always wins a name clash.
func launchEnv(req domain.LaunchRequest, proc RegisteredLauncher) []string {
	env := make([]string, 0, len(proc.Env)+len(req.Env)+len(req.Answers)+3)

	for k, v := range proc.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	for k, v := range req.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	env = append(env,
		fmt.Sprintf("KIOSK_SESSION=%s", req.SessionID),
		fmt.Sprintf("KIOSK_SCRIPT=%s", req.Script),
		fmt.Sprintf("KIOSK_ANSWER_COUNT=%d", len(req.Answers)),
	)
	for i, answer := range req.Answers {
		env = append(env, fmt.Sprintf("KIOSK_ANSWER_%d=%s", i+1, answer))
	}

	return env
}
