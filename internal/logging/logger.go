package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a configured application logger.
// It writes to Stderr so it never interleaves with the terminal UI or
// JSON-lines output on Stdout, and standardizes common keys ("error" -> "err").
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// FromEnv creates a logger whose level comes from the KIOSK_LOG environment
// variable (debug, info, warn, error). Unset or unrecognized values mean Info.
func FromEnv() *slog.Logger {
	return New(LevelFromEnv())
}

// LevelFromEnv parses KIOSK_LOG into a slog level, defaulting to Info.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("KIOSK_LOG")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
