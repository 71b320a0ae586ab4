package console

import (
	"io"
	"log/slog"
)

// Option defines a functional option for configuring the Console.
type Option func(*Console)

// WithHandler configures a custom presentation Handler.
func WithHandler(handler Handler) Option {
	return func(c *Console) {
		c.handler = handler
	}
}

// WithIO configures the reader and writer. Nil values keep the defaults.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(c *Console) {
		if r != nil {
			c.input = r
		}
		if w != nil {
			c.output = w
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// WithRenderer configures the intro markdown renderer.
func WithRenderer(renderer ContentRenderer) Option {
	return func(c *Console) {
		c.renderer = renderer
	}
}

// WithRichMode forces rich output on or off instead of auto-detecting from
// the terminal.
func WithRichMode(rich bool) Option {
	return func(c *Console) {
		c.rich = &rich
	}
}

// WithJSONLines switches the console to JSON-lines framing for scripting
// hosts.
func WithJSONLines() Option {
	return func(c *Console) {
		c.jsonMode = true
	}
}

// WithoutBanner suppresses the startup banner in rich mode.
func WithoutBanner() Option {
	return func(c *Console) {
		c.banner = false
	}
}
