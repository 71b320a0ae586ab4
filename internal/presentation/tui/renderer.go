package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders a script's intro markdown
// using glamour. It auto-detects the terminal background for styling.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
