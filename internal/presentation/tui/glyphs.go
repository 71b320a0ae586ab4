package tui

import (
	"github.com/muesli/termenv"

	"github.com/aretw0/kiosk/pkg/domain"
)

// Gate renders the launch gate as a console tag: dim while the interview is
// in progress, green when armed, amber once fired.
func Gate(state domain.ActionState) string {
	p := termenv.ColorProfile()
	switch state {
	case domain.ActionEnabled:
		return termenv.String("[ run ]").Foreground(p.Color("#4ade80")).Bold().String()
	case domain.ActionRunning:
		return termenv.String("[ running ]").Foreground(p.Color("#facc15")).String()
	default:
		return termenv.String("[ run ]").Faint().String()
	}
}

// SystemText colors text the machine speaks.
func SystemText(s string) string {
	p := termenv.ColorProfile()
	return termenv.String(s).Foreground(p.Color("#2dd4bf")).String()
}

// TranscriptLine formats a committed line by its author: system prompts in
// teal, visitor answers behind the input glyph.
func TranscriptLine(line domain.Line) string {
	if line.Kind == domain.LineSystem {
		return SystemText(line.Text)
	}
	return "> " + line.Text
}

