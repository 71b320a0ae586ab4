package middleware

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/ports"
)

const mask = "***"

type redactionMiddleware struct {
	next     ports.TranscriptStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks, at rest, the
// answers to prompts matching any of the given patterns. The patterns run
// against the prompt text (the system lines), so a script can keep asking
// for a token or an email while the stored transcript never contains it.
//
// Redaction is one-way: Load returns whatever the backend holds.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	// Deep clone to avoid side effects on the in-memory state driving the
	// live session.
	cloned := state.Clone()

	// Walk the transcript once, tracking which prompt each line belongs to.
	// A user line is masked when the system line that elicited it matched.
	sensitive := make(map[int]bool)
	promptIdx := -1
	for i, line := range cloned.Transcript {
		switch line.Kind {
		case domain.LineSystem:
			promptIdx++
			sensitive[promptIdx] = m.matches(line.Text)
		case domain.LineUser:
			if sensitive[promptIdx] && line.Text != "" {
				cloned.Transcript[i].Text = mask
			}
		}
	}

	for i, answer := range cloned.Answers {
		if sensitive[i] && strings.TrimSpace(answer) != "" {
			cloned.Answers[i] = mask
		}
	}

	// The draft counts too: on an odd step the buffer holds a partial answer
	// to the prompt currently on screen.
	if cloned.Step%2 == 1 && sensitive[(cloned.Step-1)/2] && cloned.Buffer != "" {
		cloned.Buffer = mask
	}

	return m.next.Save(ctx, sessionID, cloned)
}

func (m *redactionMiddleware) matches(prompt string) bool {
	for _, p := range m.patterns {
		if p.MatchString(prompt) {
			return true
		}
	}
	return false
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
