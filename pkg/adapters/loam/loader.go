// Package loam adapts a Loam document repository to the kiosk ScriptLoader
// port. Scripts live as markdown files with YAML frontmatter: the frontmatter
// carries the prompts, pacing and launch binding, the body becomes the intro.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/kiosk/internal/dto"
	"github.com/aretw0/kiosk/pkg/domain"
)

// Loader adapts the Loam library to the kiosk ScriptLoader interface.
type Loader struct {
	repo  *loam.TypedRepository[dto.ScriptMetadata]
	docID string
}

// New creates a Loam adapter serving the script stored under docID.
// The ID may be given with or without extension; Loam resolves either.
func New(repo core.Repository, docID string) *Loader {
	return &Loader{
		repo:  loam.NewTypedRepository[dto.ScriptMetadata](repo),
		docID: docID,
	}
}

// Load retrieves the script document and maps it to the domain script.
func (l *Loader) Load(ctx context.Context) (*domain.Script, error) {
	doc, err := l.repo.Get(ctx, l.docID)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", l.docID, err)
	}

	meta := doc.Data

	script := &domain.Script{
		Title:   meta.Title,
		Intro:   strings.TrimSpace(doc.Content),
		Prompts: append([]string(nil), meta.Prompts...),
	}
	if script.Title == "" {
		script.Title = trimExtension(doc.ID)
	}

	if meta.Pacing != nil {
		script.CharInterval, err = parsePacing(meta.Pacing.CharInterval, "pacing.char_interval")
		if err != nil {
			return nil, err
		}
		script.SettleDelay, err = parsePacing(meta.Pacing.SettleDelay, "pacing.settle_delay")
		if err != nil {
			return nil, err
		}
	}

	if meta.Launch != nil {
		env := make(map[string]string, len(meta.Launch.Env))
		for k, v := range meta.Launch.Env {
			env[k] = v
		}
		script.Launch = &domain.LaunchSpec{
			Launcher: meta.Launch.Launcher,
			Env:      env,
		}
	}

	return script, nil
}

// parsePacing converts a frontmatter duration string to the domain encoding:
// empty means unset (engine default), an explicit zero means instant typing,
// which the domain represents as a negative duration.
func parsePacing(raw, field string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", domain.ErrScriptInvalid, field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", domain.ErrScriptInvalid, field)
	}
	if d == 0 {
		return -1, nil
	}
	return d, nil
}

// Watch implements ports.Watchable. It signals whenever the script document
// changes on disk, collapsing Loam's event detail to a bare notification.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	want := trimExtension(l.docID)
	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				if trimExtension(evt.ID) != want {
					continue
				}
				// Coalesce: a pending notification already says "reload".
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
