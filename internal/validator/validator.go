// Package validator implements the checks behind "kiosk validate": it loads
// a script document and reports everything wrong with it at once, instead of
// stopping at the first refusal the way the engine does.
package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/loam/pkg/core"

	loamAdapter "github.com/aretw0/kiosk/pkg/adapters/loam"
	"github.com/aretw0/kiosk/pkg/adapters/process"
	"github.com/aretw0/kiosk/pkg/domain"
)

// ValidateScript collects every structural problem in the script.
func ValidateScript(script *domain.Script) []string {
	var problems []string

	if len(script.Prompts) == 0 {
		problems = append(problems, "script has no prompts")
	}
	for i, p := range script.Prompts {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, fmt.Sprintf("prompt %d is blank", i))
		}
	}

	if script.Launch != nil {
		if strings.TrimSpace(script.Launch.Launcher) == "" {
			problems = append(problems, "launch block names no launcher")
		}
		for k := range script.Launch.Env {
			if strings.TrimSpace(k) == "" {
				problems = append(problems, "launch env has a blank key")
			}
		}
	}

	return problems
}

// ValidateBinding checks the script's launch binding against a launcher
// registry, typically loaded with process.LoadLaunchers. A nil registry
// skips the check; an empty one means no launchers are configured and any
// binding is broken.
func ValidateBinding(script *domain.Script, launchers map[string]process.LauncherConfig) []string {
	if script.Launch == nil || launchers == nil {
		return nil
	}

	name := strings.TrimSpace(script.Launch.Launcher)
	if name == "" {
		return nil // already reported by ValidateScript
	}

	cfg, ok := launchers[name]
	if !ok {
		known := make([]string, 0, len(launchers))
		for k := range launchers {
			known = append(known, k)
		}
		if len(known) == 0 {
			return []string{fmt.Sprintf("launcher %q is not configured (registry is empty)", name)}
		}
		return []string{fmt.Sprintf("launcher %q is not configured (known: %s)", name, strings.Join(known, ", "))}
	}

	if strings.TrimSpace(cfg.Command) == "" {
		return []string{fmt.Sprintf("launcher %q has no command", name)}
	}
	return nil
}

// ValidateDocument loads the script stored under docID and runs every check,
// including the binding check when a registry is given. The combined report
// lists each problem on its own line.
func ValidateDocument(repo core.Repository, docID string, launchers map[string]process.LauncherConfig) error {
	loader := loamAdapter.New(repo, docID)

	script, err := loader.Load(context.Background())
	if err != nil {
		return fmt.Errorf("script %q failed to load: %w", docID, err)
	}

	problems := ValidateScript(script)
	problems = append(problems, ValidateBinding(script, launchers)...)

	if len(problems) > 0 {
		return fmt.Errorf("found %d problems:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}
