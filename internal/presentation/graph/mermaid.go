// Package graph renders an interview script as a Mermaid flowchart: the
// alternating prompt/answer steps, the terminal state and the launch gate.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/kiosk/pkg/domain"
)

// Overlay contains dynamic session state to visualize on the flowchart.
type Overlay struct {
	Step     int
	Launched bool
}

// GenerateMermaid produces Mermaid flowchart syntax for a script.
// It applies semantic styling:
// - Start / Done: ((Circle))
// - Prompt typing: [Rectangle]
// - Answer capture: [/Parallelogram/]
// - Launch gate: [[Subroutine]]
// An overlay marks already-walked steps as visited and the current one as
// active.
func GenerateMermaid(script *domain.Script, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	title := script.Title
	if title == "" {
		title = "intake"
	}
	sb.WriteString(fmt.Sprintf("    start((\"%s\"))\n", escapeLabel(title)))

	prev := "start"
	for i, prompt := range script.Prompts {
		q := fmt.Sprintf("q%d", i)
		a := fmt.Sprintf("a%d", i)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", q, escapeLabel(prompt)))
		sb.WriteString(fmt.Sprintf("    %s[/\"answer %d\"/]\n", a, i+1))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, q))
		sb.WriteString(fmt.Sprintf("    %s -- \"settle\" --> %s\n", q, a))
		prev = a
	}

	sb.WriteString("    done((\"done\"))\n")
	sb.WriteString(fmt.Sprintf("    %s --> done\n", prev))

	launchLabel := "run"
	if script.Launch != nil && script.Launch.Launcher != "" {
		launchLabel = "run: " + script.Launch.Launcher
	}
	sb.WriteString(fmt.Sprintf("    launch[[\"%s\"]]\n", escapeLabel(launchLabel)))
	sb.WriteString("    done -. \"gate\" .-> launch\n")

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for high contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		n := len(script.Prompts)
		for step := 0; step < overlay.Step && step <= 2*n; step++ {
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", nodeForStep(step, n)))
		}
		current := nodeForStep(overlay.Step, n)
		if overlay.Launched {
			current = "launch"
			sb.WriteString("    class done visited;\n")
		}
		sb.WriteString(fmt.Sprintf("    class %s current;\n", current))
	}

	return sb.String()
}

// nodeForStep maps a step counter to its flowchart node: even steps type
// prompt step/2, odd steps await answer (step-1)/2, step 2n is terminal.
func nodeForStep(step, n int) string {
	switch {
	case step >= 2*n:
		return "done"
	case step%2 == 0:
		return fmt.Sprintf("q%d", step/2)
	default:
		return fmt.Sprintf("a%d", (step-1)/2)
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
