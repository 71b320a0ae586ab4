package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/kiosk/internal/presentation/graph"
	"github.com/aretw0/kiosk/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		script   *domain.Script
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name:   "Node Shapes",
			script: &domain.Script{Title: "intake", Prompts: []string{"Name?", "Region?"}},
			contains: []string{
				"start((\"intake\"))",
				"q0[\"Name?\"]",
				"a0[/\"answer 1\"/]",
				"q1[\"Region?\"]",
				"done((\"done\"))",
				"launch[[\"run\"]]",
			},
		},
		{
			name: "Launch Binding Label",
			script: &domain.Script{
				Prompts: []string{"Name?"},
				Launch:  &domain.LaunchSpec{Launcher: "deploy"},
			},
			contains: []string{
				"launch[[\"run: deploy\"]]",
			},
		},
		{
			name:   "Label Escaping",
			script: &domain.Script{Prompts: []string{`Say "hi"?`}},
			contains: []string{
				"q0[\"Say 'hi'?\"]",
			},
		},
		{
			name:    "Overlay Marks Progress",
			script:  &domain.Script{Prompts: []string{"Name?", "Region?"}},
			overlay: &graph.Overlay{Step: 3},
			contains: []string{
				"class q0 visited;",
				"class a0 visited;",
				"class q1 visited;",
				"class a1 current;",
			},
		},
		{
			name:    "Overlay After Launch",
			script:  &domain.Script{Prompts: []string{"Name?"}},
			overlay: &graph.Overlay{Step: 2, Launched: true},
			contains: []string{
				"class done visited;",
				"class launch current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.script, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}
