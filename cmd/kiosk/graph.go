package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/kiosk/internal/cli"
	"github.com/aretw0/kiosk/internal/logging"
	"github.com/aretw0/kiosk/internal/presentation/graph"
	loamAdapter "github.com/aretw0/kiosk/pkg/adapters/loam"
	"github.com/aretw0/kiosk/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [script]",
	Short: "Export the interview flow visualization",
	Long: `Inspects the script and outputs a Mermaid diagram (graph TD) of the
interview: prompts, answer captures, and the launch gate. With --session,
the diagram highlights how far that session has walked.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		repo, docID, err := cli.OpenScriptRepo(path)
		if err != nil {
			fmt.Printf("Error opening script: %v\n", err)
			os.Exit(1)
		}

		script, err := loamAdapter.New(repo, docID).Load(cmd.Context())
		if err != nil {
			fmt.Printf("Error loading script: %v\n", err)
			os.Exit(1)
		}

		overlay := loadOverlay(cmd)

		// Generate and print Mermaid graph
		fmt.Print(graph.GenerateMermaid(script, overlay))
	},
}

// loadOverlay resolves the --session flag into progress marks for the
// diagram. A missing session is not an error; the bare graph prints.
func loadOverlay(cmd *cobra.Command) *graph.Overlay {
	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		return nil
	}

	storePath, _ := cmd.Flags().GetString("store")
	redisURL, _ := cmd.Flags().GetString("redis")
	store, closer, err := cli.BuildStore(cli.StoreOptions{
		Path:     storePath,
		RedisURL: redisURL,
	}, logging.NewNop())
	if err != nil {
		fmt.Printf("Error opening session store: %v\n", err)
		os.Exit(1)
	}
	defer closer()

	state, err := store.Load(cmd.Context(), sessionID)
	if err != nil {
		fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
		os.Exit(1)
	}

	return &graph.Overlay{
		Step:     state.Step,
		Launched: state.Action() == domain.ActionRunning,
	}
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the progress of a stored session")
	graphCmd.Flags().String("store", "", "Directory for session state (default .kiosk/sessions)")
	graphCmd.Flags().String("redis", "", "Redis URL for session state")
}
