package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/loam"
	"github.com/spf13/cobra"

	"github.com/aretw0/kiosk/internal/dto"
)

const starterIntro = `Welcome! This terminal will ask you a few questions.
Answer each one and press Enter. Once everything is in, you can launch.`

const starterLaunchers = `launchers:
  - name: greet
    command: echo
    args: ["All answers are in. Hello!"]
    description: Demo launcher; replace with your own command.
`

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a starter intake script",
	Long: `Creates an intake.md script and a launchers.yaml registry in the target
directory, ready for 'kiosk run'.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		targetDir := "."
		if len(args) > 0 {
			targetDir = args[0]
		}

		if err := scaffold(cmd, targetDir); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Scaffolded intake script in: %s\n", targetDir)
		fmt.Println("Try it: kiosk run " + targetDir)
	},
}

func scaffold(cmd *cobra.Command, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return err
	}

	scriptPath := filepath.Join(targetDir, "intake.md")
	if _, err := os.Stat(scriptPath); err == nil {
		return fmt.Errorf("%s already exists", scriptPath)
	}

	// No versioning: init is pure file generation, not a tracked repo.
	repo, err := loam.Init(targetDir, loam.WithVersioning(false))
	if err != nil {
		return fmt.Errorf("failed to init loam: %w", err)
	}

	typedRepo := loam.NewTypedRepository[dto.ScriptMetadata](repo)
	err = typedRepo.Save(cmd.Context(), &loam.DocumentModel[dto.ScriptMetadata]{
		ID:      "intake",
		Content: starterIntro,
		Data: dto.ScriptMetadata{
			Title: "Project intake",
			Prompts: []string{
				"What is your name?",
				"What are you building?",
				"When do you need it?",
			},
			Pacing: &dto.PacingMetadata{
				CharInterval: "40ms",
				SettleDelay:  "300ms",
			},
			Launch: &dto.LaunchMetadata{
				Launcher: "greet",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write intake.md: %w", err)
	}

	launchersPath := filepath.Join(targetDir, "launchers.yaml")
	if _, err := os.Stat(launchersPath); err == nil {
		return nil // keep an existing registry
	}
	return os.WriteFile(launchersPath, []byte(starterLaunchers), 0644)
}

func init() {
	rootCmd.AddCommand(initCmd)
}
