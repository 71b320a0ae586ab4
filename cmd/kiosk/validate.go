package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/kiosk/internal/cli"
	"github.com/aretw0/kiosk/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [script]",
	Short: "Check a script for consistency",
	Long: `Parses the script and reports blank prompts, unnamed launch blocks, and
launch targets missing from the launcher registry.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Script is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("launchers", "", "Path to the launcher registry (default launchers.yaml next to the script)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	repo, docID, err := cli.OpenScriptRepo(path)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}

	// The binding check only fires when a registry is present; scripts
	// without launchers still validate on their own.
	launchersPath, _ := cmd.Flags().GetString("launchers")
	scriptDir, _ := cli.ResolveScript(path)
	registry, err := cli.LoadRegistry(launchersPath, scriptDir)
	if err != nil {
		return fmt.Errorf("failed to load launchers: %w", err)
	}

	return validator.ValidateDocument(repo, docID, registry)
}
