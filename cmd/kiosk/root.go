package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Kiosk is a scripted intake terminal",
	Long: `Kiosk plays a Markdown script as a simulated terminal session: it types
each prompt out character by character, records the visitor's answers in an
append-only transcript, and arms a launch gate once every prompt is answered.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
