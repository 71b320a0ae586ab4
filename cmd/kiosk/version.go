package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/kiosk"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of kiosk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kiosk version %s\n", strings.TrimSpace(kiosk.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
