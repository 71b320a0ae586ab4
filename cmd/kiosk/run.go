package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/kiosk/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Play an intake script in the terminal",
	Long: `Starts the interview in the current terminal. The script argument is a
directory holding an 'intake' document or a path to a single .md file;
it defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{ScriptPath: "."}
		if len(args) > 0 {
			opts.ScriptPath = args[0]
		}

		opts.Plain, _ = cmd.Flags().GetBool("plain")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.StorePath, _ = cmd.Flags().GetString("store")
		opts.RedisURL, _ = cmd.Flags().GetString("redis")
		opts.LaunchersPath, _ = cmd.Flags().GetString("launchers")
		opts.CharInterval, _ = cmd.Flags().GetDuration("char-interval")
		opts.SettleDelay, _ = cmd.Flags().GetDuration("settle-delay")

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("plain", false, "Disable rich rendering (no colors, no banner)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("debug", false, "Log session events to stderr")
	runCmd.Flags().BoolP("watch", "w", false, "Run in development mode with hot-reload")
	runCmd.Flags().Bool("fresh", false, "Discard persisted state before starting")
	runCmd.Flags().String("session", "", "Session ID to persist and resume")
	runCmd.Flags().String("store", "", "Directory for session state (default .kiosk/sessions)")
	runCmd.Flags().String("redis", "", "Redis URL for session state (overrides --store)")
	runCmd.Flags().String("launchers", "", "Path to the launcher registry (default launchers.yaml next to the script)")
	runCmd.Flags().Duration("char-interval", 0, "Override the typing interval per character")
	runCmd.Flags().Duration("settle-delay", 0, "Override the pause before a typed prompt commits")

	// Make 'run' the default when no subcommand is given.
	rootCmd.Run = runCmd.Run
	rootCmd.Args = runCmd.Args
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
