package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newspulse/newspulse/cmd/newspulse/commands"
	"github.com/newspulse/newspulse/logger"
)

var rootCmd = &cobra.Command{
	Use:   "newspulse",
	Short: "Newsletter-to-social-post pipeline",
	Long: `newspulse reads a newsletter from an IMAP mailbox, asks Claude to
extract its most interesting topics and draft a short post for each, spreads
the posts over the next few days at business-hour slots, and publishes each
one to Bluesky when its slot arrives.

Available commands:
  run      - Start the daemon (periodic content checks + due-post publishing)
  generate - One-shot: fetch, generate, and schedule posts now
  posts    - List scheduled posts and their status
  publish  - Publish one scheduled post immediately by id
  version  - Show version information

Examples:
  newspulse run                          # Start daemon in foreground
  newspulse generate --topics 3 --days 2 # Schedule a smaller batch
  newspulse posts --status pending       # What is still queued
  newspulse publish 2f1c...              # Push one post out now`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")
		jsonLogs, _ := cmd.Flags().GetBool("json")

		if quiet {
			verbosity = -1
		}
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: newspulse.toml found walking up from cwd)")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.PostsCmd)
	rootCmd.AddCommand(commands.PublishCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
