package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/newspulse/newspulse/config"
	"github.com/newspulse/newspulse/logger"
	"github.com/newspulse/newspulse/pulse"
)

// RunCmd starts the polling daemon.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the newspulse daemon",
	Long: `Start the daemon in foreground mode.

The daemon runs two loops:
- A content check every few hours (and once at startup) that fetches the
  latest newsletter, generates posts for a new issue, and schedules them.
- A due-post sweep every minute that publishes pending posts whose slot
  has passed.

Runs until interrupted (Ctrl+C); in-flight work finishes before exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		skipStartup, _ := cmd.Flags().GetBool("skip-startup-check")

		daemonCfg := pulse.Config{
			Sender:           cfg.Newsletter.Sender,
			TopicCount:       cfg.Schedule.TopicCount,
			Days:             cfg.Schedule.Days,
			ContentInterval:  time.Duration(cfg.Pulse.ContentIntervalHours) * time.Hour,
			PublishInterval:  time.Duration(cfg.Pulse.PublishIntervalSeconds) * time.Second,
			SkipStartupCheck: skipStartup,
		}

		daemon := pulse.NewDaemon(
			newFetcher(cfg),
			newGenerator(cfg),
			newPublisher(cfg),
			newStore(cfg),
			newDistributor(cfg),
			daemonCfg,
			logger.Logger,
		)

		// Pick up edits to the project config without a restart. Timer
		// intervals still need one; sender and batch shape do not.
		if configPath := config.FindProjectConfig(); configPath != "" {
			watcher, err := config.NewWatcher(configPath)
			if err != nil {
				logger.Warnw("Config watcher unavailable", "path", configPath, "error", err)
			} else {
				watcher.OnReload(func(newCfg *config.Config) error {
					daemon.UpdateSettings(newCfg.Newsletter.Sender, newCfg.Schedule.TopicCount, newCfg.Schedule.Days)
					return nil
				})
				watcher.Start()
				defer watcher.Stop()
			}
		}

		daemon.Start()
		fmt.Printf("newspulse daemon started (sender: %s, store: %s)\n", cfg.Newsletter.Sender, cfg.Store.Path)
		fmt.Println("Press Ctrl+C to stop")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\nShutting down...")
		daemon.Stop()
		return nil
	},
}

func init() {
	RunCmd.Flags().Bool("skip-startup-check", false, "Do not run a content check immediately at startup")
}
