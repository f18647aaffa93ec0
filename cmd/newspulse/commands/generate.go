package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newspulse/newspulse/config"
	"github.com/newspulse/newspulse/errors"
	"github.com/newspulse/newspulse/pulse"
	"github.com/newspulse/newspulse/schedule"
)

// GenerateCmd runs one fetch-generate-schedule cycle and exits.
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetch the latest newsletter and schedule posts from it",
	Long: `Run one content cycle: fetch the latest newsletter, extract topics,
draft a post per topic, and append the scheduled batch to the store. The
daemon (or 'newspulse publish') takes it from there.

With --use-saved no generation happens; the command just shows what is
already scheduled in the store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		store := newStore(cfg)

		if useSaved, _ := cmd.Flags().GetBool("use-saved"); useSaved {
			return printPosts(store, string(schedule.StatusPending))
		}

		topics, _ := cmd.Flags().GetInt("topics")
		days, _ := cmd.Flags().GetInt("days")
		sender, _ := cmd.Flags().GetString("sender")

		if topics <= 0 {
			topics = cfg.Schedule.TopicCount
		}
		if days <= 0 {
			days = cfg.Schedule.Days
		}
		if sender == "" {
			sender = cfg.Newsletter.Sender
		}

		daemon := pulse.NewDaemon(
			newFetcher(cfg),
			newGenerator(cfg),
			newPublisher(cfg),
			store,
			newDistributor(cfg),
			pulse.Config{Sender: sender, TopicCount: topics, Days: days},
			nil, // one-shot: command output covers it
		)

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		added, err := daemon.CheckContent(ctx)
		if err != nil {
			if errors.IsAuthError(err) {
				return fmt.Errorf("credentials rejected: %w", err)
			}
			return err
		}

		if added == 0 {
			fmt.Println("No new newsletter content to schedule")
			return nil
		}

		fmt.Printf("Scheduled %d post(s):\n\n", added)
		if err := printPosts(store, string(schedule.StatusPending)); err != nil {
			return err
		}

		if postNow, _ := cmd.Flags().GetBool("post-now"); postNow {
			return publishEarliest(ctx, cfg, store)
		}
		return nil
	},
}

// publishEarliest pushes the earliest pending post out immediately.
func publishEarliest(ctx context.Context, cfg *config.Config, store *schedule.Store) error {
	pending, err := filteredPosts(store, string(schedule.StatusPending))
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	earliest := pending[0]
	for _, p := range pending[1:] {
		if p.ScheduledTime.Before(earliest.ScheduledTime) {
			earliest = p
		}
	}

	if err := newPublisher(cfg).Publish(ctx, earliest.Content); err != nil {
		if merr := store.MarkFailed(earliest.ID); merr != nil {
			fmt.Printf("warning: could not record failure: %v\n", merr)
		}
		return fmt.Errorf("immediate publish failed: %w", err)
	}
	if err := store.MarkPublished(earliest.ID, time.Now()); err != nil {
		return fmt.Errorf("post went out but could not be recorded: %w", err)
	}

	fmt.Printf("Published %s (%s) immediately\n", shortID(earliest.ID), earliest.Topic)
	return nil
}

func init() {
	GenerateCmd.Flags().Int("topics", 0, "Topics to extract (default from config)")
	GenerateCmd.Flags().Int("days", 0, "Days to spread posts over (default from config)")
	GenerateCmd.Flags().String("sender", "", "Newsletter sender address (default from config)")
	GenerateCmd.Flags().Bool("use-saved", false, "Skip generation and show posts already in the store")
	GenerateCmd.Flags().Bool("post-now", false, "Publish the earliest scheduled post immediately after generating")
}
