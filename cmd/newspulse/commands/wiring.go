// Package commands holds the newspulse CLI commands.
package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/newspulse/newspulse/ai/anthropic"
	"github.com/newspulse/newspulse/bluesky"
	"github.com/newspulse/newspulse/config"
	"github.com/newspulse/newspulse/generator"
	"github.com/newspulse/newspulse/logger"
	"github.com/newspulse/newspulse/newsletter"
	"github.com/newspulse/newspulse/schedule"
)

// loadConfig resolves configuration, honoring the --config override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func newFetcher(cfg *config.Config) *newsletter.IMAPFetcher {
	return newsletter.NewIMAPFetcher(newsletter.IMAPConfig{
		Host:     cfg.Newsletter.IMAPHost,
		Port:     cfg.Newsletter.IMAPPort,
		Username: cfg.Newsletter.Username,
		Password: cfg.Newsletter.Password,
		Mailbox:  cfg.Newsletter.Mailbox,
	}, logger.Logger)
}

func newGenerator(cfg *config.Config) *generator.Generator {
	client := anthropic.NewClient(anthropic.Config{
		APIKey:      cfg.Anthropic.APIKey,
		Model:       cfg.Anthropic.Model,
		Temperature: cfg.Anthropic.Temperature,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		Timeout:     time.Duration(cfg.Anthropic.TimeoutSeconds) * time.Second,
		Logger:      logger.Logger,
	})
	return generator.New(client, logger.Logger)
}

func newPublisher(cfg *config.Config) *bluesky.Client {
	return bluesky.NewClient(bluesky.Config{
		PDSHost:        cfg.Bluesky.PDSHost,
		Identifier:     cfg.Bluesky.Identifier,
		AppPassword:    cfg.Bluesky.AppPassword,
		PostsPerMinute: cfg.Bluesky.PostsPerMinute,
	}, logger.Logger)
}

func newStore(cfg *config.Config) *schedule.Store {
	return schedule.NewStore(cfg.Store.Path)
}

func newDistributor(cfg *config.Config) *schedule.Distributor {
	return schedule.NewDistributor(cfg.Schedule.SlotHours)
}
