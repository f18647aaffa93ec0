package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Newsletter defaults
	v.SetDefault("newsletter.imap_port", 993)
	v.SetDefault("newsletter.mailbox", "INBOX")

	// Anthropic defaults
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.temperature", 0.2) // Deterministic extraction
	v.SetDefault("anthropic.max_tokens", 4000)
	v.SetDefault("anthropic.timeout_seconds", 120)

	// Bluesky defaults
	v.SetDefault("bluesky.pds_host", "https://bsky.social")
	v.SetDefault("bluesky.posts_per_minute", 10) // Polite publish rate

	// Schedule defaults (business-hours slots)
	v.SetDefault("schedule.topic_count", 5)
	v.SetDefault("schedule.days", 3)
	v.SetDefault("schedule.slot_hours", []int{9, 12, 15, 17})

	// Store defaults
	v.SetDefault("store.path", "scheduled_posts.json")

	// Pulse defaults
	v.SetDefault("pulse.content_interval_hours", 6)
	v.SetDefault("pulse.publish_interval_seconds", 60)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("anthropic.api_key", "NEWSPULSE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	v.BindEnv("bluesky.app_password", "NEWSPULSE_BLUESKY_APP_PASSWORD")
	v.BindEnv("newsletter.password", "NEWSPULSE_NEWSLETTER_PASSWORD")
}
