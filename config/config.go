package config

// Config represents the newspulse configuration
type Config struct {
	Newsletter NewsletterConfig `mapstructure:"newsletter"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Bluesky    BlueskyConfig    `mapstructure:"bluesky"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Store      StoreConfig      `mapstructure:"store"`
	Pulse      PulseConfig      `mapstructure:"pulse"`
}

// NewsletterConfig configures the IMAP mailbox the newsletter arrives in
type NewsletterConfig struct {
	IMAPHost string `mapstructure:"imap_host"` // e.g. "imap.fastmail.com"
	IMAPPort int    `mapstructure:"imap_port"` // default: 993 (IMAPS)
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"` // bound to NEWSPULSE_NEWSLETTER_PASSWORD
	Mailbox  string `mapstructure:"mailbox"`  // default: "INBOX"
	Sender   string `mapstructure:"sender"`   // newsletter sender address to filter on
}

// AnthropicConfig configures the Anthropic Messages API client
type AnthropicConfig struct {
	APIKey         string  `mapstructure:"api_key"` // bound to NEWSPULSE_ANTHROPIC_API_KEY
	Model          string  `mapstructure:"model"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// BlueskyConfig configures the posting collaborator
type BlueskyConfig struct {
	PDSHost     string `mapstructure:"pds_host"`   // default: "https://bsky.social"
	Identifier  string `mapstructure:"identifier"` // handle or DID
	AppPassword string `mapstructure:"app_password"` // bound to NEWSPULSE_BLUESKY_APP_PASSWORD

	// Publish rate limit. Posting too fast trips social-API bot detection.
	PostsPerMinute int `mapstructure:"posts_per_minute"`
}

// ScheduleConfig configures generation and distribution
type ScheduleConfig struct {
	TopicCount int   `mapstructure:"topic_count"` // topics to extract per newsletter (default: 5)
	Days       int   `mapstructure:"days"`        // days to spread a batch over (default: 3)
	SlotHours  []int `mapstructure:"slot_hours"`  // local times-of-day eligible for posts
}

// StoreConfig configures the scheduled-post store
type StoreConfig struct {
	Path string `mapstructure:"path"` // JSON file holding the scheduled posts
}

// PulseConfig configures the poll-loop daemon
type PulseConfig struct {
	ContentIntervalHours   int `mapstructure:"content_interval_hours"`   // newsletter check cadence (default: 6)
	PublishIntervalSeconds int `mapstructure:"publish_interval_seconds"` // due-post check cadence (default: 60)
}
