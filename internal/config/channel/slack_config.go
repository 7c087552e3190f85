package channel

// SlackConfig configures delivery through a Slack bot token.
type SlackConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	BotToken string `json:"botToken" yaml:"botToken"`
	// Markdown enables mrkdwn formatting; when false text is escaped.
	Markdown bool `json:"markdown" yaml:"markdown"`
}

func DefaultSlackConfig() SlackConfig {
	return SlackConfig{Markdown: true}
}
