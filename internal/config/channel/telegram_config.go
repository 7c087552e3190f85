package channel

// TelegramConfig configures the Telegram bot used for delivery.
type TelegramConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	Token          string `json:"token" yaml:"token"`
	APIEndpoint    string `json:"apiEndpoint,omitempty" yaml:"apiEndpoint,omitempty"`
	ParseMarkdown  bool   `json:"parseMarkdown" yaml:"parseMarkdown"`
	DisablePreview bool   `json:"disablePreview" yaml:"disablePreview"`
}

func DefaultTelegramConfig() TelegramConfig {
	return TelegramConfig{Enabled: true, ParseMarkdown: true}
}
