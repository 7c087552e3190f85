package channel

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
	Slack    SlackConfig    `json:"slack" yaml:"slack"`
	WhatsApp WhatsAppConfig `json:"whatsapp" yaml:"whatsapp"`
}

func DefaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{
		Telegram: DefaultTelegramConfig(),
		Slack:    DefaultSlackConfig(),
		WhatsApp: DefaultWhatsAppConfig(),
	}
}
