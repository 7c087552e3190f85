package config

import (
	"fmt"
	"strconv"
	"strings"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment variables on cfg:
//
//	PORT                    server.port
//	TELEGRAM_BOT_TOKEN      channels.telegram.token
//	SLACK_BOT_TOKEN         channels.slack.botToken (also enables slack)
//	MSGSCHEDULER_CHANNEL    sender.channel
//	MSGSCHEDULER_TIMEZONE   sender.timezone
//	MSGSCHEDULER_LOG_LEVEL  log.level
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT=%q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v, ok := get("TELEGRAM_BOT_TOKEN"); ok {
		cfg.Channels.Telegram.Token = v
	}
	if v, ok := get("SLACK_BOT_TOKEN"); ok {
		cfg.Channels.Slack.BotToken = v
		cfg.Channels.Slack.Enabled = true
	}
	if v, ok := get("MSGSCHEDULER_CHANNEL"); ok {
		cfg.Sender.Channel = v
	}
	if v, ok := get("MSGSCHEDULER_TIMEZONE"); ok {
		cfg.Sender.Timezone = v
	}
	if v, ok := get("MSGSCHEDULER_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	return nil
}
