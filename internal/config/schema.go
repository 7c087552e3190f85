// Package config defines the configuration schema for msgscheduler.
//
// Files are JSON (camelCase keys) or YAML with the same key names; the format
// is chosen by file extension.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/crystaldolphin/msgscheduler/internal/config/channel"
	"github.com/crystaldolphin/msgscheduler/internal/config/server"
)

// SenderConfig selects the channel used to deliver messages.
type SenderConfig struct {
	// Channel is one of "telegram", "slack", "whatsapp".
	Channel string `json:"channel" yaml:"channel"`
	// Timezone is the IANA zone used to read dateTime values without an
	// explicit offset. Empty means the process local zone.
	Timezone string `json:"timezone" yaml:"timezone"`
	// HeartbeatInterval is the status check period in seconds.
	HeartbeatInterval int `json:"heartbeatInterval" yaml:"heartbeatInterval"`
}

// HeartbeatDuration returns HeartbeatInterval as a duration.
func (s SenderConfig) HeartbeatDuration() time.Duration {
	return time.Duration(s.HeartbeatInterval) * time.Second
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	JSON  bool   `json:"json" yaml:"json"`
}

// Config is the root configuration object, loaded from ~/.msgscheduler/config.json.
type Config struct {
	Server   server.ServerConfig    `json:"server" yaml:"server"`
	Sender   SenderConfig           `json:"sender" yaml:"sender"`
	Log      LogConfig              `json:"log" yaml:"log"`
	Channels channel.ChannelsConfig `json:"channels" yaml:"channels"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Server:   server.DefaultServerConfig(),
		Sender:   SenderConfig{Channel: "telegram", HeartbeatInterval: 300},
		Log:      LogConfig{Level: "info"},
		Channels: channel.DefaultChannelsConfig(),
	}
}

// Location resolves Sender.Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Sender.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Sender.Timezone)
	if err != nil {
		return nil, fmt.Errorf("sender.timezone %q: %w", c.Sender.Timezone, err)
	}
	return loc, nil
}

// ChannelEnabled reports whether the named channel is switched on.
func (c *Config) ChannelEnabled(name string) bool {
	switch name {
	case "telegram":
		return c.Channels.Telegram.Enabled
	case "slack":
		return c.Channels.Slack.Enabled
	case "whatsapp":
		return c.Channels.WhatsApp.Enabled
	}
	return false
}

// Validate checks the settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch c.Sender.Channel {
	case "telegram", "slack", "whatsapp":
		if !c.ChannelEnabled(c.Sender.Channel) {
			problems = append(problems, fmt.Sprintf("sender.channel %q is not enabled", c.Sender.Channel))
		}
	default:
		problems = append(problems, fmt.Sprintf("sender.channel %q is unknown", c.Sender.Channel))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
