package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystaldolphin/msgscheduler/internal/config"
)

func TestTruncStr(t *testing.T) {
	assert.Equal(t, "hello", truncStr("hello", 10))
	assert.Equal(t, "hell…", truncStr("hello world", 5))
	assert.Equal(t, "héll…", truncStr("héllo wörld", 5))
}

func TestTokenHint(t *testing.T) {
	assert.Equal(t, "(not configured)", tokenHint(""))
	assert.Equal(t, "short", tokenHint("short"))
	assert.Equal(t, "1234567890...", tokenHint("1234567890abcdef"))
}

func TestChannelRows(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Channels.Telegram.Enabled = true
	cfg.Channels.Telegram.Token = "123456:ABCDEFGHIJ"
	cfg.Channels.WhatsApp.BridgeURL = "ws://localhost:3001"

	rows := channelRows(&cfg)
	require.Len(t, rows, 3)
	assert.Equal(t, channelRow{"Telegram", "✓", "123456:ABC..."}, rows[0])
	assert.Equal(t, channelRow{"Slack", "✗", "(not configured)"}, rows[1])
	assert.Equal(t, channelRow{"WhatsApp", "✗", "ws://localhost:3001"}, rows[2])
}

func TestResolvedConfigPath(t *testing.T) {
	old := configPath
	t.Cleanup(func() { configPath = old })

	configPath = ""
	assert.Equal(t, config.ConfigPath(), resolvedConfigPath())

	configPath = filepath.Join(t.TempDir(), "custom.yaml")
	assert.Equal(t, configPath, resolvedConfigPath())
}
