package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/msgscheduler/internal/channels"
	"github.com/crystaldolphin/msgscheduler/internal/config"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Inspect delivery channels",
}

func init() {
	channelsCmd.AddCommand(channelsStatusCmd)
	channelsCmd.AddCommand(channelsCheckCmd)
}

var channelsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show channel configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(resolvedConfigPath())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		fmt.Printf("%-12s %-8s %s\n", "Channel", "Enabled", "Configuration")
		fmt.Println(strings.Repeat("-", 60))
		for _, r := range channelRows(cfg) {
			fmt.Printf("%-12s %-8s %s\n", r.name, r.enabled, r.detail)
		}
		return nil
	},
}

var channelsCheckTimeout time.Duration

var channelsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Connect the sender channel and verify its credentials",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mgr := channels.NewManager(cfg, logx.NewConsole(cfg.Log.Level))

		ctx, cancel := context.WithTimeout(context.Background(), channelsCheckTimeout)
		defer cancel()
		go func() { _ = mgr.StartAll(ctx) }()

		if err := mgr.WaitReady(ctx); err != nil {
			return err
		}
		fmt.Printf("✓ %s connected\n", mgr.SenderChannel())
		return nil
	},
}

func init() {
	channelsCheckCmd.Flags().DurationVar(&channelsCheckTimeout, "timeout", 15*time.Second, "Connect timeout")
}

type channelRow struct{ name, enabled, detail string }

func channelRows(cfg *config.Config) []channelRow {
	slack := "(not configured)"
	if cfg.Channels.Slack.BotToken != "" {
		slack = tokenHint(cfg.Channels.Slack.BotToken)
	}
	return []channelRow{
		{"Telegram", yesNo(cfg.Channels.Telegram.Enabled), tokenHint(cfg.Channels.Telegram.Token)},
		{"Slack", yesNo(cfg.Channels.Slack.Enabled), slack},
		{"WhatsApp", yesNo(cfg.Channels.WhatsApp.Enabled), cfg.Channels.WhatsApp.BridgeURL},
	}
}

func yesNo(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}

func tokenHint(s string) string {
	if s == "" {
		return "(not configured)"
	}

	if len(s) > 10 {
		return s[:10] + "..."
	}

	return s
}
