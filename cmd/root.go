// Package cmd implements the msgscheduler CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/msgscheduler/internal/config"
)

const version = "0.1.0"
const logo = "✉️"

var configPath string

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "msgscheduler",
	Short: logo + " msgscheduler — send and schedule chat messages",
	Long: logo + ` msgscheduler is an HTTP service that sends text messages immediately
or at a scheduled time through a Telegram bot, Slack or a WhatsApp bridge.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file (default "+config.ConfigPath()+")")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(channelsCmd)
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigPath()
}

// loadConfig loads and validates the config selected by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
