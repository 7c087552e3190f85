package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/msgscheduler/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show msgscheduler status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	fmt.Printf("%s msgscheduler Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:    %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	tz := cfg.Sender.Timezone
	if tz == "" {
		tz = "local"
	}
	fmt.Printf("Listen:    %s\n", cfg.Server.Addr())
	fmt.Printf("Sender:    %s\n", cfg.Sender.Channel)
	fmt.Printf("Timezone:  %s\n", tz)
	fmt.Printf("Log level: %s\n", cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		fmt.Printf("\n✗ %v\n", err)
	} else {
		fmt.Println("\n✓ Config valid")
	}

	fmt.Println("\nChannels:")
	for _, r := range channelRows(cfg) {
		fmt.Printf("  %-10s %s %s\n", r.name, r.enabled, r.detail)
	}
	return nil
}
