package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/msgscheduler/internal/config"
)

var onboardForce bool

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration",
	RunE:  runOnboard,
}

func init() {
	onboardCmd.Flags().BoolVarP(&onboardForce, "force", "f", false, "Overwrite an existing config with defaults")
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	if _, err := os.Stat(cfgPath); err == nil && !onboardForce {
		// Refresh: keep existing values, add any new keys.
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			return fmt.Errorf("existing config %s is invalid (use --force to overwrite): %w", cfgPath, loadErr)
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	fmt.Printf("\n%s msgscheduler is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add your Telegram bot token to %s\n", cfgPath)
	fmt.Println("     (channels.telegram.token, or set TELEGRAM_BOT_TOKEN)")
	fmt.Println("     Create a bot with @BotFather: https://t.me/BotFather")
	fmt.Println("  2. Verify: msgscheduler channels check")
	fmt.Println("  3. Serve:  msgscheduler serve")
	return nil
}
