package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/msgscheduler/internal/channels"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

var (
	sendTo      string
	sendMessage string
	sendTimeout time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message immediately through the configured channel",
	Long: `Connects the configured sender channel directly (no server needed),
delivers one message and exits.`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendTo, "to", "t", "", "Destination chat id (required)")
	sendCmd.Flags().StringVarP(&sendMessage, "message", "m", "", "Message text (required)")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 30*time.Second, "Connect and send timeout")

	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("message")
}

func runSend(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logx.NewConsole(cfg.Log.Level)
	mgr := channels.NewManager(cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	go func() { _ = mgr.StartAll(ctx) }()
	if err := mgr.WaitReady(ctx); err != nil {
		return err
	}
	if err := mgr.Deliver(ctx, sendTo, sendMessage); err != nil {
		return err
	}
	fmt.Printf("✓ Message sent to %s via %s\n", sendTo, mgr.SenderChannel())
	return nil
}
