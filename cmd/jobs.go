package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/msgscheduler/internal/client"
	"github.com/crystaldolphin/msgscheduler/internal/config"
)

var jobsServer string

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage scheduled messages on a running server",
}

func init() {
	jobsCmd.PersistentFlags().StringVarP(&jobsServer, "server", "s", "",
		"Server base URL (default http://localhost:<server.port>)")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsAddCmd)
	jobsCmd.AddCommand(jobsCancelCmd)
}

// ---- list ------------------------------------------------------------------

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled messages",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := jobsClient()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		jobs, err := c.List(ctx)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Println("No scheduled messages.")
			return nil
		}
		fmt.Printf("%-48s %-16s %-22s %s\n", "ID", "Chat", "Date", "Message")
		fmt.Println(strings.Repeat("-", 110))
		for _, j := range jobs {
			fmt.Printf("%-48s %-16s %-22s %s\n", j.ID, truncStr(j.ChatID, 15), truncStr(j.DateTime, 21), truncStr(j.Message, 40))
		}
		return nil
	},
}

// ---- add -------------------------------------------------------------------

var (
	jobsAddTo  string
	jobsAddMsg string
	jobsAddAt  string
)

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Schedule a message",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := jobsClient()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		id, err := c.Schedule(ctx, jobsAddTo, jobsAddMsg, jobsAddAt)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Scheduled message %s\n", id)
		return nil
	},
}

func init() {
	jobsAddCmd.Flags().StringVarP(&jobsAddTo, "to", "t", "", "Destination chat id (required)")
	jobsAddCmd.Flags().StringVarP(&jobsAddMsg, "message", "m", "", "Message text (required)")
	jobsAddCmd.Flags().StringVar(&jobsAddAt, "at", "", "Fire time, ISO format YYYY-MM-DDTHH:mm:ss (required)")

	_ = jobsAddCmd.MarkFlagRequired("to")
	_ = jobsAddCmd.MarkFlagRequired("message")
	_ = jobsAddCmd.MarkFlagRequired("at")
}

// ---- cancel ----------------------------------------------------------------

var jobsCancelCmd = &cobra.Command{
	Use:     "cancel <job-id>",
	Aliases: []string{"remove", "rm"},
	Short:   "Cancel a scheduled message",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := jobsClient()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.Cancel(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Cancelled %s\n", args[0])
		return nil
	},
}

// ---- helpers ---------------------------------------------------------------

func jobsClient() (*client.Client, error) {
	if jobsServer != "" {
		return client.New(jobsServer), nil
	}
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return client.New(fmt.Sprintf("http://localhost:%d", cfg.Server.Port)), nil
}

func truncStr(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
