package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crystaldolphin/msgscheduler/internal/container"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

var (
	servePort    int
	serveVerbose bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the msgscheduler HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (overrides config and PORT)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Verbose logging")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if serveVerbose {
		cfg.Log.Level = "debug"
	}

	c, err := container.New(cfg)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	log := c.Logger()

	fmt.Printf("%s Starting msgscheduler on %s...\n", logo, cfg.Server.Addr())
	if enabled := c.Channels().EnabledChannels(); len(enabled) > 0 {
		fmt.Printf("✓ Channels enabled: %s (sending via %s)\n",
			strings.Join(enabled, ", "), c.Channels().SenderChannel())
	} else {
		fmt.Println("Warning: no channels enabled")
	}

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.Channels().StartAll(gctx) })
	g.Go(func() error { return c.Timer().Start(gctx) })
	g.Go(func() error { return c.Server().Start(gctx) })
	g.Go(func() error { return c.Heartbeat().Start(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		c.Registry().Close()
		return nil
	})

	fmt.Printf("%s Server running. Press Ctrl+C to stop.\n", logo)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("serve: stopped with error", logx.Err(err))
		fmt.Fprintf(os.Stderr, "serve error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
