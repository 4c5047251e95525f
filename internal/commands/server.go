package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/portico-hosting/portico/internal/api"
	"github.com/portico-hosting/portico/internal/notify"
	"github.com/portico-hosting/portico/internal/pool"
	"github.com/portico-hosting/portico/internal/probe"
	"github.com/portico-hosting/portico/internal/registry"
	"github.com/portico-hosting/portico/internal/scheduler"
	"github.com/portico-hosting/portico/internal/storage"
)

// noticeSweepEvery is the period of the notice expiry timer. It only bounds
// how long an expired notice can linger, so it does not need to track the TTL.
const noticeSweepEvery = 5 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  `Start the HTTP API server with Echo framework`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	// Initialize storage layer
	store, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Assemble the fleet registry on top of storage
	notices := notify.NewQueue(cfg.Notices.TTL, cfg.Notices.Max)
	reg := registry.New(store, pool.NewManager(store), probe.New(cfg.Probe.Timeout), notices)

	// Load the initial fleet snapshot before serving any request
	if err := reg.Refresh(cmd.Context()); err != nil {
		store.Close()
		return fmt.Errorf("failed to load fleet snapshot: %w", err)
	}

	// Create API server
	server := api.New(cfg, store, reg, notices)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	// Background timers: the reachability sweep and the notice expiry sweep
	// run independently of request handling
	sweeper := scheduler.New(reg, cfg.Probe.Interval)
	sweeper.Start()
	go notices.Run(ctx, noticeSweepEvery)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		fmt.Println("\n⚠️  Shutdown signal received")

		sweeper.Stop()

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		// Graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-errChan:
		sweeper.Stop()
		return fmt.Errorf("server error: %w", err)
	}
}
