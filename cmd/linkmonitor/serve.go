package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the check loop and the observer API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the check loop and the API server",
	Long: `Start linkmonitor.

The process will:
  - Load configuration from the specified YAML file
  - Seed the target list on first boot
  - Serve the observer API on the configured port
  - In loop mode, run a check cycle every interval_minutes

In trigger mode no cycle runs on its own; an external pinger calls
GET /api/trigger instead.

The process runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  linkmonitor serve -c config.yaml
  linkmonitor serve --config /etc/linkmonitor/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addConfigFlag(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	m, cfg, logger, err := loadMonitor(cmd)
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"mode", cfg.Mode,
		"interval", cfg.Interval().String(),
		"data_dir", cfg.DataDir,
	)
	logger.Info("starting server", "port", cfg.Port)

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- m.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
