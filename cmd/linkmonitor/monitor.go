package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jpalmerr/linkmonitor"
	"github.com/jpalmerr/linkmonitor/config"
	"github.com/jpalmerr/linkmonitor/internal/logging"
	"github.com/spf13/cobra"
)

// loadMonitor reads the config named by the --config flag and builds the
// logger and Monitor from it. Extra options are applied last.
func loadMonitor(cmd *cobra.Command, extra ...linkmonitor.Option) (*linkmonitor.Monitor, *config.Config, *slog.Logger, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	opts := append(config.BuildOptions(cfg), linkmonitor.WithLogger(logger))
	opts = append(opts, extra...)

	m, err := linkmonitor.New(opts...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create monitor: %w", err)
	}
	return m, cfg, logger, nil
}
