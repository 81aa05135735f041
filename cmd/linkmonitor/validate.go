package main

import (
	"fmt"

	"github.com/jpalmerr/linkmonitor/config"
	"github.com/jpalmerr/linkmonitor/internal/proxy"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a linkmonitor configuration file without starting the checker.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  linkmonitor validate -c config.yaml
  linkmonitor validate --config /etc/linkmonitor/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addConfigFlag(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	proxyDesc := "direct"
	if p := proxy.Format(cfg.Proxy); p != nil {
		proxyDesc = p.Redacted()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:      %d\n", cfg.Port)
	fmt.Fprintf(out, "  Mode:      %s\n", cfg.Mode)
	fmt.Fprintf(out, "  Interval:  %s\n", cfg.Interval())
	fmt.Fprintf(out, "  Data dir:  %s\n", cfg.DataDir)
	fmt.Fprintf(out, "  Proxy:     %s\n", proxyDesc)
	fmt.Fprintf(out, "  Retry:     %d attempts\n", cfg.Retry.MaxAttempts)

	return nil
}
