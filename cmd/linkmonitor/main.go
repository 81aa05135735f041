// Package main is the entry point for the linkmonitor CLI.
//
// linkmonitor can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	linkmonitor serve -c config.yaml             # Run the loop and the API
//	linkmonitor run-once -c config.yaml          # One cycle, for cron
//	linkmonitor targets list -c config.yaml      # Show the target list
//	linkmonitor targets set -c config.yaml URL.. # Replace the URL set
//	linkmonitor status -c config.yaml            # Show checker liveness
//	linkmonitor validate -c config.yaml          # Validate configuration
//	linkmonitor version                          # Show version info
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultEnvFile = ".env"

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "linkmonitor",
	Short: "A periodic URL availability monitor",
	Long: `linkmonitor checks a list of URLs on a fixed schedule, optionally
through a proxy, and classifies each one as AMAN, CEK BY BK / NAWALA,
ERR <code>, DOWN or PROXY_ERROR.

Results and a liveness record are kept as JSON files in the data
directory, so observers can tell whether the checker is working, waiting
for its next cycle or offline.

Quick start:
  1. Create a config file (linkmonitor.yaml)
  2. Run: linkmonitor serve -c linkmonitor.yaml
  3. Open http://localhost:8080/api/system

Example config:
  data_dir: ./data
  interval_minutes: 10
  proxy: ${PROXY_URL:-}`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(cmd)
	},
}

// loadEnvFile loads KEY=VALUE pairs into the process environment before the
// config file is expanded. A missing default .env is ignored; a missing
// file named explicitly on the command line is an error.
func loadEnvFile(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}
	return fmt.Errorf("failed to load env file: %w", err)
}

// addConfigFlag registers the required -c/--config flag on cmd.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this linkmonitor binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "linkmonitor %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", defaultEnvFile, "dotenv file loaded before the config is parsed")

	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
