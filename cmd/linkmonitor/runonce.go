package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/linkmonitor/internal/store"
	"github.com/spf13/cobra"
)

// runOnceCmd runs a single check cycle and exits.
var runOnceCmd = &cobra.Command{
	Use:   "run-once",
	Short: "Run one check cycle and exit",
	Long: `Run exactly one check cycle over the persisted target list, update the
data files and exit. Intended for cron in trigger mode.

Exit codes:
  0 - Cycle completed
  1 - Config invalid, cycle aborted or results could not be saved

Example:
  linkmonitor run-once -c config.yaml`,
	RunE: runRunOnce,
}

func init() {
	rootCmd.AddCommand(runOnceCmd)
	addConfigFlag(runOnceCmd)
}

func runRunOnce(cmd *cobra.Command, args []string) error {
	m, _, _, err := loadMonitor(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := m.RunOnce(ctx)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checked %d/%d targets\n", report.Checked, len(report.Targets))
	if !report.NextRun.IsZero() {
		fmt.Fprintf(out, "Next run: %s WIB\n", store.FormatClock(report.NextRun))
	}
	sum := m.Summary()
	fmt.Fprintf(out, "Safe: %d  Problems: %d\n", sum.Safe, sum.Problems)

	if err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}
	return nil
}
