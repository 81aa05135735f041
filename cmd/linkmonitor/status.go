package main

import (
	"fmt"

	"github.com/jpalmerr/linkmonitor/internal/store"
	"github.com/spf13/cobra"
)

// statusCmd prints the checker liveness as an observer sees it.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the checker is working, waiting or offline",
	Long: `Read the liveness record from the data directory and print the derived
state: OFFLINE when the heartbeat is older than 720 seconds, otherwise
WORKING, WAITING with the time left until the next cycle, or DUE.

Example:
  linkmonitor status -c config.yaml`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	addConfigFlag(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	m, _, _, err := loadMonitor(cmd)
	if err != nil {
		return err
	}

	view := m.System()
	sum := m.Summary()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "State:     %s\n", view.Display)
	fmt.Fprintf(out, "Message:   %s\n", view.Message())
	if hb := view.Record.HeartbeatTime(); !hb.IsZero() {
		fmt.Fprintf(out, "Heartbeat: %s WIB\n", store.FormatClock(hb))
	}
	if next := view.Record.NextRunTime(); !next.IsZero() {
		fmt.Fprintf(out, "Next run:  %s WIB\n", store.FormatClock(next))
	}
	fmt.Fprintf(out, "Targets:   %d (%d safe, %d problems)\n", sum.Total, sum.Safe, sum.Problems)
	return nil
}
