package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/jpalmerr/linkmonitor"
	"github.com/jpalmerr/linkmonitor/internal/store"
	"github.com/spf13/cobra"
)

// targetsCmd groups the target list commands.
var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Show or replace the monitored URLs",
}

var targetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the target list with the latest results",
	Args:  cobra.NoArgs,
	RunE:  runTargetsList,
}

var targetsSetCmd = &cobra.Command{
	Use:   "set [urls...]",
	Short: "Replace the URL set",
	Long: `Replace the monitored URL set.

URLs come from the arguments or, with --file, from a file holding one URL
per line ("-" reads stdin). URLs without a scheme get https://. URLs that
are already monitored keep their last result; new ones start as PENDING.

Example:
  linkmonitor targets set -c config.yaml example.com https://example.org
  linkmonitor targets set -c config.yaml --file urls.txt`,
	RunE: runTargetsSet,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.AddCommand(targetsListCmd, targetsSetCmd)

	addConfigFlag(targetsListCmd)
	targetsListCmd.Flags().Bool("json", false, "print the list as JSON")

	addConfigFlag(targetsSetCmd)
	targetsSetCmd.Flags().StringP("file", "f", "", `read URLs from a file, one per line ("-" for stdin)`)
}

func runTargetsList(cmd *cobra.Command, args []string) error {
	m, _, _, err := loadMonitor(cmd)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	return printTargets(cmd.OutOrStdout(), m.Targets(), asJSON)
}

func runTargetsSet(cmd *cobra.Command, args []string) error {
	m, _, _, err := loadMonitor(cmd)
	if err != nil {
		return err
	}

	urls := args
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		text, err := readURLFile(cmd, path)
		if err != nil {
			return err
		}
		urls = append(urls, store.SplitURLList(text)...)
	}
	if len(urls) == 0 {
		return errors.New("no URLs given; pass them as arguments or with --file")
	}

	targets, err := m.SaveTargets(urls)
	if err != nil {
		return fmt.Errorf("failed to save targets: %w", err)
	}
	return printTargets(cmd.OutOrStdout(), targets, false)
}

func readURLFile(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read URL file: %w", err)
	}
	return string(data), nil
}

func printTargets(w io.Writer, targets []linkmonitor.Target, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(targets)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "URL\tSTATUS\tCODE\tLATENCY\tLAST CHECK")
	for _, t := range targets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dms\t%s\n", t.URL, t.Status, t.Code, t.Latency, t.LastCheck)
	}
	return tw.Flush()
}
