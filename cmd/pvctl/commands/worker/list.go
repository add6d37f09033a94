package worker

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/pkg/apiclient"
)

var listFresh bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workers",
	Long: `List every worker the server has seen since startup, including
disconnected ones with their last known status.

Examples:
  # List workers
  pvctl worker list

  # Ask connected workers for a fresh report first
  pvctl worker list --fresh`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listFresh, "fresh", false, "Request a fresh status report before listing")
}

// WorkerList is a list of workers for table rendering.
type WorkerList []apiclient.WorkerView

// Headers implements TableRenderer.
func (wl WorkerList) Headers() []string {
	return []string{"ID", "KIND", "HOSTNAME", "CONNECTED", "STATE", "FILES", "ERRORS", "RATE", "LAST SEEN"}
}

// Rows implements TableRenderer.
func (wl WorkerList) Rows() [][]string {
	rows := make([][]string, 0, len(wl))
	for _, w := range wl {
		state, files, errors, rate := "-", "-", "-", "-"
		if w.Status != nil {
			state = w.Status.State
			files = fmt.Sprintf("%d", w.Status.FilesProcessed)
			errors = fmt.Sprintf("%d", w.Status.ErrorCount)
			if w.Status.FilesPerSecond > 0 {
				rate = fmt.Sprintf("%.1f/s", w.Status.FilesPerSecond)
			}
		}
		lastSeen := w.LastSeenAt
		rows = append(rows, []string{
			w.ID,
			w.Kind,
			w.Hostname,
			cmdutil.BoolToYesNo(w.Connected),
			state,
			files,
			errors,
			rate,
			cmdutil.FormatTime(&lastSeen),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	ctx := cmd.Context()

	if listFresh {
		if err := client.RequestWorkerStatus(ctx); err != nil {
			return fmt.Errorf("failed to request status: %w", err)
		}
		// Reports arrive asynchronously over the hub.
		time.Sleep(500 * time.Millisecond)
	}

	workers, err := client.ListWorkers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workers: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, workers, len(workers) == 0, "No workers have connected yet.", WorkerList(workers))
}
