// Package job implements cleaner job commands for pvctl.
package job

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for cleaner job management.
var Cmd = &cobra.Command{
	Use:     "job",
	Aliases: []string{"jobs"},
	Short:   "Cleaner job management",
	Long: `Inspect and control cleanup jobs. Jobs are created when a validated
group is queued for archival and are worked off by cleaner agents.

Examples:
  # List jobs
  pvctl job list

  # Show a job with its per-file breakdown
  pvctl job show <id>

  # Re-queue a failed job
  pvctl job retry <id>`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(retryCmd)
}
