// Package worker implements worker fleet commands for pvctl.
package worker

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for worker fleet management.
var Cmd = &cobra.Command{
	Use:     "worker",
	Aliases: []string{"workers"},
	Short:   "Worker fleet management",
	Long: `Inspect and control the indexer and cleaner agents connected to the
server's control channel.

Examples:
  # List every worker the server has seen
  pvctl worker list

  # Pause scanning everywhere
  pvctl worker pause

  # Resume scanning
  pvctl worker resume

  # Put cleaners into dry-run mode
  pvctl worker dry-run on`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(pauseCmd)
	Cmd.AddCommand(resumeCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(dryRunCmd)
}
