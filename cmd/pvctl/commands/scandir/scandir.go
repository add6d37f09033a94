// Package scandir implements scan directory management commands for pvctl.
package scandir

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for scan directory management.
var Cmd = &cobra.Command{
	Use:     "scandir",
	Aliases: []string{"scan-directory", "dir"},
	Short:   "Scan directory management",
	Long: `Manage the scan directories indexed by PhotoVault.

Each scan directory is assigned to a host; the discovery agent running on
that host walks it, hashes every photo and keeps the index current.

Examples:
  # List all scan directories
  pvctl scandir list

  # Register a directory for a host
  pvctl scandir add /mnt/photos --hostname nas-01

  # Trigger an immediate scan
  pvctl scandir scan <id>

  # Disable a directory without deleting its index
  pvctl scandir disable <id>`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(scanCmd)
	Cmd.AddCommand(enableCmd)
	Cmd.AddCommand(disableCmd)
}
