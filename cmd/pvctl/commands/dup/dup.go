// Package dup implements duplicate group commands for pvctl.
package dup

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for duplicate group management.
var Cmd = &cobra.Command{
	Use:     "dup",
	Aliases: []string{"duplicates", "duplicate"},
	Short:   "Duplicate group management",
	Long: `Inspect and resolve duplicate photo groups.

Files sharing a content hash form a group. One member is chosen as the
original, either automatically by the scoring engine or manually; the rest
can then be queued for archival by a cleaner agent.

Examples:
  # List pending groups
  pvctl dup list

  # Inspect one group with its score ranking
  pvctl dup show <group-id>

  # Let the scoring engine pick originals everywhere
  pvctl dup auto-select --all

  # Queue everything but the original for archival
  pvctl dup clean <group-id>`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(keepCmd)
	Cmd.AddCommand(autoSelectCmd)
	Cmd.AddCommand(cleanCmd)
}
