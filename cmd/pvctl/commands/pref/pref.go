// Package pref implements selection preference commands for pvctl.
package pref

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for selection preference management.
var Cmd = &cobra.Command{
	Use:     "pref",
	Aliases: []string{"prefs", "preference", "preferences"},
	Short:   "Selection preference management",
	Long: `Manage the path-prefix preferences that bias original selection.
Files under a higher-priority prefix win the scoring round; the longest
matching prefix is consulted first.

Examples:
  # List preferences
  pvctl pref list

  # Prefer curated albums over camera dumps
  pvctl pref add /photos/albums --priority 80
  pvctl pref add /photos/incoming --priority 10`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(removeCmd)
}
