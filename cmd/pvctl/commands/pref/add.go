package pref

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/pkg/apiclient"
)

var (
	addPriority  int
	addSortOrder int
)

var addCmd = &cobra.Command{
	Use:   "add <prefix>",
	Short: "Add a selection preference",
	Long: `Register a path-prefix preference for original scoring. Matching is
segment-aware: /photos/album does not match /photos/albums.

Examples:
  # Favor a curated tree
  pvctl pref add /photos/albums --priority 80

  # Break ties between equal-length prefixes
  pvctl pref add /photos/albums/2024 --priority 80 --sort-order 1`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().IntVar(&addPriority, "priority", 50, "Priority for files under this prefix (higher wins)")
	addCmd.Flags().IntVar(&addSortOrder, "sort-order", 0, "Tie-breaker between equal-length prefixes")
}

func runAdd(cmd *cobra.Command, args []string) error {
	pref, err := cmdutil.GetClient().CreatePreference(cmd.Context(), apiclient.PreferenceRequest{
		Prefix:    args[0],
		Priority:  addPriority,
		SortOrder: addSortOrder,
	})
	if err != nil {
		return fmt.Errorf("failed to create preference: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Preference %s created: %s (priority %d)", pref.ID, pref.Prefix, pref.Priority))
	return nil
}
