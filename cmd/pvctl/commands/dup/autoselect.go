package dup

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
)

var autoSelectAll bool

var autoSelectCmd = &cobra.Command{
	Use:   "auto-select [group-id]",
	Short: "Let the scoring engine pick originals",
	Long: `Run automatic original selection.

For a single group the scoring engine picks the best candidate unless the
margin to the runner-up is below the conflict threshold, in which case the
group stays pending for manual review. With --all every pending group is
scored.

Examples:
  # One group
  pvctl dup auto-select <group-id>

  # Every pending group
  pvctl dup auto-select --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAutoSelect,
}

func init() {
	autoSelectCmd.Flags().BoolVar(&autoSelectAll, "all", false, "Score every pending group")
}

func runAutoSelect(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()

	if autoSelectAll {
		if len(args) > 0 {
			return fmt.Errorf("cannot combine --all with a group id")
		}
		summary, err := client.AutoSelectAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("auto-selection failed: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Auto-selection complete: %d selected, %d conflicts, %d failed",
			summary.Selected, summary.Conflicts, summary.Failed))
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("provide a group id or --all")
	}

	result, err := client.AutoSelect(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("auto-selection failed: %w", err)
	}
	if result.Conflict {
		cmdutil.PrintSuccess(fmt.Sprintf("Group %s left pending: top candidates score too close", result.GroupID))
		return nil
	}
	cmdutil.PrintSuccess(fmt.Sprintf("Group %s: selected %s", result.GroupID, result.SelectedID))
	return nil
}
