package scandir

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"delete", "rm"},
	Short:   "Remove a scan directory",
	Long: `Remove a scan directory and the indexed rows under it.

Files on disk are never touched; only the index forgets them. You will be
prompted for confirmation unless --force is specified.

Examples:
  # Remove with confirmation
  pvctl scandir remove <id>

  # Remove without confirmation
  pvctl scandir remove <id> --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]
	client := cmdutil.GetClient()

	return cmdutil.RunDeleteWithConfirmation("Scan directory", id, removeForce, func() error {
		if err := client.DeleteScanDirectory(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to remove scan directory: %w", err)
		}
		return nil
	})
}
