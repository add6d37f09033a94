package pref

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"delete", "rm"},
	Short:   "Remove a selection preference",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]
	client := cmdutil.GetClient()

	return cmdutil.RunDeleteWithConfirmation("preference", id, removeForce, func() error {
		return client.DeletePreference(cmd.Context(), id)
	})
}
