package dup

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
)

var keepCmd = &cobra.Command{
	Use:     "keep <group-id> <file-id>",
	Aliases: []string{"set-original"},
	Short:   "Mark a file as the group's original",
	Long: `Mark a file as the original of its duplicate group. The choice is
validated immediately; the other members become candidates for cleanup.

Examples:
  pvctl dup keep <group-id> <file-id>`,
	Args: cobra.ExactArgs(2),
	RunE: runKeep,
}

func runKeep(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()

	group, err := client.SetOriginal(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to set original: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Original set for group %s (status: %s)", group.ID, group.Status))
	return nil
}
