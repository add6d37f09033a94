package dup

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/internal/cli/prompt"
)

var (
	cleanDryRun bool
	cleanForce  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <group-id>",
	Short: "Queue non-originals for archival",
	Long: `Queue every file in the group except the validated original for
archival by a cleaner agent. Files are moved to the cleaner's trash
directory, never deleted outright, and each one is re-verified against its
recorded hash before it moves.

Examples:
  # Queue with confirmation
  pvctl dup clean <group-id>

  # See what would happen without touching files
  pvctl dup clean <group-id> --dry-run

  # Skip the confirmation prompt
  pvctl dup clean <group-id> --force`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Report outcomes without touching files")
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "Skip confirmation prompt")
}

func runClean(cmd *cobra.Command, args []string) error {
	groupID := args[0]
	client := cmdutil.GetClient()

	if !cleanDryRun {
		confirmed, err := prompt.ConfirmWithForce(
			fmt.Sprintf("Archive all non-original files in group '%s'?", groupID), cleanForce)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	job, err := client.DeleteNonOriginals(cmd.Context(), groupID, cleanDryRun)
	if err != nil {
		return fmt.Errorf("failed to queue cleanup: %w", err)
	}

	mode := ""
	if job.DryRun {
		mode = " (dry run)"
	}
	cmdutil.PrintSuccess(fmt.Sprintf("Cleanup job %s queued: %d files%s", job.ID, job.TotalFiles, mode))
	return nil
}
