package job

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a queued or running job",
	Long: `Cancel a cleanup job. Files already archived stay in the trash
directory; remaining files are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cmdutil.GetClient().CancelJob(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to cancel job: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Job %s cancelled", args[0]))
		return nil
	},
}

var retryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Re-queue a failed job",
	Long: `Re-queue a failed cleanup job. Only files that failed or were never
attempted are retried; succeeded files are not archived twice.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := cmdutil.GetClient().RetryJob(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to retry job: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Job %s re-queued (%d files)", job.ID, job.TotalFiles))
		return nil
	},
}
