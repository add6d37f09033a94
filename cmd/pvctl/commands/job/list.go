package job

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/pkg/models"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cleaner jobs",
	Long: `List cleanup jobs, newest first.

Examples:
  # All jobs
  pvctl job list

  # Only failed jobs
  pvctl job list --status failed`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "",
		"Filter by status (pending|inProgress|completed|failed|cancelled)")
}

// JobList is a list of cleaner jobs for table rendering.
type JobList []models.CleanerJob

// Headers implements TableRenderer.
func (jl JobList) Headers() []string {
	return []string{"ID", "STATUS", "CATEGORY", "DRY RUN", "FILES", "OK", "FAILED", "SKIPPED", "CREATED"}
}

// Rows implements TableRenderer.
func (jl JobList) Rows() [][]string {
	rows := make([][]string, 0, len(jl))
	for _, j := range jl {
		created := j.CreatedAt
		rows = append(rows, []string{
			j.ID,
			string(j.Status),
			string(j.Category),
			cmdutil.BoolToYesNo(j.DryRun),
			fmt.Sprintf("%d", j.TotalFiles),
			fmt.Sprintf("%d", j.SucceededCnt),
			fmt.Sprintf("%d", j.FailedCnt),
			fmt.Sprintf("%d", j.SkippedCnt),
			cmdutil.FormatTime(&created),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	jobs, err := cmdutil.GetClient().ListJobs(cmd.Context(), listStatus)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, jobs, len(jobs) == 0, "No cleanup jobs found.", JobList(jobs))
}
