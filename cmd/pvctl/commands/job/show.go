package job

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/internal/cli/output"
	"github.com/marmos91/photovault/pkg/models"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a cleaner job",
	Long: `Show a cleanup job with its per-file breakdown, including archive
locations and the reason any file was skipped or failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

// FileTable renders a job's per-file breakdown.
type FileTable []models.CleanerJobFile

// Headers implements TableRenderer.
func (ft FileTable) Headers() []string {
	return []string{"FILE ID", "STATUS", "PATH", "SIZE", "ARCHIVED TO", "ERROR"}
}

// Rows implements TableRenderer.
func (ft FileTable) Rows() [][]string {
	rows := make([][]string, 0, len(ft))
	for _, f := range ft {
		rows = append(rows, []string{
			f.FileID,
			string(f.Status),
			cmdutil.Truncate(f.Path, 50),
			cmdutil.FormatBytes(f.Size),
			cmdutil.Truncate(cmdutil.EmptyOr(deref(f.ArchivePath), "-"), 50),
			cmdutil.EmptyOr(deref(f.Error), "-"),
		})
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func runShow(cmd *cobra.Command, args []string) error {
	job, err := cmdutil.GetClient().GetJob(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return cmdutil.PrintResource(os.Stdout, job, nil)
	}

	summary := [][2]string{
		{"ID", job.ID},
		{"Status", string(job.Status)},
		{"Category", string(job.Category)},
		{"Dry run", cmdutil.BoolToYesNo(job.DryRun)},
		{"Files", fmt.Sprintf("%d total, %d ok, %d failed, %d skipped",
			job.TotalFiles, job.SucceededCnt, job.FailedCnt, job.SkippedCnt)},
		{"Started", cmdutil.FormatTime(job.StartedAt)},
		{"Completed", cmdutil.FormatTime(job.CompletedAt)},
	}
	if job.GroupID != nil {
		summary = append(summary, [2]string{"Group", *job.GroupID})
	}
	if err := output.SimpleTable(os.Stdout, summary); err != nil {
		return err
	}

	if len(job.Files) > 0 {
		fmt.Println()
		return output.PrintTable(os.Stdout, FileTable(job.Files))
	}
	return nil
}
