package dup

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/internal/cli/output"
	"github.com/marmos91/photovault/pkg/apiclient"
)

var showCmd = &cobra.Command{
	Use:     "show <group-id>",
	Aliases: []string{"get"},
	Short:   "Show a duplicate group with its score ranking",
	Long: `Show a duplicate group: its members and the score each one earned from
the selection preferences, EXIF completeness, path depth and file age.

Examples:
  pvctl dup show <group-id>
  pvctl dup show <group-id> -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

// ScoreTable renders a group's score ranking.
type ScoreTable []apiclient.Score

// Headers implements TableRenderer.
func (st ScoreTable) Headers() []string {
	return []string{"FILE ID", "PATH", "PRIORITY", "EXIF", "DEPTH", "AGE", "TOTAL"}
}

// Rows implements TableRenderer.
func (st ScoreTable) Rows() [][]string {
	rows := make([][]string, 0, len(st))
	for _, s := range st {
		rows = append(rows, []string{
			s.FileID,
			cmdutil.Truncate(s.Path, 60),
			fmt.Sprintf("%d", s.Priority),
			fmt.Sprintf("%d", s.ExifBonus),
			fmt.Sprintf("%d", s.DepthBonus),
			fmt.Sprintf("%d", s.AgeBonus),
			fmt.Sprintf("%d", s.Total()),
		})
	}
	return rows
}

func runShow(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()

	detail, err := client.GetDuplicate(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch duplicate group: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return cmdutil.PrintResource(os.Stdout, detail, nil)
	}

	original := "-"
	if detail.KeptFileID != nil {
		original = *detail.KeptFileID
	}
	if err := output.SimpleTable(os.Stdout, [][2]string{
		{"Group", detail.ID},
		{"Hash", detail.Hash},
		{"Status", string(detail.Status)},
		{"Files", fmt.Sprintf("%d", detail.FileCount)},
		{"Total size", cmdutil.FormatBytes(detail.TotalSize)},
		{"Original", original},
	}); err != nil {
		return err
	}

	if len(detail.Scores) > 0 {
		fmt.Println()
		return output.PrintTable(os.Stdout, ScoreTable(detail.Scores))
	}
	return nil
}
