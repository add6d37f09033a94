package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/internal/cli/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library statistics",
	Long: `Display aggregate statistics over the indexed photo library: how many
files are known, how many duplicate groups exist, and how much space the
redundant copies waste.

Examples:
  pvctl stats
  pvctl stats -o json`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()

	stats, err := client.FileStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch statistics: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, stats)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, stats)
	default:
		return output.SimpleTable(os.Stdout, [][2]string{
			{"Indexed files", fmt.Sprintf("%d", stats.TotalFiles)},
			{"Total size", cmdutil.FormatBytes(stats.TotalSize)},
			{"Duplicate groups", fmt.Sprintf("%d", stats.DuplicateGroups)},
			{"Duplicate files", fmt.Sprintf("%d", stats.DuplicateFiles)},
			{"Wasted size", cmdutil.FormatBytes(stats.WastedSize)},
			{"Archived files", fmt.Sprintf("%d", stats.ArchivedFiles)},
			{"Hidden files", fmt.Sprintf("%d", stats.HiddenFiles)},
			{"Failed files", fmt.Sprintf("%d", stats.FailedFiles)},
		})
	}
}
