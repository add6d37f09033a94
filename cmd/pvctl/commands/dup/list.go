package dup

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/internal/cli/output"
	"github.com/marmos91/photovault/pkg/models"
)

var (
	listStatus  string
	listPage    int
	listPerPage int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List duplicate groups",
	Long: `List duplicate groups, newest first.

Examples:
  # First page of pending groups
  pvctl dup list

  # Resolved groups
  pvctl dup list --status resolved

  # Page through
  pvctl dup list --page 3 --per-page 50`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (pending|autoSelected|validated|cleaning|cleaned|cleaningFailed)")
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	listCmd.Flags().IntVar(&listPerPage, "per-page", 20, "Groups per page")
}

// GroupList is a list of duplicate groups for table rendering.
type GroupList []models.DuplicateGroup

// Headers implements TableRenderer.
func (gl GroupList) Headers() []string {
	return []string{"ID", "STATUS", "FILES", "TOTAL SIZE", "ORIGINAL", "CREATED"}
}

// Rows implements TableRenderer.
func (gl GroupList) Rows() [][]string {
	rows := make([][]string, 0, len(gl))
	for _, g := range gl {
		original := "-"
		if g.KeptFileID != nil {
			original = *g.KeptFileID
		}
		created := g.CreatedAt
		rows = append(rows, []string{
			g.ID,
			string(g.Status),
			fmt.Sprintf("%d", g.FileCount),
			cmdutil.FormatBytes(g.TotalSize),
			original,
			cmdutil.FormatTime(&created),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()

	page, err := client.ListDuplicates(cmd.Context(), listStatus, listPage, listPerPage)
	if err != nil {
		return fmt.Errorf("failed to list duplicate groups: %w", err)
	}

	if err := cmdutil.PrintOutput(os.Stdout, page, len(page.Items) == 0, "No duplicate groups found.", GroupList(page.Items)); err != nil {
		return err
	}
	if format, _ := cmdutil.GetOutputFormatParsed(); format == output.FormatTable && page.Total > int64(len(page.Items)) {
		fmt.Printf("\nShowing %d of %d groups (page %d)\n", len(page.Items), page.Total, listPage)
	}
	return nil
}
