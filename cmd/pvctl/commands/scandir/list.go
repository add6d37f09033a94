package scandir

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/pkg/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scan directories",
	Long: `List every scan directory registered on the server.

Examples:
  # List as table
  pvctl scandir list

  # List as JSON
  pvctl scandir list -o json`,
	RunE: runList,
}

// DirList is a list of scan directories for table rendering.
type DirList []models.ScanDirectory

// Headers implements TableRenderer.
func (dl DirList) Headers() []string {
	return []string{"ID", "PATH", "HOSTNAME", "ENABLED", "LAST SCAN"}
}

// Rows implements TableRenderer.
func (dl DirList) Rows() [][]string {
	rows := make([][]string, 0, len(dl))
	for _, d := range dl {
		rows = append(rows, []string{
			d.ID,
			d.Path,
			d.Hostname,
			cmdutil.BoolToYesNo(d.Enabled),
			cmdutil.FormatTime(d.LastScanAt),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()

	dirs, err := client.ListScanDirectories(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list scan directories: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, dirs, len(dirs) == 0, "No scan directories registered.", DirList(dirs))
}
