package pref

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/pkg/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List selection preferences",
	RunE:  runList,
}

// PrefList is a list of preferences for table rendering.
type PrefList []models.SelectionPreference

// Headers implements TableRenderer.
func (pl PrefList) Headers() []string {
	return []string{"ID", "PREFIX", "PRIORITY", "SORT ORDER"}
}

// Rows implements TableRenderer.
func (pl PrefList) Rows() [][]string {
	rows := make([][]string, 0, len(pl))
	for _, p := range pl {
		rows = append(rows, []string{
			p.ID,
			p.Prefix,
			fmt.Sprintf("%d", p.Priority),
			fmt.Sprintf("%d", p.SortOrder),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	prefs, err := cmdutil.GetClient().ListPreferences(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list preferences: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, prefs, len(prefs) == 0, "No selection preferences configured.", PrefList(prefs))
}
