package scandir

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
)

var scanCmd = &cobra.Command{
	Use:   "scan <id>",
	Short: "Trigger an immediate scan",
	Long: `Ask the directory's discovery agent to start a scan pass now.

The agent must be connected; otherwise the command fails and the directory
is picked up on the agent's next start.

Examples:
  pvctl scandir scan <id>`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()

	if err := client.TriggerScan(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to trigger scan: %w", err)
	}

	cmdutil.PrintSuccess("Scan triggered")
	return nil
}
