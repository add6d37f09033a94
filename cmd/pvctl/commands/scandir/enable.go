package scandir

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/pkg/apiclient"
)

var enableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a scan directory",
	Long: `Enable a previously disabled scan directory. The directory is picked up
again on the agent's next pass.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a scan directory",
	Long: `Disable a scan directory without deleting its indexed rows. The agent
stops scanning it until it is enabled again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], false)
	},
}

func setEnabled(cmd *cobra.Command, id string, enabled bool) error {
	client := cmdutil.GetClient()

	dir, err := client.GetScanDirectory(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to fetch scan directory: %w", err)
	}

	// Path changes are rejected by the server, so resend the current one.
	_, err = client.UpdateScanDirectory(cmd.Context(), id, apiclient.ScanDirRequest{
		Path:     dir.Path,
		Hostname: dir.Hostname,
		Enabled:  &enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to update scan directory: %w", err)
	}

	if enabled {
		cmdutil.PrintSuccess(fmt.Sprintf("Scan directory '%s' enabled", dir.Path))
	} else {
		cmdutil.PrintSuccess(fmt.Sprintf("Scan directory '%s' disabled", dir.Path))
	}
	return nil
}
