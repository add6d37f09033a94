package worker

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause scanning on every indexer",
	Long: `Suspend scanning on every connected indexer. The current file finishes,
then the scan holds until resume.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cmdutil.GetClient().PauseIndexers(cmd.Context()); err != nil {
			return fmt.Errorf("failed to pause indexers: %w", err)
		}
		cmdutil.PrintSuccess("Indexers paused")
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume scanning on every indexer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cmdutil.GetClient().ResumeIndexers(cmd.Context()); err != nil {
			return fmt.Errorf("failed to resume indexers: %w", err)
		}
		cmdutil.PrintSuccess("Indexers resumed")
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Abort the current scan pass on every indexer",
	Long: `Abort the scan pass in progress on every connected indexer. Already
ingested batches stay; the pass restarts from the cursor on the next scan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cmdutil.GetClient().CancelIndexers(cmd.Context()); err != nil {
			return fmt.Errorf("failed to cancel scan passes: %w", err)
		}
		cmdutil.PrintSuccess("Scan passes cancelled")
		return nil
	},
}

var dryRunCmd = &cobra.Command{
	Use:   "dry-run <on|off>",
	Short: "Toggle dry-run mode on connected cleaners",
	Long: `Toggle dry-run mode on connected cleaners. Cleaners configured with
dry-run at boot ignore the command and stay in dry-run.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var enable bool
		switch args[0] {
		case "on":
			enable = true
		case "off":
			enable = false
		default:
			return fmt.Errorf("invalid value %q: must be on or off", args[0])
		}

		if err := cmdutil.GetClient().SetDryRun(cmd.Context(), enable); err != nil {
			return fmt.Errorf("failed to set dry-run mode: %w", err)
		}
		if enable {
			cmdutil.PrintSuccess("Cleaners set to dry-run")
		} else {
			cmdutil.PrintSuccess("Cleaners set to live mode")
		}
		return nil
	},
}
