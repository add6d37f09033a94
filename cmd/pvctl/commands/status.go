package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/internal/cli/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the health and version of the configured PhotoVault server.

Examples:
  # Check the configured server
  pvctl status

  # Output as JSON
  pvctl status -o json`,
	RunE: runStatus,
}

// ServerStatus represents the server status for display.
type ServerStatus struct {
	Server  string `json:"server" yaml:"server"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Commit  string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	ctx := cmd.Context()

	status := ServerStatus{Server: client.BaseURL()}
	if err := client.Health(ctx); err != nil {
		status.Error = err.Error()
	} else {
		status.Healthy = true
		if info, err := client.Version(ctx); err == nil {
			status.Version = info.Version
			status.Commit = info.Commit
		}
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		return output.SimpleTable(os.Stdout, [][2]string{
			{"Server", status.Server},
			{"Healthy", cmdutil.BoolToYesNo(status.Healthy)},
			{"Version", cmdutil.EmptyOr(status.Version, "-")},
			{"Commit", cmdutil.EmptyOr(status.Commit, "-")},
			{"Error", cmdutil.EmptyOr(status.Error, "-")},
		})
	}
}
