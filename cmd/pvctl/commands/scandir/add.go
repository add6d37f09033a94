package scandir

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	"github.com/marmos91/photovault/pkg/apiclient"
)

var addHostname string

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Register a scan directory",
	Long: `Register a directory for indexing.

The path must be absolute and is interpreted on the host whose discovery
agent will scan it, not on the machine running pvctl. Without --hostname
the local hostname is used.

Examples:
  # Register a directory for this host
  pvctl scandir add /mnt/photos

  # Register a directory for a NAS
  pvctl scandir add /volume1/photo --hostname nas-01`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addHostname, "hostname", "", "Host whose agent scans the directory (default: local hostname)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	hostname := addHostname
	if hostname == "" {
		var err error
		hostname, err = os.Hostname()
		if err != nil {
			return fmt.Errorf("failed to resolve local hostname, pass --hostname: %w", err)
		}
	}

	client := cmdutil.GetClient()
	dir, err := client.CreateScanDirectory(cmd.Context(), apiclient.ScanDirRequest{
		Path:     args[0],
		Hostname: hostname,
	})
	if err != nil {
		return fmt.Errorf("failed to register scan directory: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Scan directory '%s' registered on %s (id: %s)", dir.Path, dir.Hostname, dir.ID))
	return nil
}
