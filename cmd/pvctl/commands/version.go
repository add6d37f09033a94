package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/pkg/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the pvctl version, build information, and system details.`,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		if versionShort {
			fmt.Println(info.Version)
			return
		}

		fmt.Printf("pvctl %s\n", info.Version)
		fmt.Printf("  Commit:     %s\n", info.Commit)
		fmt.Printf("  Built:      %s\n", info.Date)
		fmt.Printf("  Go version: %s\n", info.GoVersion)
		fmt.Printf("  OS/Arch:    %s/%s\n", info.OS, info.Arch)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show only version number")
}
