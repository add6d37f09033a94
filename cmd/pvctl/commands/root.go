// Package commands implements the CLI commands for the pvctl client.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/cmd/pvctl/cmdutil"
	dupcmd "github.com/marmos91/photovault/cmd/pvctl/commands/dup"
	jobcmd "github.com/marmos91/photovault/cmd/pvctl/commands/job"
	prefcmd "github.com/marmos91/photovault/cmd/pvctl/commands/pref"
	scandircmd "github.com/marmos91/photovault/cmd/pvctl/commands/scandir"
	workercmd "github.com/marmos91/photovault/cmd/pvctl/commands/worker"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pvctl",
	Short: "PhotoVault Control - Remote management client",
	Long: `pvctl is the command-line client for managing a PhotoVault server.

Use this tool to manage scan directories, review duplicate groups, drive
cleanup jobs and inspect connected workers through the PhotoVault REST API.

The server is located through the --server flag or the PHOTOVAULT_SERVER
environment variable, defaulting to ` + cmdutil.DefaultServerURL + `.

Use "pvctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Sync flags to cmdutil.Flags for subcommands
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().String("server", "", "Server URL (overrides PHOTOVAULT_SERVER)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(scandircmd.Cmd)
	rootCmd.AddCommand(dupcmd.Cmd)
	rootCmd.AddCommand(workercmd.Cmd)
	rootCmd.AddCommand(jobcmd.Cmd)
	rootCmd.AddCommand(prefcmd.Cmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)

	// Hide the default completion command (we provide our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
