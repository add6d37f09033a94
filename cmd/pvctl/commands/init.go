package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/photovault/pkg/config"
)

var (
	initConfigPath string
	initForce      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Write a configuration file populated with defaults.

The file is shared by the server and the agents; edit the sections that
apply to the processes running on this host.

Examples:
  # Write to the default location
  pvctl init

  # Write to a custom path
  pvctl init --config /etc/photovault/config.yaml

  # Overwrite an existing file
  pvctl init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initConfigPath, "config", "", "Path to write the config file (default: "+config.GetDefaultConfigPath()+")")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := initConfigPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: photovault start")
	fmt.Println("  3. Start an indexer with: photovault-indexer start")
	return nil
}
