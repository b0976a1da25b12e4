package commands

import (
	"fmt"

	"github.com/harborml/longshore/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample Longshore configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/longshore/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  longshore init

  # Initialize with custom path
  longshore init --config /etc/longshore/config.yaml

  # Force overwrite existing config
  longshore init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	var configPath string
	var err error
	if configFile := GetConfigFile(); configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: longshore start")
	fmt.Printf("  3. Or specify custom config: longshore start --config %s\n", configPath)
	fmt.Println("\nNote on S3 archival:")
	fmt.Println("  When the archive sink is enabled, credentials are resolved from the")
	fmt.Println("  standard AWS environment (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)")
	fmt.Println("  or the shared credentials file. Avoid putting secrets in the config.")

	return nil
}
