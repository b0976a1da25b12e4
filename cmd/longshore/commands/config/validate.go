package config

import (
	"fmt"

	"github.com/harborml/longshore/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the Longshore configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  longshore config validate

  # Validate specific config file
  longshore config validate --config /etc/longshore/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	// Legal but probably unintended settings get a warning, not an error.
	var warnings []string
	if !cfg.Sessions.Persist {
		warnings = append(warnings, "Session persistence disabled - in-flight uploads will not survive restarts")
	}
	if !cfg.Sweeper.IsEnabled() {
		warnings = append(warnings, "Sweeper disabled - stale sessions will accumulate until aborted manually")
	}

	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Catalog backend: %s\n", cfg.Catalog.Type)
	fmt.Printf("  API port:        %d\n", cfg.Server.Port)
	fmt.Printf("  Chunk size:      %s\n", cfg.Upload.ChunkSize)
	fmt.Printf("  Log level:       %s\n", cfg.Logging.Level)

	return nil
}
