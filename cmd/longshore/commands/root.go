// Package commands implements the CLI commands for longshore server management.
package commands

import (
	"github.com/harborml/longshore/cmd/longshore/commands/config"
	"github.com/spf13/cobra"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// cfgFile is the --config persistent flag, shared by every subcommand
// through GetConfigFile.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "longshore",
	Short: "Longshore - Chunked upload server",
	Long: `Longshore is a resumable chunked-upload server for large dataset files.
Clients split files into fixed-size chunks and send them in any order, over
any number of connections; the server reassembles completed uploads, runs
them through a post-processing pipeline and registers them in a dataset
catalog.

Use "longshore [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/longshore/config.yaml)")

	rootCmd.AddCommand(
		startCmd,
		stopCmd,
		statusCmd,
		logsCmd,
		initCmd,
		migrateCmd,
		config.Cmd,
		versionCmd,
		completionCmd,
	)

	// We ship our own completion command.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
