// Package commands implements the CLI commands for the longshorectl client.
package commands

import (
	"os"

	"github.com/harborml/longshore/cmd/longshorectl/cmdutil"
	catalogcmd "github.com/harborml/longshore/cmd/longshorectl/commands/catalog"
	sessionscmd "github.com/harborml/longshore/cmd/longshorectl/commands/sessions"
	"github.com/spf13/cobra"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "longshorectl",
	Short: "Longshore Control - Chunked upload client",
	Long: `longshorectl is the command-line client for working with Longshore servers.

Use this tool to upload files in resumable chunks, inspect upload progress,
and browse the catalog of completed uploads through the Longshore REST API.

Use "longshorectl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Subcommands read global flags through cmdutil.Flags rather than
	// walking up the command tree.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Server URL (overrides LONGSHORE_SERVER)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		uploadCmd,
		statusCmd,
		healthCmd,
		sessionscmd.Cmd,
		catalogcmd.Cmd,
		versionCmd,
		completionCmd,
	)

	// We ship our own completion command.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
