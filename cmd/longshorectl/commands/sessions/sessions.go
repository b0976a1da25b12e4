// Package sessions implements upload session management commands.
package sessions

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for upload session management.
var Cmd = &cobra.Command{
	Use:   "sessions",
	Short: "Upload session management",
	Long: `Manage live upload sessions on the Longshore server.

Session commands allow you to inspect in-flight uploads and abort
stalled ones, discarding their stored chunks.

Examples:
  # List live sessions
  longshorectl sessions list

  # List sessions in JSON format
  longshorectl sessions list -o json

  # Abort a session by upload id
  longshorectl sessions abort 550e8400-e29b-41d4-a716-446655440000`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(abortCmd)
}
