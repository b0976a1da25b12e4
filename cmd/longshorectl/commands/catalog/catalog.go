// Package catalog implements catalog browsing commands.
package catalog

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for catalog browsing.
var Cmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog browsing",
	Long: `Browse the catalog of completed uploads on the Longshore server.

Every successfully completed upload is registered in the catalog with
its detected format, size, and record count.

Examples:
  # List catalog entries
  longshorectl catalog list

  # Show one entry
  longshorectl catalog show 550e8400-e29b-41d4-a716-446655440000`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
}
