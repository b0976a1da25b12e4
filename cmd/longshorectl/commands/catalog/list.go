package catalog

import (
	"fmt"
	"os"
	"strconv"

	"github.com/harborml/longshore/cmd/longshorectl/cmdutil"
	"github.com/harborml/longshore/internal/bytesize"
	"github.com/harborml/longshore/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Long: `List all completed uploads registered in the catalog, newest first.

Examples:
  # List entries as table
  longshorectl catalog list

  # List entries as JSON
  longshorectl catalog list -o json`,
	RunE: runList,
}

// EntryList is a list of catalog entries for table rendering.
type EntryList []apiclient.CatalogEntry

// Headers implements TableRenderer.
func (el EntryList) Headers() []string {
	return []string{"ID", "NAME", "FORMAT", "SIZE", "RECORDS", "REGISTERED_AT"}
}

// Rows implements TableRenderer.
func (el EntryList) Rows() [][]string {
	rows := make([][]string, 0, len(el))
	for _, e := range el {
		// Truncate names so the table stays readable.
		name := e.Name
		if len(name) > 32 {
			name = name[:29] + "..."
		}
		records := "-"
		if e.RecordCount > 0 {
			records = strconv.FormatInt(e.RecordCount, 10)
		}
		rows = append(rows, []string{
			e.ID,
			name,
			cmdutil.EmptyOr(e.Format, "-"),
			bytesize.ByteSize(e.SizeBytes).String(),
			records,
			e.RegisteredAt.Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()

	entries, err := client.ListCatalog()
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, entries, len(entries) == 0,
		"No catalog entries.", EntryList(entries))
}
