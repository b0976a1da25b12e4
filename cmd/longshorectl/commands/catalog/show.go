package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/harborml/longshore/cmd/longshorectl/cmdutil"
	"github.com/harborml/longshore/internal/bytesize"
	"github.com/harborml/longshore/pkg/apiclient"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a catalog entry",
	Long: `Show the full details of one catalog entry.

Examples:
  # Show an entry as table
  longshorectl catalog show 550e8400-e29b-41d4-a716-446655440000

  # Show an entry as JSON
  longshorectl catalog show 550e8400-e29b-41d4-a716-446655440000 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

// entryDetail renders a single catalog entry as a table.
type entryDetail struct {
	entry *apiclient.CatalogEntry
}

// Headers implements TableRenderer.
func (d entryDetail) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (d entryDetail) Rows() [][]string {
	e := d.entry
	records := "-"
	if e.RecordCount > 0 {
		records = strconv.FormatInt(e.RecordCount, 10)
	}
	return [][]string{
		{"ID", e.ID},
		{"Upload ID", e.UploadID},
		{"Name", e.Name},
		{"Path", e.Path},
		{"File type", cmdutil.EmptyOr(e.FileType, "-")},
		{"Format", cmdutil.EmptyOr(e.Format, "-")},
		{"Size", bytesize.ByteSize(e.SizeBytes).String()},
		{"Records", records},
		{"Checksum", cmdutil.EmptyOr(e.Checksum, "-")},
		{"Registered", e.RegisteredAt.Format("2006-01-02 15:04:05")},
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	client := cmdutil.GetClient()
	entry, err := client.GetCatalogEntry(id)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			return fmt.Errorf("catalog entry %s not found", id)
		}
		return fmt.Errorf("failed to get catalog entry: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, entry, entryDetail{entry: entry})
}
