package commands

import (
	"fmt"
	"os"

	"github.com/harborml/longshore/cmd/longshorectl/cmdutil"
	"github.com/harborml/longshore/pkg/apiclient"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <upload-id>",
	Short: "Show progress of an upload session",
	Long: `Show how many chunks the server has stored for an upload session.

Examples:
  # Show progress as table
  longshorectl status 550e8400-e29b-41d4-a716-446655440000

  # Show progress as JSON (includes the full chunk index list)
  longshorectl status 550e8400-e29b-41d4-a716-446655440000 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

// uploadProgress renders an upload status as a table.
type uploadProgress struct {
	status *apiclient.UploadStatus
}

// Headers implements TableRenderer.
func (u uploadProgress) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (u uploadProgress) Rows() [][]string {
	s := u.status
	percent := 0.0
	if s.TotalChunks > 0 {
		percent = float64(len(s.ReceivedChunks)) / float64(s.TotalChunks) * 100
	}
	return [][]string{
		{"Upload ID", s.UploadID},
		{"Chunks received", fmt.Sprintf("%d/%d (%.1f%%)", len(s.ReceivedChunks), s.TotalChunks, percent)},
		{"Missing", fmt.Sprintf("%d", s.TotalChunks-len(s.ReceivedChunks))},
		{"Complete", cmdutil.BoolToYesNo(s.IsComplete)},
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	uploadID := args[0]

	client := cmdutil.GetClient()
	status, err := client.UploadStatus(uploadID)
	if err != nil {
		return fmt.Errorf("failed to get upload status: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, status, uploadProgress{status: status})
}
