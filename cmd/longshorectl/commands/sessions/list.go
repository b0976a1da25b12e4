package sessions

import (
	"fmt"
	"os"

	"github.com/harborml/longshore/cmd/longshorectl/cmdutil"
	"github.com/harborml/longshore/internal/bytesize"
	"github.com/harborml/longshore/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List live upload sessions",
	Long: `List all live upload sessions on the server, oldest first.

Examples:
  # List sessions as table
  longshorectl sessions list

  # List sessions as JSON
  longshorectl sessions list -o json`,
	RunE: runList,
}

// SessionList is a list of sessions for table rendering.
type SessionList []apiclient.Session

// Headers implements TableRenderer.
func (sl SessionList) Headers() []string {
	return []string{"UPLOAD_ID", "FILENAME", "SIZE", "CHUNKS", "COMPLETE", "CREATED_AT", "LAST_ACTIVITY"}
}

// Rows implements TableRenderer.
func (sl SessionList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, s := range sl {
		// Truncate filenames so the table stays readable.
		name := s.Filename
		if len(name) > 32 {
			name = name[:29] + "..."
		}
		rows = append(rows, []string{
			s.UploadID,
			name,
			bytesize.ByteSize(s.TotalSize).String(),
			fmt.Sprintf("%d/%d", s.ReceivedChunks, s.TotalChunks),
			cmdutil.BoolToYesNo(s.IsComplete),
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.LastActivity.Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()

	sessions, err := client.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, sessions, len(sessions) == 0,
		"No live upload sessions.", SessionList(sessions))
}
