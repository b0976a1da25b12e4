package sessions

import (
	"fmt"

	"github.com/harborml/longshore/cmd/longshorectl/cmdutil"
	"github.com/harborml/longshore/internal/cli/prompt"
	"github.com/harborml/longshore/pkg/apiclient"
	"github.com/spf13/cobra"
)

var abortYes bool

var abortCmd = &cobra.Command{
	Use:   "abort [upload-id]",
	Short: "Abort an upload session",
	Long: `Abort a live upload session, discarding its stored chunks.

An aborted session cannot be resumed. When no upload id is given,
an interactive picker lists the live sessions.

Examples:
  # Abort a session (with confirmation prompt)
  longshorectl sessions abort 550e8400-e29b-41d4-a716-446655440000

  # Abort without confirmation
  longshorectl sessions abort 550e8400-e29b-41d4-a716-446655440000 --yes

  # Pick a session interactively
  longshorectl sessions abort`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAbort,
}

func init() {
	abortCmd.Flags().BoolVarP(&abortYes, "yes", "y", false, "Skip confirmation prompt")
}

func runAbort(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()

	var uploadID string
	if len(args) == 1 {
		uploadID = args[0]
	} else {
		picked, err := pickSession(client)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
		if picked == "" {
			fmt.Println("No live upload sessions.")
			return nil
		}
		uploadID = picked
	}

	confirmed, err := prompt.ConfirmWithForce(
		fmt.Sprintf("Abort upload %s and discard its chunks?", uploadID),
		abortYes,
	)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := client.AbortSession(uploadID); err != nil {
		return fmt.Errorf("failed to abort session: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Upload %s aborted", uploadID))
	return nil
}

// pickSession prompts for a session when none was named. Returns "" when
// the server has no live sessions.
func pickSession(client *apiclient.Client) (string, error) {
	sessions, err := client.ListSessions()
	if err != nil {
		return "", fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return "", nil
	}

	options := make([]prompt.SelectOption, 0, len(sessions))
	for _, s := range sessions {
		options = append(options, prompt.SelectOption{
			Label: fmt.Sprintf("%s (%s)", s.Filename, s.UploadID),
			Value: s.UploadID,
			Description: fmt.Sprintf("%d/%d chunks, last activity %s",
				s.ReceivedChunks, s.TotalChunks, s.LastActivity.Format("2006-01-02 15:04:05")),
		})
	}

	return prompt.Select("Select session to abort", options)
}
