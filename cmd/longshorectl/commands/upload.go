package commands

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harborml/longshore/cmd/longshorectl/cmdutil"
	"github.com/harborml/longshore/internal/bytesize"
	"github.com/harborml/longshore/internal/cli/output"
	"github.com/harborml/longshore/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	uploadParallel  int
	uploadVerify    bool
	uploadResume    string
	uploadChunkSize string
	uploadQuiet     bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a file in resumable chunks",
	Long: `Upload a file to the Longshore server in chunks.

Chunks are sent concurrently and the session survives interruptions: if the
upload fails partway, re-run with --resume and the session id to send only
the missing chunks.

Examples:
  # Upload a file
  longshorectl upload training-data.csv

  # Upload with checksum verification and 8 concurrent chunks
  longshorectl upload training-data.csv --verify --parallel 8

  # Resume an interrupted upload
  longshorectl upload training-data.csv --resume 550e8400-e29b-41d4-a716-446655440000`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().IntVarP(&uploadParallel, "parallel", "p", apiclient.DefaultParallelChunks, "Number of chunks uploaded concurrently")
	uploadCmd.Flags().BoolVar(&uploadVerify, "verify", false, "Compute a SHA-256 checksum and compare it with the server's")
	uploadCmd.Flags().StringVar(&uploadResume, "resume", "", "Resume an existing session by upload id")
	uploadCmd.Flags().StringVar(&uploadChunkSize, "chunk-size", "", "Chunk size when resuming, e.g. 1MB (must match the session)")
	uploadCmd.Flags().BoolVarP(&uploadQuiet, "quiet", "q", false, "Suppress progress output")
}

// uploadResult is the table rendering for a completed upload.
type uploadResult struct {
	resp *apiclient.CompleteUploadResponse
}

// Headers implements TableRenderer.
func (u uploadResult) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (u uploadResult) Rows() [][]string {
	meta := u.resp.Metadata
	rows := [][]string{
		{"Filepath", u.resp.Filepath},
	}
	if meta != nil {
		rows = append(rows,
			[]string{"Upload ID", meta.UploadID},
			[]string{"Filename", meta.Filename},
			[]string{"Size", bytesize.ByteSize(meta.Size).String()},
			[]string{"File type", cmdutil.EmptyOr(meta.FileType, "-")},
			[]string{"Checksum", cmdutil.EmptyOr(meta.Checksum, "-")},
		)
	}
	if u.resp.DownstreamJobID != "" {
		rows = append(rows, []string{"Downstream job", u.resp.DownstreamJobID})
	}
	return rows
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	opts := apiclient.UploadOptions{
		Parallel: uploadParallel,
		ResumeID: uploadResume,
	}

	if uploadChunkSize != "" {
		size, err := bytesize.Parse(uploadChunkSize)
		if err != nil {
			return fmt.Errorf("invalid chunk size: %w", err)
		}
		opts.ChunkSize = size.Int64()
	}

	if uploadVerify {
		if !uploadQuiet {
			fmt.Fprintf(os.Stderr, "Computing checksum of %s...\n", path)
		}
		checksum, err := apiclient.FileChecksum(path)
		if err != nil {
			return err
		}
		opts.Checksum = checksum
	}

	// Progress only makes sense for interactive table output.
	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	showProgress := !uploadQuiet && format == output.FormatTable
	if showProgress {
		opts.OnProgress = func(stored, total int) {
			fmt.Fprintf(os.Stderr, "\rUploading %s: %d/%d chunks", info.Name(), stored, total)
		}
	}

	// Ctrl+C cancels in-flight chunks; the session stays resumable.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := cmdutil.GetClient()
	resp, err := client.UploadFile(ctx, path, opts)
	if showProgress {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		var uploadErr *apiclient.UploadError
		if errors.As(err, &uploadErr) {
			PrintErr("Upload failed: %v", uploadErr.Err)
			Exit("Resume with: longshorectl upload %s --resume %s", path, uploadErr.UploadID)
		}
		return err
	}

	// The server computes its own checksum over the reassembled file, so a
	// mismatch means the bytes changed in transit or on disk.
	if uploadVerify && resp.Metadata != nil && resp.Metadata.Checksum != opts.Checksum {
		return fmt.Errorf("checksum mismatch: local %s, server %s", opts.Checksum, resp.Metadata.Checksum)
	}

	if err := cmdutil.PrintResource(os.Stdout, resp, uploadResult{resp: resp}); err != nil {
		return err
	}
	cmdutil.PrintSuccess(fmt.Sprintf("Uploaded %s (%s)", info.Name(), bytesize.ByteSize(info.Size()).String()))
	return nil
}
