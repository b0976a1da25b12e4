package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/harborml/longshore/internal/logger"
)

// ReassembleFile concatenates the committed chunks of an upload, in index
// order 0..totalChunks-1, into <completed_root>/<outputName> and returns the
// output path.
//
// outputName must be a bare filename: empty names and names containing
// path separators or dot segments are rejected with ErrUnsafeFilename.
// The committed set on disk must equal {0..totalChunks-1}; otherwise a
// *MissingChunksError is returned and nothing is written. When expectedSize
// is non-negative and the finished output's length differs, the output is
// deleted and ErrSizeMismatch returned. Any mid-stream failure deletes the
// partial output. Staging chunks are left in place; cleanup is a separate
// step.
func (s *Store) ReassembleFile(ctx context.Context, uploadID string, totalChunks int, outputName string, expectedSize int64) (string, error) {
	if totalChunks <= 0 {
		return "", fmt.Errorf("total chunks must be positive, got %d", totalChunks)
	}

	if !validSegment(outputName) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeFilename, outputName)
	}

	received := s.ListChunks(uploadID)
	missing := missingIndices(received, totalChunks)
	if len(missing) > 0 {
		return "", &MissingChunksError{UploadID: uploadID, Missing: missing}
	}

	outputPath := filepath.Join(s.completedRoot, outputName)

	if err := s.writeOutput(ctx, uploadID, totalChunks, outputPath); err != nil {
		s.discardOutput(outputPath)
		return "", err
	}

	if expectedSize >= 0 {
		info, err := os.Stat(outputPath)
		if err != nil {
			s.discardOutput(outputPath)
			return "", err
		}
		if info.Size() != expectedSize {
			s.discardOutput(outputPath)
			return "", fmt.Errorf("%w: expected %d bytes, got %d bytes", ErrSizeMismatch, expectedSize, info.Size())
		}
	}

	return outputPath, nil
}

// writeOutput streams each chunk into the output file sequentially.
func (s *Store) writeOutput(ctx context.Context, uploadID string, totalChunks int, outputPath string) error {
	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.fileMode)
	if err != nil {
		return err
	}

	dir, _ := s.chunkDir(uploadID)
	for index := 0; index < totalChunks; index++ {
		if err := ctx.Err(); err != nil {
			out.Close()
			return err
		}
		if err := appendChunk(out, chunkPath(dir, index)); err != nil {
			out.Close()
			return fmt.Errorf("chunk %d: %w", index, err)
		}
	}

	return out.Close()
}

func appendChunk(out *os.File, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = io.Copy(out, in)
	return err
}

// discardOutput removes a partial or invalid output file.
func (s *Store) discardOutput(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove partial output", logger.Path(path), logger.Err(err))
	}
}

// missingIndices returns the expected indices absent from received, in
// ascending order. received must be sorted.
func missingIndices(received []int, totalChunks int) []int {
	have := make(map[int]struct{}, len(received))
	for _, i := range received {
		have[i] = struct{}{}
	}

	var missing []int
	for i := 0; i < totalChunks; i++ {
		if _, ok := have[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}
