package upload

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the upload service. Callers match them with
// errors.Is; the service wraps them with the offending values so the text
// is useful on its own.
var (
	// ErrSessionNotFound indicates the upload id is not in the registry
	// (and, for status, has no chunks on disk either).
	ErrSessionNotFound = errors.New("upload session not found")

	// ErrInvalidChunkIndex indicates a chunk index outside [0, totalChunks).
	ErrInvalidChunkIndex = errors.New("invalid chunk index")

	// ErrTotalChunksMismatch indicates the client's claimed total disagrees
	// with the session.
	ErrTotalChunksMismatch = errors.New("total chunks mismatch")

	// ErrChunkStore indicates the chunk could not be committed to disk
	// after retries.
	ErrChunkStore = errors.New("failed to store chunk")

	// ErrInvalidTotalSize indicates a non-positive total size at init.
	ErrInvalidTotalSize = errors.New("total size must be positive")
)

// IncompleteError is returned by Complete when chunks are still missing.
// Callers surface it as a client error, not a server error.
type IncompleteError struct {
	UploadID string
	Missing  []int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("upload %s incomplete: missing chunks %v", e.UploadID, e.Missing)
}
