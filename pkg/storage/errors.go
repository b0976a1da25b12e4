package storage

import (
	"errors"
	"fmt"
)

// ErrSizeMismatch is returned by ReassembleFile when the output length does
// not match the declared total size. The partial output has been deleted by
// the time this error is returned.
var ErrSizeMismatch = errors.New("reassembled size mismatch")

// ErrUnsafeFilename is returned by ReassembleFile when the output name is
// empty or would resolve outside the completed root.
var ErrUnsafeFilename = errors.New("filename is not a usable output name")

// MissingChunksError is returned by ReassembleFile when the committed set on
// disk does not cover every expected index.
type MissingChunksError struct {
	UploadID string
	Missing  []int
}

func (e *MissingChunksError) Error() string {
	return fmt.Sprintf("missing chunks: %v", e.Missing)
}
