package apiclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	// DefaultParallelChunks is the number of chunks sent concurrently.
	DefaultParallelChunks = 4

	// DefaultChunkSize matches the server default. Only used when resuming
	// a session without an explicit chunk size.
	DefaultChunkSize int64 = 1 << 20
)

// UploadOptions control UploadFile.
type UploadOptions struct {
	// Parallel is the number of chunks uploaded concurrently.
	// Default: DefaultParallelChunks
	Parallel int

	// Checksum is an optional SHA-256 hex digest hint. When set, the
	// server computes the reassembled file's checksum during completion
	// and returns it in the metadata.
	Checksum string

	// ResumeID resumes an existing session instead of initializing a new
	// one. Only chunks the server has not stored yet are sent.
	ResumeID string

	// ChunkSize is the chunk size to use when resuming. It must match the
	// size the session was initialized with. Fresh uploads ignore it and
	// take the server-assigned size. Default: DefaultChunkSize
	ChunkSize int64

	// OnProgress, when set, is called after each stored chunk with the
	// count of chunks the server holds and the total.
	OnProgress func(stored, total int)
}

// UploadError reports a failed chunked upload. The session stays alive on
// the server, so the upload can be resumed with the same UploadID.
type UploadError struct {
	UploadID string
	Err      error
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s failed: %v", e.UploadID, e.Err)
}

// Unwrap returns the underlying error.
func (e *UploadError) Unwrap() error {
	return e.Err
}

// FileChecksum returns the SHA-256 hex digest of the file at path.
func FileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// UploadFile pushes the file at path through the chunked upload API: init
// (or resume), concurrent chunk uploads, then completion. On chunk failure
// the returned error is an *UploadError carrying the session id for resume.
func (c *Client) UploadFile(ctx context.Context, path string, opts UploadOptions) (*CompleteUploadResponse, error) {
	if opts.Parallel <= 0 {
		opts.Parallel = DefaultParallelChunks
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	var uploadID string
	var chunkSize int64
	received := make(map[int]bool)

	if opts.ResumeID != "" {
		uploadID = opts.ResumeID
		chunkSize = opts.ChunkSize
		if chunkSize <= 0 {
			chunkSize = DefaultChunkSize
		}
		status, err := c.UploadStatus(uploadID)
		if err != nil {
			return nil, fmt.Errorf("failed to resume upload %s: %w", uploadID, err)
		}
		for _, index := range status.ReceivedChunks {
			received[index] = true
		}
	} else {
		init, err := c.InitUpload(InitUploadRequest{
			Filename:  filepath.Base(path),
			TotalSize: info.Size(),
			Checksum:  opts.Checksum,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize upload: %w", err)
		}
		uploadID = init.UploadID
		chunkSize = init.ChunkSize
	}

	totalChunks := int((info.Size() + chunkSize - 1) / chunkSize)

	var wg sync.WaitGroup
	errCh := make(chan error, totalChunks)
	sem := make(chan struct{}, opts.Parallel)

	for index := 0; index < totalChunks; index++ {
		if received[index] {
			if opts.OnProgress != nil {
				opts.OnProgress(len(received), totalChunks)
			}
			continue
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case sem <- struct{}{}:
			wg.Add(1)
			go func(index int) {
				defer func() {
					<-sem
					wg.Done()
				}()

				offset := int64(index) * chunkSize
				size := chunkSize
				if remaining := info.Size() - offset; remaining < size {
					size = remaining
				}

				// ReadAt is safe for concurrent use on one handle.
				buf := make([]byte, size)
				if _, err := file.ReadAt(buf, offset); err != nil {
					errCh <- fmt.Errorf("failed to read chunk %d: %w", index, err)
					return
				}

				ack, err := c.UploadChunk(uploadID, index, totalChunks, buf)
				if err != nil {
					errCh <- fmt.Errorf("failed to upload chunk %d: %w", index, err)
					return
				}
				if opts.OnProgress != nil {
					opts.OnProgress(ack.ReceivedChunks, totalChunks)
				}
			}(index)
		}

		if ctx.Err() != nil {
			break
		}
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return nil, &UploadError{UploadID: uploadID, Err: err}
		}
	}

	completed, err := c.CompleteUpload(uploadID)
	if err != nil {
		return nil, &UploadError{UploadID: uploadID, Err: err}
	}
	return completed, nil
}
