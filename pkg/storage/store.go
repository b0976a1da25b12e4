// Package storage implements the on-disk chunk store: atomic per-chunk
// persistence under an uploads root, deterministic reassembly into a
// completed root, staging cleanup, and whole-file checksums.
//
// Layout:
//
//	<uploads_root>/<upload_id>/<index>.chunk      committed chunk
//	<uploads_root>/<upload_id>/<index>.chunk.tmp  in-flight write, never committed
//	<completed_root>/<filename>                   reassembled artifact
package storage

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/harborml/longshore/internal/logger"
)

const (
	chunkSuffix = ".chunk"
	tmpSuffix   = ".chunk.tmp"

	// storeAttempts bounds the retry loop around a chunk write. Transient
	// ENOENT from a directory create/rename racing a concurrent cleanup is
	// absorbed here.
	storeAttempts  = 3
	retryBaseDelay = 10 * time.Millisecond

	lockStripes = 64
)

// Config holds configuration for the chunk store.
type Config struct {
	// UploadsRoot is the chunk staging directory; each session owns one
	// subdirectory named by its upload id.
	UploadsRoot string

	// CompletedRoot receives reassembled files.
	CompletedRoot string

	// DirMode is the permission mode for created directories.
	// Default: 0755
	DirMode os.FileMode

	// FileMode is the permission mode for chunk and output files.
	// Default: 0644
	FileMode os.FileMode
}

// DefaultConfig returns the default configuration for the given roots.
func DefaultConfig(uploadsRoot, completedRoot string) Config {
	return Config{
		UploadsRoot:   uploadsRoot,
		CompletedRoot: completedRoot,
		DirMode:       0755,
		FileMode:      0644,
	}
}

// Store is a filesystem-backed chunk store. All methods are safe for
// concurrent use, including against the same upload id. Stores of the same
// (upload id, index) pair are serialized through a striped lock so a
// half-written file never appears under the committed name.
type Store struct {
	uploadsRoot   string
	completedRoot string
	dirMode       os.FileMode
	fileMode      os.FileMode

	locks [lockStripes]sync.Mutex
}

// New creates a chunk store, creating both root directories if absent.
func New(cfg Config) (*Store, error) {
	if cfg.UploadsRoot == "" {
		return nil, errors.New("uploads root is required")
	}
	if cfg.CompletedRoot == "" {
		return nil, errors.New("completed root is required")
	}

	if cfg.DirMode == 0 {
		cfg.DirMode = 0755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	for _, root := range []string{cfg.UploadsRoot, cfg.CompletedRoot} {
		if err := os.MkdirAll(root, cfg.DirMode); err != nil {
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, errors.New(root + " is not a directory")
		}
	}

	return &Store{
		uploadsRoot:   cfg.UploadsRoot,
		completedRoot: cfg.CompletedRoot,
		dirMode:       cfg.DirMode,
		fileMode:      cfg.FileMode,
	}, nil
}

// UploadsRoot returns the staging root directory.
func (s *Store) UploadsRoot() string {
	return s.uploadsRoot
}

// CompletedRoot returns the completed files directory.
func (s *Store) CompletedRoot() string {
	return s.completedRoot
}

// validSegment rejects path segments that would escape their parent
// directory. Used for upload ids (server-generated UUIDs, but status
// lookups pass client input through) and for reassembly output names.
func validSegment(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}

// chunkDir returns the staging directory for an upload id.
func (s *Store) chunkDir(uploadID string) (string, bool) {
	if !validSegment(uploadID) {
		return "", false
	}
	return filepath.Join(s.uploadsRoot, uploadID), true
}

func chunkPath(dir string, index int) string {
	return filepath.Join(dir, strconv.Itoa(index)+chunkSuffix)
}

func (s *Store) stripe(uploadID string, index int) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(uploadID))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.Itoa(index)))
	return &s.locks[h.Sum32()%lockStripes]
}

// StoreChunk atomically writes one chunk: the bytes land in
// <index>.chunk.tmp, then an atomic same-directory rename commits them to
// <index>.chunk. Repeated calls with the same bytes are idempotent by
// overwrite; with different bytes the last successful rename wins. Empty
// payloads are permitted.
//
// Transient failures (the session directory vanishing under a concurrent
// cleanup, other I/O errors) are retried up to three times with 10/20 ms
// backoff.
func (s *Store) StoreChunk(ctx context.Context, uploadID string, index int, data []byte) error {
	if index < 0 {
		return errors.New("chunk index must not be negative")
	}
	dir, ok := s.chunkDir(uploadID)
	if !ok {
		return errors.New("invalid upload id")
	}

	mu := s.stripe(uploadID, index)
	mu.Lock()
	defer mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= storeAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = s.writeChunk(dir, index, data)
		if lastErr == nil {
			return nil
		}

		if attempt < storeAttempts {
			logger.Debug("retrying chunk store",
				logger.UploadID(uploadID),
				logger.ChunkIndex(index),
				logger.Attempt(attempt),
				logger.Err(lastErr),
			)
			time.Sleep(time.Duration(attempt) * retryBaseDelay)
		}
	}

	logger.Error("chunk store failed",
		logger.UploadID(uploadID),
		logger.ChunkIndex(index),
		logger.Err(lastErr),
	)
	return lastErr
}

// writeChunk performs one store attempt: mkdir (tolerating concurrent
// creation), temp write, atomic rename.
func (s *Store) writeChunk(dir string, index int, data []byte) error {
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return err
	}

	path := chunkPath(dir, index)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, s.fileMode); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}

// ChunkExists reports whether a committed chunk file exists.
func (s *Store) ChunkExists(uploadID string, index int) bool {
	dir, ok := s.chunkDir(uploadID)
	if !ok {
		return false
	}
	info, err := os.Stat(chunkPath(dir, index))
	return err == nil && info.Mode().IsRegular()
}

// ChunkSize returns the byte length of a committed chunk, or false if the
// chunk does not exist.
func (s *Store) ChunkSize(uploadID string, index int) (int64, bool) {
	dir, ok := s.chunkDir(uploadID)
	if !ok {
		return 0, false
	}
	info, err := os.Stat(chunkPath(dir, index))
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

// GetChunk reads a committed chunk in full, or returns false if it is
// missing or unreadable.
func (s *Store) GetChunk(uploadID string, index int) ([]byte, bool) {
	dir, ok := s.chunkDir(uploadID)
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(chunkPath(dir, index))
	if err != nil {
		return nil, false
	}
	return data, true
}

// ListChunks enumerates committed chunk indices in ascending order.
// Temp files and files whose stem is not an integer are ignored. A missing
// session directory yields an empty slice.
func (s *Store) ListChunks(uploadID string) []int {
	dir, ok := s.chunkDir(uploadID)
	if !ok {
		return []int{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return []int{}
	}

	chunks := make([]int, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, chunkSuffix) {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(name, chunkSuffix))
		if err != nil {
			continue
		}
		chunks = append(chunks, index)
	}

	sort.Ints(chunks)
	return chunks
}

// ListUploads returns the upload ids that currently have a staging
// directory, in no particular order.
func (s *Store) ListUploads() []string {
	entries, err := os.ReadDir(s.uploadsRoot)
	if err != nil {
		return nil
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && validSegment(entry.Name()) {
			ids = append(ids, entry.Name())
		}
	}
	return ids
}

// LastModified returns the newest modification time among the files in an
// upload's staging directory, falling back to the directory's own mtime
// when it holds no files. The second return is false when the directory
// does not exist.
func (s *Store) LastModified(uploadID string) (time.Time, bool) {
	dir, ok := s.chunkDir(uploadID)
	if !ok {
		return time.Time{}, false
	}

	info, err := os.Stat(dir)
	if err != nil {
		return time.Time{}, false
	}
	newest := info.ModTime()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return newest, true
	}
	for _, entry := range entries {
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
	}
	return newest, true
}

// CleanupChunks recursively deletes the session's staging directory.
// Cleaning up an unknown session is not an error. Callers must not invoke
// cleanup while stores on the same session are in flight.
func (s *Store) CleanupChunks(ctx context.Context, uploadID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, ok := s.chunkDir(uploadID)
	if !ok {
		return nil
	}
	return os.RemoveAll(dir)
}

// HealthCheck verifies both roots are present and writable by creating and
// removing a probe file in each.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, root := range []string{s.uploadsRoot, s.completedRoot} {
		if _, err := os.Stat(root); err != nil {
			return err
		}
		probe, err := os.CreateTemp(root, ".probe-*")
		if err != nil {
			return fmt.Errorf("root %s is not writable: %w", root, err)
		}
		name := probe.Name()
		if err := probe.Close(); err != nil {
			return err
		}
		if err := os.Remove(name); err != nil {
			return err
		}
	}
	return nil
}
