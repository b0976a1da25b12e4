// Package upload implements the chunked upload engine: session lifecycle,
// idempotent chunk intake, status tracking, and deterministic reassembly.
//
// Sessions live in an in-memory Registry. Chunk bytes live in a
// storage.Store. An optional session store persists session headers so
// that sessions survive restarts; the received-set is always rebuilt from
// chunk enumeration rather than persisted.
package upload

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/internal/telemetry"
	"github.com/harborml/longshore/pkg/storage"
	sessionstore "github.com/harborml/longshore/pkg/upload/store"
)

// DefaultChunkSize is the chunk size handed to clients at init when none
// is configured.
const DefaultChunkSize int64 = 1 << 20

// Ack messages returned to clients on chunk upload.
const (
	msgChunkUploaded   = "Chunk uploaded successfully"
	msgChunkIdempotent = "Chunk already uploaded (idempotent)"
)

// Options configures a Service.
type Options struct {
	// ChunkSize is the size handed to clients at init. Zero means
	// DefaultChunkSize.
	ChunkSize int64

	// Sessions, when non-nil, persists session headers across restarts.
	Sessions sessionstore.Store

	// Metrics, when non-nil, receives engine events.
	Metrics Metrics
}

// Service orchestrates uploads over the chunk store and session registry.
type Service struct {
	chunks    *storage.Store
	registry  *Registry
	sessions  sessionstore.Store
	metrics   Metrics
	chunkSize int64
}

// ChunkAck acknowledges a single chunk upload.
type ChunkAck struct {
	ReceivedChunks int
	Message        string
}

// UploadStatus reports the progress of a session.
//
// Partial is set when the session is unknown to the registry and the
// status was rebuilt from on-disk chunks alone; TotalChunks is zero in
// that case because it cannot be recovered from disk.
type UploadStatus struct {
	UploadID       string `json:"uploadId"`
	TotalChunks    int    `json:"totalChunks"`
	ReceivedChunks []int  `json:"receivedChunks"`
	IsComplete     bool   `json:"isComplete"`
	Partial        bool   `json:"-"`
}

// SessionInfo summarizes a live session for administrative listings.
type SessionInfo struct {
	UploadID       string    `json:"uploadId"`
	Filename       string    `json:"filename"`
	TotalSize      int64     `json:"totalSize"`
	TotalChunks    int       `json:"totalChunks"`
	ReceivedChunks int       `json:"receivedChunks"`
	IsComplete     bool      `json:"isComplete"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivity   time.Time `json:"lastActivity"`
}

// CompletedUpload is the outcome of a successful Complete.
type CompletedUpload struct {
	Path     string
	Metadata *FileMetadata
}

// NewService creates an upload service over the given chunk store and
// registry.
func NewService(chunks *storage.Store, registry *Registry, opts Options) *Service {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &Service{
		chunks:    chunks,
		registry:  registry,
		sessions:  opts.Sessions,
		metrics:   opts.Metrics,
		chunkSize: chunkSize,
	}
}

// ChunkSize returns the chunk size handed to clients at init.
func (s *Service) ChunkSize() int64 {
	return s.chunkSize
}

// SessionChunkSize returns the chunk size fixed at init for the given
// session. A recovered session keeps the size it was created with even
// when the configured size has changed since. Unknown sessions fall back
// to the configured size; the lookup failure surfaces from UploadChunk.
func (s *Service) SessionChunkSize(uploadID string) int64 {
	if session, ok := s.registry.Get(uploadID); ok && session.ChunkSize > 0 {
		return session.ChunkSize
	}
	return s.chunkSize
}

// Init starts a new upload session and returns it. The checksum is an
// optional client-supplied hint; when non-empty, Complete recomputes and
// records the actual SHA-256 of the reassembled file.
func (s *Service) Init(ctx context.Context, filename string, totalSize int64, checksum string) (*UploadSession, error) {
	if totalSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTotalSize, totalSize)
	}

	totalChunks := int((totalSize + s.chunkSize - 1) / s.chunkSize)
	session := newSession(uuid.NewString(), filename, totalSize, s.chunkSize, totalChunks, checksum)
	s.registry.Put(session)

	if s.sessions != nil {
		if err := s.sessions.Put(ctx, headerFromSession(session)); err != nil {
			s.registry.Delete(session.ID)
			return nil, fmt.Errorf("failed to persist session header: %w", err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordSessionStarted()
		s.metrics.SetActiveSessions(s.registry.Len())
	}

	logger.InfoCtx(ctx, "upload session created",
		logger.UploadID(session.ID),
		logger.Filename(filename),
		logger.Size(totalSize),
		logger.TotalChunks(totalChunks))

	return session, nil
}

// UploadChunk stores one chunk for an existing session.
//
// Resolution order: session lookup, index bounds, claimed-total match,
// idempotency shortcut (an existing committed chunk of the same size is
// acknowledged without rewriting), then the actual store. The received-set
// is only updated on acknowledged chunks.
func (s *Service) UploadChunk(ctx context.Context, uploadID string, index int, data []byte, totalChunksClaimed int) (ChunkAck, error) {
	session, ok := s.registry.Get(uploadID)
	if !ok {
		return ChunkAck{}, fmt.Errorf("%w: %s", ErrSessionNotFound, uploadID)
	}

	if index < 0 || index >= session.TotalChunks {
		return ChunkAck{}, fmt.Errorf("%w: %d", ErrInvalidChunkIndex, index)
	}

	if totalChunksClaimed != session.TotalChunks {
		return ChunkAck{}, fmt.Errorf("%w: expected %d, got %d",
			ErrTotalChunksMismatch, session.TotalChunks, totalChunksClaimed)
	}

	// Idempotency shortcut: same index, same size, no rewrite. Size is the
	// criterion, not content; the goal is one acknowledged chunk per index.
	if size, exists := s.chunks.ChunkSize(uploadID, index); exists && size == int64(len(data)) {
		count := session.MarkReceived(index)
		if s.metrics != nil {
			s.metrics.RecordChunkStored(int64(len(data)), true)
		}
		logger.DebugCtx(ctx, "chunk already present",
			logger.UploadID(uploadID),
			logger.ChunkIndex(index))
		return ChunkAck{ReceivedChunks: count, Message: msgChunkIdempotent}, nil
	}

	if err := s.chunks.StoreChunk(ctx, uploadID, index, data); err != nil {
		return ChunkAck{}, fmt.Errorf("%w: %v", ErrChunkStore, err)
	}

	count := session.MarkReceived(index)
	if s.metrics != nil {
		s.metrics.RecordChunkStored(int64(len(data)), false)
	}
	logger.DebugCtx(ctx, "chunk stored",
		logger.UploadID(uploadID),
		logger.ChunkIndex(index),
		logger.Received(count))

	return ChunkAck{ReceivedChunks: count, Message: msgChunkUploaded}, nil
}

// Status reports progress for a session. When the session is unknown but
// chunks exist on disk, a partial status is returned so interrupted
// clients can discover what already arrived. When neither exists the
// error wraps ErrSessionNotFound.
func (s *Service) Status(ctx context.Context, uploadID string) (*UploadStatus, error) {
	if session, ok := s.registry.Get(uploadID); ok {
		received := session.Received()
		return &UploadStatus{
			UploadID:       uploadID,
			TotalChunks:    session.TotalChunks,
			ReceivedChunks: received,
			IsComplete:     len(received) == session.TotalChunks,
		}, nil
	}

	if received := s.chunks.ListChunks(uploadID); len(received) > 0 {
		logger.DebugCtx(ctx, "partial status from disk",
			logger.UploadID(uploadID),
			logger.Received(len(received)))
		return &UploadStatus{
			UploadID:       uploadID,
			ReceivedChunks: received,
			Partial:        true,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, uploadID)
}

// Complete reassembles the file for a fully received session, computes the
// checksum when requested at init, builds the file metadata, and tears the
// session down. Post-completion sinks run in the caller, not here, so the
// engine can hand back the artifact even when no sinks are configured.
func (s *Service) Complete(ctx context.Context, uploadID string) (completed *CompletedUpload, err error) {
	ctx, span := telemetry.StartUploadSpan(ctx, "complete", uploadID)
	defer span.End()
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
	}()

	session, ok := s.registry.Get(uploadID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, uploadID)
	}

	if missing := session.Missing(); len(missing) > 0 {
		return nil, &IncompleteError{UploadID: uploadID, Missing: missing}
	}

	fileType := DetectFileType(session.Filename)
	telemetry.SetAttributes(ctx,
		telemetry.Filename(session.Filename),
		telemetry.FileSize(session.TotalSize),
		telemetry.FileType(string(fileType)))

	start := time.Now()
	path, err := s.chunks.ReassembleFile(ctx, uploadID, session.TotalChunks, session.Filename, session.TotalSize)
	if err != nil {
		s.observeComplete(string(fileType), session.TotalSize, start, err)
		return nil, fmt.Errorf("failed to reassemble upload %s: %w", uploadID, err)
	}

	checksum := ""
	if session.Checksum != "" {
		checksum, err = storage.FileChecksum(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to checksum upload %s: %w", uploadID, err)
		}
	}

	metadata := &FileMetadata{
		UploadID:  uploadID,
		Filename:  session.Filename,
		Size:      session.TotalSize,
		Checksum:  checksum,
		Timestamp: time.Now().UTC(),
		FileType:  fileType,
		Filepath:  path,
	}

	// Chunks are removed before the session so a failed cleanup leaves the
	// session retryable.
	if err := s.chunks.CleanupChunks(ctx, uploadID); err != nil {
		return nil, fmt.Errorf("failed to clean up chunks for upload %s: %w", uploadID, err)
	}

	s.registry.Delete(uploadID)
	s.deleteHeader(ctx, uploadID)
	s.observeComplete(string(fileType), session.TotalSize, start, nil)

	logger.InfoCtx(ctx, "upload completed",
		logger.UploadID(uploadID),
		logger.Filename(session.Filename),
		logger.FileType(string(metadata.FileType)),
		logger.Path(path),
		logger.DurationMs(logger.Duration(start)))

	return &CompletedUpload{Path: path, Metadata: metadata}, nil
}

// Abort removes a session and its chunks without reassembly. Aborting an
// id with neither a session nor chunks on disk returns ErrSessionNotFound.
func (s *Service) Abort(ctx context.Context, uploadID string) error {
	_, known := s.registry.Get(uploadID)
	onDisk := len(s.chunks.ListChunks(uploadID)) > 0

	if !known && !onDisk {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, uploadID)
	}

	if err := s.chunks.CleanupChunks(ctx, uploadID); err != nil {
		return fmt.Errorf("failed to clean up chunks for upload %s: %w", uploadID, err)
	}

	s.registry.Delete(uploadID)
	s.deleteHeader(ctx, uploadID)

	if s.metrics != nil {
		s.metrics.RecordSessionAborted()
		s.metrics.SetActiveSessions(s.registry.Len())
	}

	logger.InfoCtx(ctx, "upload session aborted", logger.UploadID(uploadID))
	return nil
}

// List summarizes live sessions for administrative listings, oldest first.
func (s *Service) List() []SessionInfo {
	sessions := s.registry.List()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		received := session.ReceivedCount()
		infos = append(infos, SessionInfo{
			UploadID:       session.ID,
			Filename:       session.Filename,
			TotalSize:      session.TotalSize,
			TotalChunks:    session.TotalChunks,
			ReceivedChunks: received,
			IsComplete:     received == session.TotalChunks,
			CreatedAt:      session.CreatedAt,
			LastActivity:   session.LastActivity(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].UploadID < infos[j].UploadID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})

	return infos
}

// Recover rebuilds sessions from persisted headers after a restart. The
// received-set of each session is reconstructed from the chunks found on
// disk. Returns the number of sessions restored. No-op without a session
// store.
func (s *Service) Recover(ctx context.Context) (int, error) {
	if s.sessions == nil {
		return 0, nil
	}

	headers, err := s.sessions.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	restored := 0
	for _, h := range headers {
		if _, ok := s.registry.Get(h.ID); ok {
			continue
		}

		// Headers written before chunk sizes were persisted carry zero;
		// fall back to the configured size for those.
		chunkSize := h.ChunkSize
		if chunkSize <= 0 {
			chunkSize = s.chunkSize
		}

		session := newSession(h.ID, h.Filename, h.TotalSize, chunkSize, h.TotalChunks, h.Checksum)
		session.CreatedAt = h.CreatedAt
		session.seedReceived(s.chunks.ListChunks(h.ID))
		s.registry.Put(session)
		restored++
	}

	if restored > 0 {
		logger.Info("upload sessions recovered", logger.KeySessions, restored)
	}
	if s.metrics != nil {
		s.metrics.SetActiveSessions(s.registry.Len())
	}
	return restored, nil
}

// observeComplete records a Complete attempt and the new session count.
func (s *Service) observeComplete(fileType string, bytes int64, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordUploadCompleted(fileType, bytes, time.Since(start), err)
	s.metrics.SetActiveSessions(s.registry.Len())
}

// deleteHeader drops the persisted header. Failures are logged and not
// propagated: the upload already succeeded or was aborted, and the sweeper
// purges stale headers whose chunks are gone.
func (s *Service) deleteHeader(ctx context.Context, uploadID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Delete(ctx, uploadID); err != nil {
		logger.WarnCtx(ctx, "failed to delete persisted session header",
			logger.UploadID(uploadID),
			logger.Err(err))
	}
}

func headerFromSession(session *UploadSession) sessionstore.Header {
	return sessionstore.Header{
		ID:          session.ID,
		Filename:    session.Filename,
		TotalSize:   session.TotalSize,
		ChunkSize:   session.ChunkSize,
		TotalChunks: session.TotalChunks,
		Checksum:    session.Checksum,
		CreatedAt:   session.CreatedAt,
	}
}
