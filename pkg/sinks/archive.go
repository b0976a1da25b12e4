package sinks

import (
	"context"
	"fmt"

	"github.com/harborml/longshore/internal/logger"
)

// Archiver copies a local file into object storage. Implemented by
// archive.Uploader.
type Archiver interface {
	ObjectKey(uploadID, filename string) string
	Upload(ctx context.Context, path, key string) (string, error)
}

// ArchiveSink copies completed files to object storage for durability.
// It runs for every file type and never rejects an upload.
type ArchiveSink struct {
	uploader Archiver
}

// NewArchiveSink creates a sink that archives completed files through the
// given uploader.
func NewArchiveSink(uploader Archiver) *ArchiveSink {
	return &ArchiveSink{uploader: uploader}
}

// Name implements Sink.
func (s *ArchiveSink) Name() string {
	return "archive"
}

// Process implements Sink.
func (s *ArchiveSink) Process(ctx context.Context, artifact *Artifact) (*Verdict, error) {
	meta := artifact.Metadata
	key := s.uploader.ObjectKey(meta.UploadID, meta.Filename)

	location, err := s.uploader.Upload(ctx, artifact.Path, key)
	if err != nil {
		return nil, fmt.Errorf("archiving %s: %w", meta.UploadID, err)
	}

	artifact.Enhanced["archive_location"] = location
	logger.InfoCtx(ctx, "file archived to object storage",
		logger.UploadID(meta.UploadID),
		"location", location,
	)
	return nil, nil
}
