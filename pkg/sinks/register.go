package sinks

import (
	"context"
	"errors"
	"fmt"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/pkg/catalog"
	"github.com/harborml/longshore/pkg/upload"
)

// RegisterSink records completed datasets in the dataset catalog so they can
// be listed and picked up by training jobs. Model artifacts and archives pass
// through untouched.
type RegisterSink struct {
	catalog catalog.Catalog
}

// NewRegisterSink creates a catalog registration sink.
func NewRegisterSink(cat catalog.Catalog) *RegisterSink {
	return &RegisterSink{catalog: cat}
}

// Name implements Sink.
func (s *RegisterSink) Name() string {
	return "register"
}

// Process implements Sink.
func (s *RegisterSink) Process(ctx context.Context, artifact *Artifact) (*Verdict, error) {
	meta := artifact.Metadata
	if meta.FileType != upload.FileTypeDataset {
		return nil, nil
	}

	// The entry pairs the queryable columns with the full enriched record
	// built by the enrich sink, so consumers see lineage and dataset_info
	// exactly as produced at completion.
	entry := &catalog.Entry{
		UploadID:    meta.UploadID,
		Name:        meta.Filename,
		Path:        artifact.Path,
		FileType:    string(meta.FileType),
		Format:      upload.Ext(meta.Filename),
		SizeBytes:   meta.Size,
		Checksum:    meta.Checksum,
		RecordCount: estimatedRecords(artifact.Enhanced),
		Enhanced:    catalog.EnhancedRecord(artifact.Enhanced),
	}

	if err := s.catalog.Register(ctx, entry); err != nil {
		if errors.Is(err, catalog.ErrDuplicate) {
			logger.DebugCtx(ctx, "dataset already registered",
				logger.UploadID(meta.UploadID),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("registering dataset %s: %w", meta.UploadID, err)
	}

	logger.InfoCtx(ctx, "dataset registered in catalog",
		logger.UploadID(meta.UploadID),
		"catalog_id", entry.ID,
		"format", entry.Format,
		"records", entry.RecordCount,
	)
	return nil, nil
}

// estimatedRecords pulls the record estimate produced by the enrich sink,
// or zero when none was computed.
func estimatedRecords(enhanced map[string]any) int64 {
	info, ok := enhanced["dataset_info"].(map[string]any)
	if !ok {
		return 0
	}
	switch n := info["estimated_records"].(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
