package sinks

import (
	"context"

	"github.com/harborml/longshore/pkg/upload"
)

// SchemaSink validates dataset schemas. It accepts everything today and
// exists so schema checks (required fields, label coverage) slot in
// without reshaping the pipeline.
type SchemaSink struct{}

// NewSchemaSink creates the schema validation sink.
func NewSchemaSink() *SchemaSink {
	return &SchemaSink{}
}

// Name implements Sink.
func (s *SchemaSink) Name() string {
	return "schema"
}

// Process implements Sink.
func (s *SchemaSink) Process(ctx context.Context, artifact *Artifact) (*Verdict, error) {
	if artifact.Metadata.FileType != upload.FileTypeDataset {
		return nil, nil
	}

	// TODO(schema): validate fine-tuning datasets for a messages or prompt
	// field once the expected schemas are decided.
	return nil, nil
}
