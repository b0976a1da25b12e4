// Package sinks runs the post-completion pipeline over reassembled files:
// format validation, security scanning, metadata enrichment, catalog
// registration, downstream notifications and optional S3 archival.
//
// Sinks run in a fixed order. The early sinks may veto, which deletes the
// reassembled file and surfaces the reason to the client. Later sinks never
// veto; their failures are logged and the completion still succeeds.
package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/harborml/longshore/pkg/upload"
)

// Artifact is the unit of work flowing through the pipeline: a reassembled
// file with its metadata. Sinks may attach data to Enhanced and append
// triggered job ids to DownstreamJobs.
type Artifact struct {
	// Path is the absolute path of the reassembled file.
	Path string

	// Metadata is the completion metadata built by the upload engine.
	Metadata *upload.FileMetadata

	// Enhanced is the enriched catalog record built up by the sinks.
	// Keys follow the lineage record layout (lineage, dataset_info,
	// model_info).
	Enhanced map[string]any

	// DownstreamJobs collects job ids returned by notification sinks.
	DownstreamJobs []string
}

// Verdict is a sink's judgement of an artifact. A nil verdict accepts.
type Verdict struct {
	// Rejected vetoes the upload. The pipeline deletes the file and
	// returns Reason to the client.
	Rejected bool

	// Reason is the client-facing rejection message.
	Reason string

	// Detail carries sink-specific results, logged for operators.
	Detail map[string]any
}

// Sink is one stage of the post-completion pipeline.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string

	// Process inspects or enriches the artifact. Returning a rejected
	// verdict vetoes the upload. Returning an error marks an
	// infrastructure failure; whether it aborts the pipeline depends on
	// the sink's position (only the vetoing sinks abort).
	Process(ctx context.Context, artifact *Artifact) (*Verdict, error)
}

// Metrics records pipeline events. A nil Metrics disables collection.
type Metrics interface {
	// ObserveSink records one sink execution with its duration.
	ObserveSink(sink string, duration time.Duration, err error)

	// RecordVeto counts a rejection by the named sink.
	RecordVeto(sink string)
}

// VetoError is returned by the pipeline when a sink rejects the artifact.
// The reassembled file has already been deleted when this error surfaces.
type VetoError struct {
	// Sink is the name of the rejecting sink.
	Sink string

	// Reason is the client-facing rejection message.
	Reason string
}

func (e *VetoError) Error() string {
	return fmt.Sprintf("upload rejected by %s sink: %s", e.Sink, e.Reason)
}

// NewArtifact builds the pipeline input for a completed upload.
func NewArtifact(metadata *upload.FileMetadata) *Artifact {
	return &Artifact{
		Path:     metadata.Filepath,
		Metadata: metadata,
		Enhanced: make(map[string]any),
	}
}
