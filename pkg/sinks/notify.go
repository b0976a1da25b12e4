package sinks

import (
	"context"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/pkg/upload"
)

// NotifySink tells downstream training services that a new dataset landed.
// The fine-tuning and data curation triggers are stubs until those services
// expose intake APIs, so no job ids are produced yet.
type NotifySink struct{}

// NewNotifySink creates the downstream notification sink.
func NewNotifySink() *NotifySink {
	return &NotifySink{}
}

// Name implements Sink.
func (s *NotifySink) Name() string {
	return "notify"
}

// Process implements Sink.
func (s *NotifySink) Process(ctx context.Context, artifact *Artifact) (*Verdict, error) {
	if artifact.Metadata.FileType != upload.FileTypeDataset {
		return nil, nil
	}

	if jobID := s.triggerFineTuning(ctx, artifact); jobID != "" {
		artifact.DownstreamJobs = append(artifact.DownstreamJobs, jobID)
	}
	if jobID := s.notifyDataCuration(ctx, artifact); jobID != "" {
		artifact.DownstreamJobs = append(artifact.DownstreamJobs, jobID)
	}
	return nil, nil
}

// triggerFineTuning kicks off a fine-tuning run for the dataset and returns
// the job id, or "" when no pipeline is wired up.
func (s *NotifySink) triggerFineTuning(ctx context.Context, artifact *Artifact) string {
	logger.DebugCtx(ctx, "fine-tuning pipeline not configured, skipping trigger",
		logger.UploadID(artifact.Metadata.UploadID),
	)
	return ""
}

// notifyDataCuration queues the dataset for curation review and returns the
// job id, or "" when no curation service is wired up.
func (s *NotifySink) notifyDataCuration(ctx context.Context, artifact *Artifact) string {
	logger.DebugCtx(ctx, "data curation service not configured, skipping notification",
		logger.UploadID(artifact.Metadata.UploadID),
	)
	return ""
}
