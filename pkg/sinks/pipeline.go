package sinks

import (
	"context"
	"os"
	"time"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/internal/telemetry"
)

// Pipeline runs sinks in order over completed uploads.
//
// The sinks up to and including the last vetoing sink decide the fate of
// the artifact: a rejected verdict deletes the reassembled file and aborts
// with a VetoError, and an infrastructure error from one of them aborts as
// well. In the error case the reassembled file is kept, but the session
// and its chunks are already gone by the time the pipeline runs, so the
// upload cannot be completed again: operators must reprocess or remove
// the file. All later sinks are best-effort: errors are logged and the
// pipeline continues.
type Pipeline struct {
	vetoing []Sink
	final   []Sink
	metrics Metrics
}

// Options configures a Pipeline.
type Options struct {
	// Metrics, when non-nil, receives pipeline events.
	Metrics Metrics
}

// NewPipeline assembles a pipeline from the vetoing sinks (run first, may
// reject) and the final sinks (best-effort).
func NewPipeline(vetoing, final []Sink, opts Options) *Pipeline {
	return &Pipeline{
		vetoing: vetoing,
		final:   final,
		metrics: opts.Metrics,
	}
}

// DefaultSinks returns the standard pipeline stages: format, schema and
// scan validation (vetoing), then enrichment, catalog registration and
// notifications (best-effort). Optional sinks such as the S3 archiver are
// appended by the caller.
func DefaultSinks(reg *RegisterSink) (vetoing, final []Sink) {
	vetoing = []Sink{
		NewFormatSink(),
		NewSchemaSink(),
		NewScanSink(),
	}
	final = []Sink{
		NewEnrichSink(),
		reg,
		NewNotifySink(),
	}
	return vetoing, final
}

// Run processes the artifact through all sinks.
//
// On veto the reassembled file is deleted and a *VetoError is returned.
// Errors from best-effort sinks are logged, never returned.
func (p *Pipeline) Run(ctx context.Context, artifact *Artifact) error {
	ctx, span := telemetry.StartPipelineSpan(ctx, artifact.Metadata.UploadID)
	defer span.End()

	for _, sink := range p.vetoing {
		verdict, err := p.process(ctx, sink, artifact)
		if err != nil {
			return err
		}
		if verdict != nil && verdict.Rejected {
			p.reject(ctx, sink, artifact, verdict)
			return &VetoError{Sink: sink.Name(), Reason: verdict.Reason}
		}
	}

	for _, sink := range p.final {
		if _, err := p.process(ctx, sink, artifact); err != nil {
			logger.WarnCtx(ctx, "sink failed, continuing",
				logger.Sink(sink.Name()),
				logger.UploadID(artifact.Metadata.UploadID),
				logger.Err(err))
		}
	}

	return nil
}

// process runs one sink with timing, tracing and metrics.
func (p *Pipeline) process(ctx context.Context, sink Sink, artifact *Artifact) (*Verdict, error) {
	ctx, span := telemetry.StartSinkSpan(ctx, sink.Name(),
		telemetry.UploadID(artifact.Metadata.UploadID))
	defer span.End()

	start := time.Now()
	verdict, err := sink.Process(ctx, artifact)
	if p.metrics != nil {
		p.metrics.ObserveSink(sink.Name(), time.Since(start), err)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	if verdict != nil && verdict.Rejected {
		telemetry.SetAttributes(ctx, telemetry.SinkVeto(true))
	}

	if verdict != nil && len(verdict.Detail) > 0 {
		logger.DebugCtx(ctx, "sink result",
			logger.Sink(sink.Name()),
			logger.UploadID(artifact.Metadata.UploadID),
			"detail", verdict.Detail)
	}

	return verdict, err
}

// reject deletes the vetoed file. A failed delete is logged; the sweeper
// has no claim on completed files, so operators may need to remove it.
func (p *Pipeline) reject(ctx context.Context, sink Sink, artifact *Artifact, verdict *Verdict) {
	if p.metrics != nil {
		p.metrics.RecordVeto(sink.Name())
	}

	logger.InfoCtx(ctx, "upload vetoed",
		logger.Sink(sink.Name()),
		logger.UploadID(artifact.Metadata.UploadID),
		logger.Filename(artifact.Metadata.Filename),
		"reason", verdict.Reason)

	if err := os.Remove(artifact.Path); err != nil && !os.IsNotExist(err) {
		logger.ErrorCtx(ctx, "failed to delete vetoed file",
			logger.Path(artifact.Path),
			logger.Err(err))
	}
}
