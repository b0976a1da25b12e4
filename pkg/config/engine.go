package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/pkg/catalog"
	"github.com/harborml/longshore/pkg/metrics"
	"github.com/harborml/longshore/pkg/sinks"
	"github.com/harborml/longshore/pkg/storage"
	"github.com/harborml/longshore/pkg/sweeper"
	"github.com/harborml/longshore/pkg/upload"
	sessionstore "github.com/harborml/longshore/pkg/upload/store"
)

// Engine bundles the fully wired upload engine: chunk storage, the upload
// service, the catalog, the post-completion pipeline and the background
// sweeper. It is what the server binary runs.
type Engine struct {
	// Chunks is the on-disk chunk and completed-file store.
	Chunks *storage.Store

	// Service is the upload session engine.
	Service *upload.Service

	// Catalog is the dataset catalog backend.
	Catalog catalog.Catalog

	// Pipeline runs over every completed upload.
	Pipeline *sinks.Pipeline

	// Sweeper expires idle sessions. Nil when disabled.
	Sweeper *sweeper.Sweeper

	// Recovered is the number of sessions restored from the session store
	// during initialization.
	Recovered int

	sessions sessionstore.Store
}

// InitializeEngine creates a fully configured Engine from the provided
// configuration.
//
// This function orchestrates the complete initialization process:
//  1. Creates the chunk store (staging and completed directories)
//  2. Opens the session store and recovers persisted sessions
//  3. Opens the catalog backend
//  4. Assembles the sink pipeline, including the optional S3 archiver
//  5. Creates the sweeper when enabled
//
// Call InitializeMetrics before this function so that the engine picks up
// metric recorders; without it the engine runs with metrics disabled.
//
// The caller owns the returned Engine and must Close it on shutdown.
func InitializeEngine(ctx context.Context, cfg *Config) (*Engine, error) {
	logger.Debug("Initializing upload engine from configuration")

	chunks, err := storage.New(storage.Config{
		UploadsRoot:   cfg.Storage.UploadsDir,
		CompletedRoot: cfg.Storage.CompletedDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chunk storage: %w", err)
	}

	sessions, err := CreateSessionStore(cfg.Sessions)
	if err != nil {
		return nil, err
	}

	service := upload.NewService(chunks, upload.NewRegistry(), upload.Options{
		ChunkSize: int64(cfg.Upload.ChunkSize),
		Sessions:  sessions,
		Metrics:   metrics.NewUploadMetrics(),
	})

	recovered, err := service.Recover(ctx)
	if err != nil {
		closeQuietly(sessions)
		return nil, fmt.Errorf("failed to recover sessions: %w", err)
	}

	cat, err := CreateCatalog(ctx, cfg.Catalog)
	if err != nil {
		closeQuietly(sessions)
		return nil, err
	}

	uploader, err := CreateArchiveUploader(ctx, cfg.Sinks.Archive)
	if err != nil {
		closeQuietly(cat)
		closeQuietly(sessions)
		return nil, err
	}

	vetoing, final := sinks.DefaultSinks(sinks.NewRegisterSink(cat))
	if uploader != nil {
		final = append(final, sinks.NewArchiveSink(uploader))
	}
	pipeline := sinks.NewPipeline(vetoing, final, sinks.Options{
		Metrics: metrics.NewPipelineMetrics(),
	})

	var sw *sweeper.Sweeper
	if cfg.Sweeper.IsEnabled() {
		sw = sweeper.New(service, chunks, sweeper.Config{
			Interval: cfg.Sweeper.Interval,
			TTL:      cfg.Sweeper.TTL,
		}, metrics.NewSweeperMetrics())
	}

	logger.Info("Upload engine initialized",
		"chunk_size", int64(cfg.Upload.ChunkSize),
		logger.KeyBackend, string(cfg.Catalog.Type),
		"persistent_sessions", sessions != nil,
		"archive", uploader != nil,
		logger.KeySessions, recovered)

	return &Engine{
		Chunks:    chunks,
		Service:   service,
		Catalog:   cat,
		Pipeline:  pipeline,
		Sweeper:   sw,
		Recovered: recovered,
		sessions:  sessions,
	}, nil
}

// Close releases the engine's resources: the catalog backend and the
// session store. Safe to call on a partially used engine.
func (e *Engine) Close() error {
	var errs []error
	if e.Catalog != nil {
		if err := e.Catalog.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing catalog: %w", err))
		}
	}
	if e.sessions != nil {
		if err := e.sessions.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing session store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// closeQuietly closes c when non-nil, logging rather than returning the
// error. Used on initialization unwind paths where the original error is
// the one worth reporting.
func closeQuietly(c interface{ Close() error }) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("Error closing resource during engine initialization", logger.KeyError, err.Error())
	}
}

// MetricsResult holds the outcome of metrics initialization.
//
// Server is nil when metrics are disabled. The recorder fields are nil in
// that case as well; every consumer treats a nil recorder as a no-op.
type MetricsResult struct {
	// Server is the Prometheus scrape endpoint server.
	Server *metrics.Server

	// Upload records upload engine events.
	Upload upload.Metrics

	// Pipeline records sink pipeline events.
	Pipeline sinks.Metrics

	// Sweeper records sweep outcomes.
	Sweeper sweeper.Metrics
}

// InitializeMetrics sets up the Prometheus registry and metrics server
// when metrics are enabled.
//
// Call this before InitializeEngine: the engine's recorders are created
// from the registry state at construction time.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		logger.Debug("Metrics collection disabled")
		return &MetricsResult{}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Server:   metrics.NewServer(cfg.Metrics.Port),
		Upload:   metrics.NewUploadMetrics(),
		Pipeline: metrics.NewPipelineMetrics(),
		Sweeper:  metrics.NewSweeperMetrics(),
	}
}
