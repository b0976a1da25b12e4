// Package sweeper expires abandoned upload sessions and removes orphaned
// chunk directories after a configurable idle TTL.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/pkg/storage"
	"github.com/harborml/longshore/pkg/upload"
)

// Config holds configuration for the sweeper.
type Config struct {
	// Interval between sweep passes.
	// Default: 5m
	Interval time.Duration

	// TTL is how long a session may sit idle before it is expired.
	// Default: 24h
	TTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Minute,
		TTL:      24 * time.Hour,
	}
}

// Metrics records sweep outcomes. A nil Metrics disables collection.
type Metrics interface {
	// RecordSweep counts the sessions expired and orphan directories
	// removed by one pass.
	RecordSweep(expired, orphans int)
}

// Sweeper periodically expires idle sessions through the upload service and
// deletes chunk directories that no longer belong to any session.
type Sweeper struct {
	service *upload.Service
	chunks  *storage.Store

	interval time.Duration
	ttl      time.Duration
	metrics  Metrics

	mu        sync.Mutex
	started   bool
	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New creates a sweeper over the upload service and chunk store.
func New(service *upload.Service, chunks *storage.Store, cfg Config, metrics Metrics) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	return &Sweeper{
		service:   service,
		chunks:    chunks,
		interval:  cfg.Interval,
		ttl:       cfg.TTL,
		metrics:   metrics,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start begins the periodic sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	logger.Info("Starting session sweeper",
		"interval", s.interval.String(),
		"ttl", s.ttl.String())

	go s.run(ctx)
}

// Stop shuts the sweep loop down, waiting up to timeout for an in-flight
// pass to finish.
func (s *Sweeper) Stop(timeout time.Duration) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stopCh) })

	select {
	case <-s.stoppedCh:
		logger.Info("Session sweeper stopped")
	case <-time.After(timeout):
		logger.Warn("Session sweeper stop timed out")
	}
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and reports how many sessions were expired and how
// many orphaned chunk directories were removed.
//
// A session counts as expired when its last activity is older than the TTL;
// it is torn down through the upload service so chunks and persisted headers
// go with it. A chunk directory is orphaned when no live session claims it
// and its newest file is older than the TTL; the age check keeps the sweep
// from racing a session that is just being created.
func (s *Sweeper) Sweep(ctx context.Context) (expired, orphans int) {
	cutoff := time.Now().Add(-s.ttl)

	live := make(map[string]struct{})
	for _, info := range s.service.List() {
		if info.LastActivity.After(cutoff) {
			live[info.UploadID] = struct{}{}
			continue
		}

		if err := s.service.Abort(ctx, info.UploadID); err != nil {
			logger.WarnCtx(ctx, "failed to expire idle session",
				logger.UploadID(info.UploadID),
				logger.Err(err))
			// Leave its chunks alone until the abort succeeds.
			live[info.UploadID] = struct{}{}
			continue
		}

		expired++
		logger.InfoCtx(ctx, "expired idle upload session",
			logger.UploadID(info.UploadID),
			"last_activity", info.LastActivity.UTC().Format(time.RFC3339))
	}

	for _, id := range s.chunks.ListUploads() {
		if _, ok := live[id]; ok {
			continue
		}

		modified, ok := s.chunks.LastModified(id)
		if !ok || modified.After(cutoff) {
			continue
		}

		if err := s.chunks.CleanupChunks(ctx, id); err != nil {
			logger.WarnCtx(ctx, "failed to remove orphaned chunk directory",
				logger.UploadID(id),
				logger.Err(err))
			continue
		}

		orphans++
		logger.InfoCtx(ctx, "removed orphaned chunk directory",
			logger.UploadID(id),
			"last_modified", modified.UTC().Format(time.RFC3339))
	}

	if s.metrics != nil {
		s.metrics.RecordSweep(expired, orphans)
	}
	if expired > 0 || orphans > 0 {
		logger.InfoCtx(ctx, "sweep finished",
			"expired_sessions", expired,
			"orphaned_dirs", orphans)
	}

	return expired, orphans
}
