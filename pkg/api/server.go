// Package api provides the HTTP server for the upload API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/pkg/catalog"
	"github.com/harborml/longshore/pkg/sinks"
	"github.com/harborml/longshore/pkg/storage"
	"github.com/harborml/longshore/pkg/upload"
)

// Deps carries the engine components the API serves.
type Deps struct {
	// Service is the chunked upload engine.
	Service *upload.Service

	// Pipeline runs post-completion sinks. May be nil to skip them.
	Pipeline *sinks.Pipeline

	// Catalog backs the catalog endpoints and the readiness probe.
	Catalog catalog.Catalog

	// Chunks is the chunk store, probed by the readiness endpoint.
	Chunks *storage.Store
}

// Server provides the HTTP server for the upload API.
//
// Endpoints:
//   - GET /healthz: Liveness probe
//   - GET /readyz: Readiness probe
//   - /api/upload/*: Chunked upload lifecycle
//   - /api/catalog/*: Catalog listings
//
// The server supports graceful shutdown with configurable timeout.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates a new API HTTP server.
//
// The server is created in a stopped state. Call Start() to begin serving
// requests.
func NewServer(config Config, deps Deps) *Server {
	config.applyDefaults()

	router := NewRouter(config, deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server: server,
		config: config,
	}
}

// Start starts the API HTTP server and blocks until the context is
// cancelled or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and
// returns.
//
// Returns:
//   - nil on graceful shutdown
//   - error if the server fails to start or shutdown encounters an error
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "port", s.config.Port)
		logger.Debug("API endpoints available",
			"health", fmt.Sprintf("http://localhost:%d/healthz", s.config.Port),
			"ready", fmt.Sprintf("http://localhost:%d/readyz", s.config.Port),
			"upload", fmt.Sprintf("http://localhost:%d/api/upload/init", s.config.Port),
		)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// Create new context with timeout for graceful shutdown
		// Don't use the cancelled ctx as it would cause immediate shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the API server.
//
// Stop is safe to call multiple times and safe to call concurrently with
// Start().
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.Err(err))
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}
