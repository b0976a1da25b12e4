package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/pkg/api/handlers"
)

// requestTimeout bounds a single request end to end. Completion requests
// reassemble the whole file and run the sink pipeline, so this is wider
// than a typical API timeout.
const requestTimeout = 60 * time.Second

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /healthz - Liveness probe
//   - GET /readyz - Readiness probe
//   - POST /api/upload/init - Start an upload session
//   - POST /api/upload/chunk - Upload one chunk (multipart)
//   - GET /api/upload/status/{uploadId} - Session progress
//   - POST /api/upload/complete/{uploadId} - Reassemble and run sinks
//   - GET /api/upload/sessions - Active session listing
//   - DELETE /api/upload/sessions/{uploadId} - Abort a session
//   - GET /api/catalog - Registered catalog entries
//   - GET /api/catalog/{id} - One catalog entry
func NewRouter(config Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	healthHandler := handlers.NewHealthHandler(deps.Chunks, deps.Catalog)

	// Health routes
	r.Get("/healthz", healthHandler.Liveness)
	r.Get("/readyz", healthHandler.Readiness)

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/healthz", http.StatusTemporaryRedirect)
	})

	uploadHandler := handlers.NewUploadHandler(deps.Service, deps.Pipeline, int64(config.MaxMultipartMemory))
	sessionHandler := handlers.NewSessionHandler(deps.Service)
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)

	r.Route("/api", func(r chi.Router) {
		r.Route("/upload", func(r chi.Router) {
			r.Post("/init", uploadHandler.Init)
			r.Post("/chunk", uploadHandler.Chunk)
			r.Get("/status/{uploadId}", uploadHandler.Status)
			r.Post("/complete/{uploadId}", uploadHandler.Complete)

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Delete("/{uploadId}", sessionHandler.Abort)
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogHandler.List)
			r.Get("/{id}", catalogHandler.Get)
		})
	})

	return r
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Healthcheck requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			logger.RequestID(requestID),
			logger.KeyMethod, r.Method,
			"path", r.URL.Path,
			logger.ClientIP(r.RemoteAddr),
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logArgs := []any{
			logger.RequestID(requestID),
			logger.KeyMethod, r.Method,
			"path", r.URL.Path,
			logger.KeyStatus, ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.DurationMs(logger.Duration(start)),
		}

		// Log healthcheck requests at DEBUG to avoid polluting logs in k8s
		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
