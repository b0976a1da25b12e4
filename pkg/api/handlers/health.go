package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/harborml/longshore/pkg/catalog"
	"github.com/harborml/longshore/pkg/storage"
)

// HealthCheckTimeout is the maximum time allowed for health check
// operations. It applies to the readiness checks so a slow catalog backend
// cannot block health probes indefinitely.
const HealthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Are the storage roots writable and the catalog reachable?
type HealthHandler struct {
	chunks    *storage.Store
	catalog   catalog.Catalog
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
//
// Either dependency may be nil, in which case readiness reports unhealthy.
func NewHealthHandler(chunks *storage.Store, cat catalog.Catalog) *HealthHandler {
	return &HealthHandler{
		chunks:    chunks,
		catalog:   cat,
		startTime: time.Now(),
	}
}

// Liveness handles GET /healthz - simple liveness probe.
//
// Returns 200 OK if the server process is running. This endpoint is
// designed for Kubernetes liveness probes and should always succeed as
// long as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "longshore",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// CheckHealth represents the health of a single dependency.
type CheckHealth struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Latency   string `json:"latency,omitempty"`
	FreeBytes uint64 `json:"free_bytes,omitempty"`
}

// ReadinessResponse represents the detailed readiness response.
type ReadinessResponse struct {
	Checks []CheckHealth `json:"checks"`
}

// Readiness handles GET /readyz - readiness probe.
//
// Probes the chunk store (both roots present and writable) and the
// catalog backend. Returns 200 OK if all checks pass, 503 Service
// Unavailable otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.chunks == nil || h.catalog == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("engine not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	response := ReadinessResponse{Checks: make([]CheckHealth, 0, 2)}
	allHealthy := true

	storeCheck := runCheck(ctx, "chunk-store", h.chunks.HealthCheck)
	if free, err := storage.FreeSpace(h.chunks.UploadsRoot()); err == nil {
		storeCheck.FreeBytes = free
	}
	if storeCheck.Status != "healthy" {
		allHealthy = false
	}
	response.Checks = append(response.Checks, storeCheck)

	catalogCheck := runCheck(ctx, "catalog", h.catalog.HealthCheck)
	if catalogCheck.Status != "healthy" {
		allHealthy = false
	}
	response.Checks = append(response.Checks, catalogCheck)

	if allHealthy {
		writeJSON(w, http.StatusOK, healthyResponse(response))
	} else {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(response))
	}
}

// runCheck executes one health probe with timing.
func runCheck(ctx context.Context, name string, probe func(context.Context) error) CheckHealth {
	start := time.Now()
	err := probe(ctx)
	latency := time.Since(start)

	check := CheckHealth{
		Name:    name,
		Latency: latency.String(),
	}
	if err != nil {
		check.Status = "unhealthy"
		check.Error = err.Error()
	} else {
		check.Status = "healthy"
	}
	return check
}
