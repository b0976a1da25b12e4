// Package metrics holds the process-wide Prometheus registry and the
// factories that hand metric recorders to the engine packages.
//
// The recorder interfaces live in the consuming packages (pkg/upload,
// pkg/sinks, pkg/sweeper); the Prometheus implementations live in
// pkg/metrics/prometheus and register their constructors here during
// package initialization. This indirection avoids an import cycle while
// keeping a single call site per recorder.
//
// When metrics are disabled (InitRegistry never called) every factory
// returns nil, which the consumers treat as a no-op recorder.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registryMu sync.RWMutex
	registry   *prometheus.Registry
)

// InitRegistry creates the process-wide metrics registry with the standard
// Go runtime and process collectors. Calling it again is a no-op.
//
// Must be called before any store or service that records metrics is
// created, otherwise the factories return nil recorders.
func InitRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()

	if registry != nil {
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry = reg
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry != nil
}

// GetRegistry returns the process-wide registry, or nil when metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry
}

// Handler returns the Prometheus scrape handler for the registry. When
// metrics are disabled the handler answers 404.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
