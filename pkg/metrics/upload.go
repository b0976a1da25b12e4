package metrics

import (
	"github.com/harborml/longshore/pkg/upload"
)

// NewUploadMetrics creates a Prometheus-backed upload.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers should pass nil to the upload service,
// which results in zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	svc := upload.NewService(chunks, registry, upload.Options{
//		Metrics: metrics.NewUploadMetrics(),
//	})
//
//	// Without metrics (zero overhead)
//	svc := upload.NewService(chunks, registry, upload.Options{})
func NewUploadMetrics() upload.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusUploadMetrics()
}

// newPrometheusUploadMetrics is implemented in pkg/metrics/prometheus.
// The indirection avoids an import cycle while keeping the API clean.
var newPrometheusUploadMetrics func() upload.Metrics

// RegisterUploadMetricsConstructor registers the Prometheus upload metrics
// constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterUploadMetricsConstructor(constructor func() upload.Metrics) {
	newPrometheusUploadMetrics = constructor
}
