package metrics

import (
	"github.com/harborml/longshore/pkg/sinks"
)

// NewPipelineMetrics creates a Prometheus-backed sinks.Metrics instance,
// or nil when metrics are disabled.
func NewPipelineMetrics() sinks.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusPipelineMetrics()
}

var newPrometheusPipelineMetrics func() sinks.Metrics

// RegisterPipelineMetricsConstructor registers the Prometheus pipeline
// metrics constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterPipelineMetricsConstructor(constructor func() sinks.Metrics) {
	newPrometheusPipelineMetrics = constructor
}
