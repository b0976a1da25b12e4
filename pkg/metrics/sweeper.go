package metrics

import (
	"github.com/harborml/longshore/pkg/sweeper"
)

// NewSweeperMetrics creates a Prometheus-backed sweeper.Metrics instance,
// or nil when metrics are disabled.
func NewSweeperMetrics() sweeper.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusSweeperMetrics()
}

var newPrometheusSweeperMetrics func() sweeper.Metrics

// RegisterSweeperMetricsConstructor registers the Prometheus sweeper
// metrics constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterSweeperMetricsConstructor(constructor func() sweeper.Metrics) {
	newPrometheusSweeperMetrics = constructor
}
