package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/harborml/longshore/pkg/metrics"
	"github.com/harborml/longshore/pkg/sweeper"
)

func init() {
	metrics.RegisterSweeperMetricsConstructor(NewSweeperMetrics)
}

// sweeperMetrics is the Prometheus implementation of sweeper.Metrics.
type sweeperMetrics struct {
	sweepsTotal     prometheus.Counter
	expiredSessions prometheus.Counter
	orphanedDirs    prometheus.Counter
}

// NewSweeperMetrics creates a Prometheus-backed sweeper.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewSweeperMetrics() sweeper.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &sweeperMetrics{
		sweepsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "longshore_sweeper_sweeps_total",
				Help: "Total number of sweep passes",
			},
		),
		expiredSessions: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "longshore_sweeper_expired_sessions_total",
				Help: "Total number of idle sessions expired by the sweeper",
			},
		),
		orphanedDirs: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "longshore_sweeper_orphaned_dirs_total",
				Help: "Total number of orphaned chunk directories removed",
			},
		),
	}
}

func (m *sweeperMetrics) RecordSweep(expired, orphans int) {
	if m == nil {
		return
	}

	m.sweepsTotal.Inc()
	if expired > 0 {
		m.expiredSessions.Add(float64(expired))
	}
	if orphans > 0 {
		m.orphanedDirs.Add(float64(orphans))
	}
}
