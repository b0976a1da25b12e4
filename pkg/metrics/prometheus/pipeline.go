package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/harborml/longshore/pkg/metrics"
	"github.com/harborml/longshore/pkg/sinks"
)

func init() {
	metrics.RegisterPipelineMetricsConstructor(NewPipelineMetrics)
}

// pipelineMetrics is the Prometheus implementation of sinks.Metrics.
type pipelineMetrics struct {
	sinkTotal    *prometheus.CounterVec
	sinkDuration *prometheus.HistogramVec
	vetoesTotal  *prometheus.CounterVec
}

// NewPipelineMetrics creates a Prometheus-backed sinks.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewPipelineMetrics() sinks.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &pipelineMetrics{
		sinkTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "longshore_pipeline_sink_total",
				Help: "Total number of sink executions by sink and status",
			},
			[]string{"sink", "status"},
		),
		sinkDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "longshore_pipeline_sink_duration_milliseconds",
				Help: "Duration of sink executions in milliseconds",
				Buckets: []float64{
					1,     // 1ms - metadata-only sinks
					10,    // 10ms
					50,    // 50ms - file probes
					100,   // 100ms
					500,   // 500ms
					1000,  // 1s - catalog writes
					5000,  // 5s
					30000, // 30s - S3 archival
				},
			},
			[]string{"sink"},
		),
		vetoesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "longshore_pipeline_vetoes_total",
				Help: "Total number of uploads rejected by a vetoing sink",
			},
			[]string{"sink"},
		),
	}
}

func (m *pipelineMetrics) ObserveSink(sink string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.sinkTotal.WithLabelValues(sink, status).Inc()
	m.sinkDuration.WithLabelValues(sink).Observe(duration.Seconds() * 1000)
}

func (m *pipelineMetrics) RecordVeto(sink string) {
	if m == nil {
		return
	}
	m.vetoesTotal.WithLabelValues(sink).Inc()
}
