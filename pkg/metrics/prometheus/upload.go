// Package prometheus implements the recorder interfaces of the engine
// packages on top of the process-wide registry in pkg/metrics.
//
// Importing this package (a blank import in the binaries is enough)
// registers the constructors with pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/harborml/longshore/pkg/metrics"
	"github.com/harborml/longshore/pkg/upload"
)

func init() {
	metrics.RegisterUploadMetricsConstructor(NewUploadMetrics)
}

// uploadMetrics is the Prometheus implementation of upload.Metrics.
type uploadMetrics struct {
	sessionsStarted    prometheus.Counter
	sessionsAborted    prometheus.Counter
	activeSessions     prometheus.Gauge
	chunksTotal        *prometheus.CounterVec
	bytesReceived      prometheus.Counter
	completedTotal     *prometheus.CounterVec
	completedFileBytes prometheus.Histogram
	completeDuration   *prometheus.HistogramVec
}

// NewUploadMetrics creates a Prometheus-backed upload.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewUploadMetrics() upload.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &uploadMetrics{
		sessionsStarted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "longshore_upload_sessions_started_total",
				Help: "Total number of upload sessions initialized",
			},
		),
		sessionsAborted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "longshore_upload_sessions_aborted_total",
				Help: "Total number of upload sessions aborted, by client request or TTL expiry",
			},
		),
		activeSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "longshore_upload_active_sessions",
				Help: "Current number of live upload sessions",
			},
		),
		chunksTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "longshore_upload_chunks_total",
				Help: "Total number of chunk uploads by outcome (stored or idempotent replay)",
			},
			[]string{"status"},
		),
		bytesReceived: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "longshore_upload_bytes_received_total",
				Help: "Total chunk payload bytes received, including idempotent replays",
			},
		),
		completedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "longshore_upload_completed_total",
				Help: "Total number of completion attempts by file type and status",
			},
			[]string{"file_type", "status"},
		),
		completedFileBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "longshore_upload_file_size_bytes",
				Help: "Distribution of reassembled file sizes",
				Buckets: []float64{
					65536,      // 64KB
					1048576,    // 1MB
					10485760,   // 10MB
					104857600,  // 100MB
					524288000,  // 500MB
					1073741824, // 1GB
					5368709120, // 5GB
				},
			},
		),
		completeDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "longshore_upload_complete_duration_milliseconds",
				Help: "Duration of completion (reassembly, checksum, cleanup) in milliseconds",
				Buckets: []float64{
					10,    // 10ms - small files
					50,    // 50ms
					100,   // 100ms
					500,   // 500ms
					1000,  // 1s - medium files
					5000,  // 5s
					10000, // 10s - large files
					30000, // 30s
				},
			},
			[]string{"file_type"},
		),
	}
}

func (m *uploadMetrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *uploadMetrics) RecordChunkStored(bytes int64, idempotent bool) {
	if m == nil {
		return
	}

	status := "stored"
	if idempotent {
		status = "idempotent"
	}
	m.chunksTotal.WithLabelValues(status).Inc()

	if bytes > 0 {
		m.bytesReceived.Add(float64(bytes))
	}
}

func (m *uploadMetrics) RecordUploadCompleted(fileType string, bytes int64, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.completedTotal.WithLabelValues(fileType, status).Inc()
	m.completeDuration.WithLabelValues(fileType).Observe(duration.Seconds() * 1000)

	if err == nil && bytes > 0 {
		m.completedFileBytes.Observe(float64(bytes))
	}
}

func (m *uploadMetrics) RecordSessionAborted() {
	if m == nil {
		return
	}
	m.sessionsAborted.Inc()
}

func (m *uploadMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
