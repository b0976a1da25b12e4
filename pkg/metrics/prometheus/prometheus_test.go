package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/harborml/longshore/pkg/metrics"
)

// The registry is process-wide and collectors register once, so all
// recorder assertions share one test.
func TestRecorders(t *testing.T) {
	metrics.InitRegistry()

	t.Run("upload", func(t *testing.T) {
		m, ok := NewUploadMetrics().(*uploadMetrics)
		if !ok {
			t.Fatal("expected a recorder once the registry is initialized")
		}

		m.RecordSessionStarted()
		m.RecordChunkStored(1024, false)
		m.RecordChunkStored(1024, true)
		m.RecordUploadCompleted("dataset", 2048, 5*time.Millisecond, nil)
		m.RecordUploadCompleted("dataset", 0, time.Millisecond, errors.New("boom"))
		m.RecordSessionAborted()
		m.SetActiveSessions(3)

		if got := testutil.ToFloat64(m.sessionsStarted); got != 1 {
			t.Errorf("sessions started = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.chunksTotal.WithLabelValues("stored")); got != 1 {
			t.Errorf("stored chunks = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.chunksTotal.WithLabelValues("idempotent")); got != 1 {
			t.Errorf("idempotent chunks = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.bytesReceived); got != 2048 {
			t.Errorf("bytes received = %v, want 2048", got)
		}
		if got := testutil.ToFloat64(m.completedTotal.WithLabelValues("dataset", "success")); got != 1 {
			t.Errorf("successful completions = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.completedTotal.WithLabelValues("dataset", "error")); got != 1 {
			t.Errorf("failed completions = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.activeSessions); got != 3 {
			t.Errorf("active sessions = %v, want 3", got)
		}
		if got := testutil.CollectAndCount(m.completeDuration); got != 1 {
			t.Errorf("complete duration series = %d, want 1", got)
		}
	})

	t.Run("pipeline", func(t *testing.T) {
		m, ok := NewPipelineMetrics().(*pipelineMetrics)
		if !ok {
			t.Fatal("expected a recorder once the registry is initialized")
		}

		m.ObserveSink("format", 2*time.Millisecond, nil)
		m.ObserveSink("register", time.Millisecond, errors.New("down"))
		m.RecordVeto("format")

		if got := testutil.ToFloat64(m.sinkTotal.WithLabelValues("format", "success")); got != 1 {
			t.Errorf("format successes = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.sinkTotal.WithLabelValues("register", "error")); got != 1 {
			t.Errorf("register errors = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.vetoesTotal.WithLabelValues("format")); got != 1 {
			t.Errorf("format vetoes = %v, want 1", got)
		}
	})

	t.Run("sweeper", func(t *testing.T) {
		m, ok := NewSweeperMetrics().(*sweeperMetrics)
		if !ok {
			t.Fatal("expected a recorder once the registry is initialized")
		}

		m.RecordSweep(2, 1)
		m.RecordSweep(0, 0)

		if got := testutil.ToFloat64(m.sweepsTotal); got != 2 {
			t.Errorf("sweeps = %v, want 2", got)
		}
		if got := testutil.ToFloat64(m.expiredSessions); got != 2 {
			t.Errorf("expired sessions = %v, want 2", got)
		}
		if got := testutil.ToFloat64(m.orphanedDirs); got != 1 {
			t.Errorf("orphaned dirs = %v, want 1", got)
		}
	})
}
