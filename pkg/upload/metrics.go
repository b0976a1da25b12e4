package upload

import "time"

// Metrics records upload engine events for monitoring.
//
// A nil Metrics disables collection with zero overhead; the service guards
// every call. The Prometheus implementation lives in pkg/metrics/prometheus
// and is wired up at startup when metrics are enabled.
type Metrics interface {
	// RecordSessionStarted counts a successful Init.
	RecordSessionStarted()

	// RecordChunkStored counts an acknowledged chunk and its size.
	// idempotent marks re-sent chunks acknowledged without a rewrite.
	RecordChunkStored(bytes int64, idempotent bool)

	// RecordUploadCompleted counts a Complete attempt with the reassembly
	// duration. err is nil on success.
	RecordUploadCompleted(fileType string, bytes int64, duration time.Duration, err error)

	// RecordSessionAborted counts an Abort.
	RecordSessionAborted()

	// SetActiveSessions tracks the live session count.
	SetActiveSessions(n int)
}
