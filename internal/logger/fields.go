package logger

import "log/slog"

// Standard field keys for structured logging. Use these consistently across
// all log statements so upload traces can be aggregated and queried by id.
const (
	// Tracing and request correlation
	KeyTraceID   = "trace_id"   // OpenTelemetry trace ID
	KeySpanID    = "span_id"    // OpenTelemetry span ID
	KeyRequestID = "request_id" // per-request ID from the HTTP middleware
	KeyClientIP  = "client_ip"  // client IP address

	// Upload session
	KeyUploadID    = "upload_id"    // session identifier
	KeyChunkIndex  = "chunk_index"  // zero-based chunk index
	KeyTotalChunks = "total_chunks" // expected chunk count for the session
	KeyReceived    = "received"     // chunks acknowledged so far
	KeyMissing     = "missing"      // count of chunks still outstanding
	KeyFilename    = "filename"     // client-supplied file name
	KeyFileType    = "file_type"    // dataset, model_artifact, archive, unknown
	KeySize        = "size"         // byte count
	KeyChecksum    = "checksum"     // SHA-256 hex digest

	// Filesystem and storage
	KeyPath       = "path"        // file or directory path
	KeyAttempt    = "attempt"     // retry attempt number
	KeyMaxRetries = "max_retries" // maximum retry attempts
	KeyBackend    = "backend"     // store backend: memory, badger, jsonfile, sqlite, postgres
	KeyBucket     = "bucket"      // S3 bucket for archived artifacts
	KeyKey        = "key"         // S3 object key
	KeyRegion     = "region"      // S3 region

	// Pipeline and catalog
	KeySink      = "sink"       // post-completion sink name
	KeyCatalogID = "catalog_id" // catalog entry id
	KeyJobID     = "job_id"     // downstream job id

	// Operation metadata
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
	KeyError      = "error"       // error message
	KeyStatus     = "status"      // HTTP status code
	KeyMethod     = "method"      // HTTP method
	KeySessions   = "sessions"    // session count (sweeper, admin listing)
)

// Typed attribute constructors for the hot fields.

// UploadID returns a slog.Attr for the upload session id
func UploadID(id string) slog.Attr {
	return slog.String(KeyUploadID, id)
}

// ChunkIndex returns a slog.Attr for a chunk index
func ChunkIndex(i int) slog.Attr {
	return slog.Int(KeyChunkIndex, i)
}

// TotalChunks returns a slog.Attr for the expected chunk count
func TotalChunks(n int) slog.Attr {
	return slog.Int(KeyTotalChunks, n)
}

// Received returns a slog.Attr for the acknowledged chunk count
func Received(n int) slog.Attr {
	return slog.Int(KeyReceived, n)
}

// Filename returns a slog.Attr for a file name
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// FileType returns a slog.Attr for a detected file type
func FileType(t string) slog.Attr {
	return slog.String(KeyFileType, t)
}

// Size returns a slog.Attr for a byte count
func Size(n int64) slog.Attr {
	return slog.Int64(KeySize, n)
}

// Path returns a slog.Attr for a filesystem path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Attempt returns a slog.Attr for a retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// Sink returns a slog.Attr for a pipeline sink name
func Sink(name string) slog.Attr {
	return slog.String(KeySink, name)
}

// Backend returns a slog.Attr for a store backend name
func Backend(name string) slog.Attr {
	return slog.String(KeyBackend, name)
}

// ClientIP returns a slog.Attr for a client address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// RequestID returns a slog.Attr for a request id
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error, or an empty attr when err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
