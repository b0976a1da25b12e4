package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for upload operations.
// These follow OpenTelemetry semantic conventions where applicable.
// Engine-wide keys use "upload." prefix, subsystem-specific use their own prefix.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// Upload session attributes
	// ========================================================================
	AttrUploadID    = "upload.id"
	AttrFilename    = "upload.filename"
	AttrFileSize    = "upload.size"
	AttrTotalChunks = "upload.chunks_total"
	AttrFileType    = "upload.file_type"
	AttrChecksum    = "upload.checksum"

	// ========================================================================
	// Chunk attributes
	// ========================================================================
	AttrChunkIndex = "chunk.index"
	AttrChunkBytes = "chunk.bytes"

	// ========================================================================
	// Post-completion pipeline attributes
	// ========================================================================
	AttrSinkName = "sink.name"
	AttrSinkVeto = "sink.veto"

	// ========================================================================
	// Catalog attributes
	// ========================================================================
	AttrEntryID = "catalog.entry_id"

	// ========================================================================
	// Storage backend attributes
	// ========================================================================
	AttrStoreName = "store.name"
	AttrStoreType = "store.type"
	AttrBucket    = "storage.bucket"
	AttrKey       = "storage.key"
	AttrRegion    = "storage.region"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// ========================================================================
	// Upload engine spans
	// ========================================================================
	SpanUploadInit     = "upload.init"
	SpanUploadChunk    = "upload.chunk"
	SpanUploadStatus   = "upload.status"
	SpanUploadComplete = "upload.complete"
	SpanUploadAbort    = "upload.abort"

	// ========================================================================
	// Chunk store spans
	// ========================================================================
	SpanStoreChunk = "storage.store_chunk"
	SpanReassemble = "storage.reassemble"

	// ========================================================================
	// Post-completion spans
	// ========================================================================
	SpanPipelineRun = "pipeline.run"

	// ========================================================================
	// Catalog spans
	// ========================================================================
	SpanCatalogRegister = "catalog.register"
	SpanCatalogGet      = "catalog.get"
	SpanCatalogList     = "catalog.list"

	// ========================================================================
	// Archive spans
	// ========================================================================
	SpanArchiveUpload = "archive.upload"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// UploadID returns an attribute for upload session id
func UploadID(id string) attribute.KeyValue {
	return attribute.String(AttrUploadID, id)
}

// Filename returns an attribute for the uploaded filename
func Filename(name string) attribute.KeyValue {
	return attribute.String(AttrFilename, name)
}

// FileSize returns an attribute for total file size in bytes
func FileSize(size int64) attribute.KeyValue {
	return attribute.Int64(AttrFileSize, size)
}

// TotalChunks returns an attribute for the expected chunk count
func TotalChunks(count int) attribute.KeyValue {
	return attribute.Int(AttrTotalChunks, count)
}

// FileType returns an attribute for the detected file type
func FileType(t string) attribute.KeyValue {
	return attribute.String(AttrFileType, t)
}

// Checksum returns an attribute for the expected checksum
func Checksum(sum string) attribute.KeyValue {
	return attribute.String(AttrChecksum, sum)
}

// ChunkIndex returns an attribute for a chunk's position
func ChunkIndex(index int) attribute.KeyValue {
	return attribute.Int(AttrChunkIndex, index)
}

// ChunkBytes returns an attribute for a chunk's size in bytes
func ChunkBytes(n int) attribute.KeyValue {
	return attribute.Int(AttrChunkBytes, n)
}

// SinkName returns an attribute for a pipeline sink name
func SinkName(name string) attribute.KeyValue {
	return attribute.String(AttrSinkName, name)
}

// SinkVeto returns an attribute marking a sink rejection
func SinkVeto(veto bool) attribute.KeyValue {
	return attribute.Bool(AttrSinkVeto, veto)
}

// EntryID returns an attribute for a catalog entry id
func EntryID(id string) attribute.KeyValue {
	return attribute.String(AttrEntryID, id)
}

// StoreName returns an attribute for store name
func StoreName(name string) attribute.KeyValue {
	return attribute.String(AttrStoreName, name)
}

// StoreType returns an attribute for store type
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// Bucket returns an attribute for S3 bucket name
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for S3 object key
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Region returns an attribute for cloud region
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// StartUploadSpan starts a span for an upload engine operation.
// This is a convenience function that sets common attributes.
func StartUploadSpan(ctx context.Context, operation, uploadID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{}
	if uploadID != "" {
		allAttrs = append(allAttrs, UploadID(uploadID))
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "upload."+operation, trace.WithAttributes(allAttrs...))
}

// StartPipelineSpan starts the root span for a post-completion pipeline run.
func StartPipelineSpan(ctx context.Context, uploadID string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanPipelineRun, trace.WithAttributes(UploadID(uploadID)))
}

// StartSinkSpan starts a span for one post-completion sink.
func StartSinkSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		SinkName(name),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "sink."+name, trace.WithAttributes(allAttrs...))
}

// StartCatalogSpan starts a span for a catalog operation.
func StartCatalogSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "catalog."+operation, trace.WithAttributes(attrs...))
}

// StartArchiveSpan starts a span for an object storage operation.
func StartArchiveSpan(ctx context.Context, operation, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		StorageKey(key),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "archive."+operation, trace.WithAttributes(allAttrs...))
}
