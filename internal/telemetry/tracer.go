package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for pipeline operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// Indexed file attributes
	// ========================================================================
	AttrFileID   = "file.id"
	AttrFilePath = "file.path"
	AttrFileHash = "file.hash"
	AttrFileSize = "file.size"
	AttrScanDir  = "scan.directory"
	AttrBatch    = "ingest.batch_size"

	// ========================================================================
	// Duplicate group attributes
	// ========================================================================
	AttrGroupID     = "group.id"
	AttrGroupHash   = "group.hash"
	AttrGroupStatus = "group.status"

	// ========================================================================
	// Bus attributes
	// ========================================================================
	AttrQueue         = "messaging.queue"
	AttrExchange      = "messaging.exchange"
	AttrCorrelationID = "messaging.correlation_id"
	AttrRedelivered   = "messaging.redelivered"

	// ========================================================================
	// Object storage attributes
	// ========================================================================
	AttrBucket = "storage.bucket"
	AttrKey    = "storage.key"

	// ========================================================================
	// Hub / worker attributes
	// ========================================================================
	AttrWorkerID   = "worker.id"
	AttrWorkerKind = "worker.kind"
	AttrHostname   = "worker.hostname"
	AttrJobID      = "cleaner.job_id"
	AttrDryRun     = "cleaner.dry_run"
	AttrCommand    = "hub.command"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	SpanIngestBatch      = "ingest.batch"
	SpanIngestUpsert     = "ingest.upsert"
	SpanIngestPublish    = "ingest.publish"
	SpanMetadataApply    = "ingest.metadata_apply"
	SpanThumbnailApply   = "ingest.thumbnail_apply"
	SpanBusPublish       = "bus.publish"
	SpanBusConsume       = "bus.consume"
	SpanStoragePut       = "storage.put"
	SpanStorageGet       = "storage.get"
	SpanStorageDelete    = "storage.delete"
	SpanHubDispatch      = "hub.dispatch"
	SpanScanPass         = "scanner.pass"
	SpanScanHash         = "scanner.hash"
	SpanMetadataExtract  = "processor.metadata"
	SpanThumbnailResize  = "processor.thumbnail"
	SpanCleanerVerify    = "cleaner.verify"
	SpanCleanerArchive   = "cleaner.archive"
	SpanDuplicateSelect  = "duplicates.auto_select"
	SpanDuplicateCleanup = "duplicates.queue_cleanup"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// FileID returns an attribute for an indexed file id
func FileID(id string) attribute.KeyValue {
	return attribute.String(AttrFileID, id)
}

// FilePath returns an attribute for a file path
func FilePath(path string) attribute.KeyValue {
	return attribute.String(AttrFilePath, path)
}

// FileHash returns an attribute for a content hash
func FileHash(hash string) attribute.KeyValue {
	return attribute.String(AttrFileHash, hash)
}

// FileSize returns an attribute for a file size in bytes
func FileSize(size int64) attribute.KeyValue {
	return attribute.Int64(AttrFileSize, size)
}

// ScanDir returns an attribute for a scan directory
func ScanDir(dir string) attribute.KeyValue {
	return attribute.String(AttrScanDir, dir)
}

// BatchSize returns an attribute for an ingest batch size
func BatchSize(n int) attribute.KeyValue {
	return attribute.Int(AttrBatch, n)
}

// GroupID returns an attribute for a duplicate group id
func GroupID(id string) attribute.KeyValue {
	return attribute.String(AttrGroupID, id)
}

// GroupHash returns an attribute for a duplicate group hash
func GroupHash(hash string) attribute.KeyValue {
	return attribute.String(AttrGroupHash, hash)
}

// GroupStatus returns an attribute for a duplicate group status
func GroupStatus(status string) attribute.KeyValue {
	return attribute.String(AttrGroupStatus, status)
}

// Queue returns an attribute for an AMQP queue name
func Queue(name string) attribute.KeyValue {
	return attribute.String(AttrQueue, name)
}

// Exchange returns an attribute for an AMQP exchange name
func Exchange(name string) attribute.KeyValue {
	return attribute.String(AttrExchange, name)
}

// CorrelationID returns an attribute for a message correlation id
func CorrelationID(id string) attribute.KeyValue {
	return attribute.String(AttrCorrelationID, id)
}

// Redelivered returns an attribute for the AMQP redelivery flag
func Redelivered(r bool) attribute.KeyValue {
	return attribute.Bool(AttrRedelivered, r)
}

// Bucket returns an attribute for an object store bucket
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an object key
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// WorkerID returns an attribute for a worker identity
func WorkerID(id string) attribute.KeyValue {
	return attribute.String(AttrWorkerID, id)
}

// WorkerKind returns an attribute for a worker kind (indexer, cleaner)
func WorkerKind(kind string) attribute.KeyValue {
	return attribute.String(AttrWorkerKind, kind)
}

// Hostname returns an attribute for a worker hostname
func Hostname(h string) attribute.KeyValue {
	return attribute.String(AttrHostname, h)
}

// JobID returns an attribute for a cleaner job id
func JobID(id string) attribute.KeyValue {
	return attribute.String(AttrJobID, id)
}

// DryRun returns an attribute for the cleaner dry-run flag
func DryRun(d bool) attribute.KeyValue {
	return attribute.Bool(AttrDryRun, d)
}

// Command returns an attribute for a hub command name
func Command(name string) attribute.KeyValue {
	return attribute.String(AttrCommand, name)
}

// StartIngestSpan starts a span for an ingestion operation.
func StartIngestSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "ingest."+operation, trace.WithAttributes(attrs...))
}

// StartBusSpan starts a span for a bus publish or consume.
func StartBusSpan(ctx context.Context, operation, queue string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Queue(queue)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "bus."+operation, trace.WithAttributes(allAttrs...))
}

// StartStorageSpan starts a span for an object store operation.
func StartStorageSpan(ctx context.Context, operation, bucket, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Bucket(bucket), StorageKey(key)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "storage."+operation, trace.WithAttributes(allAttrs...))
}

// StartHubSpan starts a span for a hub command dispatch.
func StartHubSpan(ctx context.Context, command string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Command(command)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "hub."+command, trace.WithAttributes(allAttrs...))
}
