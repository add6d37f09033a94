package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so the pipeline,
// workers, and API produce logs that aggregate and query uniformly.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Operation & Identity
	// ========================================================================
	KeyOperation = "operation" // Operation name: ingest.batch, bus.consume, ...
	KeyWorker    = "worker"    // Worker identity (indexer/cleaner id)
	KeyHostname  = "hostname"  // Worker hostname
	KeyClientIP  = "client_ip" // Client IP address
	KeyRequestID = "request_id"

	// ========================================================================
	// Files & Groups
	// ========================================================================
	KeyFileID   = "file_id"   // IndexedFile row id
	KeyGroupID  = "group_id"  // DuplicateGroup row id
	KeyScanDir  = "scan_dir"  // Scan directory id or path
	KeyPath     = "path"      // Absolute file path
	KeyFilename = "filename"  // Basename
	KeyHash     = "hash"      // Content hash (lowercase hex)
	KeySize     = "size"      // File size in bytes
	KeyBatch    = "batch"     // Batch size / sequence
	KeyCount    = "count"     // Generic count

	// ========================================================================
	// Bus & Messaging
	// ========================================================================
	KeyQueue         = "queue"          // AMQP queue name
	KeyExchange      = "exchange"       // AMQP exchange name
	KeyCorrelationID = "correlation_id" // Message correlation id
	KeyRedelivered   = "redelivered"    // AMQP redelivery flag

	// ========================================================================
	// Object Storage
	// ========================================================================
	KeyBucket = "bucket" // Object store bucket
	KeyKey    = "key"    // Object key

	// ========================================================================
	// Jobs & Sessions
	// ========================================================================
	KeyJobID     = "job_id"     // Cleaner job id
	KeySessionID = "session_id" // Review session id
	KeyDryRun    = "dry_run"    // Dry-run flag
	KeyState     = "state"      // Worker or job state

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Operation returns a slog.Attr for an operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Worker returns a slog.Attr for a worker identity
func Worker(id string) slog.Attr {
	return slog.String(KeyWorker, id)
}

// Hostname returns a slog.Attr for a worker hostname
func Hostname(h string) slog.Attr {
	return slog.String(KeyHostname, h)
}

// ClientIP returns a slog.Attr for client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// RequestID returns a slog.Attr for an HTTP request id
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// FileID returns a slog.Attr for an indexed file id
func FileID(id string) slog.Attr {
	return slog.String(KeyFileID, id)
}

// GroupID returns a slog.Attr for a duplicate group id
func GroupID(id string) slog.Attr {
	return slog.String(KeyGroupID, id)
}

// ScanDir returns a slog.Attr for a scan directory
func ScanDir(dir string) slog.Attr {
	return slog.String(KeyScanDir, dir)
}

// Path returns a slog.Attr for a file path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Filename returns a slog.Attr for a basename
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// Hash returns a slog.Attr for a content hash
func Hash(h string) slog.Attr {
	return slog.String(KeyHash, h)
}

// Size returns a slog.Attr for a byte size
func Size(s int64) slog.Attr {
	return slog.Int64(KeySize, s)
}

// Batch returns a slog.Attr for a batch size
func Batch(n int) slog.Attr {
	return slog.Int(KeyBatch, n)
}

// Count returns a slog.Attr for a generic count
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Queue returns a slog.Attr for an AMQP queue name
func Queue(name string) slog.Attr {
	return slog.String(KeyQueue, name)
}

// Exchange returns a slog.Attr for an AMQP exchange name
func Exchange(name string) slog.Attr {
	return slog.String(KeyExchange, name)
}

// CorrelationID returns a slog.Attr for a message correlation id
func CorrelationID(id string) slog.Attr {
	return slog.String(KeyCorrelationID, id)
}

// Redelivered returns a slog.Attr for the AMQP redelivery flag
func Redelivered(r bool) slog.Attr {
	return slog.Bool(KeyRedelivered, r)
}

// Bucket returns a slog.Attr for an object store bucket
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Key returns a slog.Attr for an object key
func Key(k string) slog.Attr {
	return slog.String(KeyKey, k)
}

// JobID returns a slog.Attr for a cleaner job id
func JobID(id string) slog.Attr {
	return slog.String(KeyJobID, id)
}

// SessionID returns a slog.Attr for a review session id
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// DryRun returns a slog.Attr for the dry-run flag
func DryRun(d bool) slog.Attr {
	return slog.Bool(KeyDryRun, d)
}

// State returns a slog.Attr for a worker or job state
func State(s string) slog.Attr {
	return slog.String(KeyState, s)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Attempt returns a slog.Attr for a retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for maximum retry attempts
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}
