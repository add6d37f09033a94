package ingest

import "time"

// Metrics records ingestion activity. Implementations must be safe for
// concurrent use. A nil Metrics disables recording.
type Metrics interface {
	// ObserveBatch records one batch ingest with its descriptor count.
	ObserveBatch(size int, duration time.Duration, err error)

	// RecordCompletion counts one applied completion event by worker kind
	// ("metadata" or "thumbnail").
	RecordCompletion(kind string, success bool)
}
