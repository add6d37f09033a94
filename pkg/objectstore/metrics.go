package objectstore

import "time"

// Metrics records object store operation outcomes.
//
// The interface lives here so the client does not depend on a metrics
// backend; the Prometheus implementation lives in pkg/metrics/prometheus.
// A nil Metrics disables instrumentation entirely.
type Metrics interface {
	// ObserveOperation records one completed operation with its duration
	// and outcome. Operation is one of "put", "get", "delete".
	ObserveOperation(operation, bucket string, duration time.Duration, err error)

	// RecordBytes records payload bytes moved by an operation.
	RecordBytes(operation, bucket string, bytes int64)
}

// observe is a nil-safe helper around the metrics hook.
func (c *Client) observe(operation, bucket string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.ObserveOperation(operation, bucket, time.Since(start), err)
	}
}
