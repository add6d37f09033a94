// Package processor implements the two stateless queue workers: metadata
// extraction and thumbnail generation. Each consumes its own durable copy
// of the FileDiscovered fan-out, downloads the file's bytes from its own
// scratch bucket, publishes a completion event for the ingestion service
// and always deletes the scratch object so the bucket stays transient.
//
// Both workers are safe against duplicate delivery: completions are
// idempotent updates keyed by the target row, and thumbnail keys are
// content addressed so a redelivery overwrites identical bytes.
package processor

import (
	"context"
	"time"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/objectstore"
)

// Metrics records processing activity. Implementations must be safe for
// concurrent use. A nil Metrics disables recording.
type Metrics interface {
	// ObserveProcess records one processed file by worker kind
	// ("metadata" or "thumbnail").
	ObserveProcess(kind string, duration time.Duration, err error)
}

// deleteScratch removes a consumed scratch object. Failures are logged
// only; a leaked object costs storage, not correctness.
func deleteScratch(ctx context.Context, objects *objectstore.Client, bucket, key string) {
	if err := objects.Delete(ctx, bucket, key); err != nil {
		logger.Warn("scratch object not deleted",
			logger.Bucket(bucket), logger.Key(key), logger.Err(err))
	}
}
