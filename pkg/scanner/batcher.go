package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/apiclient"
)

// batchPoster is the slice of the API client the batcher needs.
type batchPoster interface {
	IngestBatch(ctx context.Context, req *apiclient.BatchRequest) (*apiclient.BatchResponse, error)
}

type pendingBatch struct {
	scanDirID string
	files     []apiclient.FileDescriptor
	entries   []CursorEntry

	// barrier marks a synchronization point instead of a real batch;
	// the dispatcher closes it once everything ahead has been posted.
	barrier chan struct{}
}

// Batcher accumulates file descriptors into fixed-size batches and posts
// them to the ingestion service from a dispatcher goroutine. The pending
// buffer is bounded: when the service is slow, Add blocks and the scan
// pauses until the buffer drains. The scan cursor only advances after a
// batch is acknowledged.
type Batcher struct {
	poster batchPoster
	cursor *Cursor
	size   int

	pending chan pendingBatch

	mu      sync.Mutex
	current pendingBatch

	// onAck receives every acknowledged batch response together with
	// the cursor entries it covered.
	onAck func(*apiclient.BatchResponse, []CursorEntry)
	// onDrop receives the file count of batches the service rejected.
	onDrop func(rejected int)
}

// NewBatcher builds a batcher. onAck and onDrop may be nil.
func NewBatcher(poster batchPoster, cursor *Cursor, size, maxPending int, onAck func(*apiclient.BatchResponse, []CursorEntry), onDrop func(int)) *Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if maxPending <= 0 {
		maxPending = DefaultMaxPendingBatches
	}
	return &Batcher{
		poster:  poster,
		cursor:  cursor,
		size:    size,
		pending: make(chan pendingBatch, maxPending),
		onAck:   onAck,
		onDrop:  onDrop,
	}
}

// Run dispatches pending batches until the context ends. Call it from its
// own goroutine before the first Add.
func (b *Batcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch := <-b.pending:
			if batch.barrier != nil {
				close(batch.barrier)
				continue
			}
			b.post(ctx, batch)
		}
	}
}

// Add appends one descriptor, submitting the batch once full. It blocks
// when the pending buffer is at capacity, which is what pauses the scan
// under backpressure.
func (b *Batcher) Add(ctx context.Context, scanDirID string, desc apiclient.FileDescriptor, entry CursorEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Batches are per scan directory; a root switch flushes the tail of
	// the previous one.
	if b.current.scanDirID != "" && b.current.scanDirID != scanDirID {
		if err := b.submit(ctx); err != nil {
			return err
		}
	}

	b.current.scanDirID = scanDirID
	b.current.files = append(b.current.files, desc)
	b.current.entries = append(b.current.entries, entry)

	if len(b.current.files) >= b.size {
		return b.submit(ctx)
	}
	return nil
}

// Flush submits the partial batch and waits until every pending batch has
// been posted or rejected. Call it at the end of a pass, before reporting
// the pass complete.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	if len(b.current.files) > 0 {
		if err := b.submit(ctx); err != nil {
			b.mu.Unlock()
			return err
		}
	}
	b.mu.Unlock()

	barrier := make(chan struct{})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case b.pending <- pendingBatch{barrier: barrier}:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-barrier:
		return nil
	}
}

func (b *Batcher) submit(ctx context.Context) error {
	batch := b.current
	b.current = pendingBatch{}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case b.pending <- batch:
		return nil
	}
}

// post submits one batch, retrying transient failures indefinitely. A
// rejection (4xx) drops the batch without advancing the cursor, so the
// files are re-submitted on the next pass.
func (b *Batcher) post(ctx context.Context, batch pendingBatch) {
	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = 0

	for {
		resp, err := b.poster.IngestBatch(ctx, &apiclient.BatchRequest{
			ScanDirectoryID: batch.scanDirID,
			Files:           batch.files,
		})
		if err == nil {
			if err := b.cursor.Advance(batch.entries); err != nil {
				logger.Warn("cursor advance failed", logger.Err(err))
			}
			if b.onAck != nil {
				b.onAck(resp, batch.entries)
			}
			return
		}

		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			logger.Error("ingest batch rejected, dropping",
				logger.Batch(len(batch.files)), logger.Err(err))
			if b.onDrop != nil {
				b.onDrop(len(batch.files))
			}
			return
		}

		delay := expo.NextBackOff()
		logger.Warn("ingest batch failed, retrying",
			logger.Batch(len(batch.files)), "delay", delay, logger.Err(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
