package scanner

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/photovault/pkg/apiclient"
)

type fakePoster struct {
	mu       sync.Mutex
	requests []*apiclient.BatchRequest
	// failures are consumed one per call before success.
	failures []error
}

func (f *fakePoster) IngestBatch(_ context.Context, req *apiclient.BatchRequest) (*apiclient.BatchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	f.requests = append(f.requests, req)
	return &apiclient.BatchResponse{Ingested: len(req.Files)}, nil
}

func (f *fakePoster) got() []*apiclient.BatchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*apiclient.BatchRequest(nil), f.requests...)
}

func desc(path, hash string) (apiclient.FileDescriptor, CursorEntry) {
	mod := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return apiclient.FileDescriptor{
			Path: path, Name: "f.jpg", Hash: hash, Size: 10,
			FileCreatedAt: mod, FileModifiedAt: mod,
		}, CursorEntry{
			Path: path, Hash: hash, Size: 10, ModTime: mod,
		}
}

func startBatcher(t *testing.T, poster batchPoster, size int, onDrop func(int)) (*Batcher, *Cursor) {
	t.Helper()
	cursor := openTestCursor(t)
	b := NewBatcher(poster, cursor, size, 4, nil, onDrop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = b.Run(ctx) }()
	return b, cursor
}

func TestBatcherSubmitsFullBatches(t *testing.T) {
	poster := &fakePoster{}
	b, cursor := startBatcher(t, poster, 2, nil)
	ctx := context.Background()

	d1, e1 := desc("/photos/a.jpg", "h1")
	d2, e2 := desc("/photos/b.jpg", "h2")
	d3, e3 := desc("/photos/c.jpg", "h3")
	require.NoError(t, b.Add(ctx, "dir-1", d1, e1))
	require.NoError(t, b.Add(ctx, "dir-1", d2, e2))
	require.NoError(t, b.Add(ctx, "dir-1", d3, e3))
	require.NoError(t, b.Flush(ctx))

	got := poster.got()
	require.Len(t, got, 2)
	assert.Equal(t, "dir-1", got[0].ScanDirectoryID)
	assert.Len(t, got[0].Files, 2)
	assert.Len(t, got[1].Files, 1)

	// Acknowledged batches advance the cursor.
	for _, e := range []CursorEntry{e1, e2, e3} {
		hash, ok := cursor.Unchanged(e.Path, e.Size, e.ModTime)
		require.True(t, ok, e.Path)
		assert.Equal(t, e.Hash, hash)
	}
}

func TestBatcherSplitsOnScanDirSwitch(t *testing.T) {
	poster := &fakePoster{}
	b, _ := startBatcher(t, poster, 10, nil)
	ctx := context.Background()

	d1, e1 := desc("/photos/a.jpg", "h1")
	d2, e2 := desc("/backup/a.jpg", "h2")
	require.NoError(t, b.Add(ctx, "dir-1", d1, e1))
	require.NoError(t, b.Add(ctx, "dir-2", d2, e2))
	require.NoError(t, b.Flush(ctx))

	got := poster.got()
	require.Len(t, got, 2)
	assert.Equal(t, "dir-1", got[0].ScanDirectoryID)
	assert.Equal(t, "dir-2", got[1].ScanDirectoryID)
}

func TestBatcherRetriesTransientFailures(t *testing.T) {
	poster := &fakePoster{failures: []error{
		&apiclient.APIError{StatusCode: http.StatusBadGateway, Message: "bad gateway"},
	}}
	b, cursor := startBatcher(t, poster, 1, nil)
	ctx := context.Background()

	d1, e1 := desc("/photos/a.jpg", "h1")
	require.NoError(t, b.Add(ctx, "dir-1", d1, e1))
	require.NoError(t, b.Flush(ctx))

	require.Len(t, poster.got(), 1)
	_, ok := cursor.Unchanged(e1.Path, e1.Size, e1.ModTime)
	assert.True(t, ok)
}

func TestBatcherDropsRejectedBatches(t *testing.T) {
	var dropped int
	poster := &fakePoster{failures: []error{
		&apiclient.APIError{StatusCode: http.StatusBadRequest, Code: "validation"},
	}}
	b, cursor := startBatcher(t, poster, 2, func(n int) { dropped = n })
	ctx := context.Background()

	d1, e1 := desc("/photos/a.jpg", "h1")
	d2, e2 := desc("/photos/b.jpg", "h2")
	require.NoError(t, b.Add(ctx, "dir-1", d1, e1))
	require.NoError(t, b.Add(ctx, "dir-1", d2, e2))
	require.NoError(t, b.Flush(ctx))

	assert.Empty(t, poster.got())
	assert.Equal(t, 2, dropped)

	// A rejected batch never advances the cursor; the next pass retries.
	_, ok := cursor.Unchanged(e1.Path, e1.Size, e1.ModTime)
	assert.False(t, ok)
}
