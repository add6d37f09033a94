// Package ingest implements the hub side of the discovery pipeline: the
// batch ingestion endpoint logic and the completion consumers that apply
// worker results back to the store.
package ingest

import (
	"context"
	"time"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/internal/telemetry"
	"github.com/marmos91/photovault/pkg/bus"
	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/store"
)

// DiscoveryPublisher publishes FileDiscovered events after a row commits.
type DiscoveryPublisher interface {
	PublishFileDiscovered(ctx context.Context, msg *bus.FileDiscovered) error
}

// Service ingests file descriptor batches from discovery workers.
type Service struct {
	store     *store.GORMStore
	publisher DiscoveryPublisher
	metrics   Metrics
}

// NewService returns a batch ingestion service. publisher may be nil in
// tests; events are then skipped. metrics may be nil to disable recording.
func NewService(st *store.GORMStore, publisher DiscoveryPublisher, m Metrics) *Service {
	return &Service{store: st, publisher: publisher, metrics: m}
}

// FileDescriptor is one file submitted by a discovery worker. Field names
// follow the wire contract shared with the workers.
type FileDescriptor struct {
	Path           string    `json:"path"`
	Name           string    `json:"name"`
	Hash           string    `json:"hash"`
	Size           int64     `json:"size"`
	FileCreatedAt  time.Time `json:"fileCreatedAt"`
	FileModifiedAt time.Time `json:"fileModifiedAt"`
}

// BatchRequest is the body of POST /files/batch.
type BatchRequest struct {
	ScanDirectoryID string           `json:"scanDirectoryId"`
	Files           []FileDescriptor `json:"files"`

	// Reprocess forces a FileDiscovered for every row in the batch, even
	// when the content is unchanged. A reprocessed file usually has the
	// same bytes on disk; without the flag the upsert would match the
	// stored hash and nothing downstream would run.
	Reprocess bool `json:"reprocess,omitempty"`
}

// FileResult reports the outcome for one descriptor.
type FileResult struct {
	Path   string `json:"path"`
	FileID string `json:"fileId,omitempty"`
	New    bool   `json:"new"`
	Error  string `json:"error,omitempty"`
}

// BatchResponse summarizes one ingested batch.
type BatchResponse struct {
	Results    []FileResult `json:"results"`
	Ingested   int          `json:"ingested"`
	Failed     int          `json:"failed"`
	Discovered int          `json:"discovered"`
}

// IngestBatch upserts every descriptor, each in its own transaction, then
// publishes one FileDiscovered per new or hash-changed row; reprocess
// batches publish for every row. Publishes are deferred until after the row
// committed so consumers never race an open transaction. Per-row failures
// are reported in place; the batch keeps going.
func (s *Service) IngestBatch(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	ctx, span := telemetry.StartIngestSpan(ctx, "batch",
		telemetry.ScanDir(req.ScanDirectoryID),
		telemetry.BatchSize(len(req.Files)))
	defer span.End()

	start := time.Now()

	dir, err := s.store.GetScanDirectory(ctx, req.ScanDirectoryID)
	if err != nil {
		s.observeBatch(len(req.Files), time.Since(start), err)
		return nil, err
	}

	resp := &BatchResponse{Results: make([]FileResult, 0, len(req.Files))}
	var pending []*bus.FileDiscovered

	for i := range req.Files {
		desc := &req.Files[i]
		result, err := s.store.UpsertFile(ctx, &models.IndexedFile{
			ScanDirectoryID: dir.ID,
			Path:            desc.Path,
			Name:            desc.Name,
			Hash:            desc.Hash,
			Size:            desc.Size,
			FileCreatedAt:   desc.FileCreatedAt,
			FileModifiedAt:  desc.FileModifiedAt,
		})
		if err != nil {
			resp.Failed++
			resp.Results = append(resp.Results, FileResult{
				Path:  desc.Path,
				Error: err.Error(),
			})
			logger.WarnCtx(ctx, "descriptor upsert failed",
				logger.Path(desc.Path), logger.Err(err))
			continue
		}

		resp.Ingested++
		resp.Results = append(resp.Results, FileResult{
			Path:   desc.Path,
			FileID: result.File.ID,
			New:    result.IsNew,
		})

		if result.Changed() || req.Reprocess {
			pending = append(pending, &bus.FileDiscovered{
				CorrelationID:   bus.NewCorrelationID(),
				IndexedFileID:   result.File.ID,
				ObjectKey:       ObjectKeyForHash(desc.Hash),
				ScanDirectoryID: dir.ID,
				FilePath:        desc.Path,
				FileHash:        desc.Hash,
				FileSize:        desc.Size,
			})
		}
	}

	// Rows are committed; fan the discoveries out. A failed publish is not a
	// failed ingest: the row exists and a rescan republishes.
	for _, msg := range pending {
		if s.publisher == nil {
			break
		}
		if err := s.publisher.PublishFileDiscovered(ctx, msg); err != nil {
			logger.WarnCtx(ctx, "discovery publish failed",
				logger.FileID(msg.IndexedFileID),
				logger.CorrelationID(msg.CorrelationID),
				logger.Err(err))
			continue
		}
		resp.Discovered++
	}

	s.observeBatch(len(req.Files), time.Since(start), nil)
	logger.InfoCtx(ctx, "batch ingested",
		logger.ScanDir(dir.ID),
		"files", len(req.Files),
		"ingested", resp.Ingested,
		"failed", resp.Failed,
		"discovered", resp.Discovered)
	return resp, nil
}

func (s *Service) observeBatch(size int, duration time.Duration, err error) {
	if s.metrics != nil {
		s.metrics.ObserveBatch(size, duration, err)
	}
}

// ObjectKeyForHash is the content-addressed key the discovery worker uploads
// under in both scratch buckets.
func ObjectKeyForHash(hash string) string {
	return "files/" + hash
}

// ThumbnailKeyForHash is the derivative key the thumbnail worker writes.
// Deterministic per hash so redeliveries overwrite the same object.
func ThumbnailKeyForHash(hash string) string {
	return "thumbs/" + hash + ".jpg"
}
