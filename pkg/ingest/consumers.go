package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/streadway/amqp"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/bus"
	"github.com/marmos91/photovault/pkg/store"
)

// Consumers applies completion events from the processing workers back to
// the store. Each handler is idempotent: it writes a fixed set of named
// columns keyed by row id, so redelivery re-applies the same state.
type Consumers struct {
	store   *store.GORMStore
	metrics Metrics
}

// NewConsumers returns the completion consumer set.
func NewConsumers(st *store.GORMStore, m Metrics) *Consumers {
	return &Consumers{store: st, metrics: m}
}

// Run binds both completion queues and blocks until the context ends.
func (c *Consumers) Run(ctx context.Context, b *bus.Bus) error {
	errc := make(chan error, 2)
	go func() {
		errc <- b.Consume(ctx, bus.QueueMetadataExtracted, c.HandleMetadataExtracted)
	}()
	go func() {
		errc <- b.Consume(ctx, bus.QueueThumbnailGenerated, c.HandleThumbnailGenerated)
	}()
	return <-errc
}

// HandleMetadataExtracted applies a metadata worker outcome. A failed
// extraction records the error on the row; a successful one replaces every
// enrichment column.
func (c *Consumers) HandleMetadataExtracted(ctx context.Context, d amqp.Delivery) error {
	var msg bus.MetadataExtracted
	if err := bus.Decode(d.Body, &msg); err != nil {
		return err
	}
	if msg.IndexedFileID == "" {
		return fmt.Errorf("metadata completion without a file id")
	}

	if !msg.Success {
		c.recordCompletion("metadata", false)
		return c.store.RecordProcessingError(ctx, msg.IndexedFileID, msg.ErrorMessage)
	}

	update := store.MetadataUpdate{
		Width:        msg.Width,
		Height:       msg.Height,
		CameraMake:   msg.CameraMake,
		CameraModel:  msg.CameraModel,
		GPSLatitude:  msg.GPSLatitude,
		GPSLongitude: msg.GPSLongitude,
		ISO:          msg.ISO,
		Aperture:     msg.Aperture,
		ShutterSpeed: msg.ShutterSpeed,
		Orientation:  msg.Orientation,
	}
	if msg.DateTaken != nil {
		taken, err := parseCaptureTime(*msg.DateTaken)
		if err != nil {
			// Garbage EXIF dates (empty, zero-year) are dropped, not stored.
			logger.WarnCtx(ctx, "discarding unusable capture time",
				logger.FileID(msg.IndexedFileID),
				"value", *msg.DateTaken,
				logger.Err(err))
		} else {
			update.DateTaken = &taken
		}
	}

	if err := c.store.ApplyMetadata(ctx, msg.IndexedFileID, update); err != nil {
		c.recordCompletion("metadata", false)
		return err
	}
	c.recordCompletion("metadata", true)
	return nil
}

// HandleThumbnailGenerated applies a thumbnail worker outcome.
func (c *Consumers) HandleThumbnailGenerated(ctx context.Context, d amqp.Delivery) error {
	var msg bus.ThumbnailGenerated
	if err := bus.Decode(d.Body, &msg); err != nil {
		return err
	}
	if msg.IndexedFileID == "" {
		return fmt.Errorf("thumbnail completion without a file id")
	}

	if !msg.Success {
		c.recordCompletion("thumbnail", false)
		return c.store.RecordProcessingError(ctx, msg.IndexedFileID, msg.ErrorMessage)
	}
	if msg.ThumbnailObjectKey == "" {
		c.recordCompletion("thumbnail", false)
		return fmt.Errorf("successful thumbnail completion without an object key")
	}

	if err := c.store.SetThumbnail(ctx, msg.IndexedFileID, msg.ThumbnailObjectKey); err != nil {
		c.recordCompletion("thumbnail", false)
		return err
	}
	c.recordCompletion("thumbnail", true)
	return nil
}

func (c *Consumers) recordCompletion(kind string, success bool) {
	if c.metrics != nil {
		c.metrics.RecordCompletion(kind, success)
	}
}

// parseCaptureTime normalizes a worker-reported capture timestamp to UTC.
// Zoned values are converted; zone-less values are assumed UTC. Empty
// strings and the zero-year sentinels some cameras emit are rejected.
func parseCaptureTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty capture time")
	}
	if strings.HasPrefix(raw, "0000") {
		return time.Time{}, fmt.Errorf("zero-year capture time")
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable capture time: %w", err)
	}
	return t, nil
}
