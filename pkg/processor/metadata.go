package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/streadway/amqp"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/bus"
	"github.com/marmos91/photovault/pkg/objectstore"
)

// MetadataWorker consumes the metadata-extract queue, decodes each file's
// header and EXIF block and publishes a MetadataExtracted completion.
type MetadataWorker struct {
	bus       *bus.Bus
	publisher *bus.Publisher
	objects   *objectstore.Client
	metrics   Metrics
}

// NewMetadataWorker builds a metadata worker. m may be nil.
func NewMetadataWorker(b *bus.Bus, publisher *bus.Publisher, objects *objectstore.Client, m Metrics) *MetadataWorker {
	return &MetadataWorker{bus: b, publisher: publisher, objects: objects, metrics: m}
}

// Run consumes until the context ends.
func (w *MetadataWorker) Run(ctx context.Context) error {
	logger.Info("metadata worker started", logger.Queue(bus.QueueMetadataExtract))
	return w.bus.Consume(ctx, bus.QueueMetadataExtract, w.handle)
}

// handle processes one delivery. A returned error redelivers; decode
// failures of the image itself are terminal and reported as a failed
// completion instead.
func (w *MetadataWorker) handle(ctx context.Context, d amqp.Delivery) error {
	var msg bus.FileDiscovered
	if err := bus.Decode(d.Body, &msg); err != nil {
		return err
	}

	start := time.Now()
	result, err := w.extract(ctx, &msg)
	if err != nil {
		// Transient: bucket or network trouble. Redeliver.
		if w.metrics != nil {
			w.metrics.ObserveProcess("metadata", time.Since(start), err)
		}
		return err
	}

	if err := w.publisher.PublishMetadataExtracted(ctx, result); err != nil {
		return fmt.Errorf("failed to publish completion: %w", err)
	}

	// The scratch copy is consumed either way; a failed decode will not
	// succeed on retry.
	deleteScratch(ctx, w.objects, objectstore.BucketMetadataImages, msg.ObjectKey)

	if w.metrics != nil {
		var procErr error
		if !result.Success {
			procErr = errors.New(result.ErrorMessage)
		}
		w.metrics.ObserveProcess("metadata", time.Since(start), procErr)
	}

	if result.Success {
		logger.Debug("metadata extracted",
			logger.FileID(msg.IndexedFileID), logger.Hash(msg.FileHash))
	} else {
		logger.Warn("metadata extraction failed",
			logger.FileID(msg.IndexedFileID), "reason", result.ErrorMessage)
	}
	return nil
}

// extract downloads the scratch object and decodes it. The returned error
// is transient; terminal decode failures come back as a failed completion.
func (w *MetadataWorker) extract(ctx context.Context, msg *bus.FileDiscovered) (*bus.MetadataExtracted, error) {
	result := &bus.MetadataExtracted{
		CorrelationID: msg.CorrelationID,
		IndexedFileID: msg.IndexedFileID,
		ObjectKey:     msg.ObjectKey,
	}

	rc, err := w.objects.Get(ctx, objectstore.BucketMetadataImages, msg.ObjectKey)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			// Already consumed by an earlier delivery of this message.
			result.ErrorMessage = "scratch object missing"
			return result, nil
		}
		return nil, fmt.Errorf("failed to fetch scratch object: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch object: %w", err)
	}

	meta, err := ExtractMetadata(bytes.NewReader(data))
	if err != nil {
		result.ErrorMessage = err.Error()
		return result, nil
	}

	result.Success = true
	result.Width = meta.Width
	result.Height = meta.Height
	result.CameraMake = meta.CameraMake
	result.CameraModel = meta.CameraModel
	result.GPSLatitude = meta.GPSLatitude
	result.GPSLongitude = meta.GPSLongitude
	result.ISO = meta.ISO
	result.Aperture = meta.Aperture
	result.ShutterSpeed = meta.ShutterSpeed
	result.Orientation = meta.Orientation
	if meta.DateTaken != nil {
		taken := meta.DateTaken.UTC().Format(time.RFC3339)
		result.DateTaken = &taken
	}
	return result, nil
}
