package processor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/bus"
	"github.com/marmos91/photovault/pkg/objectstore"
)

// LocalEnricher runs both enrichment steps in-process for the legacy
// single-node mode: the discovery worker calls it after batch ack instead
// of relying on the queue workers. Results still flow to the ingestion
// service as the usual completion events, reading the file straight from
// local disk instead of the scratch buckets.
type LocalEnricher struct {
	publisher *bus.Publisher
	objects   *objectstore.Client
	config    ThumbnailConfig
}

// NewLocalEnricher builds the single-node enrichment step.
func NewLocalEnricher(publisher *bus.Publisher, objects *objectstore.Client, config ThumbnailConfig) *LocalEnricher {
	config.ApplyDefaults()
	return &LocalEnricher{publisher: publisher, objects: objects, config: config}
}

// Process extracts metadata and renders the thumbnail for one ingested
// file, publishing a completion for each step.
func (e *LocalEnricher) Process(ctx context.Context, fileID, path, hash string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	objectKey := objectstore.FileKey(hash)

	metaResult := &bus.MetadataExtracted{
		CorrelationID: bus.NewCorrelationID(),
		IndexedFileID: fileID,
		ObjectKey:     objectKey,
	}
	meta, err := ExtractMetadata(bytes.NewReader(data))
	if err != nil {
		metaResult.ErrorMessage = err.Error()
	} else {
		metaResult.Success = true
		metaResult.Width = meta.Width
		metaResult.Height = meta.Height
		metaResult.CameraMake = meta.CameraMake
		metaResult.CameraModel = meta.CameraModel
		metaResult.GPSLatitude = meta.GPSLatitude
		metaResult.GPSLongitude = meta.GPSLongitude
		metaResult.ISO = meta.ISO
		metaResult.Aperture = meta.Aperture
		metaResult.ShutterSpeed = meta.ShutterSpeed
		metaResult.Orientation = meta.Orientation
		if meta.DateTaken != nil {
			taken := meta.DateTaken.UTC().Format(time.RFC3339)
			metaResult.DateTaken = &taken
		}
	}
	if err := e.publisher.PublishMetadataExtracted(ctx, metaResult); err != nil {
		return fmt.Errorf("failed to publish metadata completion: %w", err)
	}

	thumbResult := &bus.ThumbnailGenerated{
		CorrelationID: bus.NewCorrelationID(),
		IndexedFileID: fileID,
		ObjectKey:     objectKey,
	}
	thumb, err := RenderThumbnail(bytes.NewReader(data), e.config.MaxWidth, e.config.MaxHeight, e.config.Quality)
	if err != nil {
		thumbResult.ErrorMessage = err.Error()
	} else {
		key := objectstore.ThumbKey(hash)
		if err := e.objects.Put(ctx, objectstore.BucketThumbnails, key, bytes.NewReader(thumb), "image/jpeg"); err != nil {
			return fmt.Errorf("failed to store thumbnail: %w", err)
		}
		thumbResult.Success = true
		thumbResult.ThumbnailObjectKey = key
	}
	if err := e.publisher.PublishThumbnailGenerated(ctx, thumbResult); err != nil {
		return fmt.Errorf("failed to publish thumbnail completion: %w", err)
	}

	logger.Debug("local enrichment complete",
		logger.FileID(fileID), logger.Path(path))
	return nil
}
