package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/streadway/amqp"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/bus"
	"github.com/marmos91/photovault/pkg/objectstore"
)

// Thumbnail defaults.
const (
	DefaultThumbnailWidth   = 300
	DefaultThumbnailHeight  = 300
	DefaultThumbnailQuality = 85
)

// ThumbnailConfig controls the bounding box and JPEG quality.
type ThumbnailConfig struct {
	MaxWidth  int `mapstructure:"max_width" yaml:"max_width,omitempty"`
	MaxHeight int `mapstructure:"max_height" yaml:"max_height,omitempty"`
	Quality   int `mapstructure:"quality" yaml:"quality,omitempty"`
}

// ApplyDefaults fills in zero values.
func (c *ThumbnailConfig) ApplyDefaults() {
	if c.MaxWidth <= 0 {
		c.MaxWidth = DefaultThumbnailWidth
	}
	if c.MaxHeight <= 0 {
		c.MaxHeight = DefaultThumbnailHeight
	}
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = DefaultThumbnailQuality
	}
}

// ThumbnailWorker consumes the thumbnail-generate queue, renders a JPEG
// derivative into the thumbnails bucket and publishes a completion.
type ThumbnailWorker struct {
	bus       *bus.Bus
	publisher *bus.Publisher
	objects   *objectstore.Client
	config    ThumbnailConfig
	metrics   Metrics
}

// NewThumbnailWorker builds a thumbnail worker. m may be nil.
func NewThumbnailWorker(b *bus.Bus, publisher *bus.Publisher, objects *objectstore.Client, config ThumbnailConfig, m Metrics) *ThumbnailWorker {
	config.ApplyDefaults()
	return &ThumbnailWorker{bus: b, publisher: publisher, objects: objects, config: config, metrics: m}
}

// Run consumes until the context ends.
func (w *ThumbnailWorker) Run(ctx context.Context) error {
	logger.Info("thumbnail worker started",
		logger.Queue(bus.QueueThumbnailGenerate),
		"box", fmt.Sprintf("%dx%d", w.config.MaxWidth, w.config.MaxHeight))
	return w.bus.Consume(ctx, bus.QueueThumbnailGenerate, w.handle)
}

func (w *ThumbnailWorker) handle(ctx context.Context, d amqp.Delivery) error {
	var msg bus.FileDiscovered
	if err := bus.Decode(d.Body, &msg); err != nil {
		return err
	}

	start := time.Now()
	result, err := w.generate(ctx, &msg)
	if err != nil {
		if w.metrics != nil {
			w.metrics.ObserveProcess("thumbnail", time.Since(start), err)
		}
		return err
	}

	if err := w.publisher.PublishThumbnailGenerated(ctx, result); err != nil {
		return fmt.Errorf("failed to publish completion: %w", err)
	}

	deleteScratch(ctx, w.objects, objectstore.BucketThumbnailImages, msg.ObjectKey)

	if w.metrics != nil {
		var procErr error
		if !result.Success {
			procErr = errors.New(result.ErrorMessage)
		}
		w.metrics.ObserveProcess("thumbnail", time.Since(start), procErr)
	}

	if result.Success {
		logger.Debug("thumbnail generated",
			logger.FileID(msg.IndexedFileID), logger.Key(result.ThumbnailObjectKey))
	} else {
		logger.Warn("thumbnail generation failed",
			logger.FileID(msg.IndexedFileID), "reason", result.ErrorMessage)
	}
	return nil
}

// generate renders and stores the derivative. The returned error is
// transient; terminal decode failures come back as a failed completion.
func (w *ThumbnailWorker) generate(ctx context.Context, msg *bus.FileDiscovered) (*bus.ThumbnailGenerated, error) {
	result := &bus.ThumbnailGenerated{
		CorrelationID: msg.CorrelationID,
		IndexedFileID: msg.IndexedFileID,
		ObjectKey:     msg.ObjectKey,
	}

	rc, err := w.objects.Get(ctx, objectstore.BucketThumbnailImages, msg.ObjectKey)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
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

	thumb, err := RenderThumbnail(bytes.NewReader(data), w.config.MaxWidth, w.config.MaxHeight, w.config.Quality)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result, nil
	}

	// The key is deterministic per hash, so a redelivered message
	// overwrites with identical bytes.
	key := objectstore.ThumbKey(msg.FileHash)
	if err := w.objects.Put(ctx, objectstore.BucketThumbnails, key, bytes.NewReader(thumb), "image/jpeg"); err != nil {
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	result.Success = true
	result.ThumbnailObjectKey = key
	return result, nil
}

// RenderThumbnail decodes an image, fits it inside the bounding box
// preserving aspect ratio and encodes it as JPEG. An image that already
// fits is re-encoded without resampling.
func RenderThumbnail(r io.Reader, maxWidth, maxHeight, quality int) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxWidth || bounds.Dy() > maxHeight {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
