// Package objectstore wraps an S3-compatible object store (MinIO in the
// default deployment) behind the four operations the pipeline needs:
// EnsureBucket, Put, Get, Delete.
//
// Three buckets with distinct lifecycles:
//   - metadata-images: raw bytes for the metadata worker, deleted by it
//   - thumbnail-images: raw bytes for the thumbnail worker, deleted by it
//   - thumbnails: derivative JPEGs, retained until the source row is deleted
//
// Keys are content-addressed, so concurrent uploads of the same bytes are
// idempotent and all operations are retry-safe.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/internal/telemetry"
)

// Bucket names used by the pipeline.
const (
	BucketMetadataImages  = "metadata-images"
	BucketThumbnailImages = "thumbnail-images"
	BucketThumbnails      = "thumbnails"
)

// ErrObjectNotFound is returned when the requested key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// FileKey returns the scratch-bucket key for a content hash.
func FileKey(hash string) string {
	return "files/" + hash
}

// ThumbKey returns the derivative-bucket key for a content hash. The key is
// deterministic per hash so redelivered thumbnail jobs overwrite identically.
func ThumbKey(hash string) string {
	return "thumbs/" + hash + ".jpg"
}

// Config contains object store connection settings.
type Config struct {
	// Endpoint is the S3-compatible endpoint, e.g. "http://minio:9000".
	// Empty uses the AWS default resolution.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Region defaults to us-east-1, which MinIO accepts.
	Region string `mapstructure:"region" yaml:"region,omitempty"`

	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`

	// ForcePathStyle must be true for MinIO.
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`

	// MaxRetries is the retry budget for transient errors (default: 3).
	MaxRetries uint `mapstructure:"max_retries" yaml:"max_retries,omitempty"`

	// InitialBackoff is the delay before the first retry (default: 100ms).
	InitialBackoff time.Duration `mapstructure:"initial_backoff" yaml:"initial_backoff,omitempty"`

	// MaxBackoff caps the exponential backoff (default: 2s).
	MaxBackoff time.Duration `mapstructure:"max_backoff" yaml:"max_backoff,omitempty"`

	// BackoffMultiplier is applied per attempt (default: 2.0).
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier" yaml:"backoff_multiplier,omitempty"`
}

// retryConfig holds retry settings for object store operations.
type retryConfig struct {
	maxRetries        uint
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
}

// Client is a thin retrying wrapper over the AWS SDK S3 client.
// Safe for concurrent use by multiple goroutines.
type Client struct {
	s3      *s3.Client
	retry   retryConfig
	metrics Metrics
}

// NewS3ClientFromConfig creates an S3 client from configuration parameters.
func NewS3ClientFromConfig(ctx context.Context, cfg Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return client, nil
}

// New creates a Client and applies retry defaults. A nil Metrics disables
// instrumentation.
func New(ctx context.Context, cfg Config, m Metrics) (*Client, error) {
	s3Client, err := NewS3ClientFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithS3(s3Client, cfg, m), nil
}

// NewWithS3 wraps an already-configured S3 client. Used by tests and by
// callers that share one SDK client across components.
func NewWithS3(s3Client *s3.Client, cfg Config, m Metrics) *Client {
	retry := retryConfig{
		maxRetries:        cfg.MaxRetries,
		initialBackoff:    cfg.InitialBackoff,
		maxBackoff:        cfg.MaxBackoff,
		backoffMultiplier: cfg.BackoffMultiplier,
	}
	if retry.maxRetries == 0 {
		retry.maxRetries = 3
	}
	if retry.initialBackoff == 0 {
		retry.initialBackoff = 100 * time.Millisecond
	}
	if retry.maxBackoff == 0 {
		retry.maxBackoff = 2 * time.Second
	}
	if retry.backoffMultiplier == 0 {
		retry.backoffMultiplier = 2.0
	}

	return &Client{
		s3:      s3Client,
		retry:   retry,
		metrics: m,
	}
}

// EnsureBucket creates the bucket if it does not already exist.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	ctx, span := telemetry.StartStorageSpan(ctx, "ensure_bucket", bucket, "")
	defer span.End()

	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil
	}
	if !isNotFoundError(err) {
		return fmt.Errorf("failed to check bucket %q: %w", bucket, err)
	}

	_, err = c.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		// Another process may have created it between the head and the
		// create.
		if isAlreadyOwnedError(err) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %q: %w", bucket, err)
	}

	logger.Info("bucket created", logger.Bucket(bucket))
	return nil
}

// Put uploads an object. Transient failures are retried with exponential
// backoff; re-uploading the same content-addressed key is idempotent.
func (c *Client) Put(ctx context.Context, bucket, key string, body io.ReadSeeker, contentType string) error {
	start := time.Now()
	err := c.put(ctx, bucket, key, body, contentType)
	c.observe("put", bucket, start, err)
	if err == nil && c.metrics != nil {
		// The body sits at its end after a successful upload, so the
		// current offset is the object size.
		if n, serr := body.Seek(0, io.SeekCurrent); serr == nil {
			c.metrics.RecordBytes("put", bucket, n)
		}
	}
	return err
}

func (c *Client) put(ctx context.Context, bucket, key string, body io.ReadSeeker, contentType string) error {
	ctx, span := telemetry.StartStorageSpan(ctx, "put", bucket, key)
	defer span.End()

	var lastErr error
	for attempt := 0; attempt <= int(c.retry.maxRetries); attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt - 1)
			logger.Debug("put: retrying",
				logger.Bucket(bucket), logger.Key(key),
				logger.Attempt(attempt), "backoff", backoff)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

			// Rewind the body for the retry.
			if _, err := body.Seek(0, io.SeekStart); err != nil {
				return fmt.Errorf("failed to rewind body for retry: %w", err)
			}
		}

		input := &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   body,
		}
		if contentType != "" {
			input.ContentType = aws.String(contentType)
		}

		_, err := c.s3.PutObject(ctx, input)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableError(err) {
			break
		}
	}

	telemetry.RecordError(ctx, lastErr)
	return fmt.Errorf("failed to put %s/%s: %w", bucket, key, lastErr)
}

// Get returns a reader for the object. The caller must close it.
// Returns ErrObjectNotFound when the key does not exist.
func (c *Client) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	start := time.Now()
	rc, err := c.get(ctx, bucket, key)
	c.observe("get", bucket, start, err)
	return rc, err
}

func (c *Client) get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	ctx, span := telemetry.StartStorageSpan(ctx, "get", bucket, key)
	defer span.End()

	var lastErr error
	for attempt := 0; attempt <= int(c.retry.maxRetries); attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt - 1)
			logger.Debug("get: retrying",
				logger.Bucket(bucket), logger.Key(key),
				logger.Attempt(attempt), "backoff", backoff)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return result.Body, nil
		}
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
		}
		lastErr = err
		if !isRetryableError(err) {
			break
		}
	}

	telemetry.RecordError(ctx, lastErr)
	return nil, fmt.Errorf("failed to get %s/%s: %w", bucket, key, lastErr)
}

// Delete removes an object. Deleting a missing key is not an error, which
// keeps worker cleanup idempotent over redelivery.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	start := time.Now()
	err := c.del(ctx, bucket, key)
	c.observe("delete", bucket, start, err)
	return err
}

func (c *Client) del(ctx context.Context, bucket, key string) error {
	ctx, span := telemetry.StartStorageSpan(ctx, "delete", bucket, key)
	defer span.End()

	var lastErr error
	for attempt := 0; attempt <= int(c.retry.maxRetries); attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt - 1)
			logger.Debug("delete: retrying",
				logger.Bucket(bucket), logger.Key(key),
				logger.Attempt(attempt), "backoff", backoff)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err == nil || isNotFoundError(err) {
			return nil
		}
		lastErr = err
		if !isRetryableError(err) {
			break
		}
	}

	telemetry.RecordError(ctx, lastErr)
	return fmt.Errorf("failed to delete %s/%s: %w", bucket, key, lastErr)
}
