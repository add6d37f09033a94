package apiclient

import (
	"context"

	"github.com/marmos91/photovault/pkg/models"
)

// ListJobs returns cleaner jobs newest first, optionally filtered by status.
func (c *Client) ListJobs(ctx context.Context, status string) ([]models.CleanerJob, error) {
	path := "/jobs"
	if status != "" {
		path += "?status=" + status
	}
	return listResources[models.CleanerJob](ctx, c, path)
}

// GetJob returns a cleaner job with its per-file breakdown.
func (c *Client) GetJob(ctx context.Context, id string) (*models.CleanerJob, error) {
	return getResource[models.CleanerJob](ctx, c, resourcePath("/jobs/%s", id))
}

// CancelJob cancels a queued or running cleaner job.
func (c *Client) CancelJob(ctx context.Context, id string) error {
	return c.post(ctx, resourcePath("/jobs/%s/cancel", id), nil, nil)
}

// RetryJob re-queues a failed cleaner job.
func (c *Client) RetryJob(ctx context.Context, id string) (*models.CleanerJob, error) {
	var job models.CleanerJob
	if err := c.post(ctx, resourcePath("/jobs/%s/retry", id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
