package apiclient

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/marmos91/photovault/pkg/models"
)

// Page is the envelope for paginated list endpoints.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"perPage"`
}

// FileDescriptor is one discovered file in a batch ingest request.
type FileDescriptor struct {
	Path           string    `json:"path"`
	Name           string    `json:"name"`
	Hash           string    `json:"hash"`
	Size           int64     `json:"size"`
	FileCreatedAt  time.Time `json:"fileCreatedAt"`
	FileModifiedAt time.Time `json:"fileModifiedAt"`
}

// BatchRequest is the payload for POST /files/batch. Reprocess forces
// re-enrichment of every row even when the content is unchanged.
type BatchRequest struct {
	ScanDirectoryID string           `json:"scanDirectoryId"`
	Files           []FileDescriptor `json:"files"`
	Reprocess       bool             `json:"reprocess,omitempty"`
}

// FileResult is the per-descriptor outcome within a batch response.
type FileResult struct {
	Path   string `json:"path"`
	FileID string `json:"fileId,omitempty"`
	New    bool   `json:"new"`
	Error  string `json:"error,omitempty"`
}

// BatchResponse summarizes one ingest batch.
type BatchResponse struct {
	Results    []FileResult `json:"results"`
	Ingested   int          `json:"ingested"`
	Failed     int          `json:"failed"`
	Discovered int          `json:"discovered"`
}

// Stats mirrors the aggregate statistics served at /files/stats.
type Stats struct {
	TotalFiles      int64 `json:"total_files"`
	TotalSize       int64 `json:"total_size"`
	DuplicateGroups int64 `json:"duplicate_groups"`
	DuplicateFiles  int64 `json:"duplicate_files"`
	WastedSize      int64 `json:"wasted_size"`
	ArchivedFiles   int64 `json:"archived_files"`
	HiddenFiles     int64 `json:"hidden_files"`
	FailedFiles     int64 `json:"failed_files"`
}

// FileListQuery narrows ListFiles. Zero values mean "no constraint".
type FileListQuery struct {
	ScanDirectoryID string
	HasDuplicates   *bool
	From            *time.Time
	To              *time.Time
	Search          string
	IncludeHidden   bool
	Page            int
	PerPage         int
}

func (q FileListQuery) encode() string {
	values := url.Values{}
	if q.ScanDirectoryID != "" {
		values.Set("scanDirectoryId", q.ScanDirectoryID)
	}
	if q.HasDuplicates != nil {
		values.Set("hasDuplicates", strconv.FormatBool(*q.HasDuplicates))
	}
	if q.From != nil {
		values.Set("from", q.From.UTC().Format(time.RFC3339))
	}
	if q.To != nil {
		values.Set("to", q.To.UTC().Format(time.RFC3339))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.IncludeHidden {
		values.Set("includeHidden", "true")
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		values.Set("perPage", strconv.Itoa(q.PerPage))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// ListFiles returns a page of indexed files.
func (c *Client) ListFiles(ctx context.Context, query FileListQuery) (*Page[models.IndexedFile], error) {
	return getResource[Page[models.IndexedFile]](ctx, c, "/files"+query.encode())
}

// GetFile returns a single indexed file.
func (c *Client) GetFile(ctx context.Context, id string) (*models.IndexedFile, error) {
	return getResource[models.IndexedFile](ctx, c, resourcePath("/files/%s", id))
}

// FileStats returns the aggregate collection statistics.
func (c *Client) FileStats(ctx context.Context) (*Stats, error) {
	return getResource[Stats](ctx, c, "/files/stats")
}

// IngestBatch submits a discovery batch, retrying transient failures with
// exponential backoff. Client-side rejections (4xx) are not retried. The
// server applies each row independently, so a retried batch re-applies
// idempotently.
func (c *Client) IngestBatch(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	var resp BatchResponse

	op := func() error {
		if err := c.post(ctx, "/files/batch", req, &resp); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && !apiErr.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReprocessRequest selects files for re-enrichment by id or by filter.
type ReprocessRequest struct {
	FileIDs []string `json:"fileIds,omitempty"`
	Filter  string   `json:"filter,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// ReprocessResponse reports how many reprocess commands went out.
type ReprocessResponse struct {
	Requested int `json:"requested"`
}

// Reprocess asks the service to re-enrich files via the worker hub.
func (c *Client) Reprocess(ctx context.Context, req ReprocessRequest) (*ReprocessResponse, error) {
	var resp ReprocessResponse
	if err := c.post(ctx, "/files/reprocess", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DownloadThumbnail streams the thumbnail JPEG. The caller must close the
// reader.
func (c *Client) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, error) {
	return c.stream(ctx, resourcePath("/files/%s/thumbnail", id))
}

// DownloadContent streams the original bytes when the server can reach them.
// The caller must close the reader.
func (c *Client) DownloadContent(ctx context.Context, id string) (io.ReadCloser, error) {
	return c.stream(ctx, resourcePath("/files/%s/content", id))
}

// SetFileHidden toggles the manual hide flag on a file.
func (c *Client) SetFileHidden(ctx context.Context, id string, hidden bool) error {
	return c.put(ctx, resourcePath("/files/%s/hidden", id), map[string]bool{"hidden": hidden}, nil)
}
