package apiclient

import (
	"context"
	"time"
)

// WorkerView mirrors the hub registry's record of a worker.
type WorkerView struct {
	ID          string        `json:"id"`
	Hostname    string        `json:"hostname"`
	Kind        string        `json:"kind"`
	Connected   bool          `json:"connected"`
	ConnectedAt time.Time     `json:"connectedAt"`
	LastSeenAt  time.Time     `json:"lastSeenAt"`
	Status      *WorkerStatus `json:"status,omitempty"`
}

// WorkerStatus mirrors the status record a worker reports over the hub.
type WorkerStatus struct {
	State                     string   `json:"state"`
	CurrentDirectory          string   `json:"currentDirectory,omitempty"`
	FilesProcessed            int64    `json:"filesProcessed"`
	ErrorCount                int64    `json:"errorCount"`
	FilesPerSecond            float64  `json:"filesPerSecond,omitempty"`
	BytesPerSecond            float64  `json:"bytesPerSecond,omitempty"`
	EstimatedSecondsRemaining float64  `json:"estimatedSecondsRemaining,omitempty"`
	PendingDirectories        []string `json:"pendingDirectories,omitempty"`
	ScanRoots                 []string `json:"scanRoots,omitempty"`
	ActiveJobID               string   `json:"activeJobId,omitempty"`
}

// ListWorkers returns every worker the hub has seen since startup, including
// disconnected ones with their last known status.
func (c *Client) ListWorkers(ctx context.Context) ([]WorkerView, error) {
	return listResources[WorkerView](ctx, c, "/workers")
}

// RequestWorkerStatus asks every connected worker for a fresh report.
func (c *Client) RequestWorkerStatus(ctx context.Context) error {
	return c.post(ctx, "/workers/request-status", nil, nil)
}

// PauseIndexers suspends scanning on every connected discovery worker.
func (c *Client) PauseIndexers(ctx context.Context) error {
	return c.post(ctx, "/workers/pause", nil, nil)
}

// ResumeIndexers resumes scanning on every connected discovery worker.
func (c *Client) ResumeIndexers(ctx context.Context) error {
	return c.post(ctx, "/workers/resume", nil, nil)
}

// CancelIndexers aborts the current scan pass on every connected discovery
// worker.
func (c *Client) CancelIndexers(ctx context.Context) error {
	return c.post(ctx, "/workers/cancel", nil, nil)
}

// SetDryRun toggles dry-run mode on connected cleaners. Cleaners accept the
// command but honor their boot-time configuration.
func (c *Client) SetDryRun(ctx context.Context, dryRun bool) error {
	return c.put(ctx, "/workers/dry-run", map[string]bool{"dryRun": dryRun}, nil)
}
