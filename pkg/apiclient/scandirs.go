package apiclient

import (
	"context"
	"time"

	"github.com/marmos91/photovault/pkg/models"
)

// ScanDirRequest is the create/update payload for scan directories.
type ScanDirRequest struct {
	Path     string `json:"path"`
	Hostname string `json:"hostname"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

// ListScanDirectories returns every registered scan root.
func (c *Client) ListScanDirectories(ctx context.Context) ([]models.ScanDirectory, error) {
	return listResources[models.ScanDirectory](ctx, c, "/scan-directories")
}

// ScanDirectoriesForHost returns the enabled scan roots registered for a
// hostname. The discovery worker calls this on startup to learn its roots.
func (c *Client) ScanDirectoriesForHost(ctx context.Context, hostname string) ([]models.ScanDirectory, error) {
	dirs, err := c.ListScanDirectories(ctx)
	if err != nil {
		return nil, err
	}
	var mine []models.ScanDirectory
	for _, dir := range dirs {
		if dir.Enabled && dir.Hostname == hostname {
			mine = append(mine, dir)
		}
	}
	return mine, nil
}

// GetScanDirectory returns a single scan root.
func (c *Client) GetScanDirectory(ctx context.Context, id string) (*models.ScanDirectory, error) {
	return getResource[models.ScanDirectory](ctx, c, resourcePath("/scan-directories/%s", id))
}

// CreateScanDirectory registers a scan root.
func (c *Client) CreateScanDirectory(ctx context.Context, req ScanDirRequest) (*models.ScanDirectory, error) {
	return createResource[models.ScanDirectory](ctx, c, "/scan-directories", req)
}

// UpdateScanDirectory changes a scan root's hostname or enablement.
func (c *Client) UpdateScanDirectory(ctx context.Context, id string, req ScanDirRequest) (*models.ScanDirectory, error) {
	return updateResource[models.ScanDirectory](ctx, c, resourcePath("/scan-directories/%s", id), req)
}

// DeleteScanDirectory removes a scan root and its indexed rows.
func (c *Client) DeleteScanDirectory(ctx context.Context, id string) error {
	return deleteResource(ctx, c, resourcePath("/scan-directories/%s", id))
}

// TriggerScan asks the directory's discovery worker to start a pass.
func (c *Client) TriggerScan(ctx context.Context, id string) error {
	return c.post(ctx, resourcePath("/scan-directories/%s/scan", id), nil, nil)
}

// TouchLastScanned stamps the completion time of a full pass. The discovery
// worker calls this after its final batch is acknowledged.
func (c *Client) TouchLastScanned(ctx context.Context, id string, at time.Time) error {
	return c.patch(ctx, resourcePath("/scan-directories/%s/last-scanned", id),
		map[string]time.Time{"lastScanAt": at.UTC()}, nil)
}
