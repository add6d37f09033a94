package apiclient

import (
	"context"

	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/version"
)

// Version returns the server's build information.
func (c *Client) Version(ctx context.Context) (*version.Info, error) {
	return getResource[version.Info](ctx, c, "/version")
}

// Health probes the server's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

// ListHiddenFolders returns every hidden-folder rule.
func (c *Client) ListHiddenFolders(ctx context.Context) ([]models.HiddenFolder, error) {
	return listResources[models.HiddenFolder](ctx, c, "/hidden-folders")
}

// CreateHiddenFolder hides every indexed file under the folder.
func (c *Client) CreateHiddenFolder(ctx context.Context, path string) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/hidden-folders", map[string]string{"path": path}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DeleteHiddenFolder removes the rule and unhides the files it claimed.
func (c *Client) DeleteHiddenFolder(ctx context.Context, id string) error {
	return deleteResource(ctx, c, resourcePath("/hidden-folders/%s", id))
}

// ListHiddenSizeRules returns every size-based hide rule.
func (c *Client) ListHiddenSizeRules(ctx context.Context) ([]models.HiddenSizeRule, error) {
	return listResources[models.HiddenSizeRule](ctx, c, "/hidden-size-rules")
}

// CreateHiddenSizeRule hides every indexed file smaller than maxSize bytes.
func (c *Client) CreateHiddenSizeRule(ctx context.Context, maxSize int64, label string) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	body := map[string]any{"maxSize": maxSize, "label": label}
	if err := c.post(ctx, "/hidden-size-rules", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DeleteHiddenSizeRule removes the rule and unhides the files it claimed.
func (c *Client) DeleteHiddenSizeRule(ctx context.Context, id string) error {
	return deleteResource(ctx, c, resourcePath("/hidden-size-rules/%s", id))
}
