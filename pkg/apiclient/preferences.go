package apiclient

import (
	"context"

	"github.com/marmos91/photovault/pkg/models"
)

// PreferenceRequest is the create/update payload for selection preferences.
type PreferenceRequest struct {
	Prefix    string `json:"prefix"`
	Priority  int    `json:"priority"`
	SortOrder int    `json:"sortOrder"`
}

// ListPreferences returns selection preferences in match precedence order.
func (c *Client) ListPreferences(ctx context.Context) ([]models.SelectionPreference, error) {
	return listResources[models.SelectionPreference](ctx, c, "/preferences")
}

// CreatePreference registers a path-prefix preference for original scoring.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*models.SelectionPreference, error) {
	return createResource[models.SelectionPreference](ctx, c, "/preferences", req)
}

// UpdatePreference changes a preference's prefix, priority or sort order.
func (c *Client) UpdatePreference(ctx context.Context, id string, req PreferenceRequest) (*models.SelectionPreference, error) {
	return updateResource[models.SelectionPreference](ctx, c, resourcePath("/preferences/%s", id), req)
}

// DeletePreference removes a preference.
func (c *Client) DeletePreference(ctx context.Context, id string) error {
	return deleteResource(ctx, c, resourcePath("/preferences/%s", id))
}
