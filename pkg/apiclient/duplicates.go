package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/marmos91/photovault/pkg/models"
)

// Score mirrors the per-file score breakdown served by the API.
type Score struct {
	FileID     string `json:"fileId"`
	Path       string `json:"path"`
	Priority   int    `json:"priority"`
	ExifBonus  int    `json:"exifBonus"`
	DepthBonus int    `json:"depthBonus"`
	AgeBonus   int    `json:"ageBonus"`
}

// Total returns the combined score.
func (s Score) Total() int {
	return s.Priority + s.ExifBonus + s.DepthBonus + s.AgeBonus
}

// SelectionResult is the outcome of an auto-selection call.
type SelectionResult struct {
	GroupID    string  `json:"groupId"`
	SelectedID string  `json:"selectedId,omitempty"`
	Conflict   bool    `json:"conflict"`
	Scores     []Score `json:"scores"`
}

// AutoSelectSummary aggregates a bulk auto-selection pass.
type AutoSelectSummary struct {
	Selected  int `json:"selected"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
}

// DuplicateDetail is a group with its current score ranking inlined.
type DuplicateDetail struct {
	models.DuplicateGroup
	Scores []Score `json:"scores,omitempty"`
}

// ListDuplicates returns a page of duplicate groups, optionally filtered by
// status.
func (c *Client) ListDuplicates(ctx context.Context, status string, page, perPage int) (*Page[models.DuplicateGroup], error) {
	values := url.Values{}
	if status != "" {
		values.Set("status", status)
	}
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		values.Set("perPage", strconv.Itoa(perPage))
	}
	path := "/duplicates"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}
	return getResource[Page[models.DuplicateGroup]](ctx, c, path)
}

// GetDuplicate returns a group with its members and score ranking.
func (c *Client) GetDuplicate(ctx context.Context, id string) (*DuplicateDetail, error) {
	return getResource[DuplicateDetail](ctx, c, resourcePath("/duplicates/%s", id))
}

// SetOriginal marks a file as the group's keeper, validating the group.
func (c *Client) SetOriginal(ctx context.Context, groupID, fileID string) (*models.DuplicateGroup, error) {
	var group models.DuplicateGroup
	err := c.put(ctx, resourcePath("/duplicates/%s/original", groupID),
		map[string]string{"fileId": fileID}, &group)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// AutoSelect runs score-based original selection on one group. A conflict
// surfaces as an *APIError with IsSelectionConflict() true.
func (c *Client) AutoSelect(ctx context.Context, groupID string) (*SelectionResult, error) {
	var result SelectionResult
	if err := c.post(ctx, resourcePath("/duplicates/%s/auto-select", groupID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AutoSelectAll runs score-based selection over every unresolved group.
func (c *Client) AutoSelectAll(ctx context.Context) (*AutoSelectSummary, error) {
	var summary AutoSelectSummary
	if err := c.post(ctx, "/duplicates/auto-select-all", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// DeleteNonOriginals queues a cleaner job archiving every non-original
// member of the group.
func (c *Client) DeleteNonOriginals(ctx context.Context, groupID string, dryRun bool) (*models.CleanerJob, error) {
	path := resourcePath("/duplicates/%s/non-originals", groupID)
	if dryRun {
		path += "?dryRun=true"
	}
	var job models.CleanerJob
	if err := c.delete(ctx, path, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
