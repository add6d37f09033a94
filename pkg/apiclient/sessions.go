package apiclient

import (
	"context"

	"github.com/marmos91/photovault/pkg/models"
)

// NextGroupResponse pairs the next unreviewed group with its score ranking.
type NextGroupResponse struct {
	Group  *models.DuplicateGroup `json:"group"`
	Result *SelectionResult       `json:"result"`
}

// StartSession opens a review session. With resume set, a paused session is
// reactivated instead.
func (c *Client) StartSession(ctx context.Context, resume bool) (*models.SelectionSession, error) {
	return createResource[models.SelectionSession](ctx, c, "/sessions",
		map[string]bool{"resume": resume})
}

// ActiveSession returns the currently active review session, if any.
func (c *Client) ActiveSession(ctx context.Context) (*models.SelectionSession, error) {
	return getResource[models.SelectionSession](ctx, c, "/sessions/active")
}

// NextGroup advances the review cursor. An exhausted queue surfaces as an
// *APIError with code noUnreviewedGroups.
func (c *Client) NextGroup(ctx context.Context, sessionID string) (*NextGroupResponse, error) {
	var resp NextGroupResponse
	if err := c.post(ctx, resourcePath("/sessions/%s/next", sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Propose marks a file as the proposed original for a group under review.
func (c *Client) Propose(ctx context.Context, sessionID, groupID, fileID string) error {
	return c.post(ctx, resourcePath("/sessions/%s/propose", sessionID),
		map[string]string{"groupId": groupID, "fileId": fileID}, nil)
}

// Validate confirms the group's proposed original.
func (c *Client) Validate(ctx context.Context, sessionID, groupID string) error {
	return c.post(ctx, resourcePath("/sessions/%s/validate", sessionID),
		map[string]string{"groupId": groupID}, nil)
}

// Skip records that the group was skipped without a decision.
func (c *Client) Skip(ctx context.Context, sessionID, groupID string) error {
	return c.post(ctx, resourcePath("/sessions/%s/skip", sessionID),
		map[string]string{"groupId": groupID}, nil)
}

// PauseSession suspends the session for later resumption.
func (c *Client) PauseSession(ctx context.Context, sessionID string) error {
	return c.post(ctx, resourcePath("/sessions/%s/pause", sessionID), nil, nil)
}

// CompleteSession closes the session.
func (c *Client) CompleteSession(ctx context.Context, sessionID string) error {
	return c.post(ctx, resourcePath("/sessions/%s/complete", sessionID), nil, nil)
}
