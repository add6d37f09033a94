package duplicates

import (
	"context"
	"errors"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/store"
)

// ErrNoUnreviewedGroups signals that the session walked past the last
// unresolved group.
var ErrNoUnreviewedGroups = errors.New("no unreviewed groups remaining")

// SessionService runs the operator review workflow over duplicate groups.
// It layers session bookkeeping on top of the selection service so every
// review action keeps both the group and the session consistent.
type SessionService struct {
	store     *store.GORMStore
	selection *Service
}

// NewSessionService returns a review session service sharing the selection
// service's store.
func NewSessionService(st *store.GORMStore, selection *Service) *SessionService {
	return &SessionService{store: st, selection: selection}
}

// Start opens a review session. With resume set it re-attaches to the active
// session instead of failing when one exists.
func (s *SessionService) Start(ctx context.Context, resume bool) (*models.SelectionSession, error) {
	session, err := s.store.StartSession(ctx, resume)
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "review session started",
		"session_id", session.ID, "resumed", session.ResumedAt != nil)
	return session, nil
}

// Active returns the currently active session.
func (s *SessionService) Active(ctx context.Context) (*models.SelectionSession, error) {
	return s.store.GetActiveSession(ctx)
}

// Propose records fileID as the proposed original for the group, moving the
// group to autoSelected and pointing the session at it.
func (s *SessionService) Propose(ctx context.Context, sessionID, groupID, fileID string) error {
	if err := s.store.SetOriginal(ctx, groupID, fileID, models.GroupStatusAutoSelected); err != nil {
		return err
	}
	if err := s.store.AttachSession(ctx, groupID, sessionID); err != nil {
		return err
	}
	return s.store.RecordSessionActivity(ctx, sessionID, store.SessionProgress{
		ProposedDelta:  1,
		CurrentGroupID: &groupID,
	})
}

// Validate confirms the group's current original, moving the group to
// validated. Fails with ErrNoOriginalSelected when nothing was proposed.
func (s *SessionService) Validate(ctx context.Context, sessionID, groupID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.Resolved() {
		return models.ErrNoOriginalSelected
	}
	if err := s.store.UpdateGroupStatus(ctx, groupID, models.GroupStatusValidated); err != nil {
		return err
	}
	return s.store.RecordSessionActivity(ctx, sessionID, store.SessionProgress{
		ValidatedDelta: 1,
		CurrentGroupID: &groupID,
	})
}

// Skip moves past the group without changing it.
func (s *SessionService) Skip(ctx context.Context, sessionID, groupID string) error {
	return s.store.RecordSessionActivity(ctx, sessionID, store.SessionProgress{
		SkippedDelta:   1,
		CurrentGroupID: &groupID,
	})
}

// Next returns the next unresolved group after the session's current
// position, scored for display, and advances the cursor. Returns
// ErrNoUnreviewedGroups when the queue is exhausted.
func (s *SessionService) Next(ctx context.Context, sessionID string) (*models.DuplicateGroup, *SelectionResult, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	ids, err := s.store.ListUnresolvedGroupIDs(ctx)
	if err != nil {
		return nil, nil, err
	}

	nextID := ""
	switch {
	case session.CurrentGroupID == nil:
		if len(ids) > 0 {
			nextID = ids[0]
		}
	default:
		idx := -1
		for i, id := range ids {
			if id == *session.CurrentGroupID {
				idx = i
				break
			}
		}
		switch {
		case idx >= 0 && idx+1 < len(ids):
			nextID = ids[idx+1]
		case idx < 0 && len(ids) > 0:
			// The cursor group was resolved meanwhile and left the queue.
			nextID = ids[0]
		}
	}
	if nextID == "" {
		return nil, nil, ErrNoUnreviewedGroups
	}

	group, err := s.store.GetGroup(ctx, nextID)
	if err != nil {
		return nil, nil, err
	}
	scores, err := s.selection.ScoreGroup(ctx, nextID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.AttachSession(ctx, nextID, sessionID); err != nil {
		return nil, nil, err
	}
	err = s.store.RecordSessionActivity(ctx, sessionID, store.SessionProgress{
		CurrentGroupID: &nextID,
	})
	if err != nil {
		return nil, nil, err
	}
	return group, scores, nil
}

// Pause suspends the session; Start with resume reopens it.
func (s *SessionService) Pause(ctx context.Context, sessionID string) error {
	return s.store.UpdateSessionStatus(ctx, sessionID, models.SessionStatusPaused)
}

// Complete closes the session permanently.
func (s *SessionService) Complete(ctx context.Context, sessionID string) error {
	if err := s.store.UpdateSessionStatus(ctx, sessionID, models.SessionStatusCompleted); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "review session completed", "session_id", sessionID)
	return nil
}
