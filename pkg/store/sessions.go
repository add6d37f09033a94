package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marmos91/photovault/pkg/models"
)

// ============================================
// SELECTION SESSION OPERATIONS
// ============================================

// StartSession creates a new active session, or re-attaches to the existing
// active one when resume is set. At most one session is active at a time;
// starting without resume while one is active returns ErrSessionActive.
func (s *GORMStore) StartSession(ctx context.Context, resume bool) (*models.SelectionSession, error) {
	var session *models.SelectionSession

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active models.SelectionSession
		err := tx.Where("status = ?", models.SessionStatusActive).First(&active).Error

		switch {
		case err == nil:
			if !resume {
				return models.ErrSessionActive
			}
			now := time.Now().UTC()
			if err := tx.Model(&models.SelectionSession{}).
				Where("id = ?", active.ID).
				Updates(map[string]any{
					"resumed_at":       now,
					"last_activity_at": now,
					"updated_at":       now,
				}).Error; err != nil {
				return err
			}
			active.ResumedAt = &now
			active.LastActivityAt = now
			session = &active
			return nil

		case convertNotFoundError(err, models.ErrSessionNotFound) == models.ErrSessionNotFound:
			now := time.Now().UTC()
			session = &models.SelectionSession{
				ID:             uuid.New().String(),
				Status:         models.SessionStatusActive,
				StartedAt:      now,
				LastActivityAt: now,
			}
			return tx.Create(session).Error

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *GORMStore) GetSession(ctx context.Context, id string) (*models.SelectionSession, error) {
	var session models.SelectionSession
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrSessionNotFound)
	}
	return &session, nil
}

// GetActiveSession returns the single active session, if any.
func (s *GORMStore) GetActiveSession(ctx context.Context) (*models.SelectionSession, error) {
	var session models.SelectionSession
	err := s.db.WithContext(ctx).
		Where("status = ?", models.SessionStatusActive).
		First(&session).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrNoActiveSession)
	}
	return &session, nil
}

// SessionProgress records one review action against the session counters.
type SessionProgress struct {
	ProposedDelta  int
	ValidatedDelta int
	SkippedDelta   int
	CurrentGroupID *string
}

// RecordSessionActivity bumps counters, tracks the last-reviewed group, and
// refreshes the activity timestamp.
func (s *GORMStore) RecordSessionActivity(ctx context.Context, sessionID string, progress SessionProgress) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"proposed_count":   gorm.Expr("proposed_count + ?", progress.ProposedDelta),
		"validated_count":  gorm.Expr("validated_count + ?", progress.ValidatedDelta),
		"skipped_count":    gorm.Expr("skipped_count + ?", progress.SkippedDelta),
		"last_activity_at": now,
		"updated_at":       now,
	}
	if progress.CurrentGroupID != nil {
		updates["current_group_id"] = *progress.CurrentGroupID
	}

	result := s.db.WithContext(ctx).
		Model(&models.SelectionSession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionStatusActive).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNoActiveSession
	}
	return nil
}

// UpdateSessionStatus transitions a session after validating the edge.
func (s *GORMStore) UpdateSessionStatus(ctx context.Context, sessionID string, next models.SessionStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.SelectionSession
		if err := tx.Where("id = ?", sessionID).First(&session).Error; err != nil {
			return convertNotFoundError(err, models.ErrSessionNotFound)
		}
		if session.Status == next {
			return nil
		}
		if !session.Status.CanTransitionTo(next) {
			return models.ErrInvalidTransition
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":           next,
			"last_activity_at": now,
			"updated_at":       now,
		}
		switch next {
		case models.SessionStatusCompleted:
			updates["completed_at"] = now
		case models.SessionStatusActive:
			updates["resumed_at"] = now
		}
		return tx.Model(&models.SelectionSession{}).
			Where("id = ?", sessionID).
			Updates(updates).Error
	})
}
