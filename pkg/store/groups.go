package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marmos91/photovault/pkg/models"
)

// ============================================
// DUPLICATE GROUP OPERATIONS
// ============================================

// GroupFilter narrows ListGroups results.
type GroupFilter struct {
	Status  models.GroupStatus
	Page    int
	PerPage int
}

func (f *GroupFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 200 {
		f.PerPage = 50
	}
}

// ListGroups returns a page of duplicate groups ordered by total size
// descending, each preloaded with its live members sorted by path so the
// first member's thumbnail can be inlined for display.
func (s *GORMStore) ListGroups(ctx context.Context, filter GroupFilter) ([]*models.DuplicateGroup, int64, error) {
	filter.normalize()

	q := s.db.WithContext(ctx).Model(&models.DuplicateGroup{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var groups []*models.DuplicateGroup
	err := q.
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("path asc")
		}).
		Order("total_size desc").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&groups).Error
	if err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// GetGroup returns a group with its full live member list sorted by path.
func (s *GORMStore) GetGroup(ctx context.Context, id string) (*models.DuplicateGroup, error) {
	var group models.DuplicateGroup
	err := s.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("path asc")
		}).
		Where("id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrGroupNotFound)
	}
	return &group, nil
}

// GetGroupByHash returns the group for a content hash, if any.
func (s *GORMStore) GetGroupByHash(ctx context.Context, hash string) (*models.DuplicateGroup, error) {
	var group models.DuplicateGroup
	err := s.db.WithContext(ctx).Where("hash = ?", hash).First(&group).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrGroupNotFound)
	}
	return &group, nil
}

// ListUnresolvedGroupIDs returns the ids of every group still awaiting an
// original, in stable order. Used by bulk auto-selection.
func (s *GORMStore) ListUnresolvedGroupIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.DuplicateGroup{}).
		Where("status IN ?", []models.GroupStatus{
			models.GroupStatusPending,
			models.GroupStatusAutoSelected,
		}).
		Order("review_order asc").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SetOriginal marks the chosen file as the group's original, clears the flag
// on siblings, transitions the group to its target status, and stamps
// resolvedAt and keptFileId. All writes happen in one transaction keyed by
// the group id.
func (s *GORMStore) SetOriginal(ctx context.Context, groupID, fileID string, status models.GroupStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.DuplicateGroup
		if err := tx.Where("id = ?", groupID).First(&group).Error; err != nil {
			return convertNotFoundError(err, models.ErrGroupNotFound)
		}
		if !group.Status.CanTransitionTo(status) && group.Status != status {
			return models.ErrInvalidTransition
		}

		var file models.IndexedFile
		err := tx.Where("id = ? AND duplicate_group_id = ?", fileID, groupID).
			First(&file).Error
		if err != nil {
			return convertNotFoundError(err, models.ErrFileNotInGroup)
		}

		if err := tx.Model(&models.IndexedFile{}).
			Where("duplicate_group_id = ?", groupID).
			Update("is_original", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.IndexedFile{}).
			Where("id = ?", fileID).
			Update("is_original", true).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		return tx.Model(&models.DuplicateGroup{}).
			Where("id = ?", groupID).
			Updates(map[string]any{
				"status":       status,
				"kept_file_id": fileID,
				"resolved_at":  now,
				"updated_at":   now,
			}).Error
	})
}

// UpdateGroupStatus transitions a group after validating the edge.
func (s *GORMStore) UpdateGroupStatus(ctx context.Context, groupID string, next models.GroupStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateGroupStatusTx(tx, groupID, next)
	})
}

func updateGroupStatusTx(tx *gorm.DB, groupID string, next models.GroupStatus) error {
	var group models.DuplicateGroup
	if err := tx.Where("id = ?", groupID).First(&group).Error; err != nil {
		return convertNotFoundError(err, models.ErrGroupNotFound)
	}
	if group.Status == next {
		return nil
	}
	if !group.Status.CanTransitionTo(next) {
		return models.ErrInvalidTransition
	}
	return tx.Model(&models.DuplicateGroup{}).
		Where("id = ?", groupID).
		Updates(map[string]any{
			"status":     next,
			"updated_at": time.Now().UTC(),
		}).Error
}

// AttachSession associates a group with the review session that last
// proposed an original for it.
func (s *GORMStore) AttachSession(ctx context.Context, groupID, sessionID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.DuplicateGroup{}).
		Where("id = ?", groupID).
		Updates(map[string]any{
			"review_session_id": sessionID,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrGroupNotFound
	}
	return nil
}

// RecomputeGroup refreshes the group for a hash outside an ingest
// transaction, dissolving it if membership fell below two.
func (s *GORMStore) RecomputeGroup(ctx context.Context, hash string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return recomputeGroupTx(tx, hash)
	})
}

// ensureGroupForHashTx links every live file sharing the hash to a group,
// creating the group when the live non-hidden count first reaches two.
// A group that was already cleaned returns to pending when a new duplicate
// arrives. Must run inside the caller's transaction.
func ensureGroupForHashTx(tx *gorm.DB, hash string) error {
	var liveCount int64
	err := tx.Model(&models.IndexedFile{}).
		Where("hash = ? AND is_deleted = ? AND hidden = ?", hash, false, false).
		Count(&liveCount).Error
	if err != nil {
		return err
	}
	if liveCount < 2 {
		return recomputeGroupTx(tx, hash)
	}

	var group models.DuplicateGroup
	err = tx.Where("hash = ?", hash).First(&group).Error
	switch {
	case err == nil:
		if group.Status == models.GroupStatusCleaned {
			// A collision returned after cleanup. The group rejoins the
			// review queue at the back, with no original carried over.
			order, err := nextReviewOrderTx(tx)
			if err != nil {
				return err
			}
			if err := tx.Model(&models.DuplicateGroup{}).
				Where("id = ?", group.ID).
				Updates(map[string]any{
					"status":       models.GroupStatusPending,
					"kept_file_id": nil,
					"resolved_at":  nil,
					"review_order": order,
					"updated_at":   time.Now().UTC(),
				}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.IndexedFile{}).
				Where("duplicate_group_id = ?", group.ID).
				Update("is_original", false).Error; err != nil {
				return err
			}
		}
	case convertNotFoundError(err, models.ErrGroupNotFound) == models.ErrGroupNotFound:
		order, err := nextReviewOrderTx(tx)
		if err != nil {
			return err
		}
		group = models.DuplicateGroup{
			ID:          uuid.New().String(),
			Hash:        hash,
			Status:      models.GroupStatusPending,
			ReviewOrder: order,
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
	default:
		return err
	}

	// Link every live file with the hash and refresh counters.
	if err := tx.Model(&models.IndexedFile{}).
		Where("hash = ? AND is_deleted = ?", hash, false).
		Update("duplicate_group_id", group.ID).Error; err != nil {
		return err
	}
	return refreshGroupCountersTx(tx, group.ID, hash)
}

// nextReviewOrderTx returns the next slot at the back of the review queue.
func nextReviewOrderTx(tx *gorm.DB) (int64, error) {
	var max int64
	err := tx.Model(&models.DuplicateGroup{}).
		Select("COALESCE(MAX(review_order), 0)").
		Scan(&max).Error
	return max + 1, err
}

// recomputeGroupTx refreshes or dissolves the group for a hash after
// membership changed (hide, hash change, scan-root delete). Groups are
// never reused: if the live non-hidden count falls below two the row is
// removed, and a returning collision gets a fresh id via
// ensureGroupForHashTx. Archives go through refreshGroupAfterArchiveTx
// instead; a cleaned group keeps its row.
func recomputeGroupTx(tx *gorm.DB, hash string) error {
	var group models.DuplicateGroup
	if err := tx.Where("hash = ?", hash).First(&group).Error; err != nil {
		if convertNotFoundError(err, models.ErrGroupNotFound) == models.ErrGroupNotFound {
			return nil
		}
		return err
	}

	var liveCount int64
	err := tx.Model(&models.IndexedFile{}).
		Where("hash = ? AND is_deleted = ? AND hidden = ?", hash, false, false).
		Count(&liveCount).Error
	if err != nil {
		return err
	}

	if liveCount < 2 {
		if err := tx.Model(&models.IndexedFile{}).
			Where("duplicate_group_id = ?", group.ID).
			Updates(map[string]any{
				"duplicate_group_id": nil,
				"is_original":        false,
			}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	}

	return refreshGroupCountersTx(tx, group.ID, hash)
}

// refreshGroupAfterArchiveTx refreshes the group's counters after a member
// was archived, without dissolving it. The row has to survive the clean so
// the finishing job can move it to cleaned, and so a duplicate discovered
// later finds the cleaned group and sends it back through review.
func refreshGroupAfterArchiveTx(tx *gorm.DB, hash string) error {
	var group models.DuplicateGroup
	if err := tx.Where("hash = ?", hash).First(&group).Error; err != nil {
		if convertNotFoundError(err, models.ErrGroupNotFound) == models.ErrGroupNotFound {
			return nil
		}
		return err
	}
	return refreshGroupCountersTx(tx, group.ID, hash)
}

func refreshGroupCountersTx(tx *gorm.DB, groupID, hash string) error {
	var agg struct {
		Count int64
		Total int64
	}
	err := tx.Model(&models.IndexedFile{}).
		Select("COUNT(*) as count, COALESCE(SUM(size), 0) as total").
		Where("hash = ? AND is_deleted = ? AND hidden = ?", hash, false, false).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.DuplicateGroup{}).
		Where("id = ?", groupID).
		Updates(map[string]any{
			"file_count": agg.Count,
			"total_size": agg.Total,
			"updated_at": time.Now().UTC(),
		}).Error
}
