package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marmos91/photovault/pkg/models"
)

// ============================================
// HIDE RULE OPERATIONS
// ============================================

func (s *GORMStore) ListHiddenFolders(ctx context.Context) ([]*models.HiddenFolder, error) {
	var folders []*models.HiddenFolder
	if err := s.db.WithContext(ctx).Order("path asc").Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

// CreateHiddenFolder registers the rule and hides every live file whose path
// falls under it, recomputing the duplicate groups the files belonged to.
func (s *GORMStore) CreateHiddenFolder(ctx context.Context, folder *models.HiddenFolder) (string, error) {
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(folder).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.ErrDuplicateHiddenFolder
			}
			return err
		}
		return applyFolderRuleTx(tx, folder)
	})
	if err != nil {
		return "", err
	}
	return folder.ID, nil
}

// DeleteHiddenFolder removes the rule and unhides its files, except those
// still covered by another rule. Affected groups are recomputed.
func (s *GORMStore) DeleteHiddenFolder(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var folder models.HiddenFolder
		if err := tx.Where("id = ?", id).First(&folder).Error; err != nil {
			return convertNotFoundError(err, models.ErrHiddenFolderNotFound)
		}
		if err := unhideByRuleTx(tx, "hidden_folder_id", id); err != nil {
			return err
		}
		return tx.Delete(&folder).Error
	})
}

func (s *GORMStore) ListHiddenSizeRules(ctx context.Context) ([]*models.HiddenSizeRule, error) {
	var rules []*models.HiddenSizeRule
	if err := s.db.WithContext(ctx).Order("max_size asc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// CreateHiddenSizeRule registers the rule and hides every live file smaller
// than its threshold.
func (s *GORMStore) CreateHiddenSizeRule(ctx context.Context, rule *models.HiddenSizeRule) (string, error) {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rule).Error; err != nil {
			return err
		}
		return applySizeRuleTx(tx, rule)
	})
	if err != nil {
		return "", err
	}
	return rule.ID, nil
}

// DeleteHiddenSizeRule removes the rule and unhides its files, except those
// still covered by another rule.
func (s *GORMStore) DeleteHiddenSizeRule(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rule models.HiddenSizeRule
		if err := tx.Where("id = ?", id).First(&rule).Error; err != nil {
			return convertNotFoundError(err, models.ErrHiddenSizeRuleNotFound)
		}
		if err := unhideByRuleTx(tx, "hidden_size_rule_id", id); err != nil {
			return err
		}
		return tx.Delete(&rule).Error
	})
}

// SetFileHidden toggles the manual hide flag on a single file.
func (s *GORMStore) SetFileHidden(ctx context.Context, fileID string, hidden bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file models.IndexedFile
		if err := tx.Where("id = ?", fileID).First(&file).Error; err != nil {
			return convertNotFoundError(err, models.ErrFileNotFound)
		}

		updates := map[string]any{
			"hidden":     hidden,
			"updated_at": time.Now().UTC(),
		}
		if hidden {
			updates["hidden_category"] = models.HiddenCategoryManual
		} else {
			updates["hidden_category"] = nil
			updates["hidden_folder_id"] = nil
			updates["hidden_size_rule_id"] = nil
		}
		if err := tx.Model(&models.IndexedFile{}).
			Where("id = ?", fileID).
			Updates(updates).Error; err != nil {
			return err
		}

		// Hidden files stop counting toward duplicate groups.
		return recomputeGroupTx(tx, file.Hash)
	})
}

// applyFolderRuleTx hides live files under the folder that are not already
// hidden by another rule.
func applyFolderRuleTx(tx *gorm.DB, folder *models.HiddenFolder) error {
	var files []models.IndexedFile
	err := tx.Where("hidden = ? AND is_deleted = ? AND (path = ? OR path LIKE ?)",
		false, false, folder.Path, folder.Path+"/%").
		Find(&files).Error
	if err != nil {
		return err
	}
	return hideFilesTx(tx, files, map[string]any{
		"hidden":           true,
		"hidden_category":  models.HiddenCategoryFolder,
		"hidden_folder_id": folder.ID,
	})
}

// applySizeRuleTx hides live files under the size threshold.
func applySizeRuleTx(tx *gorm.DB, rule *models.HiddenSizeRule) error {
	var files []models.IndexedFile
	err := tx.Where("hidden = ? AND is_deleted = ? AND size < ?", false, false, rule.MaxSize).
		Find(&files).Error
	if err != nil {
		return err
	}
	return hideFilesTx(tx, files, map[string]any{
		"hidden":              true,
		"hidden_category":     models.HiddenCategorySize,
		"hidden_size_rule_id": rule.ID,
	})
}

func hideFilesTx(tx *gorm.DB, files []models.IndexedFile, updates map[string]any) error {
	if len(files) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()

	hashes := make(map[string]struct{}, len(files))
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
		hashes[f.Hash] = struct{}{}
	}

	if err := tx.Model(&models.IndexedFile{}).
		Where("id IN ?", ids).
		Updates(updates).Error; err != nil {
		return err
	}
	for hash := range hashes {
		if err := recomputeGroupTx(tx, hash); err != nil {
			return err
		}
	}
	return nil
}

// unhideByRuleTx clears the hide state of every file back-referencing the
// rule column, then re-applies the remaining rules so files covered twice
// stay hidden. Affected groups regain their members via ensure.
func unhideByRuleTx(tx *gorm.DB, ruleColumn, ruleID string) error {
	var files []models.IndexedFile
	if err := tx.Where(ruleColumn+" = ?", ruleID).Find(&files).Error; err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	ids := make([]string, 0, len(files))
	hashes := make(map[string]struct{}, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
		hashes[f.Hash] = struct{}{}
	}

	if err := tx.Model(&models.IndexedFile{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"hidden":              false,
			"hidden_category":     nil,
			"hidden_folder_id":    nil,
			"hidden_size_rule_id": nil,
			"updated_at":          time.Now().UTC(),
		}).Error; err != nil {
		return err
	}

	// Re-apply surviving rules over the unhidden set.
	var folders []models.HiddenFolder
	if err := tx.Find(&folders).Error; err != nil {
		return err
	}
	for i := range folders {
		if folders[i].ID == ruleID {
			continue
		}
		if err := applyFolderRuleTx(tx, &folders[i]); err != nil {
			return err
		}
	}
	var rules []models.HiddenSizeRule
	if err := tx.Find(&rules).Error; err != nil {
		return err
	}
	for i := range rules {
		if rules[i].ID == ruleID {
			continue
		}
		if err := applySizeRuleTx(tx, &rules[i]); err != nil {
			return err
		}
	}

	for hash := range hashes {
		if err := ensureGroupForHashTx(tx, hash); err != nil {
			return err
		}
	}
	return nil
}
