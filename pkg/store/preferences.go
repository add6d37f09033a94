package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/photovault/pkg/models"
)

// ============================================
// SELECTION PREFERENCE OPERATIONS
// ============================================

// ListPreferences returns every preference ordered by prefix length
// descending then sort order ascending, so callers can take the first match
// as the longest one with the operator's tie-break.
func (s *GORMStore) ListPreferences(ctx context.Context) ([]*models.SelectionPreference, error) {
	var prefs []*models.SelectionPreference
	err := s.db.WithContext(ctx).
		Order("LENGTH(prefix) desc, sort_order asc, prefix asc").
		Find(&prefs).Error
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *GORMStore) GetPreference(ctx context.Context, id string) (*models.SelectionPreference, error) {
	var pref models.SelectionPreference
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&pref).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrPreferenceNotFound)
	}
	return &pref, nil
}

func (s *GORMStore) CreatePreference(ctx context.Context, pref *models.SelectionPreference) (string, error) {
	if pref.ID == "" {
		pref.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	pref.CreatedAt = now
	pref.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(pref).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", models.ErrDuplicatePreference
		}
		return "", err
	}
	return pref.ID, nil
}

func (s *GORMStore) UpdatePreference(ctx context.Context, pref *models.SelectionPreference) error {
	result := s.db.WithContext(ctx).
		Model(&models.SelectionPreference{}).
		Where("id = ?", pref.ID).
		Updates(map[string]any{
			"priority":   pref.Priority,
			"sort_order": pref.SortOrder,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrPreferenceNotFound
	}
	return nil
}

func (s *GORMStore) DeletePreference(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.SelectionPreference{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrPreferenceNotFound
	}
	return nil
}
