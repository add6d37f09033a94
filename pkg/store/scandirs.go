package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marmos91/photovault/pkg/models"
)

// ============================================
// SCAN DIRECTORY OPERATIONS
// ============================================

func (s *GORMStore) GetScanDirectory(ctx context.Context, id string) (*models.ScanDirectory, error) {
	var dir models.ScanDirectory
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&dir).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrScanDirectoryNotFound)
	}
	return &dir, nil
}

func (s *GORMStore) ListScanDirectories(ctx context.Context) ([]*models.ScanDirectory, error) {
	var dirs []*models.ScanDirectory
	if err := s.db.WithContext(ctx).Order("path asc").Find(&dirs).Error; err != nil {
		return nil, err
	}
	return dirs, nil
}

// ListScanDirectoriesForHost returns the enabled scan roots registered for a
// hostname. Used when routing reprocess commands to discovery workers.
func (s *GORMStore) ListScanDirectoriesForHost(ctx context.Context, hostname string) ([]*models.ScanDirectory, error) {
	var dirs []*models.ScanDirectory
	err := s.db.WithContext(ctx).
		Where("hostname = ? AND enabled = ?", hostname, true).
		Order("path asc").
		Find(&dirs).Error
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

func (s *GORMStore) CreateScanDirectory(ctx context.Context, dir *models.ScanDirectory) (string, error) {
	if !filepath.IsAbs(dir.Path) {
		return "", models.ErrScanPathNotAbsolute
	}
	if dir.ID == "" {
		dir.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	dir.CreatedAt = now
	dir.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(dir).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", models.ErrDuplicateScanDir
		}
		return "", err
	}
	return dir.ID, nil
}

func (s *GORMStore) UpdateScanDirectory(ctx context.Context, dir *models.ScanDirectory) error {
	dir.UpdatedAt = time.Now().UTC()

	result := s.db.WithContext(ctx).
		Model(&models.ScanDirectory{}).
		Where("id = ?", dir.ID).
		Updates(map[string]any{
			"hostname":   dir.Hostname,
			"enabled":    dir.Enabled,
			"updated_at": dir.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrScanDirectoryNotFound
	}
	return nil
}

// TouchLastScanned stamps the completion time of a full scan pass.
func (s *GORMStore) TouchLastScanned(ctx context.Context, id string, at time.Time) error {
	at = at.UTC()
	result := s.db.WithContext(ctx).
		Model(&models.ScanDirectory{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_scan_at": at,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrScanDirectoryNotFound
	}
	return nil
}

// DeleteScanDirectory removes a scan root and every file row indexed under
// it. Duplicate groups that the removed files belonged to are recomputed,
// dissolving those left with fewer than two live members.
func (s *GORMStore) DeleteScanDirectory(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dir models.ScanDirectory
		if err := tx.Where("id = ?", id).First(&dir).Error; err != nil {
			return convertNotFoundError(err, models.ErrScanDirectoryNotFound)
		}

		// Collect hashes whose groups need recomputing after the delete.
		var hashes []string
		if err := tx.Model(&models.IndexedFile{}).
			Distinct("hash").
			Where("scan_directory_id = ? AND duplicate_group_id IS NOT NULL", id).
			Pluck("hash", &hashes).Error; err != nil {
			return err
		}

		if err := tx.Where("scan_directory_id = ?", id).
			Delete(&models.IndexedFile{}).Error; err != nil {
			return err
		}

		for _, hash := range hashes {
			if err := recomputeGroupTx(tx, hash); err != nil {
				return err
			}
		}

		return tx.Delete(&dir).Error
	})
}
