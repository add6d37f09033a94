package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marmos91/photovault/pkg/models"
)

// ============================================
// INDEXED FILE OPERATIONS
// ============================================

// UpsertResult reports what an ingest upsert did to the row. FileDiscovered
// is only published for new or hash-changed rows.
type UpsertResult struct {
	File        *models.IndexedFile
	IsNew       bool
	HashChanged bool
}

// Changed reports whether the row needs reprocessing.
func (r *UpsertResult) Changed() bool {
	return r.IsNew || r.HashChanged
}

// UpsertFile inserts or refreshes the row keyed by (scanDirectoryId, path)
// and maintains duplicate-group linkage for the affected hashes. Upsert and
// group linkage run in a single transaction; publishing the discovery event
// is the caller's job, after commit.
func (s *GORMStore) UpsertFile(ctx context.Context, file *models.IndexedFile) (*UpsertResult, error) {
	var result UpsertResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var existing models.IndexedFile
		err := tx.Where("scan_directory_id = ? AND path = ?", file.ScanDirectoryID, file.Path).
			First(&existing).Error

		switch {
		case err == nil:
			oldHash := existing.Hash
			if oldHash == file.Hash {
				// Unchanged content. Touch the index timestamp only.
				if err := tx.Model(&models.IndexedFile{}).
					Where("id = ?", existing.ID).
					Updates(map[string]any{
						"indexed_at":       now,
						"file_modified_at": file.FileModifiedAt.UTC(),
						"updated_at":       now,
					}).Error; err != nil {
					return err
				}
				existing.IndexedAt = now
				result.File = &existing
				return nil
			}

			// Content changed in place. Reset enrichment and error state so
			// the processing workers start from scratch.
			result.HashChanged = true
			if err := tx.Model(&models.IndexedFile{}).
				Where("id = ?", existing.ID).
				Updates(map[string]any{
					"hash":             file.Hash,
					"size":             file.Size,
					"file_created_at":  file.FileCreatedAt.UTC(),
					"file_modified_at": file.FileModifiedAt.UTC(),
					"indexed_at":       now,
					"width":            nil,
					"height":           nil,
					"date_taken":       nil,
					"camera_make":      nil,
					"camera_model":     nil,
					"gps_latitude":     nil,
					"gps_longitude":    nil,
					"iso":              nil,
					"aperture":         nil,
					"shutter_speed":    nil,
					"orientation":      nil,
					"thumbnail_key":    nil,
					"last_error":       nil,
					"retry_count":      0,
					"is_original":      false,
					"updated_at":       now,
				}).Error; err != nil {
				return err
			}
			existing.Hash = file.Hash
			existing.Size = file.Size
			result.File = &existing

			// The old hash lost a member, the new one gained it.
			if err := recomputeGroupTx(tx, oldHash); err != nil {
				return err
			}
			return ensureGroupForHashTx(tx, file.Hash)

		case convertNotFoundError(err, models.ErrFileNotFound) == models.ErrFileNotFound:
			result.IsNew = true
			if file.ID == "" {
				file.ID = uuid.New().String()
			}
			file.FileCreatedAt = file.FileCreatedAt.UTC()
			file.FileModifiedAt = file.FileModifiedAt.UTC()
			file.IndexedAt = now
			file.CreatedAt = now
			file.UpdatedAt = now

			if err := tx.Create(file).Error; err != nil {
				if isUniqueConstraintError(err) {
					return models.ErrDuplicatePath
				}
				return err
			}
			result.File = file
			return ensureGroupForHashTx(tx, file.Hash)

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *GORMStore) GetFile(ctx context.Context, id string) (*models.IndexedFile, error) {
	var file models.IndexedFile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&file).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrFileNotFound)
	}
	return &file, nil
}

// FileFilter narrows ListFiles results. Zero values mean "no constraint".
type FileFilter struct {
	ScanDirectoryID string
	HasDuplicates   *bool
	From            *time.Time
	To              *time.Time
	Search          string
	IncludeHidden   bool
	IncludeDeleted  bool
	Page            int
	PerPage         int
}

func (f *FileFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 500 {
		f.PerPage = 100
	}
}

// ListFiles returns a page of indexed files plus the total matching count.
func (s *GORMStore) ListFiles(ctx context.Context, filter FileFilter) ([]*models.IndexedFile, int64, error) {
	filter.normalize()

	q := s.db.WithContext(ctx).Model(&models.IndexedFile{})
	if filter.ScanDirectoryID != "" {
		q = q.Where("scan_directory_id = ?", filter.ScanDirectoryID)
	}
	if filter.HasDuplicates != nil {
		if *filter.HasDuplicates {
			q = q.Where("duplicate_group_id IS NOT NULL")
		} else {
			q = q.Where("duplicate_group_id IS NULL")
		}
	}
	if filter.From != nil {
		q = q.Where("file_modified_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("file_modified_at < ?", filter.To.UTC())
	}
	if filter.Search != "" {
		q = q.Where("path LIKE ?", "%"+filter.Search+"%")
	}
	if !filter.IncludeHidden {
		q = q.Where("hidden = ?", false)
	}
	if !filter.IncludeDeleted {
		q = q.Where("is_deleted = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var files []*models.IndexedFile
	err := q.Order("path asc").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&files).Error
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// MetadataUpdate carries the enrichment fields a metadata worker extracted.
// All timestamps must be UTC before they reach the store.
type MetadataUpdate struct {
	Width        *int
	Height       *int
	DateTaken    *time.Time
	CameraMake   *string
	CameraModel  *string
	GPSLatitude  *float64
	GPSLongitude *float64
	ISO          *int
	Aperture     *string
	ShutterSpeed *string
	Orientation  *int
}

// ApplyMetadata writes the enrichment columns keyed by row id. The update is
// a fixed set of named columns, so redelivered completions re-apply to the
// same state.
func (s *GORMStore) ApplyMetadata(ctx context.Context, fileID string, meta MetadataUpdate) error {
	updates := map[string]any{
		"width":         meta.Width,
		"height":        meta.Height,
		"camera_make":   meta.CameraMake,
		"camera_model":  meta.CameraModel,
		"gps_latitude":  meta.GPSLatitude,
		"gps_longitude": meta.GPSLongitude,
		"iso":           meta.ISO,
		"aperture":      meta.Aperture,
		"shutter_speed": meta.ShutterSpeed,
		"orientation":   meta.Orientation,
		"last_error":    nil,
		"updated_at":    time.Now().UTC(),
	}
	if meta.DateTaken != nil {
		utc := meta.DateTaken.UTC()
		updates["date_taken"] = utc
	} else {
		updates["date_taken"] = nil
	}

	result := s.db.WithContext(ctx).
		Model(&models.IndexedFile{}).
		Where("id = ?", fileID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrFileNotFound
	}
	return nil
}

// SetThumbnail records the derivative object key. The key is deterministic
// per hash, so concurrent redeliveries write the same value.
func (s *GORMStore) SetThumbnail(ctx context.Context, fileID, key string) error {
	result := s.db.WithContext(ctx).
		Model(&models.IndexedFile{}).
		Where("id = ?", fileID).
		Updates(map[string]any{
			"thumbnail_key": key,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrFileNotFound
	}
	return nil
}

// RecordProcessingError persists a worker-reported failure on the row and
// bumps its retry counter.
func (s *GORMStore) RecordProcessingError(ctx context.Context, fileID, message string) error {
	result := s.db.WithContext(ctx).
		Model(&models.IndexedFile{}).
		Where("id = ?", fileID).
		Updates(map[string]any{
			"last_error":  message,
			"retry_count": gorm.Expr("retry_count + 1"),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrFileNotFound
	}
	return nil
}

// MarkFileArchived flips the row to archived with its archive path and
// refreshes the counters of the group it belongs to. The group row stays;
// only hide, hash change and scan-root removal dissolve groups.
func (s *GORMStore) MarkFileArchived(ctx context.Context, fileID, archivePath string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file models.IndexedFile
		if err := tx.Where("id = ?", fileID).First(&file).Error; err != nil {
			return convertNotFoundError(err, models.ErrFileNotFound)
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.IndexedFile{}).
			Where("id = ?", fileID).
			Updates(map[string]any{
				"is_deleted":   true,
				"archive_path": archivePath,
				"archived_at":  now,
				"updated_at":   now,
			}).Error; err != nil {
			return err
		}

		return refreshGroupAfterArchiveTx(tx, file.Hash)
	})
}

// Stats aggregates collection-wide counters for the dashboard.
type Stats struct {
	TotalFiles      int64 `json:"total_files"`
	TotalSize       int64 `json:"total_size"`
	DuplicateGroups int64 `json:"duplicate_groups"`
	DuplicateFiles  int64 `json:"duplicate_files"`
	WastedSize      int64 `json:"wasted_size"`
	ArchivedFiles   int64 `json:"archived_files"`
	HiddenFiles     int64 `json:"hidden_files"`
	FailedFiles     int64 `json:"failed_files"`
}

// FileStats computes aggregate statistics over live files.
func (s *GORMStore) FileStats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	var stats Stats

	var agg struct {
		Count int64
		Total int64
	}
	err := db.Model(&models.IndexedFile{}).
		Select("COUNT(*) as count, COALESCE(SUM(size), 0) as total").
		Where("is_deleted = ?", false).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	stats.TotalFiles = agg.Count
	stats.TotalSize = agg.Total

	if err := db.Model(&models.DuplicateGroup{}).Count(&stats.DuplicateGroups).Error; err != nil {
		return nil, err
	}

	var dup struct {
		Count int64
		Total int64
	}
	err = db.Model(&models.IndexedFile{}).
		Select("COUNT(*) as count, COALESCE(SUM(size), 0) as total").
		Where("duplicate_group_id IS NOT NULL AND is_deleted = ? AND is_original = ?", false, false).
		Scan(&dup).Error
	if err != nil {
		return nil, err
	}
	stats.DuplicateFiles = dup.Count
	stats.WastedSize = dup.Total

	if err := db.Model(&models.IndexedFile{}).
		Where("is_deleted = ?", true).
		Count(&stats.ArchivedFiles).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.IndexedFile{}).
		Where("hidden = ? AND is_deleted = ?", true, false).
		Count(&stats.HiddenFiles).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.IndexedFile{}).
		Where("last_error IS NOT NULL AND is_deleted = ?", false).
		Count(&stats.FailedFiles).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// ReprocessFilter selects live files that need another enrichment pass.
type ReprocessFilter string

const (
	ReprocessMissingThumbnail ReprocessFilter = "missingThumbnail"
	ReprocessMissingMetadata  ReprocessFilter = "missingMetadata"
	ReprocessFailed           ReprocessFilter = "failed"
)

// ListFilesForReprocess returns live files matching the reprocess filter,
// ordered by path for stable batches.
func (s *GORMStore) ListFilesForReprocess(ctx context.Context, filter ReprocessFilter, limit int) ([]*models.IndexedFile, error) {
	q := s.db.WithContext(ctx).
		Model(&models.IndexedFile{}).
		Where("is_deleted = ?", false)

	switch filter {
	case ReprocessMissingThumbnail:
		q = q.Where("thumbnail_key IS NULL")
	case ReprocessMissingMetadata:
		q = q.Where("width IS NULL")
	case ReprocessFailed:
		q = q.Where("last_error IS NOT NULL")
	default:
		return nil, fmt.Errorf("unknown reprocess filter %q", filter)
	}

	if limit > 0 {
		q = q.Limit(limit)
	}

	var files []*models.IndexedFile
	if err := q.Order("path asc").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}
