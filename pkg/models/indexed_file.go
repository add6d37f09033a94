package models

import (
	"time"
)

// Hidden categories for an IndexedFile. A hidden file stays in the row set
// but is excluded from the default UI and from duplicate-group counting.
const (
	HiddenCategoryFolder = "folder"
	HiddenCategorySize   = "size"
	HiddenCategoryManual = "manual"
)

// IndexedFile is one discovered file per (scan directory, path).
//
// Hash and size together identify physical content. A file enters the live
// state on first successful batch ingest and moves to archived only through a
// completed CleanerJobFile in non-dry-run mode. Rows are deleted only when
// their scan directory is deleted.
type IndexedFile struct {
	ID              string `gorm:"primaryKey;size:36" json:"id"`
	ScanDirectoryID string `gorm:"not null;size:36;index;uniqueIndex:idx_files_dir_path" json:"scan_directory_id"`
	Path            string `gorm:"not null;size:1024;uniqueIndex:idx_files_dir_path" json:"path"`
	Name            string `gorm:"not null;size:255" json:"name"`
	Hash            string `gorm:"not null;size:64;index" json:"hash"` // lowercase hex SHA-256
	Size            int64  `gorm:"not null" json:"size"`

	// Filesystem-reported timestamps, stored UTC.
	FileCreatedAt  time.Time `json:"file_created_at"`
	FileModifiedAt time.Time `json:"file_modified_at"`
	IndexedAt      time.Time `gorm:"not null" json:"indexed_at"`

	// Decoded image attributes, populated by the metadata worker.
	Width        *int       `json:"width,omitempty"`
	Height       *int       `json:"height,omitempty"`
	DateTaken    *time.Time `json:"date_taken,omitempty"`
	CameraMake   *string    `gorm:"size:255" json:"camera_make,omitempty"`
	CameraModel  *string    `gorm:"size:255" json:"camera_model,omitempty"`
	GPSLatitude  *float64   `json:"gps_latitude,omitempty"`
	GPSLongitude *float64   `json:"gps_longitude,omitempty"`
	ISO          *int       `json:"iso,omitempty"`
	Aperture     *string    `gorm:"size:32" json:"aperture,omitempty"`
	ShutterSpeed *string    `gorm:"size:32" json:"shutter_speed,omitempty"`
	Orientation  *int       `json:"orientation,omitempty"`

	// Derivative pointer, populated by the thumbnail worker.
	ThumbnailKey *string `gorm:"size:255" json:"thumbnail_key,omitempty"`

	// Processing error bookkeeping.
	LastError  *string `gorm:"size:1024" json:"last_error,omitempty"`
	RetryCount int     `gorm:"default:0" json:"retry_count"`

	// Duplicate group membership.
	DuplicateGroupID *string `gorm:"size:36;index" json:"duplicate_group_id,omitempty"`
	IsOriginal       bool    `gorm:"default:false" json:"is_original"`

	// Hide state. Hidden files do not count toward group file counts.
	Hidden           bool    `gorm:"default:false;index" json:"hidden"`
	HiddenCategory   *string `gorm:"size:16" json:"hidden_category,omitempty"`
	HiddenFolderID   *string `gorm:"size:36;index" json:"hidden_folder_id,omitempty"`
	HiddenSizeRuleID *string `gorm:"size:36;index" json:"hidden_size_rule_id,omitempty"`

	// Deletion state. If archived, the original path is gone from disk and
	// ArchivePath records where the bytes went.
	IsDeleted   bool       `gorm:"default:false;index" json:"is_deleted"`
	ArchivePath *string    `gorm:"size:1024" json:"archive_path,omitempty"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for IndexedFile.
func (IndexedFile) TableName() string {
	return "indexed_files"
}

// IsLive reports whether the file is live (not archived).
func (f *IndexedFile) IsLive() bool {
	return !f.IsDeleted
}

// HasExif reports whether any decoded EXIF field is present.
func (f *IndexedFile) HasExif() bool {
	return f.DateTaken != nil || f.CameraMake != nil || f.CameraModel != nil ||
		f.GPSLatitude != nil || f.ISO != nil || f.Aperture != nil ||
		f.ShutterSpeed != nil || f.Orientation != nil
}
