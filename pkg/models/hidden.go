package models

import (
	"strings"
	"time"
)

// HiddenFolder hides every indexed file whose path falls under the folder.
type HiddenFolder struct {
	ID   string `gorm:"primaryKey;size:36" json:"id"`
	Path string `gorm:"uniqueIndex;not null;size:1024" json:"path"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for HiddenFolder.
func (HiddenFolder) TableName() string {
	return "hidden_folders"
}

// Contains reports whether path falls under the hidden folder. Matching is
// segment-aware.
func (h *HiddenFolder) Contains(path string) bool {
	folder := strings.TrimSuffix(h.Path, "/")
	if path == folder {
		return true
	}
	return strings.HasPrefix(path, folder+"/")
}

// HiddenSizeRule hides every indexed file smaller than MaxSize bytes.
type HiddenSizeRule struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	MaxSize int64  `gorm:"not null" json:"max_size"`
	Label   string `gorm:"size:255" json:"label"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for HiddenSizeRule.
func (HiddenSizeRule) TableName() string {
	return "hidden_size_rules"
}

// Applies reports whether the rule hides a file of the given size.
func (h *HiddenSizeRule) Applies(size int64) bool {
	return size < h.MaxSize
}
