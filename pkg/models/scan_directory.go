package models

import "time"

// ScanDirectory is a configured root the discovery worker walks. Paths are
// absolute on the worker's host; the same host may carry several roots.
type ScanDirectory struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Path     string `gorm:"uniqueIndex;not null;size:1024" json:"path"`
	Hostname string `gorm:"not null;size:255" json:"hostname"`
	Enabled  bool   `gorm:"default:true" json:"enabled"`

	// LastScanAt is the completion time of the most recent full pass.
	LastScanAt *time.Time `json:"last_scan_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for ScanDirectory.
func (ScanDirectory) TableName() string {
	return "scan_directories"
}
