// Package models defines the PhotoVault data model: indexed files, scan
// directories, duplicate groups, selection preferences and sessions, cleaner
// jobs, and hide rules.
package models

// AllModels returns all GORM models for auto-migration.
func AllModels() []any {
	return []any{
		&ScanDirectory{},
		&IndexedFile{},
		&DuplicateGroup{},
		&SelectionPreference{},
		&SelectionSession{},
		&CleanerJob{},
		&CleanerJobFile{},
		&HiddenFolder{},
		&HiddenSizeRule{},
	}
}
