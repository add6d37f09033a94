package models

import "errors"

// Common errors for store and lifecycle operations.
var (
	// Scan directory errors
	ErrScanDirectoryNotFound = errors.New("scan directory not found")
	ErrDuplicateScanDir      = errors.New("scan directory already exists")
	ErrScanPathNotAbsolute   = errors.New("scan directory path must be absolute")

	// Indexed file errors
	ErrFileNotFound  = errors.New("file not found")
	ErrDuplicatePath = errors.New("file path already indexed for this scan directory")

	// Duplicate group errors
	ErrGroupNotFound      = errors.New("duplicate group not found")
	ErrFileNotInGroup     = errors.New("file is not a member of the group")
	ErrInvalidGroupStatus = errors.New("invalid group status")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrSelectionConflict  = errors.New("auto-selection scores too close to choose an original")
	ErrNoOriginalSelected = errors.New("group has no original selected")

	// Selection preference errors
	ErrPreferenceNotFound  = errors.New("selection preference not found")
	ErrDuplicatePreference = errors.New("selection preference prefix already exists")

	// Session errors
	ErrSessionNotFound      = errors.New("selection session not found")
	ErrSessionActive        = errors.New("another selection session is already active")
	ErrNoActiveSession      = errors.New("no active selection session")
	ErrInvalidSessionStatus = errors.New("invalid session status")

	// Cleaner job errors
	ErrJobNotFound          = errors.New("cleaner job not found")
	ErrJobFileNotFound      = errors.New("cleaner job file not found")
	ErrInvalidJobStatus     = errors.New("invalid job status")
	ErrInvalidJobFileStatus = errors.New("invalid job file status")

	// Hide rule errors
	ErrHiddenFolderNotFound   = errors.New("hidden folder not found")
	ErrDuplicateHiddenFolder  = errors.New("hidden folder already exists")
	ErrHiddenSizeRuleNotFound = errors.New("hidden size rule not found")
)
