package models

import (
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of a cleaner job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "inProgress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// jobTransitions is the closed set of allowed job edges.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusFailed, JobStatusCancelled},
	JobStatusFailed:     {JobStatusPending},
}

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusCompleted,
		JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the edge s -> next is allowed.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// ParseJobStatus parses a stored status string.
func ParseJobStatus(raw string) (JobStatus, error) {
	s := JobStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidJobStatus, raw)
	}
	return s, nil
}

// JobCategory records why a job's files were queued.
type JobCategory string

const (
	JobCategoryHashDuplicate JobCategory = "hashDuplicate"
	JobCategoryNearDuplicate JobCategory = "nearDuplicate"
	JobCategoryManual        JobCategory = "manual"
)

// Valid reports whether c is a known job category.
func (c JobCategory) Valid() bool {
	switch c {
	case JobCategoryHashDuplicate, JobCategoryNearDuplicate, JobCategoryManual:
		return true
	}
	return false
}

// JobFileStatus is the per-file state within a cleaner job.
type JobFileStatus string

const (
	JobFileStatusPending   JobFileStatus = "pending"
	JobFileStatusUploading JobFileStatus = "uploading"
	JobFileStatusUploaded  JobFileStatus = "uploaded"
	JobFileStatusDeleting  JobFileStatus = "deleting"
	JobFileStatusDeleted   JobFileStatus = "deleted"
	JobFileStatusFailed    JobFileStatus = "failed"
	JobFileStatusSkipped   JobFileStatus = "skipped"
)

// Valid reports whether s is a known job file status.
func (s JobFileStatus) Valid() bool {
	switch s {
	case JobFileStatusPending, JobFileStatusUploading, JobFileStatusUploaded,
		JobFileStatusDeleting, JobFileStatusDeleted, JobFileStatusFailed,
		JobFileStatusSkipped:
		return true
	}
	return false
}

// Terminal reports whether the per-file status is an end state.
func (s JobFileStatus) Terminal() bool {
	return s == JobFileStatusDeleted || s == JobFileStatusFailed || s == JobFileStatusSkipped
}

// ParseJobFileStatus parses a reported per-file status string.
func ParseJobFileStatus(raw string) (JobFileStatus, error) {
	s := JobFileStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidJobFileStatus, raw)
	}
	return s, nil
}

// CleanerJob is a queued batch of files to archive. Counters must stay
// consistent with the sum of child file states.
type CleanerJob struct {
	ID       string      `gorm:"primaryKey;size:36" json:"id"`
	Status   JobStatus   `gorm:"not null;size:16;index;default:pending" json:"status"`
	Category JobCategory `gorm:"not null;size:16" json:"category"`
	DryRun   bool        `gorm:"default:false" json:"dry_run"`

	GroupID *string `gorm:"size:36;index" json:"group_id,omitempty"`

	TotalFiles   int `gorm:"not null" json:"total_files"`
	SucceededCnt int `gorm:"default:0" json:"succeeded_count"`
	FailedCnt    int `gorm:"default:0" json:"failed_count"`
	SkippedCnt   int `gorm:"default:0" json:"skipped_count"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Files []CleanerJobFile `gorm:"foreignKey:JobID" json:"files,omitempty"`
}

// TableName returns the table name for CleanerJob.
func (CleanerJob) TableName() string {
	return "cleaner_jobs"
}

// CleanerJobFile is one file within a cleaner job.
type CleanerJobFile struct {
	ID     string        `gorm:"primaryKey;size:36" json:"id"`
	JobID  string        `gorm:"not null;size:36;index" json:"job_id"`
	FileID string        `gorm:"not null;size:36;index" json:"file_id"`
	Status JobFileStatus `gorm:"not null;size:16;default:pending" json:"status"`

	// Snapshot of the target at queue time so the worker can verify the
	// path still carries the claimed content.
	Path string `gorm:"not null;size:1024" json:"path"`
	Hash string `gorm:"not null;size:64" json:"hash"`
	Size int64  `gorm:"not null" json:"size"`

	ArchivePath *string `gorm:"size:1024" json:"archive_path,omitempty"`
	WasDryRun   bool    `gorm:"default:false" json:"was_dry_run"`
	Error       *string `gorm:"size:1024" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for CleanerJobFile.
func (CleanerJobFile) TableName() string {
	return "cleaner_job_files"
}
