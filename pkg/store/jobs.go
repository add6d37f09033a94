package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marmos91/photovault/pkg/models"
)

// ============================================
// CLEANER JOB OPERATIONS
// ============================================

// CreateJobForGroup queues every non-original live member of the group into
// a pending cleaner job and transitions the group to cleaning. Requires the
// group to have an original selected.
func (s *GORMStore) CreateJobForGroup(ctx context.Context, groupID string, category models.JobCategory, dryRun bool) (*models.CleanerJob, error) {
	var job *models.CleanerJob

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.DuplicateGroup
		if err := tx.Where("id = ?", groupID).First(&group).Error; err != nil {
			return convertNotFoundError(err, models.ErrGroupNotFound)
		}
		if group.KeptFileID == nil {
			return models.ErrNoOriginalSelected
		}

		var members []models.IndexedFile
		err := tx.Where("duplicate_group_id = ? AND is_deleted = ? AND is_original = ?",
			groupID, false, false).
			Order("path asc").
			Find(&members).Error
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		job = &models.CleanerJob{
			ID:         uuid.New().String(),
			Status:     models.JobStatusPending,
			Category:   category,
			DryRun:     dryRun,
			GroupID:    &groupID,
			TotalFiles: len(members),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Create(job).Error; err != nil {
			return err
		}

		for _, m := range members {
			jf := models.CleanerJobFile{
				ID:     uuid.New().String(),
				JobID:  job.ID,
				FileID: m.ID,
				Status: models.JobFileStatusPending,
				Path:   m.Path,
				Hash:   m.Hash,
				Size:   m.Size,
			}
			if err := tx.Create(&jf).Error; err != nil {
				return err
			}
			job.Files = append(job.Files, jf)
		}

		// Dry-run jobs never touch the filesystem, so the group stays
		// reviewable at validated instead of entering cleaning.
		if dryRun {
			return nil
		}
		return updateGroupStatusTx(tx, groupID, models.GroupStatusCleaning)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *GORMStore) GetJob(ctx context.Context, id string) (*models.CleanerJob, error) {
	var job models.CleanerJob
	err := s.db.WithContext(ctx).
		Preload("Files").
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrJobNotFound)
	}
	return &job, nil
}

// ListJobs returns jobs newest first, optionally filtered by status.
func (s *GORMStore) ListJobs(ctx context.Context, status models.JobStatus) ([]*models.CleanerJob, error) {
	q := s.db.WithContext(ctx).Model(&models.CleanerJob{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var jobs []*models.CleanerJob
	if err := q.Order("created_at desc").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListPendingJobs returns jobs awaiting dispatch oldest first, preloaded
// with their files. The hub supervisor drains this on worker reconnect.
func (s *GORMStore) ListPendingJobs(ctx context.Context) ([]*models.CleanerJob, error) {
	var jobs []*models.CleanerJob
	err := s.db.WithContext(ctx).
		Preload("Files").
		Where("status IN ?", []models.JobStatus{
			models.JobStatusPending,
			models.JobStatusInProgress,
		}).
		Order("created_at asc").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJobStatus transitions a job after validating the edge, stamping
// start and completion times as appropriate.
func (s *GORMStore) UpdateJobStatus(ctx context.Context, jobID string, next models.JobStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.CleanerJob
		if err := tx.Where("id = ?", jobID).First(&job).Error; err != nil {
			return convertNotFoundError(err, models.ErrJobNotFound)
		}
		if job.Status == next {
			return nil
		}
		if !job.Status.CanTransitionTo(next) {
			return models.ErrInvalidTransition
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":     next,
			"updated_at": now,
		}
		switch next {
		case models.JobStatusInProgress:
			updates["started_at"] = now
		case models.JobStatusCompleted, models.JobStatusFailed, models.JobStatusCancelled:
			updates["completed_at"] = now
		}
		return tx.Model(&models.CleanerJob{}).
			Where("id = ?", jobID).
			Updates(updates).Error
	})
}

// JobFileResult is a worker-reported outcome for one queued file.
type JobFileResult struct {
	Status      models.JobFileStatus
	ArchivePath *string
	WasDryRun   bool
	Error       *string
}

// ApplyJobFileResult records a per-file outcome and refreshes the parent
// job's counters from its child rows, keeping them consistent by
// construction. A file that was genuinely archived also flips its IndexedFile
// row via MarkFileArchived semantics inside the same transaction.
func (s *GORMStore) ApplyJobFileResult(ctx context.Context, jobID, fileID string, res JobFileResult) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var jf models.CleanerJobFile
		err := tx.Where("job_id = ? AND file_id = ?", jobID, fileID).First(&jf).Error
		if err != nil {
			return convertNotFoundError(err, models.ErrJobFileNotFound)
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.CleanerJobFile{}).
			Where("id = ?", jf.ID).
			Updates(map[string]any{
				"status":       res.Status,
				"archive_path": res.ArchivePath,
				"was_dry_run":  res.WasDryRun,
				"error":        res.Error,
				"updated_at":   now,
			}).Error; err != nil {
			return err
		}

		// A real (non-dry-run) archive removes the file from the live set.
		if res.Status == models.JobFileStatusDeleted && !res.WasDryRun && res.ArchivePath != nil {
			var file models.IndexedFile
			if err := tx.Where("id = ?", fileID).First(&file).Error; err != nil {
				return convertNotFoundError(err, models.ErrFileNotFound)
			}
			if err := tx.Model(&models.IndexedFile{}).
				Where("id = ?", fileID).
				Updates(map[string]any{
					"is_deleted":   true,
					"archive_path": *res.ArchivePath,
					"archived_at":  now,
					"updated_at":   now,
				}).Error; err != nil {
				return err
			}
			if err := refreshGroupAfterArchiveTx(tx, file.Hash); err != nil {
				return err
			}
		}

		return refreshJobCountersTx(tx, jobID)
	})
}

// refreshJobCountersTx derives the job counters from its child rows.
func refreshJobCountersTx(tx *gorm.DB, jobID string) error {
	type countRow struct {
		Status models.JobFileStatus
		N      int
	}
	var rows []countRow
	err := tx.Model(&models.CleanerJobFile{}).
		Select("status, COUNT(*) as n").
		Where("job_id = ?", jobID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	var succeeded, failed, skipped int
	for _, r := range rows {
		switch r.Status {
		case models.JobFileStatusDeleted:
			succeeded += r.N
		case models.JobFileStatusFailed:
			failed += r.N
		case models.JobFileStatusSkipped:
			skipped += r.N
		}
	}

	return tx.Model(&models.CleanerJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"succeeded_cnt": succeeded,
			"failed_cnt":    failed,
			"skipped_cnt":   skipped,
			"updated_at":    time.Now().UTC(),
		}).Error
}

// FinishJob closes a job after the worker reported completion, moving the
// owning group to cleaned or cleaningFailed. Dry-run jobs never entered
// cleaning, so their group stays at validated.
func (s *GORMStore) FinishJob(ctx context.Context, jobID string, succeeded, failed, skipped int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.CleanerJob
		if err := tx.Where("id = ?", jobID).First(&job).Error; err != nil {
			return convertNotFoundError(err, models.ErrJobNotFound)
		}

		next := models.JobStatusCompleted
		if failed > 0 {
			next = models.JobStatusFailed
		}
		if job.Status.CanTransitionTo(models.JobStatusInProgress) {
			// Completion raced ahead of the first progress report.
			if err := tx.Model(&models.CleanerJob{}).
				Where("id = ?", jobID).
				Updates(map[string]any{
					"status":     models.JobStatusInProgress,
					"started_at": time.Now().UTC(),
				}).Error; err != nil {
				return err
			}
			job.Status = models.JobStatusInProgress
		}
		if !job.Status.CanTransitionTo(next) {
			return models.ErrInvalidTransition
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.CleanerJob{}).
			Where("id = ?", jobID).
			Updates(map[string]any{
				"status":        next,
				"succeeded_cnt": succeeded,
				"failed_cnt":    failed,
				"skipped_cnt":   skipped,
				"completed_at":  now,
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}

		// Dry-run jobs left the group at validated; nothing to move.
		if job.GroupID == nil || job.DryRun {
			return nil
		}

		// Archives keep the group row, but a concurrent hide or scan-root
		// removal can still dissolve it mid-job; a missing group is fine.
		groupStatus := models.GroupStatusCleaned
		if next == models.JobStatusFailed {
			groupStatus = models.GroupStatusCleaningFailed
		}

		err := updateGroupStatusTx(tx, *job.GroupID, groupStatus)
		if err == models.ErrGroupNotFound {
			return nil
		}
		return err
	})
}
