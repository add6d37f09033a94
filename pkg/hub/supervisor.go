package hub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/store"
)

// ErrNoWorker means no connected worker could take the command.
var ErrNoWorker = errors.New("no connected worker for command")

// Supervisor owns command dispatch and completion bookkeeping for the hub.
// It retries in-flight work on worker reconnect: any pending or in-progress
// job whose files lack a terminal outcome is re-sent, and the store-side
// updates are idempotent per file, so duplicate commands are harmless.
type Supervisor struct {
	store    *store.GORMStore
	registry *Registry
}

// NewSupervisor wires the supervisor over the store and registry.
func NewSupervisor(st *store.GORMStore, registry *Registry) *Supervisor {
	return &Supervisor{store: st, registry: registry}
}

// WorkerConnected re-drives unfinished jobs when a cleaner (re)appears.
func (s *Supervisor) WorkerConnected(ctx context.Context, kind Kind, workerID string) {
	if kind != KindCleaner {
		return
	}

	jobs, err := s.store.ListPendingJobs(ctx)
	if err != nil {
		logger.Error("failed to list jobs for redispatch",
			logger.Worker(workerID), logger.Err(err))
		return
	}
	for _, job := range jobs {
		if err := s.dispatchTo(kind, workerID, job); err != nil {
			logger.Warn("job redispatch failed",
				logger.Worker(workerID), logger.JobID(job.ID), logger.Err(err))
			return
		}
		logger.Info("job redispatched",
			logger.Worker(workerID),
			logger.JobID(job.ID),
			logger.Count(job.TotalFiles))
	}
}

// WorkerDisconnected is informational; the registry already flipped the
// worker's aggregated state.
func (s *Supervisor) WorkerDisconnected(_ context.Context, kind Kind, workerID string) {
	logger.Debug("worker left hub",
		logger.Worker(workerID), "kind", string(kind))
}

// StatusReported receives heartbeats. Status lives in the registry only.
func (s *Supervisor) StatusReported(_ context.Context, kind Kind, workerID string, status *WorkerStatus) {
	logger.Debug("worker status",
		logger.Worker(workerID),
		"kind", string(kind),
		logger.State(string(status.State)),
		"files_processed", status.FilesProcessed)
}

// DeleteProgress marks the job in progress on its first report.
func (s *Supervisor) DeleteProgress(ctx context.Context, workerID string, progress *DeleteProgress) {
	err := s.store.UpdateJobStatus(ctx, progress.JobID, models.JobStatusInProgress)
	if err != nil && !errors.Is(err, models.ErrInvalidTransition) {
		logger.Warn("job progress update failed",
			logger.Worker(workerID), logger.JobID(progress.JobID), logger.Err(err))
	}
}

// DeleteCompleted applies a terminal per-file outcome.
func (s *Supervisor) DeleteCompleted(ctx context.Context, workerID string, result *DeleteResult) error {
	status, err := models.ParseJobFileStatus(result.Status)
	if err != nil {
		return err
	}
	if !status.Terminal() {
		return fmt.Errorf("non-terminal delete result status %q", result.Status)
	}
	return s.store.ApplyJobFileResult(ctx, result.JobID, result.FileID, store.JobFileResult{
		Status:      status,
		ArchivePath: result.ArchivePath,
		WasDryRun:   result.WasDryRun,
		Error:       result.Error,
	})
}

// JobCompleted closes the job with the worker's final counters.
func (s *Supervisor) JobCompleted(ctx context.Context, workerID string, completion *JobCompletion) error {
	return s.store.FinishJob(ctx, completion.JobID,
		completion.Succeeded, completion.Failed, completion.Skipped)
}

// DispatchJob sends a queued job to any connected cleaner.
func (s *Supervisor) DispatchJob(_ context.Context, job *models.CleanerJob) error {
	cleaners := s.registry.Connections(KindCleaner)
	if len(cleaners) == 0 {
		return ErrNoWorker
	}
	return s.dispatchTo(KindCleaner, cleaners[0].ID(), job)
}

func (s *Supervisor) dispatchTo(kind Kind, workerID string, job *models.CleanerJob) error {
	conn, ok := s.registry.Get(kind, workerID)
	if !ok {
		return ErrNoWorker
	}

	batch := DeleteFilesCommand{}
	for _, jf := range job.Files {
		if jf.Status.Terminal() {
			continue
		}
		batch.Files = append(batch.Files, DeleteFileCommand{
			JobID:    job.ID,
			FileID:   jf.FileID,
			Path:     jf.Path,
			Hash:     jf.Hash,
			Size:     jf.Size,
			Category: string(job.Category),
			DryRun:   job.DryRun,
		})
	}
	if len(batch.Files) == 0 {
		return nil
	}
	return conn.Send(MethodDeleteFiles, &batch)
}

// CancelJob tells every connected cleaner to abort the job.
func (s *Supervisor) CancelJob(_ context.Context, jobID string) error {
	return s.broadcast(KindCleaner, MethodCancelJob, &CancelJobCommand{JobID: jobID})
}

// Reprocess routes a reprocess command to the indexer whose scan roots
// cover the path. With no or several matches the command is broadcast;
// workers reject paths they cannot see.
func (s *Supervisor) Reprocess(_ context.Context, fileID, path string) error {
	cmd := &ReprocessFileCommand{FileID: fileID, Path: path}

	var match *Conn
	matches := 0
	for _, conn := range s.registry.Connections(KindIndexer) {
		rec, ok := s.registry.Worker(conn.ID())
		if !ok {
			continue
		}
		for _, root := range rec.Status.ScanRoots {
			if pathUnderRoot(path, root) {
				match = conn
				matches++
				break
			}
		}
	}
	if matches == 1 {
		return match.Send(MethodReprocessFile, cmd)
	}
	return s.broadcast(KindIndexer, MethodReprocessFile, cmd)
}

// TriggerScan starts a scan on the indexers of the directory's host, or on
// all of them when none matches the hostname.
func (s *Supervisor) TriggerScan(_ context.Context, dir *models.ScanDirectory) error {
	cmd := &TriggerScanCommand{ScanDirectoryID: dir.ID, Path: dir.Path}

	sent := 0
	for _, conn := range s.registry.Connections(KindIndexer) {
		if conn.Hostname() != dir.Hostname {
			continue
		}
		if err := conn.Send(MethodTriggerScan, cmd); err == nil {
			sent++
		}
	}
	if sent > 0 {
		return nil
	}
	return s.broadcast(KindIndexer, MethodTriggerScan, cmd)
}

// PauseIndexers suspends scanning on every connected indexer.
func (s *Supervisor) PauseIndexers(_ context.Context) error {
	return s.broadcast(KindIndexer, MethodPause, &PauseCommand{})
}

// ResumeIndexers resumes scanning on every connected indexer.
func (s *Supervisor) ResumeIndexers(_ context.Context) error {
	return s.broadcast(KindIndexer, MethodResume, &ResumeCommand{})
}

// CancelIndexers aborts the current scan on every connected indexer.
func (s *Supervisor) CancelIndexers(_ context.Context) error {
	return s.broadcast(KindIndexer, MethodCancel, &CancelCommand{})
}

// SetDryRun toggles dry-run mode on every connected cleaner.
func (s *Supervisor) SetDryRun(_ context.Context, dryRun bool) error {
	return s.broadcast(KindCleaner, MethodSetDryRun, &SetDryRunCommand{DryRun: dryRun})
}

// RequestStatus asks every connected worker for a fresh report.
func (s *Supervisor) RequestStatus(_ context.Context) {
	cmd := &RequestStatusCommand{}
	s.broadcast(KindIndexer, MethodRequestStatus, cmd)
	s.broadcast(KindCleaner, MethodRequestStatus, cmd)
}

func (s *Supervisor) broadcast(kind Kind, method string, payload any) error {
	conns := s.registry.Connections(kind)
	if len(conns) == 0 {
		return ErrNoWorker
	}
	var lastErr error
	for _, conn := range conns {
		if err := conn.Send(method, payload); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// pathUnderRoot reports whether path sits under root, segment-aware.
func pathUnderRoot(path, root string) bool {
	root = strings.TrimSuffix(root, "/")
	if root == "" {
		return false
	}
	return path == root || strings.HasPrefix(path, root+"/")
}
