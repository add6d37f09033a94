package cleaner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/apiclient"
	"github.com/marmos91/photovault/pkg/hub"
	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/scanner"
)

// Delete phases reported while a file is being archived.
const (
	phaseVerifying = "verifying"
	phaseMoving    = "moving"
)

type jobBatch struct {
	jobID string
	files []hub.DeleteFileCommand
}

// Worker is the archive worker. Jobs arrive as hub commands and run one at
// a time; every file is re-hashed before it moves so a stale command never
// archives changed content.
type Worker struct {
	cfg      Config
	hostname string
	workerID string

	api    *apiclient.Client
	hub    *hub.Client
	hasher *scanner.Hasher
	status *tracker

	jobs chan jobBatch

	cancelMu  sync.Mutex
	cancelled map[string]bool

	rootsMu sync.Mutex
	roots   []models.ScanDirectory
}

// New builds an archive worker.
func New(cfg Config, api *apiclient.Client) (*Worker, error) {
	cfg.ApplyDefaults()

	hostname := cfg.Hostname
	if hostname == "" {
		var err error
		hostname, err = os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve hostname: %w", err)
		}
	}

	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = uuid.NewString()
	}

	return &Worker{
		cfg:       cfg,
		hostname:  hostname,
		workerID:  workerID,
		api:       api,
		hasher:    scanner.NewHasher(scanner.DefaultChunkSize),
		status:    newTracker(),
		jobs:      make(chan jobBatch, 16),
		cancelled: make(map[string]bool),
	}, nil
}

// Run connects to the hub and works jobs until the context ends.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.hub = hub.NewClient(w.cfg.ServerURL, hub.KindCleaner, w.workerID, w.hostname, w, w.status.snapshot)
	w.status.notify = func() {
		if err := w.hub.SendStatus(); err != nil {
			logger.Debug("status push skipped", logger.Err(err))
		}
	}

	go func() {
		if err := w.hub.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("hub client stopped", logger.Err(err))
		}
	}()
	go w.heartbeat(ctx)

	w.refreshRoots(ctx)

	logger.Info("archive worker started",
		logger.Worker(w.workerID),
		logger.Hostname(w.hostname),
		logger.DryRun(w.cfg.DryRun))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-w.jobs:
			w.runJob(ctx, job)
		}
	}
}

// HandleCommand implements hub.CommandHandler.
func (w *Worker) HandleCommand(_ context.Context, method string, payload any) error {
	switch cmd := payload.(type) {
	case *hub.DeleteFileCommand:
		return w.enqueue(jobBatch{jobID: cmd.JobID, files: []hub.DeleteFileCommand{*cmd}})
	case *hub.DeleteFilesCommand:
		if len(cmd.Files) == 0 {
			return nil
		}
		return w.enqueue(jobBatch{jobID: cmd.Files[0].JobID, files: cmd.Files})
	case *hub.CancelJobCommand:
		w.cancelJob(cmd.JobID)
		return nil
	case *hub.SetDryRunCommand:
		// Dry-run is boot-time configuration; acknowledging but not
		// honoring the toggle keeps a mid-job flip from splitting a
		// job between real and simulated deletes.
		logger.Info("ignoring dry-run toggle, configured at boot",
			logger.DryRun(w.cfg.DryRun), "requested", cmd.DryRun)
		return nil
	default:
		return fmt.Errorf("cleaner does not handle %q", method)
	}
}

func (w *Worker) enqueue(job jobBatch) error {
	select {
	case w.jobs <- job:
		return nil
	default:
		return fmt.Errorf("job queue full")
	}
}

func (w *Worker) cancelJob(jobID string) {
	w.cancelMu.Lock()
	w.cancelled[jobID] = true
	w.cancelMu.Unlock()
	logger.Info("job cancelled", logger.JobID(jobID))
}

func (w *Worker) isCancelled(jobID string) bool {
	w.cancelMu.Lock()
	defer w.cancelMu.Unlock()
	return w.cancelled[jobID]
}

// runJob archives each commanded file in order, reporting a terminal
// result per file and final counters for the job. Cancellation is checked
// between files, never mid-move.
func (w *Worker) runJob(ctx context.Context, job jobBatch) {
	w.status.setActiveJob(job.jobID)
	w.status.setState(hub.StateProcessing)
	defer func() {
		w.status.setActiveJob("")
		w.status.setState(hub.StateIdle)
		w.cancelMu.Lock()
		delete(w.cancelled, job.jobID)
		w.cancelMu.Unlock()
	}()

	w.refreshRoots(ctx)

	logger.Info("job started",
		logger.JobID(job.jobID), logger.Count(len(job.files)), logger.DryRun(w.cfg.DryRun))

	completion := &hub.JobCompletion{JobID: job.jobID}
	for _, cmd := range job.files {
		if ctx.Err() != nil {
			return
		}
		if w.isCancelled(job.jobID) {
			logger.Info("job stopped on cancel",
				logger.JobID(job.jobID), logger.Count(completion.Succeeded+completion.Failed+completion.Skipped))
			break
		}

		result := w.archiveOne(ctx, &cmd)
		switch result.Status {
		case "deleted":
			completion.Succeeded++
		case "skipped":
			completion.Skipped++
		default:
			completion.Failed++
			w.status.addError()
		}
		w.status.addFile()

		if err := w.hub.SendDeleteComplete(result); err != nil {
			logger.Warn("result report failed",
				logger.JobID(job.jobID), logger.FileID(cmd.FileID), logger.Err(err))
		}
	}

	if err := w.hub.SendJobComplete(completion); err != nil {
		logger.Warn("completion report failed", logger.JobID(job.jobID), logger.Err(err))
	}
	logger.Info("job finished",
		logger.JobID(job.jobID),
		"succeeded", completion.Succeeded,
		"failed", completion.Failed,
		"skipped", completion.Skipped)
}

// archiveOne verifies and moves a single file. Missing or changed content
// is skipped, never failed: the row no longer describes what is on disk,
// so the server must not count it archived.
func (w *Worker) archiveOne(ctx context.Context, cmd *hub.DeleteFileCommand) *hub.DeleteResult {
	dryRun := w.cfg.DryRun || cmd.DryRun
	result := &hub.DeleteResult{
		JobID:     cmd.JobID,
		FileID:    cmd.FileID,
		WasDryRun: dryRun,
	}

	w.reportProgress(cmd, phaseVerifying)

	info, err := os.Stat(cmd.Path)
	if os.IsNotExist(err) {
		return skipResult(result, "file no longer exists")
	}
	if err != nil {
		return failResult(result, err)
	}
	if info.Size() != cmd.Size {
		return skipResult(result, "size changed since selection")
	}

	hash, err := w.hasher.HashFile(ctx, cmd.Path, nil)
	if err != nil {
		return failResult(result, err)
	}
	if hash != cmd.Hash {
		return skipResult(result, "content changed since selection")
	}

	archivePath := TrashPath(w.cfg.TrashBase, w.rootFor(cmd.Path), cmd.Path)
	result.ArchivePath = &archivePath

	if dryRun {
		result.Status = "deleted"
		logger.Info("dry run, would archive",
			logger.JobID(cmd.JobID), logger.Path(cmd.Path), "archivePath", archivePath)
		return result
	}

	w.reportProgress(cmd, phaseMoving)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return failResult(result, err)
	}
	if err := moveFile(cmd.Path, archivePath); err != nil {
		return failResult(result, err)
	}

	result.Status = "deleted"
	logger.Info("file archived",
		logger.JobID(cmd.JobID), logger.Path(cmd.Path), "archivePath", archivePath)
	return result
}

func (w *Worker) reportProgress(cmd *hub.DeleteFileCommand, phase string) {
	if w.hub == nil {
		return
	}
	err := w.hub.SendDeleteProgress(&hub.DeleteProgress{
		JobID:  cmd.JobID,
		FileID: cmd.FileID,
		Phase:  phase,
	})
	if err != nil {
		logger.Debug("progress report skipped", logger.Err(err))
	}
}

func skipResult(result *hub.DeleteResult, reason string) *hub.DeleteResult {
	result.Status = "skipped"
	result.Error = &reason
	return result
}

func failResult(result *hub.DeleteResult, err error) *hub.DeleteResult {
	msg := err.Error()
	result.Status = "failed"
	result.Error = &msg
	return result
}

// refreshRoots fetches this host's scan directories so trash paths mirror
// the layout under the right root. Failures keep the previous set.
func (w *Worker) refreshRoots(ctx context.Context) {
	dirs, err := w.api.ListScanDirectories(ctx)
	if err != nil {
		logger.Warn("failed to refresh scan roots", logger.Err(err))
		return
	}
	w.rootsMu.Lock()
	w.roots = dirs
	w.rootsMu.Unlock()
}

// rootFor returns the longest scan root covering the path, empty when none
// does.
func (w *Worker) rootFor(path string) string {
	w.rootsMu.Lock()
	defer w.rootsMu.Unlock()
	best := ""
	for _, root := range w.roots {
		if path == root.Path || strings.HasPrefix(path, root.Path+string(filepath.Separator)) {
			if len(root.Path) > len(best) {
				best = root.Path
			}
		}
	}
	return best
}

func (w *Worker) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.hub.SendStatus(); err != nil {
				logger.Debug("heartbeat skipped", logger.Err(err))
			}
		}
	}
}
