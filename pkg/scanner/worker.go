package scanner

import (
	"context"
	"fmt"
	"mime"
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
	"github.com/marmos91/photovault/pkg/objectstore"
)

// LocalProcessor enriches an ingested file in-process. It is only used in
// the legacy single-node mode, where no queue workers run. It is invoked
// after batch acknowledgement, once the row id is known.
type LocalProcessor interface {
	Process(ctx context.Context, fileID, path, hash string) error
}

type scanRequest struct {
	// scanDirID narrows the pass to one root; empty scans every enabled
	// root configured for this host.
	scanDirID string
}

type reprocessRequest struct {
	fileID string
	path   string
}

// Worker is the discovery worker. It keeps a hub connection for commands
// and status, walks scan roots on request, hashes and uploads every
// supported file and submits descriptors in batches.
type Worker struct {
	cfg      Config
	hostname string
	workerID string

	api     *apiclient.Client
	objects *objectstore.Client
	hub     *hub.Client
	batcher *Batcher

	walker *Walker
	hasher *Hasher
	cursor *Cursor
	status *statusTracker

	local LocalProcessor

	scanRequests      chan scanRequest
	reprocessRequests chan reprocessRequest

	rootsMu sync.Mutex
	roots   []models.ScanDirectory

	pauseMu sync.Mutex
	paused  chan struct{}

	passMu     sync.Mutex
	passCancel context.CancelFunc
	passActive bool
}

// New builds a discovery worker. The cursor opens immediately so a bad
// cursor path fails fast.
func New(cfg Config, api *apiclient.Client, objects *objectstore.Client) (*Worker, error) {
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

	cursor, err := OpenCursor(cfg.CursorPath)
	if err != nil {
		return nil, err
	}

	return &Worker{
		cfg:               cfg,
		hostname:          hostname,
		workerID:          workerID,
		api:               api,
		objects:           objects,
		walker:            NewWalker(cfg.Options),
		hasher:            NewHasher(int(cfg.ChunkSize.Int64())),
		cursor:            cursor,
		status:            newStatusTracker(),
		scanRequests:      make(chan scanRequest, 8),
		reprocessRequests: make(chan reprocessRequest, 16),
	}, nil
}

// SetLocalProcessor wires the legacy single-node enrichment step. Only
// consulted when LocalProcessing is configured.
func (w *Worker) SetLocalProcessor(p LocalProcessor) {
	w.local = p
}

// Run connects to the hub, performs an initial full pass over this host's
// scan roots and then serves scan and reprocess requests until the context
// ends.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer w.cursor.Close()

	w.hub = hub.NewClient(w.cfg.ServerURL, hub.KindIndexer, w.workerID, w.hostname, w, w.status.snapshot)
	w.status.notify = func() {
		if err := w.hub.SendStatus(); err != nil {
			logger.Debug("status push skipped", logger.Err(err))
		}
	}

	w.batcher = NewBatcher(w.api, w.cursor, w.cfg.BatchSize, w.cfg.MaxPendingBatches,
		func(resp *apiclient.BatchResponse, entries []CursorEntry) {
			w.enrichLocally(ctx, resp, entries)
		},
		func(rejected int) {
			for i := 0; i < rejected; i++ {
				w.status.addError()
			}
		})

	go func() {
		if err := w.hub.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("hub client stopped", logger.Err(err))
		}
	}()
	go func() { _ = w.batcher.Run(ctx) }()
	go w.heartbeat(ctx)

	logger.Info("discovery worker started",
		logger.Worker(w.workerID), logger.Hostname(w.hostname))

	// Initial full pass.
	w.scanRequests <- scanRequest{}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.scanRequests:
			w.runScan(ctx, req)
		case req := <-w.reprocessRequests:
			w.reprocessFile(ctx, req)
		}
	}
}

// HandleCommand implements hub.CommandHandler.
func (w *Worker) HandleCommand(_ context.Context, method string, payload any) error {
	switch cmd := payload.(type) {
	case *hub.PauseCommand:
		w.pause()
		return nil
	case *hub.ResumeCommand:
		w.resume()
		return nil
	case *hub.CancelCommand:
		w.cancelPass()
		return nil
	case *hub.ReprocessFileCommand:
		return w.enqueueReprocess(cmd.FileID, cmd.Path)
	case *hub.TriggerScanCommand:
		return w.enqueueScan(cmd.ScanDirectoryID)
	default:
		return fmt.Errorf("indexer does not handle %q", method)
	}
}

func (w *Worker) pause() {
	w.pauseMu.Lock()
	defer w.pauseMu.Unlock()
	if w.paused == nil {
		w.paused = make(chan struct{})
		w.status.setState(hub.StatePaused)
		logger.Info("scan paused", logger.Worker(w.workerID))
	}
}

func (w *Worker) resume() {
	w.pauseMu.Lock()
	defer w.pauseMu.Unlock()
	if w.paused != nil {
		close(w.paused)
		w.paused = nil

		w.passMu.Lock()
		active := w.passActive
		w.passMu.Unlock()
		if active {
			w.status.setState(hub.StateScanning)
		} else {
			w.status.setState(hub.StateIdle)
		}
		logger.Info("scan resumed", logger.Worker(w.workerID))
	}
}

func (w *Worker) cancelPass() {
	w.passMu.Lock()
	defer w.passMu.Unlock()
	if w.passCancel != nil {
		logger.Info("scan cancelled", logger.Worker(w.workerID))
		w.passCancel()
	}
}

func (w *Worker) enqueueScan(scanDirID string) error {
	select {
	case w.scanRequests <- scanRequest{scanDirID: scanDirID}:
		return nil
	default:
		return fmt.Errorf("scan queue full")
	}
}

func (w *Worker) enqueueReprocess(fileID, path string) error {
	if !w.underKnownRoot(path) {
		return fmt.Errorf("path %q is outside this worker's scan roots", path)
	}
	select {
	case w.reprocessRequests <- reprocessRequest{fileID: fileID, path: path}:
		return nil
	default:
		return fmt.Errorf("reprocess queue full")
	}
}

// underKnownRoot is a segment-aware prefix check so /photos-backup never
// matches the /photos root.
func (w *Worker) underKnownRoot(path string) bool {
	w.rootsMu.Lock()
	defer w.rootsMu.Unlock()
	for _, root := range w.roots {
		if path == root.Path || strings.HasPrefix(path, root.Path+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Worker) waitIfPaused(ctx context.Context) error {
	w.pauseMu.Lock()
	ch := w.paused
	w.pauseMu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

// runScan resolves the roots the request names and walks each in turn.
func (w *Worker) runScan(ctx context.Context, req scanRequest) {
	var dirs []models.ScanDirectory
	if req.scanDirID != "" {
		dir, err := w.api.GetScanDirectory(ctx, req.scanDirID)
		if err != nil {
			logger.Error("failed to resolve scan directory",
				logger.ScanDir(req.scanDirID), logger.Err(err))
			w.status.addError()
			return
		}
		dirs = []models.ScanDirectory{*dir}
	} else {
		var err error
		dirs, err = w.api.ScanDirectoriesForHost(ctx, w.hostname)
		if err != nil {
			logger.Error("failed to list scan directories", logger.Err(err))
			w.status.addError()
			return
		}
	}

	w.rootsMu.Lock()
	w.roots = dirs
	w.rootsMu.Unlock()

	roots := make([]string, len(dirs))
	for i, d := range dirs {
		roots[i] = d.Path
	}
	w.status.setScanRoots(roots)

	for _, dir := range dirs {
		if ctx.Err() != nil {
			return
		}
		w.scanPass(ctx, dir)
	}
}

// scanPass walks one root with the bounded hash+upload pool and flushes
// the batcher before stamping the directory's last-scan time.
func (w *Worker) scanPass(ctx context.Context, dir models.ScanDirectory) {
	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.passMu.Lock()
	w.passCancel = cancel
	w.passActive = true
	w.passMu.Unlock()
	defer func() {
		w.passMu.Lock()
		w.passCancel = nil
		w.passActive = false
		w.passMu.Unlock()
	}()

	w.status.beginPass()
	w.status.setState(hub.StateScanning)
	defer func() {
		w.status.endPass()
		w.status.setState(hub.StateIdle)
	}()

	logger.Info("scan pass started",
		logger.ScanDir(dir.ID), logger.Path(dir.Path))

	// The root's immediate subdirectories double as the pending queue;
	// each is removed as the walk enters it.
	pending := w.topLevelDirs(dir.Path)
	w.status.setPendingDirs(pending)

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, w.cfg.Workers)
	)

	err := w.walker.Walk(passCtx, dir.Path, Visitor{
		Dir: func(path string) {
			w.status.setCurrentDir(path)
			if len(pending) > 0 {
				pending = removePath(pending, path)
				w.status.setPendingDirs(pending)
			}
		},
		File: func(entry Entry) error {
			if err := w.waitIfPaused(passCtx); err != nil {
				return err
			}
			select {
			case sem <- struct{}{}:
			case <-passCtx.Done():
				return passCtx.Err()
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				w.processEntry(passCtx, dir, entry)
			}()
			return nil
		},
		Error: func(path string, err error) {
			w.status.addError()
			logger.Warn("entry skipped", logger.Path(path), logger.Err(err))
		},
	})

	wg.Wait()

	if err != nil {
		if passCtx.Err() != nil {
			logger.Info("scan pass aborted", logger.ScanDir(dir.ID))
		} else {
			logger.Error("scan pass failed", logger.ScanDir(dir.ID), logger.Err(err))
			w.status.addError()
		}
		return
	}

	if err := w.batcher.Flush(passCtx); err != nil {
		logger.Warn("batch flush interrupted", logger.ScanDir(dir.ID), logger.Err(err))
		return
	}

	if err := w.api.TouchLastScanned(ctx, dir.ID, time.Now().UTC()); err != nil {
		logger.Warn("failed to stamp last scan time",
			logger.ScanDir(dir.ID), logger.Err(err))
	}

	logger.Info("scan pass complete",
		logger.ScanDir(dir.ID), logger.Path(dir.Path))
}

// processEntry hashes one file, uploads its bytes to both scratch buckets
// and hands the descriptor to the batcher. Unchanged files are skipped via
// the cursor. Failures are counted, never fatal.
func (w *Worker) processEntry(ctx context.Context, dir models.ScanDirectory, entry Entry) {
	if _, ok := w.cursor.Unchanged(entry.Path, entry.Size, entry.ModTime); ok {
		return
	}

	hash, err := w.hasher.HashFile(ctx, entry.Path, w.status.addBytes)
	if err != nil {
		if ctx.Err() == nil {
			w.status.addError()
			logger.Warn("hash failed", logger.Path(entry.Path), logger.Err(err))
		}
		return
	}

	if err := w.uploadBoth(ctx, entry, hash); err != nil {
		if ctx.Err() == nil {
			w.status.addError()
			logger.Warn("upload failed",
				logger.Path(entry.Path), logger.Hash(hash), logger.Err(err))
		}
		return
	}

	err = w.batcher.Add(ctx, dir.ID, apiclient.FileDescriptor{
		Path: entry.Path,
		Name: entry.Name,
		Hash: hash,
		Size: entry.Size,
		// Creation time is not portable; the modification time is the
		// best cross-platform stand-in.
		FileCreatedAt:  entry.ModTime,
		FileModifiedAt: entry.ModTime,
	}, CursorEntry{
		Path:    entry.Path,
		Hash:    hash,
		Size:    entry.Size,
		ModTime: entry.ModTime,
	})
	if err != nil {
		return
	}

	w.status.addFile()
}

// enrichLocally runs the legacy single-node enrichment for every row an
// acknowledged batch created or updated.
func (w *Worker) enrichLocally(ctx context.Context, resp *apiclient.BatchResponse, entries []CursorEntry) {
	if !w.cfg.LocalProcessing || w.local == nil {
		return
	}

	hashes := make(map[string]string, len(entries))
	for _, e := range entries {
		hashes[e.Path] = e.Hash
	}
	for _, result := range resp.Results {
		if result.Error != "" || result.FileID == "" {
			continue
		}
		hash, ok := hashes[result.Path]
		if !ok {
			continue
		}
		if err := w.local.Process(ctx, result.FileID, result.Path, hash); err != nil {
			w.status.addError()
			logger.Warn("local enrichment failed",
				logger.FileID(result.FileID), logger.Path(result.Path), logger.Err(err))
		}
	}
}

// uploadBoth writes the file's bytes under files/<hash> in each scratch
// bucket. Content-addressed keys make concurrent duplicate uploads
// idempotent.
func (w *Worker) uploadBoth(ctx context.Context, entry Entry, hash string) error {
	f, err := os.Open(entry.Path)
	if err != nil {
		return fmt.Errorf("failed to open file for upload: %w", err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(entry.Ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := objectstore.FileKey(hash)
	for _, bucket := range []string{objectstore.BucketMetadataImages, objectstore.BucketThumbnailImages} {
		if _, err := f.Seek(0, 0); err != nil {
			return fmt.Errorf("failed to rewind %s: %w", entry.Path, err)
		}
		if err := w.objects.Put(ctx, bucket, key, f, contentType); err != nil {
			return err
		}
	}
	return nil
}

// reprocessFile re-reads one file on server request and submits it as a
// single-item batch, bypassing the batcher so the result lands promptly.
func (w *Worker) reprocessFile(ctx context.Context, req reprocessRequest) {
	w.status.setState(hub.StateReprocessing)
	defer w.status.setState(hub.StateIdle)

	logger.Info("reprocessing file",
		logger.FileID(req.fileID), logger.Path(req.path))

	if err := w.cursor.Forget(req.path); err != nil {
		logger.Warn("cursor drop failed", logger.Path(req.path), logger.Err(err))
	}

	info, err := os.Stat(req.path)
	if err != nil {
		w.status.addError()
		logger.Warn("reprocess stat failed", logger.Path(req.path), logger.Err(err))
		return
	}

	entry := Entry{
		Path:    req.path,
		Name:    filepath.Base(req.path),
		Ext:     strings.ToLower(filepath.Ext(req.path)),
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
	}

	hash, err := w.hasher.HashFile(ctx, entry.Path, w.status.addBytes)
	if err != nil {
		w.status.addError()
		logger.Warn("reprocess hash failed", logger.Path(entry.Path), logger.Err(err))
		return
	}
	if err := w.uploadBoth(ctx, entry, hash); err != nil {
		w.status.addError()
		logger.Warn("reprocess upload failed", logger.Path(entry.Path), logger.Err(err))
		return
	}

	scanDirID := w.scanDirForPath(req.path)
	if scanDirID == "" {
		w.status.addError()
		logger.Warn("no scan root covers reprocessed path", logger.Path(req.path))
		return
	}

	// The flag matters: the file usually still carries the same bytes, so
	// without it the server would see an unchanged row and publish nothing.
	resp, err := w.api.IngestBatch(ctx, &apiclient.BatchRequest{
		ScanDirectoryID: scanDirID,
		Reprocess:       true,
		Files: []apiclient.FileDescriptor{{
			Path:           entry.Path,
			Name:           entry.Name,
			Hash:           hash,
			Size:           entry.Size,
			FileCreatedAt:  entry.ModTime,
			FileModifiedAt: entry.ModTime,
		}},
	})
	if err != nil {
		w.status.addError()
		logger.Warn("reprocess submit failed", logger.Path(entry.Path), logger.Err(err))
		return
	}

	cursorEntries := []CursorEntry{{
		Path:    entry.Path,
		Hash:    hash,
		Size:    entry.Size,
		ModTime: entry.ModTime,
	}}
	if err := w.cursor.Advance(cursorEntries); err != nil {
		logger.Warn("cursor advance failed", logger.Path(entry.Path), logger.Err(err))
	}
	w.enrichLocally(ctx, resp, cursorEntries)
	w.status.addFile()
}

func (w *Worker) scanDirForPath(path string) string {
	w.rootsMu.Lock()
	defer w.rootsMu.Unlock()
	for _, root := range w.roots {
		if path == root.Path || strings.HasPrefix(path, root.Path+string(filepath.Separator)) {
			return root.ID
		}
	}
	return ""
}

func (w *Worker) topLevelDirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs
}

func removePath(paths []string, path string) []string {
	for i, p := range paths {
		if p == path {
			return append(paths[:i], paths[i+1:]...)
		}
	}
	return paths
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
