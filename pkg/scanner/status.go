package scanner

import (
	"sync"
	"time"

	"github.com/marmos91/photovault/pkg/hub"
)

// statusTracker maintains the live status record the worker pushes over the
// hub. Rates are computed between snapshots, which happen on the heartbeat
// and on every state change.
type statusTracker struct {
	mu sync.Mutex

	state      hub.WorkerState
	currentDir string

	filesProcessed int64
	bytesProcessed int64
	errorCount     int64

	pendingDirs []string
	scanRoots   []string

	// lastPassFiles seeds the ETA estimate for the next pass.
	lastPassFiles int64
	passStart     int64

	lastSnapshotAt    time.Time
	lastSnapshotFiles int64
	lastSnapshotBytes int64

	// notify pushes a fresh status; set once before use.
	notify func()
}

func newStatusTracker() *statusTracker {
	return &statusTracker{
		state:          hub.StateIdle,
		lastSnapshotAt: time.Now(),
	}
}

// setState transitions the worker state and pushes a status when it
// actually changed.
func (s *statusTracker) setState(state hub.WorkerState) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	notify := s.notify
	s.mu.Unlock()

	if changed && notify != nil {
		notify()
	}
}

func (s *statusTracker) getState() hub.WorkerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *statusTracker) setCurrentDir(dir string) {
	s.mu.Lock()
	s.currentDir = dir
	s.mu.Unlock()
}

func (s *statusTracker) setScanRoots(roots []string) {
	s.mu.Lock()
	s.scanRoots = roots
	s.mu.Unlock()
}

func (s *statusTracker) setPendingDirs(dirs []string) {
	s.mu.Lock()
	s.pendingDirs = dirs
	s.mu.Unlock()
}

func (s *statusTracker) addFile() {
	s.mu.Lock()
	s.filesProcessed++
	s.mu.Unlock()
}

func (s *statusTracker) addBytes(n int64) {
	s.mu.Lock()
	s.bytesProcessed += n
	s.mu.Unlock()
}

func (s *statusTracker) addError() {
	s.mu.Lock()
	s.errorCount++
	s.mu.Unlock()
}

// beginPass resets per-pass progress, keeping the previous pass's file
// count as the ETA seed.
func (s *statusTracker) beginPass() {
	s.mu.Lock()
	s.passStart = s.filesProcessed
	s.mu.Unlock()
}

func (s *statusTracker) endPass() {
	s.mu.Lock()
	s.lastPassFiles = s.filesProcessed - s.passStart
	s.currentDir = ""
	s.pendingDirs = nil
	s.mu.Unlock()
}

// snapshot builds the wire status. Files/s and bytes/s are the averages
// since the previous snapshot.
func (s *statusTracker) snapshot() *hub.WorkerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(s.lastSnapshotAt).Seconds()

	var filesPerSec, bytesPerSec float64
	if elapsed > 0 {
		filesPerSec = float64(s.filesProcessed-s.lastSnapshotFiles) / elapsed
		bytesPerSec = float64(s.bytesProcessed-s.lastSnapshotBytes) / elapsed
	}
	s.lastSnapshotAt = now
	s.lastSnapshotFiles = s.filesProcessed
	s.lastSnapshotBytes = s.bytesProcessed

	var eta float64
	if filesPerSec > 0 && s.lastPassFiles > 0 {
		remaining := s.lastPassFiles - (s.filesProcessed - s.passStart)
		if remaining > 0 {
			eta = float64(remaining) / filesPerSec
		}
	}

	pending := make([]string, len(s.pendingDirs))
	copy(pending, s.pendingDirs)
	roots := make([]string, len(s.scanRoots))
	copy(roots, s.scanRoots)

	return &hub.WorkerStatus{
		State:                     s.state,
		CurrentDirectory:          s.currentDir,
		FilesProcessed:            s.filesProcessed,
		ErrorCount:                s.errorCount,
		FilesPerSecond:            filesPerSec,
		BytesPerSecond:            bytesPerSec,
		EstimatedSecondsRemaining: eta,
		PendingDirectories:        pending,
		ScanRoots:                 roots,
	}
}
