// Package cleaner implements the archive worker. It never consumes from
// the bus: delete commands arrive over the hub control channel, each file
// is re-verified against its claimed hash and then moved to the trash
// path, and per-file and per-job results are reported back over the hub.
package cleaner

import (
	"sync"
	"time"

	"github.com/marmos91/photovault/pkg/hub"
)

// DefaultHeartbeatInterval matches the status contract shared by all
// workers.
const DefaultHeartbeatInterval = 30 * time.Second

// Config holds the archive worker settings.
type Config struct {
	// ServerURL is the ingestion service base URL, used for both the
	// REST client and the hub connection.
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`

	// WorkerID identifies this worker to the hub. Generated when empty.
	WorkerID string `mapstructure:"worker_id" yaml:"worker_id,omitempty"`

	// Hostname is the name reported on the hub. Empty falls back to
	// os.Hostname.
	Hostname string `mapstructure:"hostname" yaml:"hostname,omitempty"`

	// TrashBase is the directory archived files move under, mirroring
	// their path relative to the scan root.
	TrashBase string `mapstructure:"trash_base" yaml:"trash_base"`

	// DryRun reports what would be archived without touching the
	// filesystem. This is boot-time configuration; the SetDryRun hub
	// command is logged and ignored.
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`

	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval,omitempty"`
}

// ApplyDefaults fills in zero values.
func (c *Config) ApplyDefaults() {
	if c.TrashBase == "" {
		c.TrashBase = "/var/lib/photovault/trash"
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
}

// tracker is the cleaner's live status record.
type tracker struct {
	mu sync.Mutex

	state          hub.WorkerState
	filesProcessed int64
	errorCount     int64
	activeJobID    string

	notify func()
}

func newTracker() *tracker {
	return &tracker{state: hub.StateIdle}
}

func (t *tracker) setState(state hub.WorkerState) {
	t.mu.Lock()
	changed := t.state != state
	t.state = state
	notify := t.notify
	t.mu.Unlock()
	if changed && notify != nil {
		notify()
	}
}

func (t *tracker) setActiveJob(jobID string) {
	t.mu.Lock()
	t.activeJobID = jobID
	t.mu.Unlock()
}

func (t *tracker) addFile() {
	t.mu.Lock()
	t.filesProcessed++
	t.mu.Unlock()
}

func (t *tracker) addError() {
	t.mu.Lock()
	t.errorCount++
	t.mu.Unlock()
}

func (t *tracker) snapshot() *hub.WorkerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &hub.WorkerStatus{
		State:          t.state,
		FilesProcessed: t.filesProcessed,
		ErrorCount:     t.errorCount,
		ActiveJobID:    t.activeJobID,
	}
}
