// Package scanner implements the discovery worker: it walks configured scan
// roots, hashes every supported file, uploads the bytes to both processing
// scratch buckets and submits descriptors to the ingestion service in
// batches. A badger-backed cursor lets rescans skip unchanged files.
package scanner

import (
	"time"

	"github.com/marmos91/photovault/internal/bytesize"
)

// Defaults for the scanning pipeline.
const (
	DefaultWorkers           = 8
	DefaultBatchSize         = 250
	DefaultMaxPendingBatches = 4
	DefaultChunkSize         = 256 * 1024
	DefaultHeartbeatInterval = 30 * time.Second
)

// DefaultExcludedDirs are NAS housekeeping folders that never contain
// user photos.
var DefaultExcludedDirs = []string{
	"@eaDir",
	"#recycle",
	"#snapshot",
	"$RECYCLE.BIN",
	".Trashes",
}

// DefaultExtensions are the file types the pipeline knows how to process.
var DefaultExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif",
	".heic", ".heif", ".webp", ".raw", ".cr2", ".nef", ".arw", ".dng",
}

// Options controls which filesystem entries a walk yields.
type Options struct {
	// SupportedExtensions filters by lowercase extension including the
	// dot. Empty means DefaultExtensions.
	SupportedExtensions []string `mapstructure:"supported_extensions" yaml:"supported_extensions,omitempty"`

	// ExcludedDirs are directory basenames that are never descended
	// into. Empty means DefaultExcludedDirs.
	ExcludedDirs []string `mapstructure:"excluded_dirs" yaml:"excluded_dirs,omitempty"`

	// SkipHidden skips dotfiles and dot-directories.
	SkipHidden bool `mapstructure:"skip_hidden" yaml:"skip_hidden"`

	// FollowSymlinks descends into symlinked directories and yields
	// symlinked files. Off by default; cycles are not detected.
	FollowSymlinks bool `mapstructure:"follow_symlinks" yaml:"follow_symlinks"`

	// MaxDepth bounds the traversal. The root is depth 0; zero means
	// unbounded.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth,omitempty"`

	// MaxFileSize skips files larger than this many bytes. Zero means
	// no limit.
	MaxFileSize int64 `mapstructure:"max_file_size" yaml:"max_file_size,omitempty"`
}

// Config holds the discovery worker settings.
type Config struct {
	// ServerURL is the ingestion service base URL, used for both the
	// REST client and the hub connection.
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`

	// WorkerID identifies this worker to the hub. Generated when empty.
	WorkerID string `mapstructure:"worker_id" yaml:"worker_id,omitempty"`

	// Hostname is the name matched against scan directory assignments.
	// Empty falls back to os.Hostname.
	Hostname string `mapstructure:"hostname" yaml:"hostname,omitempty"`

	// CursorPath is the badger directory for the scan cursor. Empty
	// keeps the cursor in memory, which rescans everything on restart.
	CursorPath string `mapstructure:"cursor_path" yaml:"cursor_path,omitempty"`

	Options Options `mapstructure:"options" yaml:"options"`

	// Workers bounds the hash+upload pool.
	Workers int `mapstructure:"workers" yaml:"workers,omitempty"`

	// BatchSize is the number of descriptors per ingest POST.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size,omitempty"`

	// MaxPendingBatches bounds the buffer of full batches waiting on the
	// ingestion service. When the buffer is full the scan pauses until
	// it drains.
	MaxPendingBatches int `mapstructure:"max_pending_batches" yaml:"max_pending_batches,omitempty"`

	// ChunkSize is the hasher read size, clamped to 64KiB..1MiB.
	ChunkSize bytesize.ByteSize `mapstructure:"chunk_size" yaml:"chunk_size,omitempty"`

	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval,omitempty"`

	// LocalProcessing enables the legacy single-node mode where the
	// worker extracts metadata and thumbnails in-process instead of
	// leaving enrichment to the queue workers.
	LocalProcessing bool `mapstructure:"local_processing" yaml:"local_processing"`
}

// ApplyDefaults fills in zero values.
func (c *Config) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxPendingBatches <= 0 {
		c.MaxPendingBatches = DefaultMaxPendingBatches
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if len(c.Options.SupportedExtensions) == 0 {
		c.Options.SupportedExtensions = DefaultExtensions
	}
	if len(c.Options.ExcludedDirs) == 0 {
		c.Options.ExcludedDirs = DefaultExcludedDirs
	}
}
