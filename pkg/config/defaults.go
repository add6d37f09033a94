package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/photovault/pkg/objectstore"
	"github.com/marmos91/photovault/pkg/store"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	cfg.Database.ApplyDefaults()
	applyMetricsDefaults(&cfg.Metrics)
	cfg.API.ApplyDefaults()
	cfg.Bus.ApplyDefaults()
	applyAgentDefaults(&cfg.Agent)
	applyScannerDefaults(&cfg.Scanner)
	applyThumbnailDefaults(&cfg.Thumbnail)
	applyCleanerDefaults(&cfg.Cleaner)
	applyDuplicatesDefaults(&cfg.Duplicates)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	// Enabled defaults to false (opt-in for telemetry)
	// No need to set, zero value is false

	// Default endpoint is localhost:4317 (standard OTLP gRPC port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	// Default sample rate is 1.0 (sample all traces)
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	// Apply profiling defaults
	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	// Enabled defaults to false (opt-in for profiling)
	// No need to set, zero value is false

	// Default endpoint is localhost:4040 (standard Pyroscope port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	// Default profile types include CPU, memory allocation, and goroutines
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyShutdownTimeoutDefaults sets shutdown timeout defaults.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in for metrics)
	// Port defaults to 9090 if metrics are enabled
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyAgentDefaults sets agent identity defaults.
func applyAgentDefaults(cfg *AgentConfig) {
	if cfg.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		cfg.Hostname = hostname
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8080"
	}
	// ID has no default here; the agent generates and persists one on
	// first start so it survives restarts.
}

// DefaultPhotoExtensions lists the file extensions scanned by default.
var DefaultPhotoExtensions = []string{
	"jpg", "jpeg", "png", "gif", "bmp", "webp", "tiff", "tif",
	"heic", "heif", "raw", "cr2", "cr3", "nef", "arw", "dng",
}

// DefaultExcludedDirs lists directory names skipped by default.
var DefaultExcludedDirs = []string{
	".git", "node_modules", ".Trash", ".thumbnails", "@eaDir", "__MACOSX",
}

// applyScannerDefaults sets filesystem discovery defaults.
func applyScannerDefaults(cfg *ScannerConfig) {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = append([]string(nil), DefaultPhotoExtensions...)
	}
	if len(cfg.ExcludedDirs) == 0 {
		cfg.ExcludedDirs = append([]string(nil), DefaultExcludedDirs...)
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = 32
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = 8
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 250
	}
	if cfg.PendingLimit == 0 {
		cfg.PendingLimit = 16
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.CursorPath == "" {
		cfg.CursorPath = filepath.Join(getConfigDir(), "scan-cursor")
	}
	// MaxFileSize defaults to 0 (no limit)
}

// applyThumbnailDefaults sets thumbnail generation defaults.
func applyThumbnailDefaults(cfg *ThumbnailConfig) {
	if cfg.MaxWidth == 0 {
		cfg.MaxWidth = 300
	}
	if cfg.MaxHeight == 0 {
		cfg.MaxHeight = 300
	}
	if cfg.Quality == 0 {
		cfg.Quality = 85
	}
}

// applyCleanerDefaults sets cleaner defaults.
func applyCleanerDefaults(cfg *CleanerConfig) {
	if cfg.TrashRoot == "" {
		cfg.TrashRoot = "/tmp/photovault-trash"
	}
	// DryRun defaults to false
}

// applyDuplicatesDefaults sets automatic selection defaults.
func applyDuplicatesDefaults(cfg *DuplicatesConfig) {
	if cfg.ConflictThreshold == 0 {
		cfg.ConflictThreshold = 5
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
//
// The object store section is seeded with local MinIO credentials; retry
// knobs stay zero and fall back to the client's built-in defaults.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{},
		Database: store.Config{
			Type: store.DatabaseTypeSQLite, // Default to SQLite for single-node
		},
		ObjectStore: objectStoreDefaults(),
	}

	ApplyDefaults(cfg)
	return cfg
}

// objectStoreDefaults seeds a local MinIO connection.
func objectStoreDefaults() objectstore.Config {
	return objectstore.Config{
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		ForcePathStyle:  true,
	}
}
