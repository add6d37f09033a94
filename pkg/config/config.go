package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/photovault/internal/bytesize"
	"github.com/marmos91/photovault/pkg/api"
	"github.com/marmos91/photovault/pkg/bus"
	"github.com/marmos91/photovault/pkg/objectstore"
	"github.com/marmos91/photovault/pkg/store"
)

// Config represents the PhotoVault configuration.
//
// This structure captures static configuration aspects shared by the server
// and the host-side agents:
//   - Logging configuration
//   - Telemetry/tracing configuration
//   - Server settings (shutdown timeout, metrics, API)
//   - Database connection (index persistence)
//   - Object store connection (S3-compatible)
//   - Message bus connection (RabbitMQ)
//   - Scanner, thumbnail, cleaner, and duplicate-selection behavior
//
// Dynamic configuration (scan directories, preferences, hidden rules) is
// managed through the REST API and stored in the index database.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (PHOTOVAULT_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Database configures the index database (SQLite or PostgreSQL).
	// This is the persistent store for files, groups, sessions, and jobs.
	Database store.Config `mapstructure:"database" yaml:"database"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// API contains ingestion API server configuration
	API api.APIConfig `mapstructure:"api" yaml:"api"`

	// ObjectStore configures the S3-compatible object store holding
	// full-size working copies and generated thumbnails.
	ObjectStore objectstore.Config `mapstructure:"object_store" yaml:"object_store"`

	// Bus configures the RabbitMQ connection used by the processing pipeline.
	Bus bus.Config `mapstructure:"bus" yaml:"bus"`

	// Agent identifies a host-side process (indexer or cleaner) and tells
	// it where the server lives.
	Agent AgentConfig `mapstructure:"agent" yaml:"agent"`

	// Scanner controls filesystem discovery on indexer hosts.
	Scanner ScannerConfig `mapstructure:"scanner" yaml:"scanner"`

	// Thumbnail controls thumbnail generation in the processing workers.
	Thumbnail ThumbnailConfig `mapstructure:"thumbnail" yaml:"thumbnail"`

	// Cleaner controls duplicate deletion on cleaner hosts.
	Cleaner CleanerConfig `mapstructure:"cleaner" yaml:"cleaner"`

	// Duplicates controls automatic original selection.
	Duplicates DuplicatesConfig `mapstructure:"duplicates" yaml:"duplicates"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, trace data is exported to an OTLP-compatible collector
// (e.g., Jaeger, Tempo, or any OTLP receiver).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	// Default: true (for local development)
	// Set to false in production with a TLS-enabled collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// 1.0 = sample all traces, 0.5 = sample 50%, 0.0 = no sampling
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
// When enabled, CPU and memory profiles are continuously sent to a Pyroscope server
// for flame graph visualization and performance analysis.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false (opt-in for profiling)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040" (standard Pyroscope port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Valid values: cpu, alloc_objects, alloc_space, inuse_objects, inuse_space,
	//               goroutines, mutex_count, mutex_duration, block_count, block_duration
	// Default: ["cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"]
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// AgentConfig identifies a host-side agent process.
//
// Indexers and cleaners both carry one: it names the host in scan directory
// assignments and review notifications, and points at the server's API and
// hub endpoints.
type AgentConfig struct {
	// ID is the stable agent identifier used on the hub connection.
	// Default: generated and persisted next to the config file
	ID string `mapstructure:"id" yaml:"id,omitempty"`

	// Hostname is the name used to match scan directory assignments.
	// Default: os.Hostname()
	Hostname string `mapstructure:"hostname" yaml:"hostname,omitempty"`

	// ServerURL is the base URL of the ingestion API server.
	// Default: "http://localhost:8080"
	ServerURL string `mapstructure:"server_url" validate:"required" yaml:"server_url"`
}

// ScannerConfig controls filesystem discovery on indexer hosts.
type ScannerConfig struct {
	// Extensions lists the file extensions treated as photos (no dot,
	// case-insensitive).
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`

	// ExcludedDirs lists directory names skipped entirely during traversal.
	ExcludedDirs []string `mapstructure:"excluded_dirs" yaml:"excluded_dirs"`

	// IncludeHidden controls whether dotfiles and dot-directories are scanned.
	// Default: false
	IncludeHidden bool `mapstructure:"include_hidden" yaml:"include_hidden"`

	// FollowSymlinks controls whether symbolic links are followed.
	// Default: false (symlinks can loop and double-count)
	FollowSymlinks bool `mapstructure:"follow_symlinks" yaml:"follow_symlinks"`

	// MaxDepth bounds traversal depth below each scan root.
	// Default: 32
	MaxDepth int `mapstructure:"max_depth" validate:"omitempty,min=1" yaml:"max_depth"`

	// MaxFileSize skips files larger than this size. Zero means no limit.
	// Supports human-readable formats: "1GB", "512MB", "10Gi"
	MaxFileSize bytesize.ByteSize `mapstructure:"max_file_size" yaml:"max_file_size,omitempty"`

	// Parallelism is the number of concurrent hash workers.
	// Default: 8
	Parallelism int `mapstructure:"parallelism" validate:"omitempty,min=1" yaml:"parallelism"`

	// BatchSize is the number of discovered files sent per ingest request.
	// Default: 250
	BatchSize int `mapstructure:"batch_size" validate:"omitempty,min=1" yaml:"batch_size"`

	// PendingLimit bounds locally buffered batches awaiting upload before
	// the scan pauses.
	// Default: 16
	PendingLimit int `mapstructure:"pending_limit" validate:"omitempty,min=1" yaml:"pending_limit"`

	// HeartbeatInterval is how often scan progress is reported on the hub.
	// Default: 30s
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`

	// CursorPath is the directory for the scan cursor database, which lets
	// an interrupted scan resume where it left off.
	// Default: $XDG_CONFIG_HOME/photovault/scan-cursor
	CursorPath string `mapstructure:"cursor_path" yaml:"cursor_path"`

	// LocalProcessing makes the indexer extract metadata and generate
	// thumbnails in-process instead of leaving enrichment to the queue
	// workers. For single-node deployments without RabbitMQ consumers.
	// Default: false
	LocalProcessing bool `mapstructure:"local_processing" yaml:"local_processing"`
}

// ThumbnailConfig controls thumbnail generation in the processing workers.
type ThumbnailConfig struct {
	// MaxWidth is the bounding box width. Images already within the box
	// pass through unscaled.
	// Default: 300
	MaxWidth int `mapstructure:"max_width" validate:"omitempty,min=16" yaml:"max_width"`

	// MaxHeight is the bounding box height.
	// Default: 300
	MaxHeight int `mapstructure:"max_height" validate:"omitempty,min=16" yaml:"max_height"`

	// Quality is the JPEG encoding quality (1-100).
	// Default: 85
	Quality int `mapstructure:"quality" validate:"omitempty,min=1,max=100" yaml:"quality"`
}

// CleanerConfig controls duplicate deletion on cleaner hosts.
type CleanerConfig struct {
	// TrashRoot is the directory deleted files are moved into, preserving
	// their path relative to the scan root.
	// Default: /tmp/photovault-trash
	TrashRoot string `mapstructure:"trash_root" validate:"required" yaml:"trash_root"`

	// DryRun makes every job report outcomes without touching files,
	// regardless of the per-job flag.
	// Default: false
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// DuplicatesConfig controls automatic original selection.
type DuplicatesConfig struct {
	// ConflictThreshold is the minimum score margin between the best and
	// second-best candidate for auto-selection to commit. Groups under the
	// margin stay pending for manual review.
	// Default: 5
	ConflictThreshold int `mapstructure:"conflict_threshold" validate:"omitempty,min=0" yaml:"conflict_threshold"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PHOTOVAULT_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists
	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	// If no config file was found, use defaults
	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	// Unmarshal into config struct with custom decode hooks
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if the config file exists and provides user-friendly instructions if not.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: User-friendly error with instructions if config not found
func MustLoad(configPath string) (*Config, error) {
	// Determine config path
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  pvctl init\n\n"+
				"Or specify a custom config file:\n"+
				"  photovault <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  pvctl init --config %s",
				configPath, configPath)
		}
	}

	// Load configuration
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use yaml.Marshal directly to respect yaml tags
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file with restricted permissions (0600 = owner read/write only).
	// This is important because config files may contain object store credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use PHOTOVAULT_ prefix and underscores
	// Example: PHOTOVAULT_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("PHOTOVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/photovault/config.{yaml,toml}
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml") // Primary format
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Also check for os.PathError when explicit config file doesn't exist
		if os.IsNotExist(err) {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Other errors are problems
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
// This includes ByteSize and time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts strings
// and integers to bytesize.ByteSize. This enables config files to use human-readable
// sizes like "1Gi", "500Mi", "100MB", or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to ByteSize
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse human-readable string like "1Gi", "500Mi", "100MB"
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to time.Duration
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse duration string like "30s", "5m", "1h"
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "photovault")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "photovault")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
