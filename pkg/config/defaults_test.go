package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyDefaults_API(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.API.Port != 8080 {
		t.Errorf("Expected default API port 8080, got %d", cfg.API.Port)
	}
	if cfg.API.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read timeout 30s, got %v", cfg.API.ReadTimeout)
	}
	if cfg.API.WriteTimeout != 30*time.Second {
		t.Errorf("Expected default write timeout 30s, got %v", cfg.API.WriteTimeout)
	}
	if cfg.API.IdleTimeout != 120*time.Second {
		t.Errorf("Expected default idle timeout 120s, got %v", cfg.API.IdleTimeout)
	}
}

func TestApplyDefaults_Bus(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Bus.Host != "localhost" {
		t.Errorf("Expected default bus host 'localhost', got %q", cfg.Bus.Host)
	}
	if cfg.Bus.Port != 5672 {
		t.Errorf("Expected default bus port 5672, got %d", cfg.Bus.Port)
	}
	if cfg.Bus.Prefetch != 8 {
		t.Errorf("Expected default prefetch 8, got %d", cfg.Bus.Prefetch)
	}
}

func TestApplyDefaults_Scanner(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if len(cfg.Scanner.Extensions) == 0 {
		t.Error("Expected default photo extensions")
	}
	if cfg.Scanner.MaxDepth != 32 {
		t.Errorf("Expected default max depth 32, got %d", cfg.Scanner.MaxDepth)
	}
	if cfg.Scanner.Parallelism != 8 {
		t.Errorf("Expected default parallelism 8, got %d", cfg.Scanner.Parallelism)
	}
	if cfg.Scanner.BatchSize != 250 {
		t.Errorf("Expected default batch size 250, got %d", cfg.Scanner.BatchSize)
	}
	if cfg.Scanner.HeartbeatInterval != 30*time.Second {
		t.Errorf("Expected default heartbeat 30s, got %v", cfg.Scanner.HeartbeatInterval)
	}
	if cfg.Scanner.CursorPath == "" {
		t.Error("Expected a default cursor path")
	}
	if cfg.Scanner.IncludeHidden {
		t.Error("Expected hidden files to be skipped by default")
	}
	if cfg.Scanner.FollowSymlinks {
		t.Error("Expected symlinks to be skipped by default")
	}
}

func TestApplyDefaults_ThumbnailAndCleaner(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Thumbnail.MaxWidth != 300 || cfg.Thumbnail.MaxHeight != 300 {
		t.Errorf("Expected default thumbnail box 300x300, got %dx%d",
			cfg.Thumbnail.MaxWidth, cfg.Thumbnail.MaxHeight)
	}
	if cfg.Thumbnail.Quality != 85 {
		t.Errorf("Expected default JPEG quality 85, got %d", cfg.Thumbnail.Quality)
	}
	if cfg.Cleaner.TrashRoot == "" {
		t.Error("Expected a default trash root")
	}
	if cfg.Duplicates.ConflictThreshold != 5 {
		t.Errorf("Expected default conflict threshold 5, got %d", cfg.Duplicates.ConflictThreshold)
	}
}

func TestApplyDefaults_Agent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Agent.Hostname == "" {
		t.Error("Expected agent hostname to default to os.Hostname")
	}
	if cfg.Agent.ServerURL != "http://localhost:8080" {
		t.Errorf("Expected default server URL, got %q", cfg.Agent.ServerURL)
	}
	if cfg.Agent.ID != "" {
		t.Errorf("Expected no default agent id, got %q", cfg.Agent.ID)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/photovault.log",
		},
		ShutdownTimeout: 60 * time.Second,
		Scanner: ScannerConfig{
			BatchSize:   500,
			Parallelism: 2,
		},
		Cleaner: CleanerConfig{
			TrashRoot: "/mnt/nas/trash",
		},
	}

	ApplyDefaults(cfg)

	// Verify explicit values were preserved
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/photovault.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit timeout 60s to be preserved, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Scanner.BatchSize != 500 {
		t.Errorf("Expected explicit batch size 500 to be preserved, got %d", cfg.Scanner.BatchSize)
	}
	if cfg.Scanner.Parallelism != 2 {
		t.Errorf("Expected explicit parallelism 2 to be preserved, got %d", cfg.Scanner.Parallelism)
	}
	if cfg.Cleaner.TrashRoot != "/mnt/nas/trash" {
		t.Errorf("Expected explicit trash root to be preserved, got %q", cfg.Cleaner.TrashRoot)
	}
}

func TestApplyDefaults_NormalizesLogLevel(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected ApplyDefaults to normalize 'info' to 'INFO', got %q", cfg.Logging.Level)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	// The default config should pass validation
	err := Validate(cfg)
	if err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	// Check all required sections are present
	if cfg.Logging.Level == "" {
		t.Error("Default config missing logging level")
	}
	if cfg.API.Port == 0 {
		t.Error("Default config missing API port")
	}
	if cfg.Database.SQLite.Path == "" {
		t.Error("Default config missing database path")
	}
	if cfg.Cleaner.TrashRoot == "" {
		t.Error("Default config missing trash root")
	}
}
