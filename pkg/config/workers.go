package config

import (
	"strings"

	"github.com/marmos91/photovault/pkg/cleaner"
	"github.com/marmos91/photovault/pkg/processor"
	"github.com/marmos91/photovault/pkg/scanner"
)

// ScannerWorkerConfig maps the static configuration onto the discovery
// worker's settings. Extensions are configured without the dot but matched
// with it, and the hidden-file knob flips polarity: the config asks what to
// include, the walker what to skip.
func (c *Config) ScannerWorkerConfig() scanner.Config {
	exts := make([]string, 0, len(c.Scanner.Extensions))
	for _, ext := range c.Scanner.Extensions {
		ext = strings.TrimPrefix(strings.ToLower(ext), ".")
		if ext != "" {
			exts = append(exts, "."+ext)
		}
	}

	return scanner.Config{
		ServerURL:  c.Agent.ServerURL,
		WorkerID:   c.Agent.ID,
		Hostname:   c.Agent.Hostname,
		CursorPath: c.Scanner.CursorPath,
		Options: scanner.Options{
			SupportedExtensions: exts,
			ExcludedDirs:        c.Scanner.ExcludedDirs,
			SkipHidden:          !c.Scanner.IncludeHidden,
			FollowSymlinks:      c.Scanner.FollowSymlinks,
			MaxDepth:            c.Scanner.MaxDepth,
			MaxFileSize:         c.Scanner.MaxFileSize.Int64(),
		},
		Workers:           c.Scanner.Parallelism,
		BatchSize:         c.Scanner.BatchSize,
		MaxPendingBatches: c.Scanner.PendingLimit,
		HeartbeatInterval: c.Scanner.HeartbeatInterval,
		LocalProcessing:   c.Scanner.LocalProcessing,
	}
}

// CleanerWorkerConfig maps the static configuration onto the archive
// worker's settings.
func (c *Config) CleanerWorkerConfig() cleaner.Config {
	return cleaner.Config{
		ServerURL: c.Agent.ServerURL,
		WorkerID:  c.Agent.ID,
		Hostname:  c.Agent.Hostname,
		TrashBase: c.Cleaner.TrashRoot,
		DryRun:    c.Cleaner.DryRun,
	}
}

// ThumbnailWorkerConfig maps the static configuration onto the thumbnail
// generator's settings.
func (c *Config) ThumbnailWorkerConfig() processor.ThumbnailConfig {
	return processor.ThumbnailConfig{
		MaxWidth:  c.Thumbnail.MaxWidth,
		MaxHeight: c.Thumbnail.MaxHeight,
		Quality:   c.Thumbnail.Quality,
	}
}
