package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/internal/telemetry"
	"github.com/marmos91/photovault/pkg/apiclient"
	"github.com/marmos91/photovault/pkg/cleaner"
	"github.com/marmos91/photovault/pkg/config"
	"github.com/marmos91/photovault/pkg/version"
)

const usage = `PhotoVault Cleaner - Duplicate archive agent

Usage:
  photovault-cleaner <command> [flags]

Commands:
  start    Start the archive agent
  version  Show version information

Flags:
  --config string    Path to config file (default: $XDG_CONFIG_HOME/photovault/config.yaml)
  --dry-run          Report what would be archived without touching files

Deletion jobs arrive from the PhotoVault server. Every file is re-verified
against its recorded hash before it moves under the trash directory; files
that changed since selection are skipped, never deleted.

Examples:
  photovault-cleaner start
  photovault-cleaner start --dry-run
  photovault-cleaner start --config /etc/photovault/config.yaml
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		runStart()
	case "help", "--help", "-h":
		fmt.Print(usage)
	case "version", "--version", "-v":
		info := version.Get()
		fmt.Printf("photovault-cleaner %s (commit: %s, built: %s)\n", info.Version, info.Commit, info.Date)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runStart() {
	startFlags := flag.NewFlagSet("start", flag.ExitOnError)
	configFile := startFlags.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/photovault/config.yaml)")
	dryRun := startFlags.Bool("dry-run", false, "Report what would be archived without touching files")

	if err := startFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dryRun {
		cfg.Cleaner.DryRun = true
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "photovault-cleaner",
		ServiceVersion: version.Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	agentID, err := cfg.EnsureAgentID()
	if err != nil {
		log.Fatalf("Failed to resolve agent id: %v", err)
	}

	logger.Info("Cleaner starting",
		"version", version.Version,
		logger.Worker(agentID),
		logger.Hostname(cfg.Agent.Hostname),
		"server", cfg.Agent.ServerURL,
		logger.DryRun(cfg.Cleaner.DryRun))

	api := apiclient.New(cfg.Agent.ServerURL)

	worker, err := cleaner.New(cfg.CleanerWorkerConfig(), api)
	if err != nil {
		log.Fatalf("Failed to create archive worker: %v", err)
	}

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- worker.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, stopping cleaner")
		cancel()
		<-workerDone
		logger.Info("Cleaner stopped")
	case err := <-workerDone:
		signal.Stop(sigChan)
		if err != nil && ctx.Err() == nil {
			logger.Error("Cleaner failed", logger.Err(err))
			os.Exit(1)
		}
		logger.Info("Cleaner stopped")
	}
}
