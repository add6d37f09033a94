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
	"github.com/marmos91/photovault/pkg/bus"
	"github.com/marmos91/photovault/pkg/config"
	"github.com/marmos91/photovault/pkg/metrics"
	"github.com/marmos91/photovault/pkg/objectstore"
	"github.com/marmos91/photovault/pkg/processor"
	"github.com/marmos91/photovault/pkg/scanner"
	"github.com/marmos91/photovault/pkg/version"
)

const usage = `PhotoVault Indexer - Filesystem discovery agent

Usage:
  photovault-indexer <command> [flags]

Commands:
  start    Start the discovery agent
  version  Show version information

Flags:
  --config string    Path to config file (default: $XDG_CONFIG_HOME/photovault/config.yaml)

The agent connects to the PhotoVault server named in the agent section of
the configuration, fetches the scan directories assigned to this host and
keeps them indexed. Scans can also be triggered remotely through the server.

Examples:
  photovault-indexer start
  photovault-indexer start --config /etc/photovault/config.yaml
  PHOTOVAULT_AGENT_SERVER_URL=http://vault:8080 photovault-indexer start
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
		fmt.Printf("photovault-indexer %s (commit: %s, built: %s)\n", info.Version, info.Commit, info.Date)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runStart() {
	startFlags := flag.NewFlagSet("start", flag.ExitOnError)
	configFile := startFlags.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/photovault/config.yaml)")

	if err := startFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
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
		ServiceName:    "photovault-indexer",
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

	logger.Info("Indexer starting",
		"version", version.Version,
		logger.Worker(agentID),
		logger.Hostname(cfg.Agent.Hostname),
		"server", cfg.Agent.ServerURL)

	api := apiclient.New(cfg.Agent.ServerURL)

	objects, err := objectstore.New(ctx, cfg.ObjectStore, metrics.NewObjectStoreMetrics())
	if err != nil {
		log.Fatalf("Failed to connect to object store: %v", err)
	}

	worker, err := scanner.New(cfg.ScannerWorkerConfig(), api, objects)
	if err != nil {
		log.Fatalf("Failed to create discovery worker: %v", err)
	}

	// Single-node mode: enrich in-process, publishing the same completion
	// events the queue workers would.
	if cfg.Scanner.LocalProcessing {
		b, err := bus.Connect(ctx, &cfg.Bus, metrics.NewBusMetrics())
		if err != nil {
			log.Fatalf("Failed to connect to message bus: %v", err)
		}
		defer func() {
			if err := b.Close(); err != nil {
				logger.Error("bus close error", logger.Err(err))
			}
		}()

		publisher, err := bus.NewPublisher(b)
		if err != nil {
			log.Fatalf("Failed to create bus publisher: %v", err)
		}
		worker.SetLocalProcessor(processor.NewLocalEnricher(publisher, objects, cfg.ThumbnailWorkerConfig()))
		logger.Info("Local processing enabled")
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
		logger.Info("Shutdown signal received, stopping indexer")
		cancel()
		<-workerDone
		logger.Info("Indexer stopped")
	case err := <-workerDone:
		signal.Stop(sigChan)
		if err != nil && ctx.Err() == nil {
			logger.Error("Indexer failed", logger.Err(err))
			os.Exit(1)
		}
		logger.Info("Indexer stopped")
	}
}
