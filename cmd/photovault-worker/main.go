package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/internal/telemetry"
	"github.com/marmos91/photovault/pkg/bus"
	"github.com/marmos91/photovault/pkg/config"
	"github.com/marmos91/photovault/pkg/metrics"
	"github.com/marmos91/photovault/pkg/objectstore"
	"github.com/marmos91/photovault/pkg/processor"
	"github.com/marmos91/photovault/pkg/version"

	// Import prometheus metrics to register init() functions
	_ "github.com/marmos91/photovault/pkg/metrics/prometheus"
)

const usage = `PhotoVault Worker - Queue processing agent

Usage:
  photovault-worker <command> [flags]

Commands:
  start    Start the processing worker
  version  Show version information

Flags:
  --config string    Path to config file (default: $XDG_CONFIG_HOME/photovault/config.yaml)
  --role string      Which queues to work: metadata, thumbnail or all (default: all)

The worker consumes processing jobs from RabbitMQ, pulls the image bytes
from the object store scratch buckets and publishes completion events back
to the server. Run as many instances as the queues need; deliveries are
distributed by the broker.

Examples:
  photovault-worker start
  photovault-worker start --role thumbnail
  photovault-worker start --config /etc/photovault/config.yaml --role metadata
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
		fmt.Printf("photovault-worker %s (commit: %s, built: %s)\n", info.Version, info.Commit, info.Date)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runStart() {
	startFlags := flag.NewFlagSet("start", flag.ExitOnError)
	configFile := startFlags.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/photovault/config.yaml)")
	role := startFlags.String("role", "all", "Which queues to work: metadata, thumbnail or all")

	if err := startFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}
	if *role != "metadata" && *role != "thumbnail" && *role != "all" {
		log.Fatalf("Invalid role %q: must be metadata, thumbnail or all", *role)
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
		ServiceName:    "photovault-worker",
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

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		server := metrics.NewServer(cfg.Metrics.Port)
		go func() {
			logger.Info("Metrics server listening", "port", cfg.Metrics.Port)
			if err := server.ListenAndServe(); err != nil {
				logger.Error("metrics server failed", logger.Err(err))
			}
		}()
	}

	logger.Info("Worker starting", "version", version.Version, "role", *role)

	objects, err := objectstore.New(ctx, cfg.ObjectStore, metrics.NewObjectStoreMetrics())
	if err != nil {
		log.Fatalf("Failed to connect to object store: %v", err)
	}

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

	var wg sync.WaitGroup
	procMetrics := metrics.NewProcessorMetrics()

	if *role == "metadata" || *role == "all" {
		worker := processor.NewMetadataWorker(b, publisher, objects, procMetrics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("metadata worker stopped", logger.Err(err))
			}
		}()
		logger.Info("Metadata extraction enabled", logger.Queue(bus.QueueMetadataExtract))
	}

	if *role == "thumbnail" || *role == "all" {
		worker := processor.NewThumbnailWorker(b, publisher, objects, cfg.ThumbnailWorkerConfig(), procMetrics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("thumbnail worker stopped", logger.Err(err))
			}
		}()
		logger.Info("Thumbnail generation enabled", logger.Queue(bus.QueueThumbnailGenerate))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	signal.Stop(sigChan)

	logger.Info("Shutdown signal received, stopping worker")
	cancel()
	wg.Wait()
	logger.Info("Worker stopped")
}
