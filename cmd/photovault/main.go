package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/internal/telemetry"
	"github.com/marmos91/photovault/pkg/api"
	"github.com/marmos91/photovault/pkg/bus"
	"github.com/marmos91/photovault/pkg/config"
	"github.com/marmos91/photovault/pkg/duplicates"
	"github.com/marmos91/photovault/pkg/hub"
	"github.com/marmos91/photovault/pkg/ingest"
	"github.com/marmos91/photovault/pkg/metrics"
	"github.com/marmos91/photovault/pkg/objectstore"
	"github.com/marmos91/photovault/pkg/store"
	"github.com/marmos91/photovault/pkg/version"

	// Import prometheus metrics to register init() functions
	_ "github.com/marmos91/photovault/pkg/metrics/prometheus"
)

const usage = `PhotoVault - Photo deduplication server

Usage:
  photovault <command> [flags]

Commands:
  start    Start the PhotoVault server
  version  Show version information

Flags:
  --config string    Path to config file (default: $XDG_CONFIG_HOME/photovault/config.yaml)

Examples:
  # Start server with default config location
  photovault start

  # Start server with custom config
  photovault start --config /etc/photovault/config.yaml

  # Use environment variables to override config
  PHOTOVAULT_LOGGING_LEVEL=DEBUG photovault start

Environment Variables:
  All configuration options can be overridden using environment variables.
  Format: PHOTOVAULT_<SECTION>_<KEY> (use underscores for nested keys)

  Examples:
    PHOTOVAULT_LOGGING_LEVEL=DEBUG
    PHOTOVAULT_API_PORT=8081
    PHOTOVAULT_DATABASE_DRIVER=postgres
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
		fmt.Printf("photovault %s (commit: %s, built: %s)\n", info.Version, info.Commit, info.Date)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// runStart handles the start subcommand
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
		ServiceName:    "photovault",
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

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "photovault",
		ServiceVersion: version.Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		log.Fatalf("Failed to initialize profiling: %v", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("PhotoVault server starting",
		"version", version.Version,
		"log_level", cfg.Logging.Level,
		"config", configSource(*configFile))

	// Metrics come up before any instrumented component so the constructor
	// indirection hands out live recorders instead of nil.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = metrics.NewServer(cfg.Metrics.Port)
		go func() {
			logger.Info("Metrics server listening", "port", cfg.Metrics.Port)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logger.Err(err))
			}
		}()
	} else {
		logger.Info("Metrics collection disabled")
	}

	st, err := store.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open index database: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("database close error", logger.Err(err))
		}
	}()

	objects, err := objectstore.New(ctx, cfg.ObjectStore, metrics.NewObjectStoreMetrics())
	if err != nil {
		log.Fatalf("Failed to connect to object store: %v", err)
	}
	for _, bucket := range []string{
		objectstore.BucketMetadataImages,
		objectstore.BucketThumbnailImages,
		objectstore.BucketThumbnails,
	} {
		if err := objects.EnsureBucket(ctx, bucket); err != nil {
			log.Fatalf("Failed to ensure bucket %s: %v", bucket, err)
		}
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

	ingestSvc := ingest.NewService(st, publisher, metrics.NewIngestMetrics())

	consumers := ingest.NewConsumers(st, metrics.NewIngestMetrics())
	go func() {
		if err := consumers.Run(ctx, b); err != nil && ctx.Err() == nil {
			logger.Error("completion consumers stopped", logger.Err(err))
		}
	}()

	registry := hub.NewRegistry()
	supervisor := hub.NewSupervisor(st, registry)
	hubServer := hub.NewServer(registry, supervisor)

	selection := duplicates.NewService(st, cfg.Duplicates.ConflictThreshold)
	sessions := duplicates.NewSessionService(st, selection)

	router := api.NewRouter(api.Deps{
		Store:      st,
		Objects:    objects,
		Ingest:     ingestSvc,
		Selection:  selection,
		Sessions:   sessions,
		Hub:        hubServer,
		Supervisor: supervisor,
		Registry:   registry,
	})
	apiServer := api.NewServer(cfg.API, router)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", logger.Err(err))
			os.Exit(1)
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", logger.Err(err))
			os.Exit(1)
		}
		logger.Info("Server stopped")
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", logger.Err(err))
		}
	}
}

// configSource returns a description of where the config was loaded from
func configSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
