package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/internal/telemetry"
	"github.com/marmos91/photovault/pkg/api/handlers"
	"github.com/marmos91/photovault/pkg/duplicates"
	"github.com/marmos91/photovault/pkg/hub"
	"github.com/marmos91/photovault/pkg/ingest"
	"github.com/marmos91/photovault/pkg/objectstore"
	"github.com/marmos91/photovault/pkg/store"
)

// Deps carries everything the router mounts. Hub, Supervisor and Registry
// may be nil in single-process test setups; the related routes then answer
// 404.
type Deps struct {
	Store      *store.GORMStore
	Objects    *objectstore.Client
	Ingest     *ingest.Service
	Selection  *duplicates.Service
	Sessions   *duplicates.SessionService
	Hub        *hub.Server
	Supervisor *hub.Supervisor
	Registry   *hub.Registry
}

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// The middleware stack, in order: request id, real ip, request logging,
// panic recovery. REST routes additionally get the trace-id response header
// and a request timeout; the hub upgrade endpoints skip the timeout because
// their connections are long-lived.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	if deps.Hub != nil {
		r.Get("/hubs/indexer", deps.Hub.HandleIndexer)
		r.Get("/hubs/cleaner", deps.Hub.HandleCleaner)
	}

	r.Group(func(r chi.Router) {
		r.Use(traceHeader)
		r.Use(middleware.Timeout(30 * time.Second))

		files := handlers.NewFileHandler(deps.Store, deps.Objects, deps.Ingest, deps.Supervisor)
		scanDirs := handlers.NewScanDirHandler(deps.Store, deps.Supervisor)
		groups := handlers.NewDuplicateHandler(deps.Store, deps.Selection, deps.Supervisor)
		sessions := handlers.NewSessionHandler(deps.Sessions)
		prefs := handlers.NewPreferenceHandler(deps.Store)
		hidden := handlers.NewHiddenHandler(deps.Store)
		jobs := handlers.NewJobHandler(deps.Store, deps.Supervisor)
		system := handlers.NewSystemHandler(deps.Store)

		r.Route("/files", func(r chi.Router) {
			r.Get("/", files.List)
			r.Post("/batch", files.Batch)
			r.Get("/stats", files.Stats)
			r.Post("/reprocess", files.Reprocess)
			r.Get("/{id}", files.Get)
			r.Get("/{id}/thumbnail", files.Thumbnail)
			r.Get("/{id}/content", files.Content)
			r.Put("/{id}/hidden", files.SetHidden)
		})

		r.Route("/scan-directories", func(r chi.Router) {
			r.Get("/", scanDirs.List)
			r.Post("/", scanDirs.Create)
			r.Get("/{id}", scanDirs.Get)
			r.Put("/{id}", scanDirs.Update)
			r.Delete("/{id}", scanDirs.Delete)
			r.Post("/{id}/scan", scanDirs.Scan)
			r.Patch("/{id}/last-scanned", scanDirs.LastScanned)
		})

		r.Route("/duplicates", func(r chi.Router) {
			r.Get("/", groups.List)
			r.Post("/auto-select-all", groups.AutoSelectAll)
			r.Get("/{id}", groups.Get)
			r.Put("/{id}/original", groups.SetOriginal)
			r.Post("/{id}/auto-select", groups.AutoSelect)
			r.Delete("/{id}/non-originals", groups.DeleteNonOriginals)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.Start)
			r.Get("/active", sessions.Active)
			r.Post("/{id}/next", sessions.Next)
			r.Post("/{id}/propose", sessions.Propose)
			r.Post("/{id}/validate", sessions.Validate)
			r.Post("/{id}/skip", sessions.Skip)
			r.Post("/{id}/pause", sessions.Pause)
			r.Post("/{id}/complete", sessions.Complete)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", prefs.List)
			r.Post("/", prefs.Create)
			r.Put("/{id}", prefs.Update)
			r.Delete("/{id}", prefs.Delete)
		})

		r.Route("/hidden-folders", func(r chi.Router) {
			r.Get("/", hidden.ListFolders)
			r.Post("/", hidden.CreateFolder)
			r.Delete("/{id}", hidden.DeleteFolder)
		})

		r.Route("/hidden-size-rules", func(r chi.Router) {
			r.Get("/", hidden.ListSizeRules)
			r.Post("/", hidden.CreateSizeRule)
			r.Delete("/{id}", hidden.DeleteSizeRule)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", jobs.List)
			r.Get("/{id}", jobs.Get)
			r.Post("/{id}/cancel", jobs.Cancel)
			r.Post("/{id}/retry", jobs.Retry)
		})

		if deps.Registry != nil && deps.Supervisor != nil {
			workers := handlers.NewWorkerHandler(deps.Registry, deps.Supervisor)
			r.Route("/workers", func(r chi.Router) {
				r.Get("/", workers.List)
				r.Post("/request-status", workers.RequestStatus)
				r.Post("/pause", workers.Pause)
				r.Post("/resume", workers.Resume)
				r.Post("/cancel", workers.Cancel)
				r.Put("/dry-run", workers.SetDryRun)
			})
		}

		r.Get("/version", system.Version)
		r.Route("/health", func(r chi.Router) {
			r.Get("/", system.Liveness)
			r.Get("/ready", system.Readiness)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// traceHeader stamps X-Trace-Id on every response, preferring the active
// trace context over the request-local identifier.
func traceHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := telemetry.TraceID(r.Context())
		if id == "" {
			id = middleware.GetReqID(r.Context())
		}
		if id != "" {
			w.Header().Set("X-Trace-Id", id)
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger is a custom middleware that logs requests using the internal
// logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			logger.RequestID(requestID),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("API request completed",
			logger.RequestID(requestID),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.DurationMs(float64(time.Since(start).Microseconds())/1000.0),
		)
	})
}
