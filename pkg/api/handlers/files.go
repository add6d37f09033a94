// Package handlers contains the HTTP handlers for the PhotoVault REST API.
//
// Handlers are grouped per resource, constructed with their dependencies and
// mounted by the router. Every error response uses the shared envelope
// written by respondError.
package handlers

import (
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/hub"
	"github.com/marmos91/photovault/pkg/ingest"
	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/objectstore"
	"github.com/marmos91/photovault/pkg/store"
)

// FileHandler serves the indexed-file surface: browsing, thumbnail and
// content streaming, batch ingest, statistics and reprocessing.
type FileHandler struct {
	store      *store.GORMStore
	objects    *objectstore.Client
	ingest     *ingest.Service
	supervisor *hub.Supervisor
}

// NewFileHandler creates a file handler. The object store client may be nil,
// in which case thumbnail streaming answers 503.
func NewFileHandler(st *store.GORMStore, objects *objectstore.Client, ingestSvc *ingest.Service, supervisor *hub.Supervisor) *FileHandler {
	return &FileHandler{
		store:      st,
		objects:    objects,
		ingest:     ingestSvc,
		supervisor: supervisor,
	}
}

// List handles GET /files.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.FileFilter{
		ScanDirectoryID: q.Get("scanDirectoryId"),
		Search:          q.Get("search"),
		IncludeHidden:   q.Get("includeHidden") == "true",
		IncludeDeleted:  q.Get("includeDeleted") == "true",
	}
	filter.Page, filter.PerPage = parsePage(r, 100, 500)

	if v := q.Get("hasDuplicates"); v != "" {
		b := v == "true"
		filter.HasDuplicates = &b
	}
	if v := q.Get("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "validation", "from must be RFC 3339")
			return
		}
		filter.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "validation", "to must be RFC 3339")
			return
		}
		filter.To = &to
	}

	files, total, err := h.store.ListFiles(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page{
		Items:   files,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	})
}

// Get handles GET /files/{id}.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	file, err := h.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// Thumbnail handles GET /files/{id}/thumbnail, streaming the derivative JPEG
// from the object store.
func (h *FileHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	file, err := h.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if file.ThumbnailKey == nil {
		writeError(w, r, http.StatusNotFound, "notFound", "thumbnail not generated yet")
		return
	}
	if h.objects == nil {
		writeError(w, r, http.StatusServiceUnavailable, "storageUnavailable", "object store not configured")
		return
	}

	rc, err := h.objects.Get(r.Context(), objectstore.BucketThumbnails, *file.ThumbnailKey)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		logger.Debug("thumbnail stream interrupted",
			logger.FileID(file.ID), logger.Err(err))
	}
}

// Content handles GET /files/{id}/content. The original bytes live on the
// worker host; they are served directly only when this process runs on the
// same host as the file's scan directory, otherwise the endpoint reports the
// missing worker tunnel.
func (h *FileHandler) Content(w http.ResponseWriter, r *http.Request) {
	file, err := h.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	dir, err := h.store.GetScanDirectory(r.Context(), file.ScanDirectoryID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if hostname, herr := os.Hostname(); herr == nil && hostname == dir.Hostname {
		f, oerr := os.Open(file.Path)
		if oerr == nil {
			defer f.Close()
			w.Header().Set("Content-Type", "application/octet-stream")
			http.ServeContent(w, r, file.Name, file.FileModifiedAt, f)
			return
		}
		logger.Warn("local content open failed",
			logger.FileID(file.ID), logger.Path(file.Path), logger.Err(oerr))
	}

	writeError(w, r, http.StatusServiceUnavailable, "workerUnavailable",
		"file bytes live on "+dir.Hostname+" and no worker tunnel is connected")
}

// Batch handles POST /files/batch, the worker-facing ingest endpoint.
func (h *FileHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req ingest.BatchRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	resp, err := h.ingest.IngestBatch(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /files/stats.
func (h *FileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.FileStats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ReprocessRequest selects files to re-enrich, either explicitly by id or by
// a named filter over the live row set.
type ReprocessRequest struct {
	FileIDs []string `json:"fileIds,omitempty"`
	Filter  string   `json:"filter,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// ReprocessResponse reports how many reprocess commands went out.
type ReprocessResponse struct {
	Requested int `json:"requested"`
}

// Reprocess handles POST /files/reprocess. Commands are routed over the hub
// to the discovery worker owning each path.
func (h *FileHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	var req ReprocessRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	var files []*models.IndexedFile
	for _, id := range req.FileIDs {
		file, err := h.store.GetFile(r.Context(), id)
		if err != nil {
			respondError(w, r, err)
			return
		}
		files = append(files, file)
	}
	if req.Filter != "" {
		matched, err := h.store.ListFilesForReprocess(r.Context(), store.ReprocessFilter(req.Filter), req.Limit)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "validation", err.Error())
			return
		}
		files = append(files, matched...)
	}
	if len(files) == 0 {
		writeError(w, r, http.StatusBadRequest, "validation", "no files matched the reprocess request")
		return
	}

	for i, file := range files {
		if err := h.supervisor.Reprocess(r.Context(), file.ID, file.Path); err != nil {
			if i == 0 {
				respondError(w, r, err)
				return
			}
			logger.Warn("reprocess command failed",
				logger.FileID(file.ID), logger.Err(err))
		}
	}
	writeJSON(w, http.StatusAccepted, ReprocessResponse{Requested: len(files)})
}

// SetHidden handles PUT /files/{id}/hidden.
func (h *FileHandler) SetHidden(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hidden bool `json:"hidden"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := h.store.SetFileHidden(r.Context(), chi.URLParam(r, "id"), req.Hidden); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parsePage reads page and perPage query parameters, applying the same
// defaults and bounds the store uses for the resource.
func parsePage(r *http.Request, def, max int) (pageNum, perPage int) {
	pageNum, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("perPage"))
	if pageNum < 1 {
		pageNum = 1
	}
	if perPage < 1 || perPage > max {
		perPage = def
	}
	return pageNum, perPage
}
