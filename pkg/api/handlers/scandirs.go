package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/hub"
	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/store"
)

// ScanDirHandler manages the scan-directory lifecycle and scan triggering.
type ScanDirHandler struct {
	store      *store.GORMStore
	supervisor *hub.Supervisor
}

// NewScanDirHandler creates a scan-directory handler.
func NewScanDirHandler(st *store.GORMStore, supervisor *hub.Supervisor) *ScanDirHandler {
	return &ScanDirHandler{store: st, supervisor: supervisor}
}

// ScanDirRequest is the create/update payload.
type ScanDirRequest struct {
	Path     string `json:"path"`
	Hostname string `json:"hostname"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

// List handles GET /scan-directories.
func (h *ScanDirHandler) List(w http.ResponseWriter, r *http.Request) {
	dirs, err := h.store.ListScanDirectories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dirs)
}

// Get handles GET /scan-directories/{id}.
func (h *ScanDirHandler) Get(w http.ResponseWriter, r *http.Request) {
	dir, err := h.store.GetScanDirectory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dir)
}

// Create handles POST /scan-directories.
func (h *ScanDirHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ScanDirRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Hostname == "" {
		writeError(w, r, http.StatusBadRequest, "validation", "hostname is required")
		return
	}

	dir := &models.ScanDirectory{
		Path:     req.Path,
		Hostname: req.Hostname,
		Enabled:  req.Enabled == nil || *req.Enabled,
	}
	id, err := h.store.CreateScanDirectory(r.Context(), dir)
	if err != nil {
		respondError(w, r, err)
		return
	}

	created, err := h.store.GetScanDirectory(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /scan-directories/{id}.
func (h *ScanDirHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ScanDirRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	dir, err := h.store.GetScanDirectory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	// The path is the directory's identity; re-registering is a create.
	if req.Path != "" && req.Path != dir.Path {
		writeError(w, r, http.StatusBadRequest, "validation", "path cannot be changed")
		return
	}
	if req.Hostname != "" {
		dir.Hostname = req.Hostname
	}
	if req.Enabled != nil {
		dir.Enabled = *req.Enabled
	}

	if err := h.store.UpdateScanDirectory(r.Context(), dir); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dir)
}

// Delete handles DELETE /scan-directories/{id}. Removing a directory drops
// its indexed rows with it.
func (h *ScanDirHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteScanDirectory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Scan handles POST /scan-directories/{id}/scan, asking the directory's
// discovery worker to start a pass.
func (h *ScanDirHandler) Scan(w http.ResponseWriter, r *http.Request) {
	dir, err := h.store.GetScanDirectory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.supervisor.TriggerScan(r.Context(), dir); err != nil {
		if errors.Is(err, hub.ErrNoWorker) {
			respondError(w, r, err)
			return
		}
		logger.Warn("scan trigger partially failed",
			logger.ScanDir(dir.ID), logger.Err(err))
	}
	w.WriteHeader(http.StatusAccepted)
}

// LastScanned handles PATCH /scan-directories/{id}/last-scanned, the worker
// callback after a completed pass.
func (h *ScanDirHandler) LastScanned(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LastScanAt *time.Time `json:"lastScanAt,omitempty"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	at := time.Now().UTC()
	if req.LastScanAt != nil {
		at = req.LastScanAt.UTC()
	}
	if err := h.store.TouchLastScanned(r.Context(), chi.URLParam(r, "id"), at); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
