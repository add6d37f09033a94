package handlers

import (
	"net/http"

	"github.com/marmos91/photovault/pkg/hub"
)

// WorkerHandler exposes the hub's view of connected workers and the
// fleet-wide control commands.
type WorkerHandler struct {
	registry   *hub.Registry
	supervisor *hub.Supervisor
}

// NewWorkerHandler creates a worker handler.
func NewWorkerHandler(registry *hub.Registry, supervisor *hub.Supervisor) *WorkerHandler {
	return &WorkerHandler{registry: registry, supervisor: supervisor}
}

// List handles GET /workers. Disconnected workers remain listed with their
// last known status until the process restarts.
func (h *WorkerHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Workers())
}

// RequestStatus handles POST /workers/request-status, asking every connected
// worker for a fresh report.
func (h *WorkerHandler) RequestStatus(w http.ResponseWriter, r *http.Request) {
	h.supervisor.RequestStatus(r.Context())
	w.WriteHeader(http.StatusAccepted)
}

// Pause handles POST /workers/pause.
func (h *WorkerHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.supervisor.PauseIndexers(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Resume handles POST /workers/resume.
func (h *WorkerHandler) Resume(w http.ResponseWriter, r *http.Request) {
	if err := h.supervisor.ResumeIndexers(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Cancel handles POST /workers/cancel, aborting the current scan pass.
func (h *WorkerHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.supervisor.CancelIndexers(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SetDryRun handles PUT /workers/dry-run. Cleaners accept the command but
// honor their boot-time configuration.
func (h *WorkerHandler) SetDryRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DryRun bool `json:"dryRun"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := h.supervisor.SetDryRun(r.Context(), req.DryRun); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
