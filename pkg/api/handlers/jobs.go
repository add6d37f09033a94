package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/hub"
	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/store"
)

// JobHandler exposes cleaner jobs: inspection, cancellation and retry.
type JobHandler struct {
	store      *store.GORMStore
	supervisor *hub.Supervisor
}

// NewJobHandler creates a cleaner-job handler.
func NewJobHandler(st *store.GORMStore, supervisor *hub.Supervisor) *JobHandler {
	return &JobHandler{store: st, supervisor: supervisor}
}

// List handles GET /jobs, newest first, optionally filtered by status.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	var status models.JobStatus
	if v := r.URL.Query().Get("status"); v != "" {
		parsed, err := models.ParseJobStatus(v)
		if err != nil {
			respondError(w, r, err)
			return
		}
		status = parsed
	}

	jobs, err := h.store.ListJobs(r.Context(), status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Get handles GET /jobs/{id} with the per-file breakdown.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Cancel handles POST /jobs/{id}/cancel. The store transition is the source
// of truth; connected cleaners are told to stop as a courtesy.
func (h *JobHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	if err := h.store.UpdateJobStatus(r.Context(), jobID, models.JobStatusCancelled); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.supervisor.CancelJob(r.Context(), jobID); err != nil && !errors.Is(err, hub.ErrNoWorker) {
		logger.Warn("cancel command failed", logger.JobID(jobID), logger.Err(err))
	}
	w.WriteHeader(http.StatusAccepted)
}

// Retry handles POST /jobs/{id}/retry, re-queueing a failed job and
// dispatching it when a cleaner is connected.
func (h *JobHandler) Retry(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	if err := h.store.UpdateJobStatus(r.Context(), jobID, models.JobStatusPending); err != nil {
		respondError(w, r, err)
		return
	}

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.supervisor.DispatchJob(r.Context(), job); err != nil && !errors.Is(err, hub.ErrNoWorker) {
		logger.Warn("job dispatch failed", logger.JobID(jobID), logger.Err(err))
	}
	writeJSON(w, http.StatusAccepted, job)
}
