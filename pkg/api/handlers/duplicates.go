package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/duplicates"
	"github.com/marmos91/photovault/pkg/hub"
	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/store"
)

// DuplicateHandler serves duplicate groups: browsing, original selection and
// cleaner-job queueing.
type DuplicateHandler struct {
	store      *store.GORMStore
	selection  *duplicates.Service
	supervisor *hub.Supervisor
}

// NewDuplicateHandler creates a duplicate-group handler.
func NewDuplicateHandler(st *store.GORMStore, selection *duplicates.Service, supervisor *hub.Supervisor) *DuplicateHandler {
	return &DuplicateHandler{store: st, selection: selection, supervisor: supervisor}
}

// List handles GET /duplicates.
func (h *DuplicateHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.GroupFilter{}
	filter.Page, filter.PerPage = parsePage(r, 50, 200)

	if v := r.URL.Query().Get("status"); v != "" {
		status := models.GroupStatus(v)
		if !status.Valid() {
			writeError(w, r, http.StatusBadRequest, "validation", "unknown group status "+v)
			return
		}
		filter.Status = status
	}

	groups, total, err := h.store.ListGroups(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page{
		Items:   groups,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	})
}

// groupDetail inlines the current score ranking next to the group so the UI
// can explain a proposed selection.
type groupDetail struct {
	*models.DuplicateGroup
	Scores []duplicates.ScoreBreakdown `json:"scores,omitempty"`
}

// Get handles GET /duplicates/{id}.
func (h *DuplicateHandler) Get(w http.ResponseWriter, r *http.Request) {
	group, err := h.store.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	detail := groupDetail{DuplicateGroup: group}
	if result, serr := h.selection.ScoreGroup(r.Context(), group.ID); serr == nil {
		detail.Scores = result.Scores
	}
	writeJSON(w, http.StatusOK, detail)
}

// SetOriginal handles PUT /duplicates/{id}/original, the operator's explicit
// keeper choice. The group moves to validated.
func (h *DuplicateHandler) SetOriginal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID string `json:"fileId"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}

	groupID := chi.URLParam(r, "id")
	if err := h.selection.SetOriginal(r.Context(), groupID, req.FileID); err != nil {
		respondError(w, r, err)
		return
	}

	group, err := h.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// AutoSelect handles POST /duplicates/{id}/auto-select. A scoring conflict
// answers 409 and leaves the group pending.
func (h *DuplicateHandler) AutoSelect(w http.ResponseWriter, r *http.Request) {
	result, err := h.selection.AutoSelectOriginal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if result.Conflict {
		writeError(w, r, http.StatusConflict, "selectionConflict",
			"top scores sit within the conflict threshold")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AutoSelectAll handles POST /duplicates/auto-select-all.
func (h *DuplicateHandler) AutoSelectAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.selection.AutoSelectAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// DeleteNonOriginals handles DELETE /duplicates/{id}/non-originals, queueing
// a cleaner job for every live non-original member. The job is dispatched to
// a connected cleaner when one exists; otherwise it waits for the next
// worker reconnect.
func (h *DuplicateHandler) DeleteNonOriginals(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dryRun") == "true"

	job, err := h.selection.QueueForDeletion(r.Context(), chi.URLParam(r, "id"), dryRun)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.supervisor.DispatchJob(r.Context(), job); err != nil {
		if !errors.Is(err, hub.ErrNoWorker) {
			logger.Warn("job dispatch failed", logger.JobID(job.ID), logger.Err(err))
		} else {
			logger.Info("no cleaner connected; job waits for reconnect",
				logger.JobID(job.ID))
		}
	}
	writeJSON(w, http.StatusAccepted, job)
}
