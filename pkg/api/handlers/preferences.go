package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/store"
)

// PreferenceHandler manages selection preferences, the path prefixes that
// drive original scoring.
type PreferenceHandler struct {
	store *store.GORMStore
}

// NewPreferenceHandler creates a selection-preference handler.
func NewPreferenceHandler(st *store.GORMStore) *PreferenceHandler {
	return &PreferenceHandler{store: st}
}

// PreferenceRequest is the create/update payload.
type PreferenceRequest struct {
	Prefix    string `json:"prefix"`
	Priority  int    `json:"priority"`
	SortOrder int    `json:"sortOrder"`
}

// List handles GET /preferences, ordered by match precedence.
func (h *PreferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.store.ListPreferences(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// Create handles POST /preferences.
func (h *PreferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PreferenceRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Prefix == "" {
		writeError(w, r, http.StatusBadRequest, "validation", "prefix is required")
		return
	}
	if req.Priority < 0 || req.Priority > 100 {
		writeError(w, r, http.StatusBadRequest, "validation", "priority must be between 0 and 100")
		return
	}

	id, err := h.store.CreatePreference(r.Context(), &models.SelectionPreference{
		Prefix:    req.Prefix,
		Priority:  req.Priority,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	pref, err := h.store.GetPreference(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pref)
}

// Update handles PUT /preferences/{id}.
func (h *PreferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req PreferenceRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Priority < 0 || req.Priority > 100 {
		writeError(w, r, http.StatusBadRequest, "validation", "priority must be between 0 and 100")
		return
	}

	pref, err := h.store.GetPreference(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if req.Prefix != "" {
		pref.Prefix = req.Prefix
	}
	pref.Priority = req.Priority
	pref.SortOrder = req.SortOrder

	if err := h.store.UpdatePreference(r.Context(), pref); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

// Delete handles DELETE /preferences/{id}.
func (h *PreferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePreference(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
