package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/store"
)

// HiddenHandler manages hide rules. Creating a rule sweeps existing rows;
// deleting it unhides the rows it claimed.
type HiddenHandler struct {
	store *store.GORMStore
}

// NewHiddenHandler creates a hide-rule handler.
func NewHiddenHandler(st *store.GORMStore) *HiddenHandler {
	return &HiddenHandler{store: st}
}

// ListFolders handles GET /hidden-folders.
func (h *HiddenHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.store.ListHiddenFolders(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

// CreateFolder handles POST /hidden-folders.
func (h *HiddenHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !filepath.IsAbs(req.Path) {
		writeError(w, r, http.StatusBadRequest, "validation", "path must be absolute")
		return
	}

	id, err := h.store.CreateHiddenFolder(r.Context(), &models.HiddenFolder{Path: req.Path})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// DeleteFolder handles DELETE /hidden-folders/{id}.
func (h *HiddenHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteHiddenFolder(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSizeRules handles GET /hidden-size-rules.
func (h *HiddenHandler) ListSizeRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.ListHiddenSizeRules(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// CreateSizeRule handles POST /hidden-size-rules.
func (h *HiddenHandler) CreateSizeRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxSize int64  `json:"maxSize"`
		Label   string `json:"label"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.MaxSize <= 0 {
		writeError(w, r, http.StatusBadRequest, "validation", "maxSize must be positive")
		return
	}

	id, err := h.store.CreateHiddenSizeRule(r.Context(), &models.HiddenSizeRule{
		MaxSize: req.MaxSize,
		Label:   req.Label,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// DeleteSizeRule handles DELETE /hidden-size-rules/{id}.
func (h *HiddenHandler) DeleteSizeRule(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteHiddenSizeRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
