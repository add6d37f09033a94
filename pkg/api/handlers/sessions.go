package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/photovault/pkg/duplicates"
	"github.com/marmos91/photovault/pkg/models"
)

// SessionHandler exposes the guided duplicate-review workflow.
type SessionHandler struct {
	sessions *duplicates.SessionService
}

// NewSessionHandler creates a review-session handler.
func NewSessionHandler(sessions *duplicates.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Start handles POST /sessions. With resume set, a paused session is
// reactivated instead of creating a new one.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Resume bool `json:"resume"`
	}
	if r.ContentLength > 0 && !decodeJSONBody(w, r, &req) {
		return
	}

	session, err := h.sessions.Start(r.Context(), req.Resume)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// Active handles GET /sessions/active.
func (h *SessionHandler) Active(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Active(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// nextResponse pairs the next unreviewed group with its score ranking.
type nextResponse struct {
	Group  *models.DuplicateGroup      `json:"group"`
	Result *duplicates.SelectionResult `json:"result"`
}

// Next handles POST /sessions/{id}/next, advancing the review cursor.
// Answers 404 with code noUnreviewedGroups when the queue is exhausted.
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	group, result, err := h.sessions.Next(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nextResponse{Group: group, Result: result})
}

// Propose handles POST /sessions/{id}/propose, marking a file as the
// proposed original.
func (h *SessionHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID string `json:"groupId"`
		FileID  string `json:"fileId"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := h.sessions.Propose(r.Context(), chi.URLParam(r, "id"), req.GroupID, req.FileID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /sessions/{id}/validate, confirming the group's
// proposed original.
func (h *SessionHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID string `json:"groupId"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := h.sessions.Validate(r.Context(), chi.URLParam(r, "id"), req.GroupID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Skip handles POST /sessions/{id}/skip.
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID string `json:"groupId"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := h.sessions.Skip(r.Context(), chi.URLParam(r, "id"), req.GroupID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pause handles POST /sessions/{id}/pause.
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Pause(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Complete handles POST /sessions/{id}/complete.
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Complete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
