package handlers

import (
	"net/http"

	"github.com/marmos91/photovault/pkg/store"
	"github.com/marmos91/photovault/pkg/version"
)

// SystemHandler serves version and health introspection.
type SystemHandler struct {
	store *store.GORMStore
}

// NewSystemHandler creates a system handler. The store may be nil, in which
// case readiness always fails.
func NewSystemHandler(st *store.GORMStore) *SystemHandler {
	return &SystemHandler{store: st}
}

// Version handles GET /version.
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Get())
}

// Liveness handles GET /health. It succeeds whenever the process serves
// requests at all.
func (h *SystemHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "photovault",
	})
}

// Readiness handles GET /health/ready, checking database reachability.
func (h *SystemHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, r, http.StatusServiceUnavailable, "unavailable", "store not initialized")
		return
	}
	sqlDB, err := h.store.DB().DB()
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "unavailable", "database handle unavailable")
		return
	}
	if err := sqlDB.PingContext(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "unavailable", "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
