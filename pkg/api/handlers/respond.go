package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/internal/telemetry"
	"github.com/marmos91/photovault/pkg/duplicates"
	"github.com/marmos91/photovault/pkg/hub"
	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/objectstore"
)

// ErrorBody is the envelope carried by every non-2xx response.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	TraceID string `json:"traceId"`
}

// traceID returns the active trace id, falling back to the request-local
// identifier when tracing is disabled.
func traceID(r *http.Request) string {
	if id := telemetry.TraceID(r.Context()); id != "" {
		return id
	}
	return middleware.GetReqID(r.Context())
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.Err(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorBody{
		Message: message,
		Code:    code,
		TraceID: traceID(r),
	})
}

// respondError maps domain sentinel errors onto HTTP statuses and public
// error codes. Unmapped errors become an opaque 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isNotFound(err):
		writeError(w, r, http.StatusNotFound, "notFound", err.Error())
	case errors.Is(err, models.ErrSessionActive):
		writeError(w, r, http.StatusConflict, "sessionActive", err.Error())
	case errors.Is(err, models.ErrSelectionConflict):
		writeError(w, r, http.StatusConflict, "selectionConflict", err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		writeError(w, r, http.StatusConflict, "invalidTransition", err.Error())
	case isConflict(err):
		writeError(w, r, http.StatusConflict, "conflict", err.Error())
	case isValidation(err):
		writeError(w, r, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, duplicates.ErrNoUnreviewedGroups):
		writeError(w, r, http.StatusNotFound, "noUnreviewedGroups", err.Error())
	case errors.Is(err, hub.ErrNoWorker):
		writeError(w, r, http.StatusServiceUnavailable, "workerUnavailable", err.Error())
	default:
		logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path, logger.Err(err))
		writeError(w, r, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func isNotFound(err error) bool {
	for _, target := range []error{
		models.ErrFileNotFound,
		models.ErrScanDirectoryNotFound,
		models.ErrGroupNotFound,
		models.ErrPreferenceNotFound,
		models.ErrSessionNotFound,
		models.ErrNoActiveSession,
		models.ErrJobNotFound,
		models.ErrJobFileNotFound,
		models.ErrHiddenFolderNotFound,
		models.ErrHiddenSizeRuleNotFound,
		objectstore.ErrObjectNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isConflict(err error) bool {
	for _, target := range []error{
		models.ErrDuplicateScanDir,
		models.ErrDuplicatePath,
		models.ErrDuplicatePreference,
		models.ErrDuplicateHiddenFolder,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isValidation(err error) bool {
	for _, target := range []error{
		models.ErrScanPathNotAbsolute,
		models.ErrFileNotInGroup,
		models.ErrNoOriginalSelected,
		models.ErrInvalidGroupStatus,
		models.ErrInvalidJobStatus,
		models.ErrInvalidJobFileStatus,
		models.ErrInvalidSessionStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// decodeJSONBody decodes the request body into v, answering 400 on failure.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "validation", "invalid request body")
		return false
	}
	return true
}

// page is the envelope for paginated list responses.
type page struct {
	Items   any   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"perPage"`
}
