package apiclient

import (
	"fmt"
	"net/http"
)

// APIError represents an error envelope returned by the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	TraceID    string `json:"traceId,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsNotFound returns true if the server answered 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsConflict returns true if the server answered 409.
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsSelectionConflict returns true when auto-selection refused to pick an
// original because the top scores sit too close.
func (e *APIError) IsSelectionConflict() bool {
	return e.Code == "selectionConflict"
}

// IsValidationError returns true if the request was rejected as malformed.
func (e *APIError) IsValidationError() bool {
	return e.Code == "validation"
}

// IsWorkerUnavailable returns true when the operation needs a connected
// worker and none is.
func (e *APIError) IsWorkerUnavailable() bool {
	return e.Code == "workerUnavailable"
}

// Retryable reports whether the request may succeed on a retry. Server-side
// failures and missing workers are transient; client errors are not.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}
