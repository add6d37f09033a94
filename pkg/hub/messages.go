// Package hub implements the persistent control channel between the
// ingestion service and its workers: a WebSocket server with a connection
// registry on one side, a reconnecting client on the other, and the job
// supervisor that drives archive work over it.
package hub

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind distinguishes the two worker populations on the hub.
type Kind string

const (
	KindIndexer Kind = "indexer"
	KindCleaner Kind = "cleaner"
)

// WorkerState is the coarse state a worker reports in its status record.
type WorkerState string

const (
	StateIdle         WorkerState = "idle"
	StateScanning     WorkerState = "scanning"
	StateProcessing   WorkerState = "processing"
	StateReprocessing WorkerState = "reprocessing"
	StatePaused       WorkerState = "paused"
	StateError        WorkerState = "error"
	StateDisconnected WorkerState = "disconnected"
)

// Server -> worker command methods.
const (
	MethodDeleteFile    = "DeleteFile"
	MethodDeleteFiles   = "DeleteFiles"
	MethodCancelJob     = "CancelJob"
	MethodSetDryRun     = "SetDryRun"
	MethodRequestStatus = "RequestStatus"
	MethodReprocessFile = "ReprocessFile"
	MethodPause         = "Pause"
	MethodResume        = "Resume"
	MethodCancel        = "Cancel"
	MethodTriggerScan   = "TriggerScan"
)

// Worker -> server status methods.
const (
	MethodReportStatus         = "ReportStatus"
	MethodReportDeleteProgress = "ReportDeleteProgress"
	MethodReportDeleteComplete = "ReportDeleteComplete"
	MethodReportJobComplete    = "ReportJobComplete"
)

// ErrUnknownMethod rejects messages outside the closed method set.
var ErrUnknownMethod = errors.New("unknown hub method")

// Envelope is the wire frame for every hub message.
type Envelope struct {
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DeleteFileCommand orders the cleaner to archive one file. The snapshot
// fields let the worker verify the path still carries the claimed content.
type DeleteFileCommand struct {
	JobID    string `json:"jobId"`
	FileID   string `json:"fileId"`
	Path     string `json:"path"`
	Hash     string `json:"hash"`
	Size     int64  `json:"size"`
	Category string `json:"category"`
	DryRun   bool   `json:"dryRun"`
}

// DeleteFilesCommand batches delete commands for one job.
type DeleteFilesCommand struct {
	Files []DeleteFileCommand `json:"files"`
}

// CancelJobCommand aborts the named job on the worker.
type CancelJobCommand struct {
	JobID string `json:"jobId"`
}

// SetDryRunCommand toggles the worker's dry-run mode.
type SetDryRunCommand struct {
	DryRun bool `json:"dryRun"`
}

// RequestStatusCommand asks the worker for an immediate full status report.
type RequestStatusCommand struct{}

// ReprocessFileCommand asks an indexer to re-read and re-submit one file.
type ReprocessFileCommand struct {
	FileID string `json:"fileId"`
	Path   string `json:"path"`
}

// PauseCommand suspends scanning.
type PauseCommand struct{}

// ResumeCommand resumes a paused scan.
type ResumeCommand struct{}

// CancelCommand aborts the current scan.
type CancelCommand struct{}

// TriggerScanCommand starts a scan of the named directory.
type TriggerScanCommand struct {
	ScanDirectoryID string `json:"scanDirectoryId"`
	Path            string `json:"path"`
}

// WorkerStatus is the full status record a worker pushes on heartbeat and
// on every state change. Indexer-only fields stay zero for cleaners.
type WorkerStatus struct {
	State                     WorkerState `json:"state"`
	CurrentDirectory          string      `json:"currentDirectory,omitempty"`
	FilesProcessed            int64       `json:"filesProcessed"`
	ErrorCount                int64       `json:"errorCount"`
	FilesPerSecond            float64     `json:"filesPerSecond,omitempty"`
	BytesPerSecond            float64     `json:"bytesPerSecond,omitempty"`
	EstimatedSecondsRemaining float64     `json:"estimatedSecondsRemaining,omitempty"`
	PendingDirectories        []string    `json:"pendingDirectories,omitempty"`

	// ScanRoots lets the hub route reprocess commands to the indexer that
	// can actually see the path.
	ScanRoots []string `json:"scanRoots,omitempty"`

	// ActiveJobID is set while a cleaner is working a job.
	ActiveJobID string `json:"activeJobId,omitempty"`
}

// DeleteProgress reports a per-file phase change during archiving.
type DeleteProgress struct {
	JobID  string `json:"jobId"`
	FileID string `json:"fileId"`
	Phase  string `json:"phase"`
}

// DeleteResult is the terminal outcome for one commanded file.
type DeleteResult struct {
	JobID       string  `json:"jobId"`
	FileID      string  `json:"fileId"`
	Status      string  `json:"status"` // deleted, failed, or skipped
	ArchivePath *string `json:"archivePath,omitempty"`
	WasDryRun   bool    `json:"wasDryRun"`
	Error       *string `json:"error,omitempty"`
}

// JobCompletion closes out a job with its final counters.
type JobCompletion struct {
	JobID     string `json:"jobId"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

// payloadPrototypes is the closed message set. Anything else is rejected.
var payloadPrototypes = map[string]func() any{
	MethodDeleteFile:    func() any { return &DeleteFileCommand{} },
	MethodDeleteFiles:   func() any { return &DeleteFilesCommand{} },
	MethodCancelJob:     func() any { return &CancelJobCommand{} },
	MethodSetDryRun:     func() any { return &SetDryRunCommand{} },
	MethodRequestStatus: func() any { return &RequestStatusCommand{} },
	MethodReprocessFile: func() any { return &ReprocessFileCommand{} },
	MethodPause:         func() any { return &PauseCommand{} },
	MethodResume:        func() any { return &ResumeCommand{} },
	MethodCancel:        func() any { return &CancelCommand{} },
	MethodTriggerScan:   func() any { return &TriggerScanCommand{} },

	MethodReportStatus:         func() any { return &WorkerStatus{} },
	MethodReportDeleteProgress: func() any { return &DeleteProgress{} },
	MethodReportDeleteComplete: func() any { return &DeleteResult{} },
	MethodReportJobComplete:    func() any { return &JobCompletion{} },
}

// NewEnvelope wraps a payload for sending.
func NewEnvelope(method string, payload any) (*Envelope, error) {
	if _, ok := payloadPrototypes[method]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", method, err)
	}
	return &Envelope{Method: method, Payload: body}, nil
}

// DecodePayload returns the typed payload for an envelope, rejecting
// methods outside the closed set.
func DecodePayload(env *Envelope) (any, error) {
	proto, ok := payloadPrototypes[env.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, env.Method)
	}
	payload := proto()
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, payload); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", env.Method, err)
		}
	}
	return payload, nil
}
