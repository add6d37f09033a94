package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(MethodDeleteFile, &DeleteFileCommand{
		JobID:    "job-1",
		FileID:   "file-1",
		Path:     "/photos/backup/img.jpg",
		Hash:     "abcd",
		Size:     2048,
		Category: "hashDuplicate",
	})
	require.NoError(t, err)

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(raw, &decoded))

	payload, err := DecodePayload(&decoded)
	require.NoError(t, err)

	cmd, ok := payload.(*DeleteFileCommand)
	require.True(t, ok, "payload type %T", payload)
	assert.Equal(t, "job-1", cmd.JobID)
	assert.Equal(t, int64(2048), cmd.Size)
}

func TestClosedMessageSet(t *testing.T) {
	t.Run("UnknownMethodRejectedOnSend", func(t *testing.T) {
		_, err := NewEnvelope("FormatDisk", struct{}{})
		assert.ErrorIs(t, err, ErrUnknownMethod)
	})

	t.Run("UnknownMethodRejectedOnReceive", func(t *testing.T) {
		_, err := DecodePayload(&Envelope{Method: "FormatDisk"})
		assert.ErrorIs(t, err, ErrUnknownMethod)
	})

	t.Run("EveryMethodDecodes", func(t *testing.T) {
		methods := []string{
			MethodDeleteFile, MethodDeleteFiles, MethodCancelJob,
			MethodSetDryRun, MethodRequestStatus, MethodReprocessFile,
			MethodPause, MethodResume, MethodCancel, MethodTriggerScan,
			MethodReportStatus, MethodReportDeleteProgress,
			MethodReportDeleteComplete, MethodReportJobComplete,
		}
		for _, m := range methods {
			_, err := DecodePayload(&Envelope{Method: m})
			assert.NoError(t, err, "method %s", m)
		}
	})

	t.Run("EmptyPayloadAllowed", func(t *testing.T) {
		payload, err := DecodePayload(&Envelope{Method: MethodPause})
		require.NoError(t, err)
		_, ok := payload.(*PauseCommand)
		assert.True(t, ok)
	})
}

func TestStatusPayload(t *testing.T) {
	env, err := NewEnvelope(MethodReportStatus, &WorkerStatus{
		State:            StateScanning,
		CurrentDirectory: "/photos/2024",
		FilesProcessed:   1200,
		ScanRoots:        []string{"/photos"},
	})
	require.NoError(t, err)

	payload, err := DecodePayload(env)
	require.NoError(t, err)

	status, ok := payload.(*WorkerStatus)
	require.True(t, ok)
	assert.Equal(t, StateScanning, status.State)
	assert.Equal(t, []string{"/photos"}, status.ScanRoots)
}

func TestPathUnderRoot(t *testing.T) {
	assert.True(t, pathUnderRoot("/photos/a/img.jpg", "/photos"))
	assert.True(t, pathUnderRoot("/photos", "/photos/"))
	assert.False(t, pathUnderRoot("/photos-backup/img.jpg", "/photos"))
	assert.False(t, pathUnderRoot("/photos/a/img.jpg", ""))
}
