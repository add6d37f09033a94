package cleaner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/photovault/pkg/hub"
	"github.com/marmos91/photovault/pkg/models"
)

func newTestWorker(t *testing.T, dryRun bool) *Worker {
	t.Helper()
	w, err := New(Config{
		ServerURL: "http://localhost:8080",
		TrashBase: filepath.Join(t.TempDir(), "trash"),
		DryRun:    dryRun,
	}, nil)
	require.NoError(t, err)
	return w
}

func writeTarget(t *testing.T, content string) (path, hash string, size int64) {
	t.Helper()
	path = filepath.Join(t.TempDir(), "photos", "a.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	sum := sha256.Sum256([]byte(content))
	return path, hex.EncodeToString(sum[:]), int64(len(content))
}

func TestArchiveOneMovesVerifiedFile(t *testing.T) {
	w := newTestWorker(t, false)
	path, hash, size := writeTarget(t, "the photo bytes")
	w.roots = []models.ScanDirectory{{ID: "dir-1", Path: filepath.Dir(path)}}

	result := w.archiveOne(context.Background(), &hub.DeleteFileCommand{
		JobID: "job-1", FileID: "f1", Path: path, Hash: hash, Size: size,
	})

	assert.Equal(t, "deleted", result.Status)
	assert.False(t, result.WasDryRun)
	require.NotNil(t, result.ArchivePath)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "original must be gone")
	data, err := os.ReadFile(*result.ArchivePath)
	require.NoError(t, err)
	assert.Equal(t, "the photo bytes", string(data))
}

func TestArchiveOneDryRunLeavesFile(t *testing.T) {
	w := newTestWorker(t, true)
	path, hash, size := writeTarget(t, "the photo bytes")

	result := w.archiveOne(context.Background(), &hub.DeleteFileCommand{
		JobID: "job-1", FileID: "f1", Path: path, Hash: hash, Size: size,
	})

	assert.Equal(t, "deleted", result.Status)
	assert.True(t, result.WasDryRun)
	require.NotNil(t, result.ArchivePath)

	_, err := os.Stat(path)
	assert.NoError(t, err, "dry run must not touch the file")
	_, err = os.Stat(*result.ArchivePath)
	assert.True(t, os.IsNotExist(err), "dry run must not write the archive")
}

func TestArchiveOneSkipsMissingFile(t *testing.T) {
	w := newTestWorker(t, false)

	result := w.archiveOne(context.Background(), &hub.DeleteFileCommand{
		JobID: "job-1", FileID: "f1", Path: "/gone/a.jpg", Hash: "abc", Size: 3,
	})

	assert.Equal(t, "skipped", result.Status)
	require.NotNil(t, result.Error)
	assert.Contains(t, *result.Error, "no longer exists")
}

func TestArchiveOneSkipsChangedContent(t *testing.T) {
	w := newTestWorker(t, false)
	path, _, size := writeTarget(t, "the photo bytes")

	result := w.archiveOne(context.Background(), &hub.DeleteFileCommand{
		JobID: "job-1", FileID: "f1", Path: path, Hash: "different-hash", Size: size,
	})

	assert.Equal(t, "skipped", result.Status)
	_, err := os.Stat(path)
	assert.NoError(t, err, "changed file must stay put")
}

func TestArchiveOneSkipsChangedSize(t *testing.T) {
	w := newTestWorker(t, false)
	path, hash, size := writeTarget(t, "the photo bytes")

	result := w.archiveOne(context.Background(), &hub.DeleteFileCommand{
		JobID: "job-1", FileID: "f1", Path: path, Hash: hash, Size: size + 1,
	})

	assert.Equal(t, "skipped", result.Status)
}

func TestCommandDryRunForcesSimulation(t *testing.T) {
	// The worker runs live but the job was queued as a dry run.
	w := newTestWorker(t, false)
	path, hash, size := writeTarget(t, "the photo bytes")

	result := w.archiveOne(context.Background(), &hub.DeleteFileCommand{
		JobID: "job-1", FileID: "f1", Path: path, Hash: hash, Size: size, DryRun: true,
	})

	assert.Equal(t, "deleted", result.Status)
	assert.True(t, result.WasDryRun)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestCancelJobMarksAndClears(t *testing.T) {
	w := newTestWorker(t, false)
	require.NoError(t, w.HandleCommand(context.Background(), hub.MethodCancelJob,
		&hub.CancelJobCommand{JobID: "job-1"}))
	assert.True(t, w.isCancelled("job-1"))
	assert.False(t, w.isCancelled("job-2"))
}

func TestSetDryRunIsIgnored(t *testing.T) {
	w := newTestWorker(t, false)
	require.NoError(t, w.HandleCommand(context.Background(), hub.MethodSetDryRun,
		&hub.SetDryRunCommand{DryRun: true}))
	assert.False(t, w.cfg.DryRun, "boot-time configuration wins")
}

func TestCleanerRejectsIndexerCommands(t *testing.T) {
	w := newTestWorker(t, false)
	err := w.HandleCommand(context.Background(), hub.MethodPause, &hub.PauseCommand{})
	assert.Error(t, err)
}

func TestDeleteFilesEnqueuesOneJob(t *testing.T) {
	w := newTestWorker(t, false)
	cmd := &hub.DeleteFilesCommand{Files: []hub.DeleteFileCommand{
		{JobID: "job-1", FileID: "f1"},
		{JobID: "job-1", FileID: "f2"},
	}}
	require.NoError(t, w.HandleCommand(context.Background(), hub.MethodDeleteFiles, cmd))

	job := <-w.jobs
	assert.Equal(t, "job-1", job.jobID)
	assert.Len(t, job.files, 2)
}
