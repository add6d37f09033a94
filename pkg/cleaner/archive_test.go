package cleaner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrashPathMirrorsScanRootLayout(t *testing.T) {
	got := TrashPath("/trash", "/photos", "/photos/2023/summer/a.jpg")
	assert.Equal(t, filepath.Join("/trash", "2023", "summer", "a.jpg"), got)
}

func TestTrashPathWithoutRootFallsBackToAbsolute(t *testing.T) {
	got := TrashPath("/trash", "", "/somewhere/else/b.jpg")
	assert.Equal(t, filepath.Join("/trash", "somewhere", "else", "b.jpg"), got)
}

func TestTrashPathSiblingRootDoesNotMatch(t *testing.T) {
	// /photos-backup is not under /photos; the relative part must keep
	// the full path.
	got := TrashPath("/trash", "", "/photos-backup/a.jpg")
	assert.Equal(t, filepath.Join("/trash", "photos-backup", "a.jpg"), got)
}

func TestMoveFileRenames(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "dst.jpg")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0o644))

	require.NoError(t, moveFile(src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source must be gone")
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestMoveFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := moveFile(filepath.Join(dir, "nope.jpg"), filepath.Join(dir, "dst.jpg"))
	assert.Error(t, err)
}
