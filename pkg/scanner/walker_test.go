package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), "aaa")
	writeFile(t, filepath.Join(root, "b.txt"), "not a photo")
	writeFile(t, filepath.Join(root, ".hidden.jpg"), "dot")
	writeFile(t, filepath.Join(root, "@eaDir", "x.jpg"), "nas junk")
	writeFile(t, filepath.Join(root, "sub", "c.jpg"), "ccc")
	writeFile(t, filepath.Join(root, "sub", "deep", "d.jpg"), "ddd")
	return root
}

func collect(t *testing.T, w *Walker, root string) []string {
	t.Helper()
	var paths []string
	err := w.Walk(context.Background(), root, Visitor{
		File: func(e Entry) error {
			paths = append(paths, e.Path)
			return nil
		},
	})
	require.NoError(t, err)
	return paths
}

func TestWalkerYieldsSupportedFilesInNameOrder(t *testing.T) {
	root := buildTree(t)
	w := NewWalker(Options{SkipHidden: true})

	paths := collect(t, w, root)
	assert.Equal(t, []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "sub", "c.jpg"),
		filepath.Join(root, "sub", "deep", "d.jpg"),
	}, paths)
}

func TestWalkerKeepsDotfilesWhenConfigured(t *testing.T) {
	root := buildTree(t)
	w := NewWalker(Options{SkipHidden: false})

	paths := collect(t, w, root)
	assert.Contains(t, paths, filepath.Join(root, ".hidden.jpg"))
}

func TestWalkerExcludedDirsNeverDescended(t *testing.T) {
	root := buildTree(t)
	w := NewWalker(Options{})

	for _, p := range collect(t, w, root) {
		assert.NotContains(t, p, "@eaDir")
	}
}

func TestWalkerMaxDepth(t *testing.T) {
	root := buildTree(t)
	w := NewWalker(Options{SkipHidden: true, MaxDepth: 1})

	paths := collect(t, w, root)
	assert.Equal(t, []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "sub", "c.jpg"),
	}, paths)
}

func TestWalkerMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.jpg"), "tiny")
	writeFile(t, filepath.Join(root, "big.jpg"), "way too many bytes")

	w := NewWalker(Options{MaxFileSize: 8})
	paths := collect(t, w, root)
	assert.Equal(t, []string{filepath.Join(root, "small.jpg")}, paths)
}

func TestWalkerSkipsSymlinksByDefault(t *testing.T) {
	root := buildTree(t)
	target := filepath.Join(root, "a.jpg")
	link := filepath.Join(root, "link.jpg")
	require.NoError(t, os.Symlink(target, link))

	w := NewWalker(Options{SkipHidden: true})
	assert.NotContains(t, collect(t, w, root), link)

	follow := NewWalker(Options{SkipHidden: true, FollowSymlinks: true})
	assert.Contains(t, collect(t, follow, root), link)
}

func TestWalkerEntrySizesAndTimes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), "four")

	var got Entry
	w := NewWalker(Options{})
	err := w.Walk(context.Background(), root, Visitor{
		File: func(e Entry) error {
			got = e
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", got.Name)
	assert.Equal(t, ".jpg", got.Ext)
	assert.Equal(t, int64(4), got.Size)
	assert.False(t, got.ModTime.IsZero())
}

func TestWalkerMissingRoot(t *testing.T) {
	w := NewWalker(Options{})
	err := w.Walk(context.Background(), "/definitely/not/there", Visitor{})
	assert.Error(t, err)
}

func TestWalkerCancellation(t *testing.T) {
	root := buildTree(t)
	ctx, cancel := context.WithCancel(context.Background())

	w := NewWalker(Options{})
	err := w.Walk(ctx, root, Visitor{
		File: func(Entry) error {
			cancel()
			return nil
		},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
