package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCursor(t *testing.T) *Cursor {
	t.Helper()
	c, err := OpenCursor("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCursorUnknownPath(t *testing.T) {
	c := openTestCursor(t)
	_, ok := c.Unchanged("/photos/a.jpg", 100, time.Now())
	assert.False(t, ok)
}

func TestCursorAdvanceThenSkip(t *testing.T) {
	c := openTestCursor(t)
	mod := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, c.Advance([]CursorEntry{
		{Path: "/photos/a.jpg", Hash: "abc", Size: 100, ModTime: mod},
		{Path: "/photos/b.jpg", Hash: "def", Size: 200, ModTime: mod},
	}))

	hash, ok := c.Unchanged("/photos/a.jpg", 100, mod)
	require.True(t, ok)
	assert.Equal(t, "abc", hash)

	hash, ok = c.Unchanged("/photos/b.jpg", 200, mod)
	require.True(t, ok)
	assert.Equal(t, "def", hash)
}

func TestCursorDetectsChange(t *testing.T) {
	c := openTestCursor(t)
	mod := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, c.Advance([]CursorEntry{
		{Path: "/photos/a.jpg", Hash: "abc", Size: 100, ModTime: mod},
	}))

	_, ok := c.Unchanged("/photos/a.jpg", 101, mod)
	assert.False(t, ok, "size change must re-ingest")

	_, ok = c.Unchanged("/photos/a.jpg", 100, mod.Add(time.Second))
	assert.False(t, ok, "mtime change must re-ingest")
}

func TestCursorForget(t *testing.T) {
	c := openTestCursor(t)
	mod := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, c.Advance([]CursorEntry{
		{Path: "/photos/a.jpg", Hash: "abc", Size: 100, ModTime: mod},
	}))

	require.NoError(t, c.Forget("/photos/a.jpg"))
	_, ok := c.Unchanged("/photos/a.jpg", 100, mod)
	assert.False(t, ok)

	// Forgetting twice is fine.
	require.NoError(t, c.Forget("/photos/a.jpg"))
}

func TestCursorEmptyAdvance(t *testing.T) {
	c := openTestCursor(t)
	assert.NoError(t, c.Advance(nil))
}
