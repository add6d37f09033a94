package processor

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thumbDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestRenderThumbnailFitsLargeImage(t *testing.T) {
	data := encodeJPEG(t, 600, 400)

	thumb, err := RenderThumbnail(bytes.NewReader(data), 300, 300, 85)
	require.NoError(t, err)

	w, h := thumbDims(t, thumb)
	assert.Equal(t, 300, w, "aspect ratio preserved inside the box")
	assert.Equal(t, 200, h)
}

func TestRenderThumbnailPortrait(t *testing.T) {
	data := encodeJPEG(t, 400, 600)

	thumb, err := RenderThumbnail(bytes.NewReader(data), 300, 300, 85)
	require.NoError(t, err)

	w, h := thumbDims(t, thumb)
	assert.Equal(t, 200, w)
	assert.Equal(t, 300, h)
}

func TestRenderThumbnailPassThroughWhenAlreadyFits(t *testing.T) {
	data := encodeJPEG(t, 120, 80)

	thumb, err := RenderThumbnail(bytes.NewReader(data), 300, 300, 85)
	require.NoError(t, err)

	w, h := thumbDims(t, thumb)
	assert.Equal(t, 120, w)
	assert.Equal(t, 80, h)
}

func TestRenderThumbnailRejectsGarbage(t *testing.T) {
	_, err := RenderThumbnail(bytes.NewReader([]byte("not an image")), 300, 300, 85)
	assert.Error(t, err)
}

func TestThumbnailConfigDefaults(t *testing.T) {
	var c ThumbnailConfig
	c.ApplyDefaults()
	assert.Equal(t, DefaultThumbnailWidth, c.MaxWidth)
	assert.Equal(t, DefaultThumbnailHeight, c.MaxHeight)
	assert.Equal(t, DefaultThumbnailQuality, c.Quality)

	c = ThumbnailConfig{Quality: 400}
	c.ApplyDefaults()
	assert.Equal(t, DefaultThumbnailQuality, c.Quality)
}
