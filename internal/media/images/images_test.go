package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(encodePNG(t, 200, 100))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	_, err = ComputeBlurHash([]byte("not an image"))
	assert.Error(t, err)
}

func TestResizeForBlurHash_KeepsAspect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 100))
	b := resizeForBlurHash(img).Bounds()
	assert.Equal(t, 64, b.Dx())
	assert.Equal(t, 16, b.Dy())

	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Same(t, small, resizeForBlurHash(small))
}

func TestParseDataURL(t *testing.T) {
	du, err := ParseDataURL("data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", du.MediaType)
	assert.Equal(t, []byte("hello"), du.Data)

	du, err = ParseDataURL("data:,raw")
	require.NoError(t, err)
	assert.Equal(t, "text/plain;charset=US-ASCII", du.MediaType)
	assert.Equal(t, []byte("raw"), du.Data)

	_, err = ParseDataURL("solid cube")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, err = ParseDataURL("data:image/png;base64")
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	t.Run("image data URL", func(t *testing.T) {
		raw := encodePNG(t, 32, 32)
		info := Inspect("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw))
		assert.Equal(t, int64(len(raw)), info.Size)
		assert.Equal(t, "image/png", info.ContentType)
		assert.NotEmpty(t, info.BlurHash)
	})

	t.Run("opaque content", func(t *testing.T) {
		content := "solid cube\nfacet normal 0 0 1"
		info := Inspect(content)
		assert.Equal(t, int64(len(content)), info.Size)
		assert.Equal(t, "text/plain; charset=utf-8", info.ContentType)
		assert.Empty(t, info.BlurHash)
	})
}
