package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeEmbeddedPNG(t *testing.T) {
	tex := &ImportedTexture{Name: "paint", Data: encodePNG(t, 2, 3, color.RGBA{R: 200, A: 255})}

	staged, err := tex.Decode(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), staged.Width)
	assert.Equal(t, uint32(3), staged.Height)
	assert.Len(t, staged.Pixels, 2*3*4)
	assert.Equal(t, []byte{200, 0, 0, 255}, staged.Pixels[:4])
	assert.Equal(t, "image/png", tex.MimeType)
	require.NotNil(t, tex.Staged)
	assert.Equal(t, staged, *tex.Staged)
}

func TestDecodeFromPathDownscales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 64, 32, color.RGBA{G: 255, A: 255}), 0o644))

	tex := &ImportedTexture{Name: "big", Path: path}
	staged, err := tex.Decode(16)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), staged.Width)
	assert.Equal(t, uint32(8), staged.Height)
	assert.Len(t, staged.Pixels, 16*8*4)
	assert.Equal(t, 16, tex.Width)
}

func TestDecodeErrors(t *testing.T) {
	var nilTex *ImportedTexture
	_, err := nilTex.Decode(0)
	assert.Error(t, err)

	_, err = (&ImportedTexture{}).Decode(0)
	assert.Error(t, err)

	_, err = (&ImportedTexture{Name: "junk", Data: []byte("definitely not an image")}).Decode(0)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = (&ImportedTexture{Path: filepath.Join(t.TempDir(), "missing.png")}).Decode(0)
	assert.Error(t, err)
}
