// package common contains common types that are used throughout this viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when texture bytes are not a decodable image format.
var ErrUnsupportedImage = errors.New("unsupported texture image format")

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
type TextureStagingData struct {
	// Pixels is the pixel data in RGBA format, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// FilterMode selects texel filtering for a sampler.
type FilterMode int

const (
	FilterDefault FilterMode = iota
	FilterNearest
	FilterLinear
)

// WrapMode selects how texture coordinates outside [0, 1] are resolved.
type WrapMode int

const (
	WrapDefault WrapMode = iota
	WrapRepeat
	WrapClampToEdge
	WrapMirrorRepeat
)

// SamplerData holds backend-neutral sampler settings taken from a model file.
// Zero values mean "use the renderer default" (linear filtering, repeat wrapping).
type SamplerData struct {
	MagFilter, MinFilter, MipmapFilter FilterMode
	WrapU, WrapV                       WrapMode
}

// ImportedMaterial represents material properties from an imported model file.
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// BaseColor is the albedo/diffuse color (RGBA).
	BaseColor [4]float32

	// Metallic factor (0.0 = dielectric, 1.0 = metal).
	Metallic float32

	// Roughness factor (0.0 = smooth, 1.0 = rough).
	Roughness float32

	// DoubleSided disables back-face culling for meshes using this material.
	DoubleSided bool

	// DiffuseTexture holds the base color texture (if present).
	DiffuseTexture *ImportedTexture
}

// ImportedTexture represents texture data extracted from a model file.
// For embedded textures (GLB, data URIs), the Data field contains raw image bytes.
// For external textures, the Path field contains the file path.
type ImportedTexture struct {
	// Name is an identifier for this texture.
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains raw image bytes for embedded textures.
	Data []byte

	// MimeType is the declared image format; Decode sniffs the content and fills it in when empty.
	MimeType string

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int

	// Sampler holds sampler parameters extracted from the model file, or nil for defaults.
	Sampler *SamplerData

	// Staged holds the decoded pixels once Decode has run in the loader, so GPU upload
	// does not decode on the render thread.
	Staged *TextureStagingData
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either embedded Data bytes or loads from Path on disk. The content type is
// detected from the bytes; PNG, JPEG and WebP are supported. When maxSize is positive
// and either dimension exceeds it, the image is downscaled preserving aspect ratio.
//
// Parameters:
//   - maxSize: the largest allowed width or height in pixels, 0 for no limit
//
// Returns:
//   - TextureStagingData: RGBA pixels and dimensions ready for upload
//   - error: error if reading or decoding fails
func (t *ImportedTexture) Decode(maxSize int) (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, fmt.Errorf("texture is nil")
	}

	data := t.Data
	if len(data) == 0 {
		if t.Path == "" {
			return TextureStagingData{}, fmt.Errorf("texture has neither data nor path")
		}
		b, err := os.ReadFile(t.Path)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to read texture file %s: %w", t.Path, err)
		}
		data = b
	}

	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return TextureStagingData{}, fmt.Errorf("%w: %q", ErrUnsupportedImage, t.Name)
	}
	if t.MimeType == "" {
		t.MimeType = kind.MIME.Value
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode %s texture %q: %w", kind.Extension, t.Name, err)
	}

	rgba := fitImage(img, maxSize)
	t.Width = rgba.Bounds().Dx()
	t.Height = rgba.Bounds().Dy()

	staged := TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(t.Width),
		Height: uint32(t.Height),
	}
	t.Staged = &staged
	return staged, nil
}

// fitImage converts img to a tightly packed RGBA image no larger than maxSize on either side.
func fitImage(img image.Image, maxSize int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		if w >= h {
			h = max(1, h*maxSize/w)
			w = maxSize
		} else {
			w = max(1, w*maxSize/h)
			h = maxSize
		}
		return transform.Resize(img, w, h, transform.Linear)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
