package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor converts glTF materials into ImportedMaterial values.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index, including the raw bytes of
	// its base color texture.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - common.ImportedMaterial: the extracted material
	//   - error: error if extraction fails
	ExtractMaterial(materialIndex int) (common.ImportedMaterial, error)

	// ExtractAllMaterials extracts all materials from the document in index order.
	//
	// Returns:
	//   - []common.ImportedMaterial: all extracted materials
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]common.ImportedMaterial, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (common.ImportedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return common.ImportedMaterial{}, fmt.Errorf("no document loaded")
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return common.ImportedMaterial{}, fmt.Errorf("material index %d out of range", materialIndex)
	}

	mat := &doc.Materials[materialIndex]
	result := common.ImportedMaterial{
		Name:        mat.Name,
		BaseColor:   [4]float32{1, 1, 1, 1},
		Metallic:    1,
		Roughness:   1,
		DoubleSided: mat.DoubleSided,
	}

	pbr := mat.PbrMetallicRoughness
	if pbr == nil {
		return result, nil
	}
	if pbr.BaseColorFactor != nil {
		result.BaseColor = *pbr.BaseColorFactor
	}
	if pbr.MetallicFactor != nil {
		result.Metallic = *pbr.MetallicFactor
	}
	if pbr.RoughnessFactor != nil {
		result.Roughness = *pbr.RoughnessFactor
	}
	if pbr.BaseColorTexture != nil {
		tex, err := e.loadTexture(pbr.BaseColorTexture.Index)
		if err != nil {
			return common.ImportedMaterial{}, fmt.Errorf("material %q: base color texture: %w", mat.Name, err)
		}
		result.DiffuseTexture = tex
	}
	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]common.ImportedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	materials := make([]common.ImportedMaterial, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.ExtractMaterial(i)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		materials[i] = mat
	}
	return materials, nil
}

// loadTexture resolves a glTF texture index into an ImportedTexture. Images stored in a
// buffer view or a data URI are copied into Data; external images only record Path and
// are read when the texture is decoded.
func (e *gltfMaterialExtractorImpl) loadTexture(textureIndex int) (*common.ImportedTexture, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}

	tex := &doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}
	if *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", *tex.Source)
	}
	img := &doc.Images[*tex.Source]

	result := &common.ImportedTexture{
		Name:     img.Name,
		MimeType: img.MimeType,
	}
	if result.Name == "" {
		result.Name = fmt.Sprintf("image_%d", *tex.Source)
	}
	if tex.Sampler != nil && *tex.Sampler >= 0 && *tex.Sampler < len(doc.Samplers) {
		result.Sampler = gltfSamplerData(&doc.Samplers[*tex.Sampler])
	}

	switch {
	case img.BufferView != nil:
		data, err := e.parser.BufferViewBytes(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("failed to read image buffer view: %w", err)
		}
		result.Data = data
	case strings.HasPrefix(img.URI, "data:"):
		data, mime, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data URI: %w", err)
		}
		result.Data = data
		result.MimeType = common.Coalesce(result.MimeType, mime)
	case img.URI != "":
		result.Path = filepath.Join(e.parser.BaseDir(), filepath.FromSlash(img.URI))
	default:
		return nil, nil
	}
	return result, nil
}

// gltfSamplerData maps glTF sampler codes onto renderer-neutral sampler settings.
// Unset fields stay at their defaults (linear filtering, repeat wrapping).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
func gltfSamplerData(s *gltfSampler) *common.SamplerData {
	result := &common.SamplerData{}

	if s.MagFilter != nil {
		result.MagFilter = gltfFilter(*s.MagFilter)
	}
	if s.MinFilter != nil {
		result.MinFilter = gltfFilter(*s.MinFilter)
		switch *s.MinFilter {
		case gltfFilterNearestMipmapNearest, gltfFilterLinearMipmapNearest:
			result.MipmapFilter = common.FilterNearest
		case gltfFilterNearestMipmapLinear, gltfFilterLinearMipmapLinear:
			result.MipmapFilter = common.FilterLinear
		}
	}
	if s.WrapS != nil {
		result.WrapU = gltfWrap(*s.WrapS)
	}
	if s.WrapT != nil {
		result.WrapV = gltfWrap(*s.WrapT)
	}
	return result
}

func gltfFilter(code int) common.FilterMode {
	switch code {
	case gltfFilterNearest, gltfFilterNearestMipmapNearest, gltfFilterNearestMipmapLinear:
		return common.FilterNearest
	case gltfFilterLinear, gltfFilterLinearMipmapNearest, gltfFilterLinearMipmapLinear:
		return common.FilterLinear
	}
	return common.FilterDefault
}

func gltfWrap(code int) common.WrapMode {
	switch code {
	case gltfWrapClampToEdge:
		return common.WrapClampToEdge
	case gltfWrapMirroredRepeat:
		return common.WrapMirrorRepeat
	case gltfWrapRepeat:
		return common.WrapRepeat
	}
	return common.WrapDefault
}
