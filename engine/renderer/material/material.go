package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// PipelineKeyLit is the render pipeline for single sided materials (back faces culled).
	PipelineKeyLit = "lit"

	// PipelineKeyLitDoubleSided is the render pipeline for double sided materials.
	PipelineKeyLitDoubleSided = "lit_double_sided"
)

// whiteTexture is bound when a material has no decoded texture, so the shader can always sample.
var whiteTexture = common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}

// material is the implementation of the Material interface.
type material struct {
	mu                *sync.Mutex
	name              string
	baseColor         [4]float32
	doubleSided       bool
	texture           *common.ImportedTexture
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material is the render-side view of a model material: the uniform parameters, the texture
// to upload and the sampler to create, plus the GPU resources once they exist.
//
// Surface properties are fixed at construction. The bind group provider is attached by the
// scene renderer the first time the material is drawn.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the RGBA base color factor.
	//
	// Returns:
	//   - [4]float32: the base color
	BaseColor() [4]float32

	// DoubleSided reports whether back faces are drawn.
	//
	// Returns:
	//   - bool: true when back-face culling is disabled
	DoubleSided() bool

	// HasTexture reports whether a decoded base color texture is available for upload.
	// Textures that were never decoded are treated as absent.
	//
	// Returns:
	//   - bool: true if Texture returns real pixels
	HasTexture() bool

	// Texture returns the pixels to bind as the base color texture. Materials without a
	// decoded texture return a 1x1 white texture.
	//
	// Returns:
	//   - common.TextureStagingData: RGBA pixels ready for upload
	Texture() common.TextureStagingData

	// SamplerDescriptor builds the sampler for the base color texture. Unset filter and wrap
	// modes fall back to linear filtering and repeat wrapping.
	//
	// Returns:
	//   - wgpu.SamplerDescriptor: the sampler descriptor
	SamplerDescriptor() wgpu.SamplerDescriptor

	// Params builds the uniform block for this material.
	//
	// Returns:
	//   - GPUMaterialParams: the uniform data
	Params() GPUMaterialParams

	// PipelineKey selects the render pipeline this material is drawn with.
	//
	// Returns:
	//   - string: PipelineKeyLit or PipelineKeyLitDoubleSided
	PipelineKey() string

	// BindGroupProvider retrieves the GPU resources of this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, or nil before upload
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider attaches the GPU resources of this material.
	//
	// Parameters:
	//   - provider: the provider holding the material's bind group
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)

	// Release frees the GPU resources of this material, if any.
	Release()
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// The default material is opaque white and single sided.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		mu:        &sync.Mutex{},
		baseColor: [4]float32{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FromImported creates a Material from a material read out of a model file. A nil material
// yields the default material.
//
// Parameters:
//   - imported: the imported material, or nil
//
// Returns:
//   - Material: the render material
func FromImported(imported *common.ImportedMaterial) Material {
	if imported == nil {
		return NewMaterial(WithName("default"))
	}
	return NewMaterial(
		WithName(imported.Name),
		WithBaseColor(imported.BaseColor),
		WithDoubleSided(imported.DoubleSided),
		WithTexture(imported.DiffuseTexture),
	)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) DoubleSided() bool {
	return m.doubleSided
}

func (m *material) HasTexture() bool {
	return m.texture != nil && m.texture.Staged != nil && len(m.texture.Staged.Pixels) > 0
}

func (m *material) Texture() common.TextureStagingData {
	if !m.HasTexture() {
		return whiteTexture
	}
	return *m.texture.Staged
}

func (m *material) SamplerDescriptor() wgpu.SamplerDescriptor {
	var s common.SamplerData
	if m.texture != nil && m.texture.Sampler != nil {
		s = *m.texture.Sampler
	}
	return wgpu.SamplerDescriptor{
		Label:         m.name + " Sampler",
		AddressModeU:  addressMode(s.WrapU),
		AddressModeV:  addressMode(s.WrapV),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     filterMode(s.MagFilter),
		MinFilter:     filterMode(s.MinFilter),
		MipmapFilter:  mipmapFilterMode(s.MipmapFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func (m *material) Params() GPUMaterialParams {
	p := GPUMaterialParams{BaseColor: m.baseColor}
	if m.HasTexture() {
		p.HasTexture = 1
	}
	if m.doubleSided {
		p.DoubleSided = 1
	}
	return p
}

func (m *material) PipelineKey() string {
	if m.doubleSided {
		return PipelineKeyLitDoubleSided
	}
	return PipelineKeyLit
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bindGroupProvider
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindGroupProvider = provider
}

func (m *material) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bindGroupProvider != nil {
		m.bindGroupProvider.Release()
		m.bindGroupProvider = nil
	}
}

func filterMode(f common.FilterMode) wgpu.FilterMode {
	if f == common.FilterNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func mipmapFilterMode(f common.FilterMode) wgpu.MipmapFilterMode {
	if f == common.FilterNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}

func addressMode(w common.WrapMode) wgpu.AddressMode {
	switch w {
	case common.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case common.WrapMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
