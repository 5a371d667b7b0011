package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("camera", WithGroup(2))
	assert.Equal(t, "camera", p.Label())
	assert.Equal(t, 2, p.Group())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(1))
	assert.Nil(t, p.Sampler(2))
	assert.Zero(t, p.IndexCount())
}

func TestWithGroupClampsNegative(t *testing.T) {
	assert.Equal(t, 0, NewBindGroupProvider("x", WithGroup(-3)).Group())
}

func TestSetMeshAndRelease(t *testing.T) {
	p := NewBindGroupProvider("mesh")
	p.SetMesh(nil, nil, 36)
	assert.Equal(t, 36, p.IndexCount())

	p.Release()
	assert.Zero(t, p.IndexCount())
	assert.NotPanics(t, p.Release)
}

func TestNilResourcesAreStoredAndCleared(t *testing.T) {
	p := NewBindGroupProvider("material")
	p.SetBuffer(0, nil)
	p.SetTexture(1, nil, nil)
	p.SetSampler(2, nil)

	impl := p.(*bindGroupProvider)
	assert.Len(t, impl.buffers, 1)
	assert.Len(t, impl.textureViews, 1)
	assert.Len(t, impl.samplers, 1)

	p.Release()
	assert.Empty(t, impl.buffers)
	assert.Empty(t, impl.textures)
	assert.Empty(t, impl.textureViews)
	assert.Empty(t, impl.samplers)
}
