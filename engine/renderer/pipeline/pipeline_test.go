package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("plain")
	assert.Equal(t, "plain", p.PipelineKey())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Nil(t, p.BlendState())
	assert.Nil(t, p.RenderPipeline())
	assert.Error(t, p.Validate())
}

func TestLitPipelineLayout(t *testing.T) {
	p, err := NewLitPipeline("lit", wgpu.CullModeBack)
	require.NoError(t, err)
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, "vs_main", p.Shader(shader.ShaderTypeVertex).EntryPoint())
	assert.Equal(t, "fs_main", p.Shader(shader.ShaderTypeFragment).EntryPoint())

	groups := p.BindGroupLayoutDescriptors()
	require.Len(t, groups, 3)
	assert.Len(t, groups[0].Entries, 2)
	assert.Len(t, groups[1].Entries, 1)
	assert.Len(t, groups[2].Entries, 3)

	both := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	for g, desc := range groups {
		for _, e := range desc.Entries {
			assert.Equal(t, both, e.Visibility, "group %d binding %d", g, e.Binding)
		}
	}
	assert.Equal(t, "lit group 2", groups[2].Label)
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 2, Visibility: wgpu.ShaderStageFragment},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
	}

	merged := mergeBindGroupLayouts("m", vertex, fragment)
	require.Len(t, merged, 2)
	require.Len(t, merged[0].Entries, 2)
	assert.Equal(t, uint32(0), merged[0].Entries[0].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[0].Entries[0].Visibility)
	assert.Equal(t, uint32(2), merged[0].Entries[1].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, merged[1].Entries[0].Visibility)
}

func TestValidateRejectsGroupGap(t *testing.T) {
	src := `
struct U { v: vec4<f32>, };
@group(1) @binding(0) var<uniform> u: U;
@vertex fn vs() -> @builtin(position) vec4<f32> { return u.v; }
@fragment fn fs() -> @location(0) vec4<f32> { return u.v; }
`
	vs, err := shader.NewShader("gap_vs", shader.ShaderTypeVertex, src)
	require.NoError(t, err)
	fs, err := shader.NewShader("gap_fs", shader.ShaderTypeFragment, src)
	require.NoError(t, err)

	p := NewPipeline("gap", WithVertexShader(vs), WithFragmentShader(fs))
	assert.ErrorContains(t, p.Validate(), "bind group 0 is missing")
}
