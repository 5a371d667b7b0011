package pipeline

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// NewLitPipeline builds a pipeline over the lit model shader.
//
// Parameters:
//   - key: the pipeline key, matching the material's PipelineKey
//   - cullMode: wgpu.CullModeBack for single sided materials, wgpu.CullModeNone for double sided
//
// Returns:
//   - Pipeline: the pipeline description, ready for registration
//   - error: error if the shader fails to pre-process or reflect
func NewLitPipeline(key string, cullMode wgpu.CullMode) (Pipeline, error) {
	vs, err := shader.NewShader(key+"_vs", shader.ShaderTypeVertex, shader.LitSource)
	if err != nil {
		return nil, err
	}
	fs, err := shader.NewShader(key+"_fs", shader.ShaderTypeFragment, shader.LitSource)
	if err != nil {
		return nil, err
	}

	p := NewPipeline(key,
		WithVertexShader(vs),
		WithFragmentShader(fs),
		WithCullMode(cullMode),
	)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
