package shader

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// LitSource is the WGSL source of the lit model shader. It declares its shared structs
// through @include directives and must be run through a PreProcessor.
//
//go:embed assets/lit.wgsl
var LitSource string

// ShaderType identifies the pipeline stage a shader is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage of a render pipeline.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
}

// Shader is a pre-processed WGSL shader stage together with the resource layout reflected
// from its source: the entry point, the bind group layouts and, for vertex shaders, the
// vertex buffer layouts.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the module label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source with all includes expanded
	Source() string

	// ShaderType returns the stage this shader is compiled for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the name of the @vertex or @fragment function for this stage.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// BindGroupLayoutDescriptors retrieves the bind group layouts declared by the source,
	// keyed by group index. Entries are visible to this shader's stage only.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if nothing is declared there
	BindGroupVarName(group, binding int) string

	// VertexLayouts retrieves the vertex buffer layouts reflected from the vertex input
	// structs of the source, in declaration order. Fragment shaders return nil.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout
}

var _ Shader = &shader{}

// NewShader pre-processes source with the default PreProcessor and reflects its layout for
// the given stage.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage to reflect
//   - source: the raw WGSL source, possibly containing @include directives
//
// Returns:
//   - Shader: the parsed shader
//   - error: error if pre-processing fails, the source has no entry point for the stage or an
//     index attribute is malformed
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	return NewShaderWith(NewPreProcessor(), key, shaderType, source)
}

// NewShaderWith is NewShader with a caller supplied PreProcessor.
func NewShaderWith(pp PreProcessor, key string, shaderType ShaderType, source string) (Shader, error) {
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:        key,
		source:     processed,
		shaderType: shaderType,
		entryPoint: parseEntryPoint(processed, shaderType),
	}
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %s: no entry point for stage %d", key, shaderType)
	}

	visibility := wgpu.ShaderStageFragment
	if shaderType == ShaderTypeVertex {
		visibility = wgpu.ShaderStageVertex
		if s.vertexLayouts, err = parseVertexLayouts(processed); err != nil {
			return nil, fmt.Errorf("shader %s: %w", key, err)
		}
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames, err = parseBindGroupLayouts(processed, visibility)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}
