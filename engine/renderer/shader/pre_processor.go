package shader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
)

// includeRegex matches a whole-line include directive: // @include <name>
var includeRegex = regexp.MustCompile(`^\s*//\s*@include\s+(\w+)\s*$`)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	registry map[string]string
}

// PreProcessor expands @include directives in WGSL source. Each directive names a shared
// struct definition (for example "camera") whose Go-side twin lives next to the type that
// marshals it, so the WGSL layout and the byte layout are maintained together.
type PreProcessor interface {
	// Process replaces every include line with the registered source. A name included
	// more than once is only expanded the first time.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: error naming the line of an unknown include
	Process(source string) (string, error)

	// Register adds or replaces an includable source.
	//
	// Parameters:
	//   - name: the include name
	//   - source: the WGSL text to substitute
	Register(name, source string)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that knows the engine's shared GPU structs:
// camera, light, vertex, model_data and material_params.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		registry: map[string]string{
			"camera":          camera.GPUCameraUniformSource,
			"light":           light.GPULightSource,
			"vertex":          model.GPUVertexSource,
			"model_data":      model.GPUModelDataSource,
			"material_params": material.GPUMaterialParamsSource,
		},
	}
}

func (p *preProcessor) Register(name, source string) {
	p.registry[name] = source
}

func (p *preProcessor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]bool)

	for i, line := range lines {
		m := includeRegex.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}

		name := m[1]
		src, ok := p.registry[name]
		if !ok {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, strings.TrimRight(src, "\n"))
	}
	return strings.Join(out, "\n"), nil
}
