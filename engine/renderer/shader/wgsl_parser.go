package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps the WGSL types allowed in a vertex input struct to a wgpu vertex format.
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
}

// wgslUniformLayoutMap holds uniform buffer size and alignment for the host-shareable types
// the engine's structs use.
var wgslUniformLayoutMap = map[string]wgslTypeLayout{
	"f32":         {4, 4},
	"i32":         {4, 4},
	"u32":         {4, 4},
	"vec2<f32>":   {8, 8},
	"vec2f":       {8, 8},
	"vec2<u32>":   {8, 8},
	"vec3<f32>":   {12, 16},
	"vec3f":       {12, 16},
	"vec4<f32>":   {16, 16},
	"vec4f":       {16, 16},
	"vec4<u32>":   {16, 16},
	"mat3x3<f32>": {48, 16},
	"mat4x4<f32>": {64, 16},
}

// wgslTextureDimensionMap maps sampled texture base types to their view dimension.
var wgslTextureDimensionMap = map[string]wgpu.TextureViewDimension{
	"texture_2d":       wgpu.TextureViewDimension2D,
	"texture_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_cube":     wgpu.TextureViewDimensionCube,
	"texture_3d":       wgpu.TextureViewDimension3D,
	"texture_depth_2d": wgpu.TextureViewDimension2D,
}

var (
	// structBlockRegex captures a struct's name and body.
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex captures name and type of a struct member after any attributes.
	fieldRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, address space, name and type of a resource,
	// e.g. @group(0) @binding(1) var<uniform> light: Light;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoint returns the name of the first function tagged for the stage, or "".
func parseEntryPoint(source string, shaderType ShaderType) string {
	re := fragmentEntryRegex
	if shaderType == ShaderTypeVertex {
		re = vertexEntryRegex
	}
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}

// parseVertexLayouts builds one vertex buffer layout per vertex input struct, that is every
// struct with @location members and no @builtin member. Attributes are packed in declaration
// order. Structs with a member that has no vertex format are skipped.
//
// Parameters:
//   - source: pre-processed WGSL source
//
// Returns:
//   - []wgpu.VertexBufferLayout: the layouts in declaration order
//   - error: error if a struct member has a malformed @location
func parseVertexLayouts(source string) ([]wgpu.VertexBufferLayout, error) {
	structs, err := parseStructBlocks(stripComments(source))
	if err != nil {
		return nil, err
	}

	var layouts []wgpu.VertexBufferLayout
	for _, ps := range structs {
		if !ps.isVertexInput() {
			continue
		}
		if layout, ok := ps.vertexBufferLayout(); ok {
			layouts = append(layouts, layout)
		}
	}
	return layouts, nil
}

// parseBindGroupLayouts reflects every @group/@binding declaration into bind group layout
// descriptors, with entries sorted by binding. Uniform and storage buffers get a
// MinBindingSize computed from the bound struct, which is what the bind group provider uses
// to size the buffers it creates.
//
// Parameters:
//   - source: pre-processed WGSL source
//   - visibility: the stage flag set on every entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group
//   - map[int]map[int]string: variable names keyed by group then binding
//   - error: error if a group, binding or location index does not fit an int
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string, error) {
	cleaned := stripComments(source)
	structs, err := parseStructBlocks(cleaned)
	if err != nil {
		return nil, nil, err
	}
	sizes := structLayouts(structs)

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, nil, fmt.Errorf("var %s: invalid @group: %w", m[4], err)
		}
		binding, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, nil, fmt.Errorf("var %s: invalid @binding: %w", m[4], err)
		}
		typeName := strings.TrimSpace(m[5])

		entry := classifyResource(uint32(binding), visibility, strings.TrimSpace(m[3]), typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if layout, ok := resolveTypeLayout(typeName, sizes); ok {
				entry.Buffer.MinBindingSize = layout.size
			}
		}
		groups[group] = append(groups[group], entry)

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = m[4]
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, names, nil
}

// classifyResource fills the buffer, sampler or texture part of a layout entry.
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}

	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(addressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(typeName, "texture_depth_"):
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = wgslTextureDimensionMap[typeName]
	case strings.HasPrefix(typeName, "texture_"):
		base, _, _ := strings.Cut(typeName, "<")
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgslTextureDimensionMap[strings.TrimSpace(base)]
	}
	return entry
}

// parseStructBlocks extracts every struct declaration from comment-free source.
func parseStructBlocks(source string) ([]parsedStruct, error) {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		fields, err := parseStructFields(m[2])
		if err != nil {
			return nil, fmt.Errorf("struct %s: %w", m[1], err)
		}
		structs = append(structs, parsedStruct{name: m[1], fields: fields})
	}
	return structs, nil
}

func parseStructFields(body string) ([]parsedField, error) {
	var fields []parsedField
	for _, member := range splitAtTopLevelCommas(body) {
		member = strings.TrimSpace(member)
		fm := fieldRegex.FindStringSubmatch(member)
		if fm == nil {
			continue
		}

		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(member),
		}
		if lm := locationRegex.FindStringSubmatch(member); lm != nil {
			loc, err := strconv.Atoi(lm[1])
			if err != nil {
				return nil, fmt.Errorf("field %s: invalid @location: %w", field.name, err)
			}
			field.location = loc
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// structLayouts computes uniform layouts for all structs, resolving structs that nest other
// structs over repeated passes. Structs with unresolvable members are left out.
func structLayouts(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := structs
	for len(remaining) > 0 {
		var next []parsedStruct
		for _, ps := range remaining {
			if layout, ok := ps.layout(resolved); ok {
				resolved[ps.name] = layout
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}
	return resolved
}

// resolveTypeLayout resolves a primitive, a known struct or a fixed-size array of either.
func resolveTypeLayout(typeName string, known map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslUniformLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := known[typeName]; ok {
		return layout, true
	}
	if inner, ok := strings.CutPrefix(typeName, "array<"); ok && strings.HasSuffix(inner, ">") {
		elem, count, found := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
		if !found {
			return wgslTypeLayout{}, false
		}
		el, ok := resolveTypeLayout(strings.TrimSpace(elem), known)
		if !ok {
			return wgslTypeLayout{}, false
		}
		n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
		if err != nil {
			return wgslTypeLayout{}, false
		}
		return wgslTypeLayout{size: n * roundUp(el.align, el.size), align: el.align}, true
	}
	return wgslTypeLayout{}, false
}

// layout places each member at its aligned offset and rounds the total up to the largest
// member alignment.
func (ps parsedStruct) layout(known map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(f.typeName, known)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUp(fl.align, offset) + fl.size
		align = max(align, fl.align)
	}
	return wgslTypeLayout{size: roundUp(align, offset), align: align}, true
}

func (ps parsedStruct) isVertexInput() bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		hasLocation = hasLocation || f.location >= 0
	}
	return hasLocation
}

func (ps parsedStruct) vertexBufferLayout() (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(ps.fields))
	var offset uint64
	for _, f := range ps.fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += info.size
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

func roundUp(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// stripComments drops // line comments and /* */ block comments, which may nest in WGSL.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch source[i : i+2] {
			case "/*":
				depth++
				i++
				continue
			case "*/":
				if depth > 0 {
					depth--
					i++
					continue
				}
			case "//":
				if depth == 0 {
					for i < len(source) && source[i] != '\n' {
						i++
					}
					if i < len(source) {
						sb.WriteByte('\n')
					}
					continue
				}
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// splitAtTopLevelCommas splits struct members on commas outside angle brackets, so
// array<T, N> stays one member.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
