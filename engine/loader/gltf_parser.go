package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chewxy/math32"
)

// Validation errors returned while parsing glTF and GLB documents.
var (
	ErrInvalidGLTFVersion   = errors.New("invalid glTF version: must be 2.x")
	ErrInvalidGLBMagic      = errors.New("invalid GLB magic number")
	ErrInvalidGLBVersion    = errors.New("invalid GLB version: must be 2")
	ErrTruncatedGLB         = errors.New("truncated GLB container")
	ErrMissingJSONChunk     = errors.New("GLB file missing JSON chunk")
	ErrBufferSizeMismatch   = errors.New("buffer size mismatch")
	ErrAccessorOutOfBounds  = errors.New("accessor exceeds buffer bounds")
	ErrUnsupportedExtension = errors.New("unsupported required glTF extension")
)

// supportedRequiredExtensions lists required extensions that parse correctly without special handling.
var supportedRequiredExtensions = []string{
	"KHR_mesh_quantization",
	"KHR_materials_unlit",
}

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir  string
	document *gltfDocument
	binChunk []byte
}

// gltfParser loads glTF JSON or GLB containers and reads typed accessor data.
// This is internal to the loader package.
type gltfParser interface {
	// Parse loads and parses a glTF/GLB file from the given path.
	// GLB is detected from the extension or the magic number.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - error: error if parsing fails
	Parse(path string) error

	// ParseReader parses a glTF document from a reader. External buffer and image
	// URIs are resolved relative to baseDir.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//   - isGLB: true if the data is in GLB format
	//   - baseDir: directory used for relative URIs, may be empty
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader, isGLB bool, baseDir string) error

	// Document returns the parsed glTF document, or nil before a successful parse.
	Document() *gltfDocument

	// BaseDir returns the directory used for resolving relative URIs.
	BaseDir() string

	// ReadFloats reads an accessor as float components, converting integer
	// components. Normalized integers (or any integer when normalize is true)
	// are mapped into [0, 1] or [-1, 1].
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//   - normalize: force normalization of integer components
	//
	// Returns:
	//   - []float32: count*components values, tightly packed
	//   - int: the number of components per element
	//   - error: error if reading fails
	ReadFloats(accessorIndex int, normalize bool) ([]float32, int, error)

	// ReadIndices reads a SCALAR accessor of unsigned integers as uint32 values.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the index data
	//   - error: error if reading fails
	ReadIndices(accessorIndex int) ([]uint32, error)

	// BufferViewBytes returns a copy of the bytes of a buffer view.
	//
	// Parameters:
	//   - bufferViewIndex: the index of the buffer view
	//
	// Returns:
	//   - []byte: the raw bytes
	//   - error: error if the view is out of range
	BufferViewBytes(bufferViewIndex int) ([]byte, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Parse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	p.baseDir = filepath.Dir(path)

	if strings.EqualFold(filepath.Ext(path), ".glb") || isGLB(data) {
		return p.parseGLB(data)
	}
	return p.parseJSON(data)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, glb bool, baseDir string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	p.baseDir = baseDir

	if glb {
		return p.parseGLB(data)
	}
	return p.parseJSON(data)
}

// isGLB reports whether data starts with the GLB magic number.
func isGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == gltfGLBMagic
}

// parseJSON decodes the glTF JSON document, validates it and resolves its buffers.
func (p *gltfParserImpl) parseJSON(data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return fmt.Errorf("%w: got %q", ErrInvalidGLTFVersion, doc.Asset.Version)
	}
	for _, ext := range doc.ExtensionsRequired {
		if !slices.Contains(supportedRequiredExtensions, ext) {
			return fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
		}
	}

	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// parseGLB splits a GLB container into its JSON and BIN chunks.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < gltfGLBHeaderSize {
		return ErrTruncatedGLB
	}
	if binary.LittleEndian.Uint32(data[0:]) != gltfGLBMagic {
		return ErrInvalidGLBMagic
	}
	if binary.LittleEndian.Uint32(data[4:]) != gltfGLBVersion {
		return ErrInvalidGLBVersion
	}
	total := int(binary.LittleEndian.Uint32(data[8:]))
	if total > len(data) || total < gltfGLBHeaderSize {
		return fmt.Errorf("%w: header declares %d bytes, have %d", ErrTruncatedGLB, total, len(data))
	}

	var jsonChunk []byte
	for off := gltfGLBHeaderSize; off+gltfGLBChunkHeader <= total; {
		length := int(binary.LittleEndian.Uint32(data[off:]))
		kind := binary.LittleEndian.Uint32(data[off+4:])
		start := off + gltfGLBChunkHeader
		end := start + length
		if length < 0 || end > total {
			return fmt.Errorf("%w: chunk at offset %d", ErrTruncatedGLB, off)
		}

		switch kind {
		case gltfGLBChunkJSON:
			if jsonChunk == nil {
				jsonChunk = data[start:end]
			}
		case gltfGLBChunkBIN:
			if p.binChunk == nil {
				p.binChunk = data[start:end]
			}
		}
		off = end
	}

	if jsonChunk == nil {
		return ErrMissingJSONChunk
	}
	return p.parseJSON(jsonChunk)
}

// loadBuffers fills every buffer's Data from the BIN chunk, a data URI or an external file.
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && p.binChunk != nil:
			buf.Data = p.binChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		default:
			data, err := p.readURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w: want %d bytes, have %d", i, ErrBufferSizeMismatch, buf.ByteLength, len(buf.Data))
		}
	}
	return nil
}

// readURI resolves a data URI or a file path relative to the base directory.
func (p *gltfParserImpl) readURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		data, _, err := decodeDataURI(uri)
		return data, err
	}

	data, err := os.ReadFile(filepath.Join(p.baseDir, filepath.FromSlash(uri)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", uri, err)
	}
	return data, nil
}

// decodeDataURI decodes a base64 data URI of the form data:[<mediatype>];base64,<data>
// and returns the payload and its media type.
func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", errors.New("malformed data URI: no comma found")
	}
	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("unsupported data URI encoding: %q", header)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, mime, nil
}

// accessorView resolves the accessor's bytes. The returned slice starts at the first
// element; elements are stride bytes apart and elemSize bytes long. Accessors without a
// buffer view are all zeros.
func (p *gltfParserImpl) accessorView(index int) (acc *gltfAccessor, data []byte, stride int, err error) {
	if p.document == nil {
		return nil, nil, 0, errors.New("no document loaded")
	}
	if index < 0 || index >= len(p.document.Accessors) {
		return nil, nil, 0, fmt.Errorf("accessor index %d out of range", index)
	}
	acc = &p.document.Accessors[index]
	if acc.Sparse != nil {
		return nil, nil, 0, fmt.Errorf("accessor %d: sparse accessors are not supported", index)
	}

	elemSize := gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	if elemSize == 0 {
		return nil, nil, 0, fmt.Errorf("accessor %d: unsupported layout %s/%d", index, acc.Type, acc.ComponentType)
	}
	if acc.BufferView == nil {
		return acc, make([]byte, acc.Count*elemSize), elemSize, nil
	}

	bvIndex := *acc.BufferView
	if bvIndex < 0 || bvIndex >= len(p.document.BufferViews) {
		return nil, nil, 0, fmt.Errorf("accessor %d: bufferView %d out of range", index, bvIndex)
	}
	bv := &p.document.BufferViews[bvIndex]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, nil, 0, fmt.Errorf("bufferView %d: buffer %d out of range", bvIndex, bv.Buffer)
	}
	buf := p.document.Buffers[bv.Buffer].Data

	stride = elemSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	start := bv.ByteOffset + acc.ByteOffset
	viewEnd := min(bv.ByteOffset+bv.ByteLength, len(buf))
	if acc.Count > 0 {
		last := start + (acc.Count-1)*stride + elemSize
		if start < 0 || last > viewEnd {
			return nil, nil, 0, fmt.Errorf("accessor %d: %w", index, ErrAccessorOutOfBounds)
		}
	}
	return acc, buf[start:viewEnd], stride, nil
}

func (p *gltfParserImpl) ReadFloats(accessorIndex int, normalize bool) ([]float32, int, error) {
	acc, data, stride, err := p.accessorView(accessorIndex)
	if err != nil {
		return nil, 0, err
	}

	components := gltfAccessorTypeComponentCount(acc.Type)
	size := gltfComponentTypeSize(acc.ComponentType)
	normalize = normalize || acc.Normalized

	out := make([]float32, acc.Count*components)
	for i := range acc.Count {
		base := i * stride
		for c := range components {
			out[i*components+c] = decodeComponent(data[base+c*size:], acc.ComponentType, normalize)
		}
	}
	return out, components, nil
}

func (p *gltfParserImpl) ReadIndices(accessorIndex int) ([]uint32, error) {
	acc, data, stride, err := p.accessorView(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor is not SCALAR: type=%s", acc.Type)
	}

	out := make([]uint32, acc.Count)
	for i := range acc.Count {
		b := data[i*stride:]
		switch acc.ComponentType {
		case gltfComponentTypeUnsignedByte:
			out[i] = uint32(b[0])
		case gltfComponentTypeUnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(b))
		case gltfComponentTypeUnsignedInt:
			out[i] = binary.LittleEndian.Uint32(b)
		default:
			return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
		}
	}
	return out, nil
}

func (p *gltfParserImpl) BufferViewBytes(bufferViewIndex int) ([]byte, error) {
	doc := p.document
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	if bufferViewIndex < 0 || bufferViewIndex >= len(doc.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", bufferViewIndex)
	}
	bv := &doc.BufferViews[bufferViewIndex]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}

	buf := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(buf) {
		return nil, fmt.Errorf("bufferView %d: %w", bufferViewIndex, ErrAccessorOutOfBounds)
	}
	return slices.Clone(buf[bv.ByteOffset:end]), nil
}

// decodeComponent converts one little endian component to float32.
func decodeComponent(b []byte, componentType int, normalize bool) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math32.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeUnsignedByte:
		if normalize {
			return float32(b[0]) / 255
		}
		return float32(b[0])
	case gltfComponentTypeByte:
		if normalize {
			return max(float32(int8(b[0]))/127, -1)
		}
		return float32(int8(b[0]))
	case gltfComponentTypeUnsignedShort:
		v := binary.LittleEndian.Uint16(b)
		if normalize {
			return float32(v) / 65535
		}
		return float32(v)
	case gltfComponentTypeShort:
		v := int16(binary.LittleEndian.Uint16(b))
		if normalize {
			return max(float32(v)/32767, -1)
		}
		return float32(v)
	case gltfComponentTypeUnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

// gltfComponentTypeSize returns the byte size of a component type.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for an accessor type.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
