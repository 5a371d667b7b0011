package model

import (
	_ "embed"
	"encoding/binary"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (48 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUModelDataSource is the canonical WGSL definition of the ModelData struct.
// Matches GPUModelData layout exactly (112 bytes).
//
//go:embed assets/model_data.wgsl
var GPUModelDataSource string

// GPUVertexSize is the stride of one GPUVertex in a vertex buffer.
const GPUVertexSize = 48

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
	Color    [4]float32 // offset 32: per-vertex RGBA color (16 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, GPUVertexSize)
	g.marshalInto(buf)
	return buf
}

func (g *GPUVertex) marshalInto(buf []byte) {
	off := common.PutFloat32s(buf, 0, g.Position[:]...)
	off = common.PutFloat32s(buf, off, g.Normal[:]...)
	off = common.PutFloat32s(buf, off, g.TexCoord[:]...)
	common.PutFloat32s(buf, off, g.Color[:]...)
}

// MarshalVertices packs vertices back to back into a single vertex buffer payload.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: len(vertices)*48 bytes
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, len(vertices)*GPUVertexSize)
	for i := range vertices {
		vertices[i].marshalInto(buf[i*GPUVertexSize:])
	}
	return buf
}

// MarshalIndices packs 32-bit indices little endian into an index buffer payload.
//
// Parameters:
//   - indices: the triangle indices
//
// Returns:
//   - []byte: len(indices)*4 bytes
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// GPUModelData is the per-object uniform holding the model and normal matrices.
// Matches the WGSL ModelData struct layout exactly (see GPUModelDataSource).
type GPUModelData struct {
	Model  [16]float32 // offset  0: model matrix (mat4x4<f32>)
	Normal [12]float32 // offset 64: normal matrix as three padded columns (mat3x3<f32>)
}

// Size returns the size of the GPUModelData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (g *GPUModelData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload
func (g *GPUModelData) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloat32s(buf, 0, g.Model[:]...)
	common.PutFloat32s(buf, off, g.Normal[:]...)
	return buf
}
