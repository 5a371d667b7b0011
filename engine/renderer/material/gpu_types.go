package material

import (
	_ "embed"
	"encoding/binary"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (32 bytes).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the per-material uniform read by the lit fragment shader.
// Size: 32 bytes.
type GPUMaterialParams struct {
	BaseColor   [4]float32 // offset 0
	HasTexture  uint32     // offset 16: 1 when a decoded base color texture is bound
	DoubleSided uint32     // offset 20
	_           [2]uint32  // offset 24: pad to 16-byte struct alignment
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the params into a 32-byte little endian buffer.
//
// Returns:
//   - []byte: buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 32)
	common.PutFloat32s(buf, 0, g.BaseColor[:]...)
	binary.LittleEndian.PutUint32(buf[16:20], g.HasTexture)
	binary.LittleEndian.PutUint32(buf[20:24], g.DoubleSided)
	return buf
}
