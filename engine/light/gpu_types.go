package light

import (
	_ "embed"
	"encoding/binary"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// GPULightSource is the canonical WGSL definition of the Light struct.
// Matches GPULight layout exactly (64 bytes).
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct layout exactly (see GPULightSource).
type GPULight struct {
	Position  [3]float32 // offset  0: world-space position
	LightType uint32     // offset 12: 0 = directional, 1 = point, 2 = area
	Color     [3]float32 // offset 16: RGB color
	Intensity float32    // offset 28: scalar multiplier
	Direction [3]float32 // offset 32: normalized direction of travel
	Ambient   float32    // offset 44: uniform fill factor
	Extent    [2]float32 // offset 48: area emitter width/height
	Enabled   uint32     // offset 56: 1 = enabled
	_pad      uint32     // offset 60: padding to 64 bytes
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloat32s(buf, 0, g.Position[:]...)
	binary.LittleEndian.PutUint32(buf[off:], g.LightType)
	off = common.PutFloat32s(buf, off+4, g.Color[0], g.Color[1], g.Color[2], g.Intensity)
	off = common.PutFloat32s(buf, off, g.Direction[0], g.Direction[1], g.Direction[2], g.Ambient)
	off = common.PutFloat32s(buf, off, g.Extent[:]...)
	binary.LittleEndian.PutUint32(buf[off:], g.Enabled)
	return buf
}
