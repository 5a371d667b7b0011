package common

import (
	"encoding/binary"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// TwoPi is a full turn in radians.
const TwoPi = 2 * math32.Pi

// depthRemap converts OpenGL clip-space depth [-1, 1] into the WebGPU range [0, 1].
var depthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// PutFloat32s writes the values little endian into buf starting at offset and returns the offset after the last value.
//
// Parameters:
//   - buf: destination buffer, must have room for len(values)*4 bytes after offset
//   - offset: byte offset of the first value
//   - values: the float32 values to write
//
// Returns:
//   - int: the byte offset following the written values
func PutFloat32s(buf []byte, offset int, values ...float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], math32.Float32bits(v))
		offset += 4
	}
	return offset
}

// Perspective creates a perspective projection matrix for WebGPU clip space (depth in [0, 1]).
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	return depthRemap.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}

// LookAt creates a view matrix that positions the eye and orients it toward target.
//
// When up is parallel to the viewing direction the forward vector is nudged by a tiny
// amount so the basis stays well defined. This is what makes a camera placed straight
// above its target usable with the default +Y up vector.
//
// Parameters:
//   - eye: camera position in world space
//   - target: point the camera looks at
//   - up: up vector defining camera orientation (typically 0,1,0)
//
// Returns:
//   - mgl32.Mat4: the column-major view matrix
func LookAt(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	forward := eye.Sub(target)
	if forward.Len() == 0 {
		forward = mgl32.Vec3{0, 0, 1}
	}
	forward = forward.Normalize()

	if up.Cross(forward).Len() < 1e-6 {
		if math32.Abs(up.Z()) == 1 {
			forward[0] += 1e-4
		} else {
			forward[2] += 1e-4
		}
		forward = forward.Normalize()
	}

	return mgl32.LookAtV(eye, eye.Sub(forward), up)
}

// ModelMatrix constructs a model matrix from position, Euler rotation and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll).
//
// Parameters:
//   - position: translation in world space
//   - rotation: rotation angles in radians around each axis
//   - scale: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func ModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	r := mgl32.HomogRotate3DY(rotation.Y()).
		Mul4(mgl32.HomogRotate3DX(rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(rotation.Z()))
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(r).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of m laid out as three
// vec4 columns, matching a WGSL mat3x4 in a uniform buffer.
// A singular input yields the identity.
//
// Parameters:
//   - m: the model matrix
//
// Returns:
//   - [12]float32: three padded columns of the normal matrix
func NormalMatrix(m mgl32.Mat4) [12]float32 {
	n := m.Mat3()
	if n.Det() == 0 {
		n = mgl32.Ident3()
	} else {
		n = n.Inv().Transpose()
	}
	return [12]float32{
		n[0], n[1], n[2], 0,
		n[3], n[4], n[5], 0,
		n[6], n[7], n[8], 0,
	}
}

// TransformPoint applies m to a point (w = 1).
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection applies the upper 3x3 of m to v and renormalizes it.
// Zero-length results are returned unchanged.
func TransformDirection(m mgl32.Mat3, v mgl32.Vec3) mgl32.Vec3 {
	out := m.Mul3x1(v)
	if out.Len() == 0 {
		return out
	}
	return out.Normalize()
}

// WrapAngle reduces an angle in radians into the range [0, 2pi).
//
// Parameters:
//   - a: the angle in radians
//
// Returns:
//   - float32: the equivalent angle in [0, 2pi)
func WrapAngle(a float32) float32 {
	a = math32.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	if a >= TwoPi {
		a = 0
	}
	return a
}
