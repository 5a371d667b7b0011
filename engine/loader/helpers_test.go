package loader

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// triangleDoc returns a document with one indexed triangle in the XY plane, wound
// counter-clockwise as seen from +Z, and its binary buffer. The buffer entry is left
// for finishDoc so callers can append more data first.
func triangleDoc(nodes ...gltfNode) (*gltfDocument, *bytes.Buffer) {
	bin := &bytes.Buffer{}
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		_ = binary.Write(bin, binary.LittleEndian, math32.Float32bits(v))
	}
	for _, i := range []uint16{0, 1, 2} {
		_ = binary.Write(bin, binary.LittleEndian, i)
	}

	doc := &gltfDocument{
		Asset: gltfAsset{Version: "2.0"},
		Nodes: nodes,
		Meshes: []gltfMesh{{
			Name: "body",
			Primitives: []gltfPrimitive{{
				Attributes: map[string]int{"POSITION": 0},
				Indices:    ptr(1),
			}},
		}},
		Accessors: []gltfAccessor{
			{BufferView: ptr(0), ComponentType: gltfComponentTypeFloat, Count: 3, Type: gltfAccessorTypeVec3},
			{BufferView: ptr(1), ComponentType: gltfComponentTypeUnsignedShort, Count: 3, Type: gltfAccessorTypeScalar},
		},
		BufferViews: []gltfBufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		},
	}
	return doc, bin
}

// appendView pads bin to 4 bytes, appends data and registers a buffer view for it.
func appendView(doc *gltfDocument, bin *bytes.Buffer, data []byte) int {
	for bin.Len()%4 != 0 {
		bin.WriteByte(0)
	}
	doc.BufferViews = append(doc.BufferViews, gltfBufferView{Buffer: 0, ByteOffset: bin.Len(), ByteLength: len(data)})
	bin.Write(data)
	return len(doc.BufferViews) - 1
}

// encodeGLB packs doc and bin into a GLB container.
func encodeGLB(t *testing.T, doc *gltfDocument, bin []byte) []byte {
	t.Helper()
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}
	if len(doc.Buffers) == 0 {
		doc.Buffers = []gltfBuffer{{ByteLength: len(bin)}}
	}

	js, err := json.Marshal(doc)
	require.NoError(t, err)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}

	var out bytes.Buffer
	total := gltfGLBHeaderSize + gltfGLBChunkHeader + len(js) + gltfGLBChunkHeader + len(bin)
	for _, v := range []uint32{gltfGLBMagic, gltfGLBVersion, uint32(total), uint32(len(js)), gltfGLBChunkJSON} {
		_ = binary.Write(&out, binary.LittleEndian, v)
	}
	out.Write(js)
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(bin)))
	_ = binary.Write(&out, binary.LittleEndian, uint32(gltfGLBChunkBIN))
	out.Write(bin)
	return out.Bytes()
}

// writeGLB encodes doc and bin and writes them to dir/name.
func writeGLB(t *testing.T, dir, name string, doc *gltfDocument, bin *bytes.Buffer) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encodeGLB(t, doc, bin.Bytes()), 0o644))
	return path
}

// solidPNG returns a w x h PNG filled with c.
func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
