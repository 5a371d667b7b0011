package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glbHeader(magic, version, total uint32) []byte {
	b := make([]byte, gltfGLBHeaderSize)
	binary.LittleEndian.PutUint32(b[0:], magic)
	binary.LittleEndian.PutUint32(b[4:], version)
	binary.LittleEndian.PutUint32(b[8:], total)
	return b
}

func TestParseGLBContainerErrors(t *testing.T) {
	binOnly := append(glbHeader(gltfGLBMagic, gltfGLBVersion, 20), 0, 0, 0, 0, 0x42, 0x49, 0x4E, 0x00)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", []byte("glTF"), ErrTruncatedGLB},
		{"magic", glbHeader(0x12345678, gltfGLBVersion, 12), ErrInvalidGLBMagic},
		{"version", glbHeader(gltfGLBMagic, 1, 12), ErrInvalidGLBVersion},
		{"declared length", glbHeader(gltfGLBMagic, gltfGLBVersion, 4096), ErrTruncatedGLB},
		{"no json", binOnly, ErrMissingJSONChunk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newGLTFParser().ParseReader(bytes.NewReader(tt.data), true, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseDocumentErrors(t *testing.T) {
	doc, bin := triangleDoc()
	doc.Asset.Version = "1.0"
	err := newGLTFParser().ParseReader(bytes.NewReader(encodeGLB(t, doc, bin.Bytes())), true, "")
	assert.ErrorIs(t, err, ErrInvalidGLTFVersion)

	doc, bin = triangleDoc()
	doc.ExtensionsRequired = []string{"KHR_draco_mesh_compression"}
	err = newGLTFParser().ParseReader(bytes.NewReader(encodeGLB(t, doc, bin.Bytes())), true, "")
	assert.ErrorIs(t, err, ErrUnsupportedExtension)

	doc, bin = triangleDoc()
	doc.ExtensionsRequired = []string{"KHR_materials_unlit"}
	err = newGLTFParser().ParseReader(bytes.NewReader(encodeGLB(t, doc, bin.Bytes())), true, "")
	assert.NoError(t, err)

	doc, bin = triangleDoc()
	doc.Buffers = []gltfBuffer{{ByteLength: 1 << 20}}
	err = newGLTFParser().ParseReader(bytes.NewReader(encodeGLB(t, doc, bin.Bytes())), true, "")
	assert.ErrorIs(t, err, ErrBufferSizeMismatch)

	err = newGLTFParser().ParseReader(bytes.NewReader([]byte("{not json")), false, "")
	assert.Error(t, err)
}

func TestReadAccessors(t *testing.T) {
	doc, bin := triangleDoc()
	p := newGLTFParser()
	require.NoError(t, p.ParseReader(bytes.NewReader(encodeGLB(t, doc, bin.Bytes())), true, ""))

	positions, n, err := p.ReadFloats(0, false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, positions)

	indices, err := p.ReadIndices(1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, indices)

	_, err = p.ReadIndices(0)
	assert.Error(t, err, "VEC3 accessor cannot hold indices")
	_, _, err = p.ReadFloats(7, false)
	assert.Error(t, err)
}

func TestAccessorOutOfBounds(t *testing.T) {
	doc, bin := triangleDoc()
	doc.Accessors[0].Count = 100
	p := newGLTFParser()
	require.NoError(t, p.ParseReader(bytes.NewReader(encodeGLB(t, doc, bin.Bytes())), true, ""))

	_, _, err := p.ReadFloats(0, false)
	assert.ErrorIs(t, err, ErrAccessorOutOfBounds)
}

func TestParseEmbeddedJSON(t *testing.T) {
	doc, bin := triangleDoc()
	doc.Buffers = []gltfBuffer{{
		URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin.Bytes()),
		ByteLength: bin.Len(),
	}}
	js, err := json.Marshal(doc)
	require.NoError(t, err)

	p := newGLTFParser()
	require.NoError(t, p.ParseReader(bytes.NewReader(js), false, ""))
	indices, err := p.ReadIndices(1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, indices)
}

func TestDecodeDataURI(t *testing.T) {
	data, mime, err := decodeDataURI("data:image/png;base64,AQID")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, _, err = decodeDataURI("data:image/png,plain")
	assert.Error(t, err)
	_, _, err = decodeDataURI("data:nocomma")
	assert.Error(t, err)
}

func TestDecodeComponentNormalized(t *testing.T) {
	assert.Equal(t, float32(1), decodeComponent([]byte{255}, gltfComponentTypeUnsignedByte, true))
	assert.Equal(t, float32(-1), decodeComponent([]byte{0x80}, gltfComponentTypeByte, true))
	assert.Equal(t, float32(255), decodeComponent([]byte{255}, gltfComponentTypeUnsignedByte, false))
	assert.Equal(t, float32(1), decodeComponent([]byte{0xff, 0xff}, gltfComponentTypeUnsignedShort, true))
}
