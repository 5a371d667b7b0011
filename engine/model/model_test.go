package model

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(offset float32) ImportedMesh {
	return ImportedMesh{
		Name: "tri",
		Vertices: []GPUVertex{
			{Position: [3]float32{offset, 0, 0}},
			{Position: [3]float32{offset + 1, 0, 0}},
			{Position: [3]float32{offset, 1, 0}},
		},
		Indices:       []uint32{0, 1, 2},
		MaterialIndex: 0,
		BoundingMin:   [3]float32{offset, 0, 0},
		BoundingMax:   [3]float32{offset + 1, 1, 0},
	}
}

func TestNewModel(t *testing.T) {
	m := NewModel(
		WithName("rx7"),
		WithPath("3dmodels/rx7fcedit.glb"),
		WithMeshes(triangle(-2), triangle(3)),
		WithMaterials(common.ImportedMaterial{Name: "paint", BaseColor: [4]float32{1, 0, 0, 1}}),
	)

	assert.Equal(t, "rx7", m.Name())
	assert.Equal(t, "3dmodels/rx7fcedit.glb", m.Path())
	assert.Len(t, m.Meshes(), 2)
	assert.Equal(t, 6, m.VertexCount())
	assert.Equal(t, 2, m.TriangleCount())

	lo, hi := m.Bounds()
	assert.Equal(t, [3]float32{-2, 0, 0}, lo)
	assert.Equal(t, [3]float32{4, 1, 0}, hi)

	require.NotNil(t, m.Material(0))
	assert.Equal(t, "paint", m.Material(0).Name)
	assert.Nil(t, m.Material(-1))
	assert.Nil(t, m.Material(1))
}

func TestModelIDsAreUnique(t *testing.T) {
	a := NewModel()
	b := FromImported(&ImportedModel{Name: "b"}, "b.glb")
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "b.glb", b.Path())

	lo, hi := a.Bounds()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestMarshalVertices(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{0, 1, 0},
		TexCoord: [2]float32{0.5, 0.25},
		Color:    [4]float32{1, 1, 1, 1},
	}
	assert.Equal(t, GPUVertexSize, v.Size())

	buf := MarshalVertices([]GPUVertex{{}, v})
	require.Len(t, buf, 2*GPUVertexSize)
	assert.Equal(t, v.Marshal(), buf[GPUVertexSize:])

	at := func(off int) float32 {
		return math32.Float32frombits(binary.LittleEndian.Uint32(buf[GPUVertexSize+off:]))
	}
	assert.Equal(t, float32(3), at(8))
	assert.Equal(t, float32(1), at(16))
	assert.Equal(t, float32(0.25), at(28))
	assert.Equal(t, float32(1), at(44))
}

func TestMarshalIndices(t *testing.T) {
	buf := MarshalIndices([]uint32{1, 0x01020304})
	assert.Equal(t, []byte{1, 0, 0, 0, 4, 3, 2, 1}, buf)
}

func TestGPUModelData(t *testing.T) {
	g := GPUModelData{}
	g.Model[12] = 7
	g.Normal[4] = 2
	assert.Equal(t, 112, g.Size())

	buf := g.Marshal()
	require.Len(t, buf, 112)
	assert.Equal(t, float32(7), math32.Float32frombits(binary.LittleEndian.Uint32(buf[48:])))
	assert.Equal(t, float32(2), math32.Float32frombits(binary.LittleEndian.Uint32(buf[80:])))
}
