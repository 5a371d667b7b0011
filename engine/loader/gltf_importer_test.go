package loader

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importGLB(t *testing.T, doc *gltfDocument, bin *bytes.Buffer) *model.ImportedModel {
	t.Helper()
	imported, err := newGLTFImporter().LoadReader(bytes.NewReader(encodeGLB(t, doc, bin.Bytes())), true, "")
	require.NoError(t, err)
	return imported
}

func positions(mesh model.ImportedMesh) [][3]float32 {
	out := make([][3]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		out[i] = v.Position
	}
	return out
}

func TestImportWithoutNodes(t *testing.T) {
	doc, bin := triangleDoc()
	imported := importGLB(t, doc, bin)

	require.Len(t, imported.Meshes, 1)
	mesh := imported.Meshes[0]
	assert.Equal(t, "body", mesh.Name)
	assert.Equal(t, -1, mesh.MaterialIndex)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assert.Equal(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, positions(mesh))
	assert.Empty(t, imported.Name)

	for _, v := range mesh.Vertices {
		assert.Equal(t, [3]float32{0, 0, 1}, v.Normal, "missing normals are generated from the winding")
		assert.Equal(t, [4]float32{1, 1, 1, 1}, v.Color)
	}
	assert.Equal(t, [3]float32{0, 0, 0}, mesh.BoundingMin)
	assert.Equal(t, [3]float32{1, 1, 0}, mesh.BoundingMax)
}

func TestImportBakesNodeTransforms(t *testing.T) {
	doc, bin := triangleDoc(
		gltfNode{Name: "root", Translation: ptr([3]float32{1, 0, 0}), Children: []int{1}},
		gltfNode{Name: "car", Mesh: ptr(0), Scale: ptr([3]float32{2, 2, 2})},
	)
	imported := importGLB(t, doc, bin)

	require.Len(t, imported.Meshes, 1)
	assert.Equal(t, [][3]float32{{1, 0, 0}, {3, 0, 0}, {1, 2, 0}}, positions(imported.Meshes[0]))
}

func TestImportInstancesMeshPerNode(t *testing.T) {
	doc, bin := triangleDoc(
		gltfNode{Mesh: ptr(0)},
		gltfNode{Mesh: ptr(0), Translation: ptr([3]float32{0, 10, 0})},
	)
	doc.Scenes = []gltfScene{{Name: "garage", Nodes: []int{0, 1}}}
	doc.Scene = ptr(0)
	imported := importGLB(t, doc, bin)

	require.Len(t, imported.Meshes, 2)
	assert.Equal(t, [3]float32{0, 11, 0}, imported.Meshes[1].Vertices[2].Position)
	assert.Equal(t, "garage", imported.Name)
}

func TestImportMirroredNodeFlipsWinding(t *testing.T) {
	doc, bin := triangleDoc(gltfNode{Mesh: ptr(0), Scale: ptr([3]float32{-1, 1, 1})})
	imported := importGLB(t, doc, bin)

	mesh := imported.Meshes[0]
	assert.Equal(t, []uint32{0, 2, 1}, mesh.Indices)
	assert.Equal(t, [3]float32{-1, 0, 0}, mesh.Vertices[1].Position)
	assert.Equal(t, [3]float32{0, 0, 1}, mesh.Vertices[0].Normal)
}

func TestImportRejectsNodeCycle(t *testing.T) {
	doc, bin := triangleDoc(
		gltfNode{Children: []int{1}},
		gltfNode{Mesh: ptr(0), Children: []int{0}},
	)
	doc.Scenes = []gltfScene{{Nodes: []int{0}}}
	_, err := newGLTFImporter().LoadReader(bytes.NewReader(encodeGLB(t, doc, bin.Bytes())), true, "")
	assert.ErrorContains(t, err, "cycle")
}

func TestImportMaterialWithEmbeddedTexture(t *testing.T) {
	doc, bin := triangleDoc()
	view := appendView(doc, bin, solidPNG(t, 4, 4, color.RGBA{B: 255, A: 255}))
	doc.Images = []gltfImage{{Name: "livery", BufferView: ptr(view), MimeType: "image/png"}}
	doc.Samplers = []gltfSampler{{MagFilter: ptr(gltfFilterNearest), MinFilter: ptr(gltfFilterLinearMipmapLinear), WrapS: ptr(gltfWrapClampToEdge)}}
	doc.Textures = []gltfTexture{{Sampler: ptr(0), Source: ptr(0)}}
	doc.Materials = []gltfMaterial{{
		Name:        "paint",
		DoubleSided: true,
		PbrMetallicRoughness: &gltfPbrMetallicRoughness{
			BaseColorFactor:  ptr([4]float32{1, 0, 0, 1}),
			BaseColorTexture: &gltfTextureInfo{Index: 0},
			MetallicFactor:   ptr(float32(0.25)),
		},
	}}
	doc.Meshes[0].Primitives[0].Material = ptr(0)

	imported := importGLB(t, doc, bin)
	require.Len(t, imported.Materials, 1)
	assert.Equal(t, 0, imported.Meshes[0].MaterialIndex)

	mat := imported.Materials[0]
	assert.Equal(t, "paint", mat.Name)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, mat.BaseColor)
	assert.Equal(t, float32(0.25), mat.Metallic)
	assert.Equal(t, float32(1), mat.Roughness)
	assert.True(t, mat.DoubleSided)

	require.NotNil(t, mat.DiffuseTexture)
	assert.Equal(t, "livery", mat.DiffuseTexture.Name)
	assert.NotEmpty(t, mat.DiffuseTexture.Data)
	assert.Equal(t, &common.SamplerData{
		MagFilter:    common.FilterNearest,
		MinFilter:    common.FilterLinear,
		MipmapFilter: common.FilterLinear,
		WrapU:        common.WrapClampToEdge,
	}, mat.DiffuseTexture.Sampler)
}

func TestImportMissingMaterial(t *testing.T) {
	doc, bin := triangleDoc()
	doc.Meshes[0].Primitives[0].Material = ptr(3)
	_, err := newGLTFImporter().LoadReader(bytes.NewReader(encodeGLB(t, doc, bin.Bytes())), true, "")
	assert.ErrorContains(t, err, "missing material")
}

func TestImportRejectsOutOfRangeIndex(t *testing.T) {
	doc, bin := triangleDoc()
	raw := bin.Bytes()
	raw[36+4] = 9
	_, err := newGLTFImporter().LoadReader(bytes.NewReader(encodeGLB(t, doc, raw)), true, "")
	assert.ErrorContains(t, err, "out of range")
}

func TestImportNonTriangleMode(t *testing.T) {
	doc, bin := triangleDoc()
	doc.Meshes[0].Primitives[0].Mode = ptr(1)
	_, err := newGLTFImporter().LoadReader(bytes.NewReader(encodeGLB(t, doc, bin.Bytes())), true, "")
	assert.ErrorContains(t, err, "primitive mode")
}
