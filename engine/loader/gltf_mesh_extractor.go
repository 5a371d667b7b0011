package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts glTF mesh primitives into model-space ImportedMesh values.
type gltfMeshExtractor interface {
	// ExtractMesh extracts every primitive of a mesh, transformed by world.
	// Normals are transformed by the inverse transpose of world; winding is
	// flipped when world mirrors geometry.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//   - world: the accumulated node matrix placing the mesh in model space
	//
	// Returns:
	//   - []model.ImportedMesh: one ImportedMesh per primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int, world mgl32.Mat4) ([]model.ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int, world mgl32.Mat4) ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	result := make([]model.ImportedMesh, 0, len(mesh.Primitives))
	for i := range mesh.Primitives {
		imported, err := e.extractPrimitive(&mesh.Primitives[i], mesh.Name, i, world)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, i, err)
		}
		result = append(result, imported)
	}
	return result, nil
}

// extractPrimitive reads one triangle primitive into an ImportedMesh.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, meshName string, primIndex int, world mgl32.Mat4) (model.ImportedMesh, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return model.ImportedMesh{}, fmt.Errorf("unsupported primitive mode: %d (only triangles supported)", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return model.ImportedMesh{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, n, err := e.parser.ReadFloats(posAccessor, false)
	if err != nil {
		return model.ImportedMesh{}, fmt.Errorf("failed to read positions: %w", err)
	}
	if n != 3 {
		return model.ImportedMesh{}, fmt.Errorf("POSITION must be VEC3, got %d components", n)
	}

	count := len(positions) / 3
	vertices := make([]model.GPUVertex, count)
	for i := range vertices {
		p := common.TransformPoint(world, mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]})
		vertices[i].Position = p
		vertices[i].Color = [4]float32{1, 1, 1, 1}
	}

	hasNormals := false
	if acc, ok := prim.Attributes["NORMAL"]; ok {
		normals, n, err := e.parser.ReadFloats(acc, false)
		if err != nil {
			return model.ImportedMesh{}, fmt.Errorf("failed to read normals: %w", err)
		}
		if n == 3 {
			normalMat := normalMatrix3(world)
			for i := 0; i < count && i*3+2 < len(normals); i++ {
				v := mgl32.Vec3{normals[i*3], normals[i*3+1], normals[i*3+2]}
				vertices[i].Normal = common.TransformDirection(normalMat, v)
			}
			hasNormals = true
		}
	}

	if acc, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, n, err := e.parser.ReadFloats(acc, false)
		if err != nil {
			return model.ImportedMesh{}, fmt.Errorf("failed to read texcoords: %w", err)
		}
		if n == 2 {
			for i := 0; i < count && i*2+1 < len(uvs); i++ {
				vertices[i].TexCoord = [2]float32{uvs[i*2], uvs[i*2+1]}
			}
		}
	}

	if acc, ok := prim.Attributes["COLOR_0"]; ok {
		colors, n, err := e.parser.ReadFloats(acc, true)
		if err != nil {
			return model.ImportedMesh{}, fmt.Errorf("failed to read colors: %w", err)
		}
		if n != 3 && n != 4 {
			return model.ImportedMesh{}, fmt.Errorf("COLOR_0 must be VEC3 or VEC4, got %d components", n)
		}
		for i := 0; i < count && (i+1)*n <= len(colors); i++ {
			c := colors[i*n : (i+1)*n]
			vertices[i].Color = [4]float32{c[0], c[1], c[2], 1}
			if n == 4 {
				vertices[i].Color[3] = c[3]
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndices(*prim.Indices)
		if err != nil {
			return model.ImportedMesh{}, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= count {
				return model.ImportedMesh{}, fmt.Errorf("index %d out of range for %d vertices", idx, count)
			}
		}
	} else {
		indices = make([]uint32, count)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	indices = indices[:len(indices)/3*3]

	if world.Mat3().Det() < 0 {
		for i := 0; i < len(indices); i += 3 {
			indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
		}
	}

	if !hasNormals {
		generateNormals(vertices, indices)
	}

	materialIndex := -1
	if prim.Material != nil {
		materialIndex = *prim.Material
	}

	name := meshName
	if name == "" {
		name = "mesh"
	}
	if primIndex > 0 {
		name = fmt.Sprintf("%s_prim%d", name, primIndex)
	}

	bmin, bmax := boundingBox(vertices)
	return model.ImportedMesh{
		Name:          name,
		Vertices:      vertices,
		Indices:       indices,
		MaterialIndex: materialIndex,
		BoundingMin:   bmin,
		BoundingMax:   bmax,
	}, nil
}

// normalMatrix3 returns the inverse transpose of the upper 3x3 of m, or the identity when m is singular.
func normalMatrix3(m mgl32.Mat4) mgl32.Mat3 {
	n := m.Mat3()
	if n.Det() == 0 {
		return mgl32.Ident3()
	}
	return n.Inv().Transpose()
}

// boundingBox computes the axis-aligned bounding box of the vertex positions.
func boundingBox(vertices []model.GPUVertex) (bmin, bmax [3]float32) {
	if len(vertices) == 0 {
		return
	}
	bmin, bmax = vertices[0].Position, vertices[0].Position
	for _, v := range vertices[1:] {
		for j := range 3 {
			bmin[j] = min(bmin[j], v.Position[j])
			bmax[j] = max(bmax[j], v.Position[j])
		}
	}
	return
}

// generateNormals computes smooth vertex normals by accumulating area-weighted face
// normals onto each triangle's vertices. Vertices touched only by degenerate triangles
// get +Y.
//
// Parameters:
//   - vertices: the vertex slice to write normal data into
//   - indices: the triangle index buffer (a multiple of 3)
func generateNormals(vertices []model.GPUVertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := mgl32.Vec3(vertices[i0].Position)
		p1 := mgl32.Vec3(vertices[i1].Position)
		p2 := mgl32.Vec3(vertices[i2].Position)

		face := p1.Sub(p0).Cross(p2.Sub(p0))
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	for i, n := range accum {
		if l := n.Len(); l > 1e-6 && !math32.IsNaN(l) {
			vertices[i].Normal = n.Mul(1 / l)
		} else {
			vertices[i].Normal = [3]float32{0, 1, 0}
		}
	}
}
