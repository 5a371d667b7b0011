package model

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// modelCount is an atomic counter used to give every model instance a unique ID.
var modelCount atomic.Uint64

// model is the implementation of the Model interface.
type model struct {
	id          uint64
	name        string
	path        string
	meshes      []ImportedMesh
	materials   []common.ImportedMaterial
	boundingMin [3]float32
	boundingMax [3]float32
}

// Model defines the interface for a loaded 3D model.
// A Model is an immutable CPU-side container of model-space mesh primitives and their
// materials. GPU resources for it are created and owned by the renderer, keyed by ID.
type Model interface {
	// ID returns the unique identifier of this model instance.
	//
	// Returns:
	//   - uint64: the model ID
	ID() uint64

	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Path returns the asset path the model was loaded from, if any.
	//
	// Returns:
	//   - string: the source path
	Path() string

	// Meshes retrieves the mesh primitives of the model.
	//
	// Returns:
	//   - []ImportedMesh: the meshes
	Meshes() []ImportedMesh

	// Materials retrieves the materials referenced by the meshes.
	//
	// Returns:
	//   - []common.ImportedMaterial: the materials
	Materials() []common.ImportedMaterial

	// Material returns the material for a mesh material index, or nil for the default material.
	//
	// Parameters:
	//   - index: the material index stored on a mesh
	//
	// Returns:
	//   - *common.ImportedMaterial: the material or nil
	Material(index int) *common.ImportedMaterial

	// Bounds returns the axis-aligned bounding box enclosing all meshes.
	//
	// Returns:
	//   - min, max: the box corners
	Bounds() (min, max [3]float32)

	// VertexCount returns the total number of vertices over all meshes.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// TriangleCount returns the total number of triangles over all meshes.
	//
	// Returns:
	//   - int: the triangle count
	TriangleCount() int
}

var _ Model = &model{}

// NewModel creates a new Model configured with the provided options.
// The bounding box is derived from the meshes.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions to configure the model
//
// Returns:
//   - Model: a new Model instance
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{id: modelCount.Add(1)}
	for _, opt := range options {
		opt(m)
	}
	m.computeBounds()
	return m
}

// FromImported wraps an ImportedModel as a Model.
//
// Parameters:
//   - imported: the imported model data
//   - path: the path the data was loaded from
//
// Returns:
//   - Model: a new Model instance
func FromImported(imported *ImportedModel, path string) Model {
	return NewModel(
		WithName(imported.Name),
		WithPath(path),
		WithMeshes(imported.Meshes...),
		WithMaterials(imported.Materials...),
	)
}

func (m *model) ID() uint64 {
	return m.id
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Path() string {
	return m.path
}

func (m *model) Meshes() []ImportedMesh {
	return m.meshes
}

func (m *model) Materials() []common.ImportedMaterial {
	return m.materials
}

func (m *model) Material(index int) *common.ImportedMaterial {
	if index < 0 || index >= len(m.materials) {
		return nil
	}
	return &m.materials[index]
}

func (m *model) Bounds() (min, max [3]float32) {
	return m.boundingMin, m.boundingMax
}

func (m *model) VertexCount() int {
	n := 0
	for i := range m.meshes {
		n += len(m.meshes[i].Vertices)
	}
	return n
}

func (m *model) TriangleCount() int {
	n := 0
	for i := range m.meshes {
		n += len(m.meshes[i].Indices) / 3
	}
	return n
}

func (m *model) computeBounds() {
	if len(m.meshes) == 0 {
		return
	}
	m.boundingMin = m.meshes[0].BoundingMin
	m.boundingMax = m.meshes[0].BoundingMax
	for _, mesh := range m.meshes[1:] {
		for i := range 3 {
			m.boundingMin[i] = min(m.boundingMin[i], mesh.BoundingMin[i])
			m.boundingMax[i] = max(m.boundingMax[i], mesh.BoundingMax[i])
		}
	}
}
