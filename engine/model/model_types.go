package model

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// ImportedModel represents a 3D model loaded from an external format.
// This is the universal format that importers produce; node transforms are already
// baked into vertex positions and normals.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Meshes contains all mesh primitives of the model.
	Meshes []ImportedMesh

	// Materials are the materials referenced by ImportedMesh.MaterialIndex.
	Materials []common.ImportedMaterial
}

// ImportedMesh represents a single mesh primitive within an imported model.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Vertices are the mesh vertices in model space.
	Vertices []GPUVertex

	// Indices are the triangle indices.
	Indices []uint32

	// MaterialIndex references ImportedModel.Materials, or -1 for the default material.
	MaterialIndex int

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin [3]float32

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax [3]float32
}
