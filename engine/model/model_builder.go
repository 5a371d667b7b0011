package model

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName sets the model name.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithPath records the asset path the model was loaded from.
//
// Parameters:
//   - path: the source path
//
// Returns:
//   - ModelBuilderOption: a function that applies the path option to a model
func WithPath(path string) ModelBuilderOption {
	return func(m *model) {
		m.path = path
	}
}

// WithMeshes appends mesh primitives to the model.
//
// Parameters:
//   - meshes: the meshes to add
//
// Returns:
//   - ModelBuilderOption: a function that applies the meshes option to a model
func WithMeshes(meshes ...ImportedMesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = append(m.meshes, meshes...)
	}
}

// WithMaterials appends materials to the model.
//
// Parameters:
//   - materials: the materials to add
//
// Returns:
//   - ModelBuilderOption: a function that applies the materials option to a model
func WithMaterials(materials ...common.ImportedMaterial) ModelBuilderOption {
	return func(m *model) {
		m.materials = append(m.materials, materials...)
	}
}
