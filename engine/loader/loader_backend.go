package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// loaderBackend defines the format-specific half of the Loader.
// Concrete implementations (e.g., gltfImporter) handle file format details.
type loaderBackend interface {
	// Load performs a full model import from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	Load(path string) (*model.ImportedModel, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//   - baseDir: directory for resolving external URIs, may be empty
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	LoadReader(r io.Reader, isGLB bool, baseDir string) (*model.ImportedModel, error)
}
