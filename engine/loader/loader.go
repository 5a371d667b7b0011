package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// ErrUnsupportedFormat is returned for model files whose extension has no backend.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache     map[string]model.Model
	backend        loaderBackend
	maxTextureSize int
	logger         *slog.Logger
}

// Loader defines the public-facing interface for loading and caching 3D models.
// It abstracts the file format behind a backend and keeps a cache of loaded models
// keyed by path. Loader is safe for concurrent use; AsyncLoader calls it from
// worker goroutines.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	// Base color textures are decoded (and downscaled to the max texture size) before
	// the model is returned; a texture that fails to decode is dropped with a warning
	// and its material renders untextured.
	//
	// Parameters:
	//   - path: the file path to the model file (.gltf or .glb)
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: ErrUnsupportedFormat for unknown extensions, or the parse error
	Load(path string) (model.Model, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (model.Model, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Evict removes a model from the cache so the next Load reads the file again.
	//
	// Parameters:
	//   - name: the cache key to remove
	//
	// Returns:
	//   - bool: true if the key was cached
	Evict(name string) bool

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by name
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader for glTF 2.0 (.gltf and .glb) files with the options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader instance
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]model.Model),
		backend:    newGLTFImporter(),
		logger:     slog.Default(),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	if err := checkFormat(path); err != nil {
		return nil, err
	}

	imported, err := l.backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.store(path, imported, path), nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (model.Model, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	imported, err := l.backend.LoadReader(r, isGLB, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.store(name, imported, ""), nil
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Evict(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.modelCache[name]
	delete(l.modelCache, name)
	return ok
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.modelCache)
}

// store decodes textures, wraps the import as a Model and caches it under key.
func (l *loader) store(key string, imported *model.ImportedModel, path string) model.Model {
	l.stageTextures(imported)
	if imported.Name == "" {
		imported.Name = key
	}
	m := model.FromImported(imported, path)

	l.mu.Lock()
	l.modelCache[key] = m
	l.mu.Unlock()

	l.logger.Debug("model loaded",
		"name", m.Name(),
		"path", key,
		"meshes", len(m.Meshes()),
		"vertices", m.VertexCount(),
		"triangles", m.TriangleCount())
	return m
}

// stageTextures decodes every base color texture ahead of GPU upload.
func (l *loader) stageTextures(imported *model.ImportedModel) {
	for i := range imported.Materials {
		mat := &imported.Materials[i]
		if mat.DiffuseTexture == nil {
			continue
		}
		if _, err := mat.DiffuseTexture.Decode(l.maxTextureSize); err != nil {
			l.logger.Warn("texture dropped", "material", mat.Name, "texture", mat.DiffuseTexture.Name, "err", err)
			mat.DiffuseTexture = nil
		}
	}
}

// checkFormat rejects paths whose extension no backend understands.
func checkFormat(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
