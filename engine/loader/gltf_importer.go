package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfImporter is the glTF/GLB loaderBackend. It combines the parser, the node
// walker and the extractors into a complete ImportedModel.
type gltfImporter struct{}

var _ loaderBackend = &gltfImporter{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - loaderBackend: the importer
func newGLTFImporter() loaderBackend {
	return &gltfImporter{}
}

func (imp *gltfImporter) Load(path string) (*model.ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(parser, path)
}

func (imp *gltfImporter) LoadReader(r io.Reader, isGLB bool, baseDir string) (*model.ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB, baseDir); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return imp.importFromParser(parser, "")
}

// importFromParser walks the node hierarchy of a parsed document, baking every mesh
// instance into model space, then extracts the materials.
func (imp *gltfImporter) importFromParser(parser gltfParser, fallbackPath string) (*model.ImportedModel, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	meshExtractor := newGLTFMeshExtractor(parser)
	var meshes []model.ImportedMesh
	err := walkNodes(doc, func(_, meshIndex int, world mgl32.Mat4) error {
		extracted, err := meshExtractor.ExtractMesh(meshIndex, world)
		if err != nil {
			return err
		}
		meshes = append(meshes, extracted...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	materials, err := newGLTFMaterialExtractor(parser).ExtractAllMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}
	for i := range meshes {
		if meshes[i].MaterialIndex >= len(materials) {
			return nil, fmt.Errorf("mesh %q references missing material %d", meshes[i].Name, meshes[i].MaterialIndex)
		}
	}

	return &model.ImportedModel{
		Name:      gltfModelName(doc, fallbackPath),
		Meshes:    meshes,
		Materials: materials,
	}, nil
}

// gltfModelName derives a model name from the default scene name or the file name.
// It returns an empty string when neither is available.
func gltfModelName(doc *gltfDocument, fallbackPath string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if fallbackPath != "" {
		base := filepath.Base(fallbackPath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return ""
}
