package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"go.uber.org/zap"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	logger *zap.Logger
}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It combines the parser and all extractors to produce a complete ImportedModel.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts meshes, materials, cameras and nodes.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *model.ImportedModel: the fully populated imported model
	//   - error: error if import fails
	Import(path string) (*model.ImportedModel, error)

	// ImportReader loads a glTF document from a reader and extracts all data.
	//
	// Parameters:
	//   - name: the model name, also used as the fallback when the document names no scene
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//   - baseDir: directory external buffers and images resolve against
	//
	// Returns:
	//   - *model.ImportedModel: the fully populated imported model
	//   - error: error if import fails
	ImportReader(name string, r io.Reader, isGLB bool, baseDir string) (*model.ImportedModel, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - logger: receives warnings about skipped content
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(logger *zap.Logger) gltfImporter {
	return &gltfImporterImpl{logger: logger}
}

func (imp *gltfImporterImpl) Import(path string) (*model.ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(parser, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool, baseDir string) (*model.ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB, baseDir); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return imp.importFromParser(parser, name)
}

// importFromParser runs every extractor over a parsed document.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName string) (*model.ImportedModel, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	meshes, primitives, err := newGLTFMeshExtractor(parser, imp.logger).ExtractAllMeshes()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	materials, err := newGLTFMaterialExtractor(parser).ExtractAllMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}
	for i := range meshes {
		if meshes[i].MaterialIndex >= len(materials) {
			imp.logger.Warn("mesh references missing material, using default",
				zap.String("mesh", meshes[i].Name), zap.Int("material", meshes[i].MaterialIndex))
			meshes[i].MaterialIndex = -1
		}
	}

	nodeExtractor := newGLTFNodeExtractor(parser, imp.logger)
	cameras, cameraMapping := nodeExtractor.ExtractCameras()
	nodes, roots, err := nodeExtractor.ExtractNodes(primitives, cameraMapping)
	if err != nil {
		return nil, fmt.Errorf("node extraction failed: %w", err)
	}

	return &model.ImportedModel{
		Name:      gltfExtractModelName(doc, fallbackName),
		Meshes:    meshes,
		Materials: materials,
		Cameras:   cameras,
		Nodes:     nodes,
		Roots:     roots,
	}, nil
}

// gltfExtractModelName prefers the default scene's name over the fallback.
func gltfExtractModelName(doc *gltfDocument, fallback string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if fallback != "" {
		return fallback
	}
	return "unnamed_model"
}
