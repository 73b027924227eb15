package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"go.uber.org/zap"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - logger: passed to the importer
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(logger *zap.Logger) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(logger),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*model.ImportedModel, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, isGLB bool, baseDir string) (*model.ImportedModel, error) {
	return b.importer.ImportReader(name, r, isGLB, baseDir)
}

func (b *gltfLoaderBackendImpl) Extensions() []string {
	return []string{".gltf", ".glb"}
}
