package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
)

// loaderBackend defines the generic interface for loading models from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
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
	//   - name: the model name
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//   - baseDir: directory relative references resolve against
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool, baseDir string) (*model.ImportedModel, error)

	// Extensions returns the lower-case file extensions, with dot, this backend accepts.
	Extensions() []string
}
