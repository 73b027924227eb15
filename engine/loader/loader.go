// Package loader imports glTF 2.0 and GLB documents into format-neutral
// model.ImportedModel values and caches them by path.
package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for files whose extension no backend accepts and for
// documents that require extensions the importer does not implement.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	logger *zap.Logger

	modelCache map[string]*model.ImportedModel

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching 3D models.
// It abstracts the file format (glTF, GLB, etc.) behind a generic backend and
// manages a cache of previously loaded models.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by cleaned path), the cached version is returned.
	// A leading ~ in the path expands to the home directory.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *model.ImportedModel: the loaded and cached model
	//   - error: ErrUnsupportedFormat for unknown extensions, or the wrapped import error
	Load(path string) (*model.ImportedModel, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key and model name
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *model.ImportedModel: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*model.ImportedModel, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *model.ImportedModel: the cached model or nil
	Get(name string) *model.ImportedModel

	// Models returns a snapshot of the model cache.
	//
	// Returns:
	//   - map[string]*model.ImportedModel: all cached models keyed by name
	Models() map[string]*model.ImportedModel
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:     zap.NewNop(),
		modelCache: make(map[string]*model.ImportedModel),
	}

	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.logger)
	default:
		panic(fmt.Sprintf("loader: unknown backend type %d", backendType))
	}
	return l
}

func (l *loader) Load(path string) (*model.ImportedModel, error) {
	expanded, err := common.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", path, err)
	}
	key := filepath.Clean(expanded)

	if cached := l.Get(key); cached != nil {
		return cached, nil
	}

	ext := strings.ToLower(filepath.Ext(key))
	if !slices.Contains(l.backend.Extensions(), ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	imported, err := l.backend.Load(key)
	if err != nil {
		l.logger.Error("model load failed", zap.String("path", key), zap.Error(err))
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	l.store(key, imported)
	return imported, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*model.ImportedModel, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	imported, err := l.backend.LoadReader(name, r, isGLB, "")
	if err != nil {
		l.logger.Error("model load failed", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	l.store(name, imported)
	return imported, nil
}

// store caches the model, keeping the first one when two loads race.
func (l *loader) store(key string, imported *model.ImportedModel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.modelCache[key]; ok {
		return
	}
	l.modelCache[key] = imported
	l.logger.Debug("model loaded",
		zap.String("key", key),
		zap.Int("meshes", len(imported.Meshes)),
		zap.Int("materials", len(imported.Materials)),
		zap.Int("nodes", len(imported.Nodes)),
		zap.Int("cameras", len(imported.Cameras)),
	)
}

func (l *loader) Get(name string) *model.ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]*model.ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]*model.ImportedModel, len(l.modelCache))
	for k, v := range l.modelCache {
		out[k] = v
	}
	return out
}
