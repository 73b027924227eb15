package loader

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"go.uber.org/zap"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger sets the logger used for load results and skipped content.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - m: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, m *model.ImportedModel) LoaderBuilderOption {
	return func(l *loader) {
		if m != nil {
			l.modelCache[key] = m
		}
	}
}
