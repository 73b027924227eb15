package assets

import "go.uber.org/zap"

// LibraryBuilderOption is a functional option applied to a library during construction via NewLibrary.
type LibraryBuilderOption func(*library)

// WithLogger sets the logger shared by the library and its caches.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - LibraryBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) LibraryBuilderOption {
	return func(l *library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithWorkers sets the number of texture decode workers.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LibraryBuilderOption: option function to apply
func WithWorkers(n int) LibraryBuilderOption {
	return func(l *library) {
		l.workers = n
	}
}

// WithLightLimits sets the array sizes compiled into the lit shader.
//
// Parameters:
//   - maxPointLights: the size of u_pointLight
//   - maxPointShadows: the size of u_pointShadowMap
//
// Returns:
//   - LibraryBuilderOption: option function to apply
func WithLightLimits(maxPointLights, maxPointShadows int) LibraryBuilderOption {
	return func(l *library) {
		if maxPointLights > 0 {
			l.maxPointLights = maxPointLights
		}
		if maxPointShadows > 0 {
			l.maxPointShadows = maxPointShadows
		}
	}
}
