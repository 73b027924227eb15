package resource

import "go.uber.org/zap"

type cacheConfig struct {
	logger *zap.Logger
	name   string
}

// CacheBuilderOption is a functional option applied to a cache during construction via NewCache.
type CacheBuilderOption func(*cacheConfig)

// WithLogger sets the logger used for lookup misses and initialization failures.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op logger
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) CacheBuilderOption {
	return func(c *cacheConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithName sets the cache name reported in log fields, e.g. "mesh" or "texture".
//
// Parameters:
//   - name: the cache name
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithName(name string) CacheBuilderOption {
	return func(c *cacheConfig) {
		c.name = name
	}
}
