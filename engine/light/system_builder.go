package light

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// SystemBuilderOption is a functional option applied to a light system during construction via NewSystem.
type SystemBuilderOption func(*system)

// WithLogger sets the logger for invalid shader warnings.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - SystemBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) SystemBuilderOption {
	return func(s *system) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAmbient sets the initial ambient color.
//
// Parameters:
//   - c: the ambient color
//
// Returns:
//   - SystemBuilderOption: option function to apply
func WithAmbient(c mgl32.Vec3) SystemBuilderOption {
	return func(s *system) {
		s.ambient = c
	}
}

// WithLimits sets the point light array size and the number of point shadow slots.
// Both must match the values the lit shader was compiled with.
//
// Parameters:
//   - maxPointLights: the size of u_pointLight
//   - maxPointShadows: the number of point shadow slots
//
// Returns:
//   - SystemBuilderOption: option function to apply
func WithLimits(maxPointLights, maxPointShadows int) SystemBuilderOption {
	return func(s *system) {
		if maxPointLights > 0 {
			s.maxPointLights = maxPointLights
		}
		if maxPointShadows >= 0 {
			s.maxPointShadows = maxPointShadows
		}
	}
}
