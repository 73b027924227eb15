package shadow

import "go.uber.org/zap"

// PassBuilderOption is a functional option applied to a shadow pass during construction via NewPass.
type PassBuilderOption func(*pass)

// WithLogger sets the logger for skipped passes.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - PassBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) PassBuilderOption {
	return func(p *pass) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithResolution sets the directional and point shadow map resolutions.
//
// Parameters:
//   - directional: the directional map edge length in texels
//   - point: the cube face edge length in texels
//
// Returns:
//   - PassBuilderOption: option function to apply
func WithResolution(directional, point int) PassBuilderOption {
	return func(p *pass) {
		if directional > 0 {
			p.resolution = directional
		}
		if point > 0 {
			p.pointResolution = point
		}
	}
}

// WithMaxPointShadows sets how many point lights get a cube shadow map. The engine
// replaces it with its light system's limit.
//
// Parameters:
//   - n: the slot count
//
// Returns:
//   - PassBuilderOption: option function to apply
func WithMaxPointShadows(n int) PassBuilderOption {
	return func(p *pass) {
		if n >= 0 {
			p.maxPointShadows = n
		}
	}
}

// WithDirectionalFrustum sets the directional light's eye distance and orthographic box.
//
// Parameters:
//   - distance: eye distance from the origin along the light direction
//   - halfExtent: orthographic half-size in world units
//   - near: the near plane
//   - far: the far plane
//
// Returns:
//   - PassBuilderOption: option function to apply
func WithDirectionalFrustum(distance, halfExtent, near, far float32) PassBuilderOption {
	return func(p *pass) {
		p.distance = distance
		p.halfExtent = halfExtent
		p.near = near
		p.far = far
	}
}

// WithPointFarPlane sets the far plane of the point shadow projection.
//
// Parameters:
//   - far: the far plane
//
// Returns:
//   - PassBuilderOption: option function to apply
func WithPointFarPlane(far float32) PassBuilderOption {
	return func(p *pass) {
		if far > 0 {
			p.pointFar = far
		}
	}
}
