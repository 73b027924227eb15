package light

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects all fragments
	// uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Used for bare bulbs, lanterns and candle flames. The position comes from the
	// entity's GlobalTransform.
	LightTypePoint
)

// String returns the light type name used in log fields.
func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	default:
		return "unknown"
	}
}

// Light is the light component. It is a closed variant over LightType: the
// attenuation fields are only read for point lights and Direction only for
// directional lights.
//
// A light is active when its intensity is non-zero. Activity is derived every
// frame and never stored, so setting the intensity to 0 switches a light off
// without removing the component.
type Light struct {
	Type LightType

	// Color is the linear RGB color.
	Color mgl32.Vec3

	// Intensity scales Color. For directional lights this is the illuminance.
	Intensity float32

	// Direction is the world-space direction the light travels (directional only).
	Direction mgl32.Vec3

	// Constant, Linear and Quadratic are the attenuation coefficients (point only).
	Constant  float32
	Linear    float32
	Quadratic float32

	// CastsShadows makes the light eligible for a shadow map.
	CastsShadows bool
}

// NewDirectional creates a directional light pointing straight down with unit illuminance.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the light component
func NewDirectional(opts ...LightBuilderOption) Light {
	l := Light{
		Type:         LightTypeDirectional,
		Color:        mgl32.Vec3{1, 1, 1},
		Intensity:    1.0,
		Direction:    mgl32.Vec3{0, -1, 0},
		CastsShadows: true,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// NewPoint creates a point light with unit intensity and a roughly 50 unit falloff.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the light component
func NewPoint(opts ...LightBuilderOption) Light {
	l := Light{
		Type:         LightTypePoint,
		Color:        mgl32.Vec3{1, 1, 1},
		Intensity:    1.0,
		Constant:     1.0,
		Linear:       0.09,
		Quadratic:    0.032,
		CastsShadows: true,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// Active reports whether the light contributes any energy.
func (l *Light) Active() bool {
	return l.Intensity != 0
}

// Radiance returns the color scaled by the intensity.
func (l *Light) Radiance() mgl32.Vec3 {
	return l.Color.Mul(l.Intensity)
}

// NormalizedDirection returns Direction normalized, or straight down when it is zero.
func (l *Light) NormalizedDirection() mgl32.Vec3 {
	return common.SafeNormalize(l.Direction, mgl32.Vec3{0, -1, 0})
}
