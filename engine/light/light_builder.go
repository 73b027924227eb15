package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a Light during construction.
type LightBuilderOption func(*Light)

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a Light
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *Light) {
		l.Direction = mgl32.Vec3{x, y, z}
		l.Direction = l.NormalizedDirection()
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a Light
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *Light) {
		l.Color = mgl32.Vec3{r, g, b}
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
// For directional lights this is the illuminance.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a Light
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *Light) {
		l.Intensity = intensity
	}
}

// WithAttenuation is an option builder that sets the point light falloff
// 1 / (constant + linear*d + quadratic*d*d).
//
// Parameters:
//   - constant: the constant term
//   - linear: the linear term
//   - quadratic: the quadratic term
//
// Returns:
//   - LightBuilderOption: a function that applies the attenuation option to a Light
func WithAttenuation(constant, linear, quadratic float32) LightBuilderOption {
	return func(l *Light) {
		l.Constant = constant
		l.Linear = linear
		l.Quadratic = quadratic
	}
}

// WithCastsShadows is an option builder that sets whether the light is eligible for shadow mapping.
//
// Parameters:
//   - castsShadows: true to enable shadow casting
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow option to a Light
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *Light) {
		l.CastsShadows = castsShadows
	}
}
