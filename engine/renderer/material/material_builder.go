package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the albedo/diffuse RGBA color of the material.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithMetallic is an option builder that sets the metallic factor of the material.
//
// Parameters:
//   - metallic: the metallic factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic option to a material
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = metallic
	}
}

// WithRoughness is an option builder that sets the roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = roughness
	}
}

// WithTexture is an option builder that references a cached texture from a slot.
// A zero id leaves the slot empty.
//
// Parameters:
//   - slot: the texture slot
//   - id: the texture cache id
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(slot Slot, id resource.ID) MaterialBuilderOption {
	if int(slot) >= MaxTextureSlots {
		panic(fmt.Sprintf("material: texture slot %d out of range", slot))
	}
	return func(m *material) {
		m.slots[slot] = id
	}
}

// WithShaderKey is an option builder that sets the shader the material renders with.
//
// Parameters:
//   - key: the shader cache key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the shader key option to a material
func WithShaderKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.shaderKey = key
	}
}
