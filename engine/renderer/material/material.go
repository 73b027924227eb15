// Package material provides the material resource: surface factors, a shader
// reference and a texture binding table that maps each texture slot to a fixed
// texture unit and sampler uniform.
package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// Slot is a texture slot of the binding table.
type Slot uint32

// Texture slots. A slot's value is the texture unit it binds to.
const (
	SlotDiffuse Slot = iota
	SlotNormal
	SlotMetallicRoughness

	// MaxTextureSlots is the number of units reserved for material textures.
	// Units from MaxTextureSlots upward belong to the shadow pass.
	MaxTextureSlots = 3
)

// Sampler uniform names per slot.
var slotUniforms = [MaxTextureSlots]string{
	SlotDiffuse:           "u_material.texture_diffuse",
	SlotNormal:            "u_material.texture_normal",
	SlotMetallicRoughness: "u_material.texture_metallicRoughness",
}

// Uniform returns the sampler uniform the slot is bound to.
//
// Returns:
//   - string: the uniform name
func (s Slot) Uniform() string {
	if int(s) >= MaxTextureSlots {
		return ""
	}
	return slotUniforms[s]
}

// Unit returns the texture unit of the slot.
//
// Returns:
//   - uint32: the texture unit
func (s Slot) Unit() uint32 {
	return uint32(s)
}

// material is the implementation of the Material interface.
type material struct {
	name      string
	baseColor [4]float32
	metallic  float32
	roughness float32
	shaderKey string

	textures resource.Cache[texture.Texture]
	slots    [MaxTextureSlots]resource.ID

	bound   [MaxTextureSlots]texture.Texture
	present [MaxTextureSlots]bool
}

// Material defines the interface for a render material, encapsulating surface
// properties, the shader it renders with and the textures it binds.
//
// Textures are referenced by id into the texture cache. Initialize resolves them
// (which uploads them on first use) and substitutes the 1x1 white fallback for
// empty slots and for textures that failed to load.
type Material interface {
	resource.Resource

	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo/diffuse RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// ShaderKey retrieves the key of the shader this material renders with.
	//
	// Returns:
	//   - string: the shader key
	ShaderKey() string

	// TextureID retrieves the texture cache id referenced by a slot, or 0 for an empty slot.
	//
	// Parameters:
	//   - slot: the texture slot
	//
	// Returns:
	//   - resource.ID: the texture id
	TextureID(slot Slot) resource.ID

	// HasTexture reports whether a slot resolved to a real texture rather than the fallback.
	// Only meaningful after Initialize.
	//
	// Parameters:
	//   - slot: the texture slot
	//
	// Returns:
	//   - bool: true if a loaded texture is bound in that slot
	HasTexture(slot Slot) bool

	// Bind binds every slot texture to its unit and writes the material uniforms
	// to the currently bound shader.
	//
	// Parameters:
	//   - sh: the shader bound for this draw
	Bind(sh shader.Shader)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - textures: the texture cache slot ids resolve against
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(textures resource.Cache[texture.Texture], options ...MaterialBuilderOption) Material {
	if textures == nil {
		panic("material: texture cache must not be nil")
	}
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		metallic:  0.0,
		roughness: 1.0,
		shaderKey: shader.KeyLit,
		textures:  textures,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Initialize(dev gfx.Device) error {
	fallback := m.textures.ResourceByKey(texture.FallbackKey)
	for i := range m.slots {
		m.present[i] = false
		m.bound[i] = nil
		if m.slots[i] != 0 {
			if h := m.textures.Resource(m.slots[i]); h.Valid() {
				m.bound[i] = h.Get()
				m.present[i] = true
				continue
			}
		}
		if !fallback.Valid() {
			return fmt.Errorf("material %q: no texture for slot %d and no fallback texture", m.name, i)
		}
		m.bound[i] = fallback.Get()
	}
	return nil
}

func (m *material) Release(_ gfx.Device) {
	// textures are owned by the texture cache
	m.bound = [MaxTextureSlots]texture.Texture{}
	m.present = [MaxTextureSlots]bool{}
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) ShaderKey() string {
	return m.shaderKey
}

func (m *material) TextureID(slot Slot) resource.ID {
	if int(slot) >= MaxTextureSlots {
		return 0
	}
	return m.slots[slot]
}

func (m *material) HasTexture(slot Slot) bool {
	if int(slot) >= MaxTextureSlots {
		return false
	}
	return m.present[slot]
}

func (m *material) Bind(sh shader.Shader) {
	for i, tex := range m.bound {
		if tex == nil {
			continue
		}
		slot := Slot(i)
		tex.Bind(slot.Unit())
		sh.SetInt(slot.Uniform(), int32(slot.Unit()))
	}
	sh.SetVec4("u_material.baseColor", mgl32.Vec4(m.baseColor))
	sh.SetFloat("u_material.metallic", m.metallic)
	sh.SetFloat("u_material.roughness", m.roughness)
	sh.SetBool("u_material.hasNormalMap", m.present[SlotNormal])
}
