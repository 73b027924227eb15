// Package light provides the light component and the system that uploads the
// scene's lights into a shader's uniform state each frame.
package light

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Directional is the resolved directional light of a frame.
type Directional struct {
	Entity ecs.Entity
	Light  Light
}

// Point is a resolved point light of a frame.
type Point struct {
	Entity   ecs.Entity
	Light    Light
	Position mgl32.Vec3

	// ShadowIndex is the point shadow slot of the light, or -1.
	ShadowIndex int32
}

// FindDirectional returns the first directional light in component insertion order.
//
// Parameters:
//   - reg: the registry
//
// Returns:
//   - Directional: the light
//   - bool: false if the registry holds no directional light
func FindDirectional(reg ecs.Registry) (Directional, bool) {
	var out Directional
	found := false
	ecs.Each(reg, func(e ecs.Entity, l *Light) {
		if found || l.Type != LightTypeDirectional {
			return
		}
		out = Directional{Entity: e, Light: *l}
		found = true
	})
	return out, found
}

// CollectPoints returns the point lights that have a GlobalTransform, in component
// insertion order. Shadow slots go to the first maxShadows lights that are active
// and cast shadows; every other light gets ShadowIndex -1.
//
// Parameters:
//   - reg: the registry
//   - maxShadows: the number of point shadow slots
//
// Returns:
//   - []Point: the lights
func CollectPoints(reg ecs.Registry, maxShadows int) []Point {
	var out []Point
	next := int32(0)
	ecs.Each2(reg, func(e ecs.Entity, l *Light, g *scene.GlobalTransform) {
		if l.Type != LightTypePoint {
			return
		}
		p := Point{Entity: e, Light: *l, Position: g.Translation(), ShadowIndex: -1}
		if l.Active() && l.CastsShadows && int(next) < maxShadows {
			p.ShadowIndex = next
			next++
		}
		out = append(out, p)
	})
	return out
}

// system is the implementation of the System interface.
type system struct {
	logger          *zap.Logger
	ambient         mgl32.Vec3
	maxPointLights  int
	maxPointShadows int
}

// System writes the lights of a registry into a shader's uniforms.
type System interface {
	// UpdateLights binds sh, writes the directional light block and the point light
	// array, then unbinds sh.
	//
	// The first directional light writes u_directionalLight.isActive, .direction and
	// .color; without one no directional uniform is written. Point lights are written
	// to u_pointLight[0..N-1] in iteration order, so indices are always contiguous
	// from 0, followed by u_pointLightCount = N.
	//
	// Parameters:
	//   - reg: the registry
	//   - sh: the lit shader; an invalid shader is skipped with a warning
	UpdateLights(reg ecs.Registry, sh shader.Shader)

	// Ambient retrieves the ambient color.
	//
	// Returns:
	//   - mgl32.Vec3: the ambient color
	Ambient() mgl32.Vec3

	// SetAmbient sets the ambient color written as u_ambientColor.
	//
	// Parameters:
	//   - c: the ambient color
	SetAmbient(c mgl32.Vec3)

	// MaxPointShadows retrieves the number of point shadow slots the system assigns.
	//
	// Returns:
	//   - int: the slot count
	MaxPointShadows() int
}

var _ System = &system{}

// NewSystem creates a light System.
//
// Parameters:
//   - options: variadic list of SystemBuilderOption functions to configure the system
//
// Returns:
//   - System: the system
func NewSystem(options ...SystemBuilderOption) System {
	s := &system{
		logger:          zap.NewNop(),
		ambient:         mgl32.Vec3{0.03, 0.03, 0.03},
		maxPointLights:  shader.DefaultMaxPointLights,
		maxPointShadows: 1,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *system) UpdateLights(reg ecs.Registry, sh shader.Shader) {
	if sh == nil || !sh.Valid() {
		s.logger.Warn("skipping light update for invalid shader")
		return
	}
	sh.Bind()
	defer sh.Unbind()

	sh.SetVec3("u_ambientColor", s.ambient)

	if d, ok := FindDirectional(reg); ok {
		sh.SetBool("u_directionalLight.isActive", d.Light.Active())
		sh.SetVec3("u_directionalLight.direction", d.Light.NormalizedDirection())
		sh.SetVec3("u_directionalLight.color", d.Light.Radiance())
	} else {
		// uniforms outlive the light, so a despawned sun must be switched off
		sh.SetBool("u_directionalLight.isActive", false)
	}

	points := CollectPoints(reg, s.maxPointShadows)
	if len(points) > s.maxPointLights {
		s.logger.Debug("point lights truncated",
			zap.Int("lights", len(points)),
			zap.Int("max", s.maxPointLights),
		)
		points = points[:s.maxPointLights]
	}
	for i, p := range points {
		prefix := fmt.Sprintf("u_pointLight[%d].", i)
		sh.SetBool(prefix+"isActive", p.Light.Active())
		sh.SetVec3(prefix+"position", p.Position)
		sh.SetVec3(prefix+"color", p.Light.Radiance())
		sh.SetFloat(prefix+"constant", p.Light.Constant)
		sh.SetFloat(prefix+"linear", p.Light.Linear)
		sh.SetFloat(prefix+"quadratic", p.Light.Quadratic)
		sh.SetInt(prefix+"shadowIndex", p.ShadowIndex)
	}
	sh.SetInt("u_pointLightCount", int32(len(points)))
}

func (s *system) Ambient() mgl32.Vec3 {
	return s.ambient
}

func (s *system) SetAmbient(c mgl32.Vec3) {
	s.ambient = c
}

func (s *system) MaxPointShadows() int {
	return s.maxPointShadows
}
