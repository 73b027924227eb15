// Package shadow renders depth maps from the lights' points of view: one 2D map
// for the directional light and one cube map per shadowed point light. The
// results are bound into the main shader at texture units after the material's.
package shadow

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// pass is the implementation of the Pass interface.
type pass struct {
	device gfx.Device
	meshes resource.Cache[mesh.Mesh]
	logger *zap.Logger

	resolution      int
	pointResolution int
	maxPointShadows int
	distance        float32
	halfExtent      float32
	near            float32
	far             float32
	pointFar        float32

	dirTexture     gfx.Texture
	dirFramebuffer gfx.Framebuffer
	cubeTextures   []gfx.Texture
	cubeFrames     []gfx.Framebuffer

	lightViewProj  mgl32.Mat4
	hasDirectional bool
	pointCount     int
}

// Pass renders shadow maps and binds them into the main shader.
type Pass interface {
	// RenderShadows renders the directional depth map and the point light cube maps.
	//
	// The directional pass is skipped when there is no directional light or it is
	// inactive. Point shadows are rendered for the lights that light.CollectPoints
	// assigns a shadow slot. Viewport and cull state are restored afterwards.
	//
	// Parameters:
	//   - reg: the registry
	//   - directional: the directional depth shader
	//   - point: the point cube depth shader
	RenderShadows(reg ecs.Registry, directional, point shader.Shader)

	// Apply binds the shadow maps at units material.MaxTextureSlots and up and writes
	// the shadow uniforms to the main shader, which must be bound.
	//
	// Parameters:
	//   - main: the lit shader
	Apply(main shader.Shader)

	// LightViewProj retrieves the directional light-space matrix of the last pass.
	//
	// Returns:
	//   - mgl32.Mat4: proj * view
	LightViewProj() mgl32.Mat4

	// HasDirectional reports whether the last pass rendered a directional shadow.
	//
	// Returns:
	//   - bool: true if the directional map is valid
	HasDirectional() bool

	// PointCount retrieves the number of point shadows rendered by the last pass.
	//
	// Returns:
	//   - int: the count
	PointCount() int

	// DirectionalTexture retrieves the directional depth texture.
	//
	// Returns:
	//   - gfx.Texture: the texture
	DirectionalTexture() gfx.Texture

	// Release deletes every framebuffer and texture owned by the pass.
	Release()
}

var _ Pass = &pass{}

// NewPass creates a Pass and allocates its depth targets.
//
// Parameters:
//   - device: the graphics device
//   - meshes: the mesh cache drawables resolve against
//   - options: variadic list of PassBuilderOption functions to configure the pass
//
// Returns:
//   - Pass: the pass
//   - error: an error if a depth target cannot be created
func NewPass(device gfx.Device, meshes resource.Cache[mesh.Mesh], options ...PassBuilderOption) (Pass, error) {
	p := &pass{
		device:          device,
		meshes:          meshes,
		logger:          zap.NewNop(),
		resolution:      DefaultResolution,
		pointResolution: DefaultPointResolution,
		maxPointShadows: 1,
		distance:        DefaultDistance,
		halfExtent:      DefaultHalfExtent,
		near:            DefaultNear,
		far:             DefaultFar,
		pointFar:        DefaultPointFar,
		lightViewProj:   mgl32.Ident4(),
	}
	for _, opt := range options {
		opt(p)
	}
	if err := p.allocate(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *pass) allocate() error {
	clamp := common.SamplerData{
		MinFilter: common.FilterNearest,
		MagFilter: common.FilterNearest,
		WrapS:     common.WrapClampToEdge,
		WrapT:     common.WrapClampToEdge,
	}

	tex, err := p.device.CreateTexture(gfx.TextureDesc{
		Target:  gfx.Texture2D,
		Format:  gfx.FormatDepth24,
		Width:   p.resolution,
		Height:  p.resolution,
		Sampler: clamp,
	})
	if err != nil {
		return fmt.Errorf("shadow: directional depth texture: %w", err)
	}
	p.dirTexture = tex
	fb, err := p.device.CreateFramebuffer(gfx.FramebufferDesc{Attachments: []gfx.Attachment{
		{Point: gfx.AttachDepth, Texture: tex, Target: gfx.Texture2D},
	}})
	if err != nil {
		return fmt.Errorf("shadow: directional framebuffer: %w", err)
	}
	p.dirFramebuffer = fb

	// the lit shader always declares at least one cube sampler, so one target exists
	// even when point shadows are disabled
	slots := max(p.maxPointShadows, 1)
	for i := 0; i < slots; i++ {
		tex, err := p.device.CreateTexture(gfx.TextureDesc{
			Target:  gfx.TextureCube,
			Format:  gfx.FormatDepth24,
			Width:   p.pointResolution,
			Height:  p.pointResolution,
			Sampler: clamp,
		})
		if err != nil {
			return fmt.Errorf("shadow: point depth cube %d: %w", i, err)
		}
		p.cubeTextures = append(p.cubeTextures, tex)
		fb, err := p.device.CreateFramebuffer(gfx.FramebufferDesc{Attachments: []gfx.Attachment{
			{Point: gfx.AttachDepth, Texture: tex, Target: gfx.TextureCube},
		}})
		if err != nil {
			return fmt.Errorf("shadow: point framebuffer %d: %w", i, err)
		}
		p.cubeFrames = append(p.cubeFrames, fb)
	}
	return nil
}

type drawable struct {
	model mgl32.Mat4
	mesh  mesh.Mesh
}

func (p *pass) collect(reg ecs.Registry) []drawable {
	var out []drawable
	ecs.Each2(reg, func(e ecs.Entity, ref *scene.MeshRef, g *scene.GlobalTransform) {
		if !scene.IsVisible(reg, e) {
			return
		}
		h := p.meshes.Resource(ref.ID)
		if !h.Valid() {
			return
		}
		out = append(out, drawable{model: g.Matrix, mesh: h.Get()})
	})
	return out
}

func (p *pass) RenderShadows(reg ecs.Registry, directional, point shader.Shader) {
	p.hasDirectional = false
	p.pointCount = 0

	d, hasLight := light.FindDirectional(reg)
	renderDirectional := hasLight && d.Light.Active() && d.Light.CastsShadows
	var points []light.Point
	for _, pt := range light.CollectPoints(reg, p.maxPointShadows) {
		if pt.ShadowIndex >= 0 {
			points = append(points, pt)
		}
	}
	if !renderDirectional && len(points) == 0 {
		return
	}

	drawables := p.collect(reg)

	viewport := p.device.Viewport()
	cullFace := p.device.CullFace()
	cullEnabled := p.device.IsEnabled(gfx.CapCullFace)
	p.device.Enable(gfx.CapCullFace)
	p.device.SetCullFace(gfx.FaceFront)

	if renderDirectional {
		p.renderDirectional(d.Light.NormalizedDirection(), directional, drawables)
	}
	if len(points) > 0 {
		p.renderPoints(points, point, drawables)
	}

	p.device.BindFramebuffer(gfx.DefaultFramebuffer)
	p.device.SetCullFace(cullFace)
	if !cullEnabled {
		p.device.Disable(gfx.CapCullFace)
	}
	p.device.SetViewport(viewport)
}

func (p *pass) renderDirectional(dir mgl32.Vec3, sh shader.Shader, drawables []drawable) {
	if sh == nil || !sh.Valid() {
		p.logger.Warn("skipping directional shadow pass for invalid shader")
		return
	}
	p.lightViewProj = DirectionalLightViewProj(dir, p.distance, p.halfExtent, p.near, p.far)

	p.device.SetViewport(gfx.Viewport{Width: int32(p.resolution), Height: int32(p.resolution)})
	p.device.BindFramebuffer(p.dirFramebuffer)
	p.device.Clear(gfx.ClearDepthBit)

	sh.Bind()
	sh.SetMat4("u_lightViewProjMatrix", p.lightViewProj)
	for _, d := range drawables {
		sh.SetMat4("u_modelMatrix", d.model)
		d.mesh.Draw()
	}
	sh.Unbind()
	p.hasDirectional = true
}

func (p *pass) renderPoints(points []light.Point, sh shader.Shader, drawables []drawable) {
	if sh == nil || !sh.Valid() {
		p.logger.Warn("skipping point shadow pass for invalid shader")
		return
	}
	p.device.SetViewport(gfx.Viewport{Width: int32(p.pointResolution), Height: int32(p.pointResolution)})

	sh.Bind()
	for _, pt := range points {
		p.device.BindFramebuffer(p.cubeFrames[pt.ShadowIndex])
		p.device.Clear(gfx.ClearDepthBit)

		matrices := CubeFaceMatrices(pt.Position, p.pointFar)
		for face, m := range matrices {
			sh.SetMat4(fmt.Sprintf("u_shadowMatrices[%d]", face), m)
		}
		sh.SetFloat("u_farPlane", p.pointFar)
		sh.SetVec3("u_lightPosition", pt.Position)
		for _, d := range drawables {
			sh.SetMat4("u_modelMatrix", d.model)
			d.mesh.Draw()
		}
		p.pointCount++
	}
	sh.Unbind()
}

func (p *pass) Apply(main shader.Shader) {
	unit := uint32(material.MaxTextureSlots)
	p.device.BindTexture(unit, gfx.Texture2D, p.dirTexture)
	main.SetInt("u_shadowMap", int32(unit))
	main.SetMat4("u_lightViewProjMatrix", p.lightViewProj)
	main.SetBool("u_hasDirectionalShadow", p.hasDirectional)

	for i, tex := range p.cubeTextures {
		unit := uint32(material.MaxTextureSlots + 1 + i)
		p.device.BindTexture(unit, gfx.TextureCube, tex)
		main.SetInt(fmt.Sprintf("u_pointShadowMap[%d]", i), int32(unit))
	}
	main.SetFloat("u_pointShadowFarPlane", p.pointFar)
	main.SetInt("u_pointShadowCount", int32(p.pointCount))
}

func (p *pass) LightViewProj() mgl32.Mat4 {
	return p.lightViewProj
}

func (p *pass) HasDirectional() bool {
	return p.hasDirectional
}

func (p *pass) PointCount() int {
	return p.pointCount
}

func (p *pass) DirectionalTexture() gfx.Texture {
	return p.dirTexture
}

func (p *pass) Release() {
	for _, fb := range p.cubeFrames {
		p.device.DeleteFramebuffer(fb)
	}
	for _, tex := range p.cubeTextures {
		p.device.DeleteTexture(tex)
	}
	p.cubeFrames, p.cubeTextures = nil, nil
	if p.dirFramebuffer != 0 {
		p.device.DeleteFramebuffer(p.dirFramebuffer)
	}
	if p.dirTexture != 0 {
		p.device.DeleteTexture(p.dirTexture)
	}
	p.dirFramebuffer, p.dirTexture = 0, 0
}
