// Package renderer implements the forward render pass: every visible entity with a
// mesh, a material and a world matrix is drawn once from the active camera.
package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/assets"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Stats summarizes one Render call.
type Stats struct {
	// DrawCalls is the number of indexed draws issued.
	DrawCalls int

	// Triangles is the sum of index counts / 3 over every draw.
	Triangles int

	// Skipped counts drawables whose mesh, material or shader could not be resolved.
	Skipped int
}

// ShaderHook runs once per distinct shader per frame, before the first draw with it.
// The engine uses it to upload light uniforms and bind shadow maps.
type ShaderHook func(reg ecs.Registry, sh shader.Shader)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	device  gfx.Device
	library assets.Library
	logger  *zap.Logger

	hook       ShaderHook
	clearColor mgl32.Vec4
	wireframe  bool

	prepared map[shader.Shader]bool
	last     Stats
}

// Renderer is the forward render pass.
//
// Render draws into whatever framebuffer is bound when it is called, so the caller
// decides whether the frame goes to the screen or to a post-process target.
type Renderer interface {
	// Render clears the bound framebuffer and draws every visible drawable from the first
	// active camera. Without an active camera a warning is logged and nothing is drawn.
	//
	// Parameters:
	//   - reg: the registry to draw
	//
	// Returns:
	//   - Stats: draw statistics for the frame
	Render(reg ecs.Registry) Stats

	// SetShaderHook replaces the per-shader frame hook. A nil hook disables it.
	//
	// Parameters:
	//   - hook: the hook
	SetShaderHook(hook ShaderHook)

	// SetClearColor sets the color the framebuffer is cleared to.
	//
	// Parameters:
	//   - c: linear RGBA
	SetClearColor(c mgl32.Vec4)

	// SetWireframe switches scene rasterization between fill and line mode.
	//
	// Parameters:
	//   - enabled: true for wireframe
	SetWireframe(enabled bool)

	// Wireframe reports whether wireframe rasterization is enabled.
	//
	// Returns:
	//   - bool: true for wireframe
	Wireframe() bool

	// LastStats retrieves the statistics of the previous Render call.
	//
	// Returns:
	//   - Stats: the statistics
	LastStats() Stats
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer that resolves drawables through a Library.
//
// Parameters:
//   - device: the graphics device
//   - library: the resource library
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(device gfx.Device, library assets.Library, options ...RendererBuilderOption) Renderer {
	if library == nil {
		panic("renderer: library must not be nil")
	}
	r := &renderer{
		device:     device,
		library:    library,
		logger:     zap.NewNop(),
		clearColor: mgl32.Vec4{0.1, 0.1, 0.12, 1},
		prepared:   make(map[shader.Shader]bool),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) SetShaderHook(hook ShaderHook) {
	r.hook = hook
}

func (r *renderer) SetClearColor(c mgl32.Vec4) {
	r.clearColor = c
}

func (r *renderer) SetWireframe(enabled bool) {
	r.wireframe = enabled
}

func (r *renderer) Wireframe() bool {
	return r.wireframe
}

func (r *renderer) LastStats() Stats {
	return r.last
}

// view is the per-frame camera data shared by every draw.
type view struct {
	viewProj mgl32.Mat4
	position mgl32.Vec3
}

func (r *renderer) Render(reg ecs.Registry) Stats {
	var stats Stats
	defer func() { r.last = stats }()

	camEntity, cam, ok := camera.FindActive(reg)
	if !ok {
		r.logger.Warn("no active camera, skipping render pass")
		return stats
	}
	global, ok := ecs.Get[scene.GlobalTransform](reg, camEntity)
	if !ok {
		r.logger.Warn("active camera has no GlobalTransform, skipping render pass", zap.Uint64("entity", uint64(camEntity)))
		return stats
	}
	v := view{
		viewProj: cam.ViewProjection(global.Matrix),
		position: common.Translation(global.Matrix),
	}

	r.device.ClearColor(r.clearColor[0], r.clearColor[1], r.clearColor[2], r.clearColor[3])
	r.device.Clear(gfx.ClearColorBit | gfx.ClearDepthBit)
	r.device.Enable(gfx.CapDepthTest)
	r.device.Enable(gfx.CapCullFace)
	r.device.SetCullFace(gfx.FaceBack)
	if r.wireframe {
		r.device.SetPolygonMode(gfx.PolygonLine)
	} else {
		r.device.SetPolygonMode(gfx.PolygonFill)
	}

	clear(r.prepared)
	ecs.Each3(reg, func(e ecs.Entity, meshRef *scene.MeshRef, matRef *scene.MaterialRef, g *scene.GlobalTransform) {
		if !scene.IsVisible(reg, e) {
			return
		}
		indices, ok := r.draw(reg, v, meshRef, matRef, g.Matrix)
		if !ok {
			stats.Skipped++
			return
		}
		stats.DrawCalls++
		stats.Triangles += int(indices) / 3
	})
	return stats
}

// draw resolves one drawable and issues its draw. Resolution goes through the caches,
// so the first draw of a resource initializes it.
func (r *renderer) draw(reg ecs.Registry, v view, meshRef *scene.MeshRef, matRef *scene.MaterialRef, model mgl32.Mat4) (int32, bool) {
	meshHandle := r.library.Meshes().Resource(meshRef.ID)
	if !meshHandle.Valid() {
		return 0, false
	}
	matHandle := r.library.Materials().Resource(matRef.ID)
	if !matHandle.Valid() {
		return 0, false
	}
	m, mat := meshHandle.Get(), matHandle.Get()
	sh, ok := r.shader(reg, mat)
	if !ok {
		return 0, false
	}

	sh.Bind()
	mat.Bind(sh)
	sh.SetMat4("u_modelViewProjMatrix", v.viewProj.Mul4(model))
	sh.SetMat4("u_modelMatrix", model)
	sh.SetMat3("u_normalMatrix", common.NormalMatrix(model))
	sh.SetVec3("u_viewPosition", v.position)
	m.Draw()
	sh.Unbind()
	return m.IndexCount(), true
}

// shader resolves a material's shader and runs the frame hook on its first use this frame.
func (r *renderer) shader(reg ecs.Registry, mat material.Material) (shader.Shader, bool) {
	h := r.library.Shaders().ResourceByKey(mat.ShaderKey())
	if !h.Valid() {
		return nil, false
	}
	sh := h.Get()
	if !sh.Valid() {
		r.logger.Warn("skipping draw with invalid shader", zap.String("key", mat.ShaderKey()))
		return nil, false
	}
	if !r.prepared[sh] {
		r.prepared[sh] = true
		if r.hook != nil {
			r.hook(reg, sh)
		}
	}
	return sh, true
}
