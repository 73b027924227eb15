package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/assets"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	rec  *gfxtest.Recorder
	lib  assets.Library
	reg  ecs.Registry
	r    Renderer
	logs *observer.ObservedLogs
}

func newFixture(t *testing.T, options ...RendererBuilderOption) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	rec := gfxtest.NewRecorder()
	lib := assets.NewLibrary(rec)
	options = append([]RendererBuilderOption{WithLogger(zap.New(core))}, options...)
	return &fixture{
		rec:  rec,
		lib:  lib,
		reg:  ecs.NewRegistry(),
		r:    NewRenderer(rec, lib, options...),
		logs: logs,
	}
}

func (f *fixture) spawnCamera(pos mgl32.Vec3) ecs.Entity {
	e := f.reg.Spawn()
	ecs.Insert(f.reg, e, camera.NewCamera())
	ecs.Insert(f.reg, e, scene.GlobalTransform{Matrix: mgl32.Translate3D(pos[0], pos[1], pos[2])})
	return e
}

// spawnDrawable registers a mesh of triangles repeated over three vertices, so the index
// count alone distinguishes the meshes.
func (f *fixture) spawnDrawable(t *testing.T, triangles int, world mgl32.Mat4) ecs.Entity {
	t.Helper()
	vertices := []model.Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}
	indices := make([]uint32, 0, triangles*3)
	for i := 0; i < triangles; i++ {
		indices = append(indices, 0, 1, 2)
	}
	h, err := f.lib.AddMesh("tris", vertices, indices)
	require.NoError(t, err)

	e := f.reg.Spawn()
	ecs.Insert(f.reg, e, scene.MeshRef{ID: h.ID()})
	ecs.Insert(f.reg, e, scene.MaterialRef{ID: f.lib.DefaultMaterial()})
	ecs.Insert(f.reg, e, scene.GlobalTransform{Matrix: world})
	return e
}

func litProgram(t *testing.T, lib assets.Library) gfx.Program {
	t.Helper()
	h := lib.Shaders().ResourceByKey(shader.KeyLit)
	require.True(t, h.Valid())
	return h.Get().Program()
}

func TestRenderIssuesOneDrawPerDrawable(t *testing.T) {
	f := newFixture(t)
	f.spawnCamera(mgl32.Vec3{0, 0, 5})
	f.spawnDrawable(t, 3, mgl32.Ident4())
	f.spawnDrawable(t, 4, mgl32.Translate3D(2, 0, 0))

	stats := f.r.Render(f.reg)

	require.Len(t, f.rec.Draws, 2)
	assert.Equal(t, int32(9), f.rec.Draws[0].Count)
	assert.Equal(t, int32(12), f.rec.Draws[1].Count)
	for _, d := range f.rec.Draws {
		assert.True(t, d.Indexed)
		assert.Equal(t, gfx.Triangles, d.Mode)
		assert.Equal(t, gfx.IndexUint32, d.IndexType)
		assert.NotZero(t, d.VertexArray)
		assert.NotZero(t, d.Program)
	}
	assert.Equal(t, Stats{DrawCalls: 2, Triangles: 7}, stats)
	assert.Equal(t, stats, f.r.LastStats())

	program, vao, _ := f.rec.Bound()
	assert.Zero(t, program, "shader unbound after the pass")
	assert.Zero(t, vao, "vertex array unbound after the pass")
}

func TestRenderWritesPerDrawUniforms(t *testing.T) {
	f := newFixture(t)
	f.spawnCamera(mgl32.Vec3{0, 1, 5})
	world := mgl32.Translate3D(2, 0, 0)
	f.spawnDrawable(t, 1, world)

	f.r.Render(f.reg)
	p := litProgram(t, f.lib)

	cam := camera.NewCamera()
	want := cam.ViewProjection(mgl32.Translate3D(0, 1, 5)).Mul4(world)
	got, ok := f.rec.Uniform(p, "u_modelViewProjMatrix")
	require.True(t, ok)
	assert.True(t, common.ApproxEqualMat4(want, got.(mgl32.Mat4), 1e-5))

	got, ok = f.rec.Uniform(p, "u_modelMatrix")
	require.True(t, ok)
	assert.Equal(t, world, got)

	got, ok = f.rec.Uniform(p, "u_viewPosition")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 1, 5}, got)

	_, ok = f.rec.Uniform(p, "u_normalMatrix")
	assert.True(t, ok)
	_, ok = f.rec.Uniform(p, "u_material.baseColor")
	assert.True(t, ok)
}

func TestRenderWithoutCameraDrawsNothing(t *testing.T) {
	f := newFixture(t)
	f.spawnDrawable(t, 1, mgl32.Ident4())

	stats := f.r.Render(f.reg)

	assert.Equal(t, Stats{}, stats)
	assert.Equal(t, 0, f.rec.CallCount(), "no device calls without a camera")
	assert.Equal(t, 1, f.logs.FilterMessage("no active camera, skipping render pass").Len())
}

func TestRenderSkipsHiddenAndUnresolved(t *testing.T) {
	f := newFixture(t)
	f.spawnCamera(mgl32.Vec3{0, 0, 5})
	hidden := f.spawnDrawable(t, 1, mgl32.Ident4())
	ecs.Insert(f.reg, hidden, scene.VisibilityHidden)
	scene.PropagateVisibility(f.reg)

	broken := f.spawnDrawable(t, 2, mgl32.Ident4())
	ecs.Insert(f.reg, broken, scene.MaterialRef{ID: resource.ID(9999)})

	f.spawnDrawable(t, 5, mgl32.Ident4())

	stats := f.r.Render(f.reg)

	require.Len(t, f.rec.Draws, 1)
	assert.Equal(t, int32(15), f.rec.Draws[0].Count)
	assert.Equal(t, Stats{DrawCalls: 1, Triangles: 5, Skipped: 1}, stats)
}

func TestRenderSkipsFailedShader(t *testing.T) {
	f := newFixture(t)
	f.rec.FailCompile = true
	f.spawnCamera(mgl32.Vec3{0, 0, 5})
	f.spawnDrawable(t, 1, mgl32.Ident4())

	stats := f.r.Render(f.reg)

	assert.Empty(t, f.rec.Draws)
	assert.Equal(t, 1, stats.Skipped)
}

func TestShaderHookRunsOncePerShader(t *testing.T) {
	var calls []shader.Shader
	f := newFixture(t, WithShaderHook(func(_ ecs.Registry, sh shader.Shader) {
		calls = append(calls, sh)
	}))
	f.spawnCamera(mgl32.Vec3{0, 0, 5})
	f.spawnDrawable(t, 1, mgl32.Ident4())
	f.spawnDrawable(t, 2, mgl32.Ident4())

	f.r.Render(f.reg)
	require.Len(t, calls, 1)
	assert.Equal(t, shader.KeyLit, calls[0].Key())

	f.r.Render(f.reg)
	assert.Len(t, calls, 2, "hook runs again on the next frame")
}

func TestRenderStateAndWireframe(t *testing.T) {
	f := newFixture(t, WithWireframe(true))
	f.spawnCamera(mgl32.Vec3{0, 0, 5})
	f.spawnDrawable(t, 1, mgl32.Ident4())

	f.r.Render(f.reg)
	require.Len(t, f.rec.Draws, 1)
	d := f.rec.Draws[0]
	assert.Equal(t, gfx.PolygonLine, d.Polygon)
	assert.True(t, d.CullEnabled)
	assert.Equal(t, gfx.FaceBack, d.CullFace)
	assert.True(t, f.rec.IsEnabled(gfx.CapDepthTest))

	f.r.SetWireframe(false)
	f.rec.Reset()
	f.r.Render(f.reg)
	assert.Equal(t, gfx.PolygonFill, f.rec.Draws[0].Polygon)
}
