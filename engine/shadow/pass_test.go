package shadow

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rec         *gfxtest.Recorder
	reg         ecs.Registry
	meshes      resource.Cache[mesh.Mesh]
	pass        Pass
	directional shader.Shader
	point       shader.Shader
	lit         shader.Shader
}

func newFixture(t *testing.T, options ...PassBuilderOption) *fixture {
	t.Helper()
	f := &fixture{
		rec: gfxtest.NewRecorder(),
		reg: ecs.NewRegistry(),
	}
	f.meshes = resource.NewCache[mesh.Mesh](f.rec)
	p, err := NewPass(f.rec, f.meshes, options...)
	require.NoError(t, err)
	f.pass = p

	f.directional = shader.NewDirectionalDepthShader()
	f.point = shader.NewPointDepthShader()
	f.lit = shader.NewLitShader(4, 1)
	for _, sh := range []shader.Shader{f.directional, f.point, f.lit} {
		require.NoError(t, sh.Initialize(f.rec))
	}
	return f
}

func (f *fixture) spawnMesh(t *testing.T, pos mgl32.Vec3) ecs.Entity {
	t.Helper()
	h, _, err := f.meshes.Insert(fmt.Sprint(t.Name(), pos), mesh.NewMesh(
		mesh.WithVertices([]model.Vertex{{}, {Position: [3]float32{1, 0, 0}}, {Position: [3]float32{0, 1, 0}}}),
		mesh.WithIndices([]uint32{0, 1, 2}),
	))
	require.NoError(t, err)
	e := f.reg.Spawn()
	ecs.Insert(f.reg, e, scene.FromTranslation(pos))
	ecs.Insert(f.reg, e, scene.GlobalTransform{})
	ecs.Insert(f.reg, e, scene.MeshRef{ID: h.ID()})
	return e
}

func (f *fixture) spawnLight(l light.Light, pos mgl32.Vec3) ecs.Entity {
	e := f.reg.Spawn()
	ecs.Insert(f.reg, e, scene.FromTranslation(pos))
	ecs.Insert(f.reg, e, scene.GlobalTransform{})
	ecs.Insert(f.reg, e, l)
	return e
}

func TestDirectionalShadowPass(t *testing.T) {
	f := newFixture(t, WithResolution(2048, 256))
	f.spawnMesh(t, mgl32.Vec3{0, 0, 0})
	f.spawnMesh(t, mgl32.Vec3{2, 0, 0})
	f.spawnLight(light.NewDirectional(light.WithDirection(0, -1, 0)), mgl32.Vec3{})
	scene.PropagateTransforms(f.reg)
	scene.PropagateVisibility(f.reg)

	f.rec.Enable(gfx.CapCullFace)
	f.rec.SetCullFace(gfx.FaceBack)
	f.pass.RenderShadows(f.reg, f.directional, f.point)

	require.True(t, f.pass.HasDirectional())

	var shadowDraws []gfxtest.Draw
	for _, d := range f.rec.Draws {
		if d.Program == f.directional.Program() {
			shadowDraws = append(shadowDraws, d)
		}
	}
	require.Len(t, shadowDraws, 2)
	for _, d := range shadowDraws {
		assert.Equal(t, gfx.FaceFront, d.CullFace)
		assert.True(t, d.CullEnabled)
		assert.Equal(t, gfx.Viewport{Width: 2048, Height: 2048}, d.Viewport)
		assert.NotEqual(t, gfx.DefaultFramebuffer, d.Framebuffer)
	}

	expected := DirectionalLightViewProj(mgl32.Vec3{0, -1, 0}, DefaultDistance, DefaultHalfExtent, DefaultNear, DefaultFar)
	assert.Equal(t, expected, f.pass.LightViewProj())
	vp, _ := f.rec.Uniform(f.directional.Program(), "u_lightViewProjMatrix")
	assert.Equal(t, expected, vp)

	assert.Equal(t, gfx.FaceBack, f.rec.CullFace(), "cull face restored")
	assert.Equal(t, gfx.Viewport{Width: 1280, Height: 720}, f.rec.Viewport(), "viewport restored")
	_, _, bound := f.rec.Bound()
	assert.Equal(t, gfx.DefaultFramebuffer, bound)
}

func TestInactiveDirectionalLightSkipsPass(t *testing.T) {
	f := newFixture(t)
	f.spawnMesh(t, mgl32.Vec3{})
	f.spawnLight(light.NewDirectional(light.WithIntensity(0)), mgl32.Vec3{})
	scene.PropagateTransforms(f.reg)

	f.pass.RenderShadows(f.reg, f.directional, f.point)
	assert.Empty(t, f.rec.Draws)
	assert.False(t, f.pass.HasDirectional())

	f.lit.Bind()
	f.pass.Apply(f.lit)
	has, _ := f.rec.Uniform(f.lit.Program(), "u_hasDirectionalShadow")
	assert.Equal(t, int32(0), has)
}

func TestPointShadowPass(t *testing.T) {
	f := newFixture(t, WithMaxPointShadows(1), WithPointFarPlane(30))
	f.spawnMesh(t, mgl32.Vec3{})
	hidden := f.spawnMesh(t, mgl32.Vec3{5, 0, 0})
	ecs.Insert(f.reg, hidden, scene.VisibilityHidden)
	f.spawnLight(light.NewPoint(), mgl32.Vec3{0, 3, 0})
	f.spawnLight(light.NewPoint(), mgl32.Vec3{0, 6, 0})
	scene.PropagateTransforms(f.reg)
	scene.PropagateVisibility(f.reg)

	f.pass.RenderShadows(f.reg, f.directional, f.point)
	assert.Equal(t, 1, f.pass.PointCount(), "only the first light gets the single slot")

	p := f.point.Program()
	var draws []gfxtest.Draw
	for _, d := range f.rec.Draws {
		if d.Program == p {
			draws = append(draws, d)
		}
	}
	require.Len(t, draws, 1, "hidden entity is not drawn")

	for face, want := range CubeFaceMatrices(mgl32.Vec3{0, 3, 0}, 30) {
		got, ok := f.rec.Uniform(p, fmt.Sprintf("u_shadowMatrices[%d]", face))
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	far, _ := f.rec.Uniform(p, "u_farPlane")
	assert.Equal(t, float32(30), far)
	pos, _ := f.rec.Uniform(p, "u_lightPosition")
	assert.Equal(t, mgl32.Vec3{0, 3, 0}, pos)
}

func TestCubeFaceMatricesLookDownEachAxis(t *testing.T) {
	pos := mgl32.Vec3{1, 2, 3}
	matrices := CubeFaceMatrices(pos, 10)
	for i, face := range CubeFaces {
		clip := matrices[i].Mul4x1(pos.Add(face.Dir.Mul(5)).Vec4(1))
		ndc := clip.Vec3().Mul(1 / clip.W())
		assert.InDelta(t, 0, ndc.X(), 1e-5, "face %d", i)
		assert.InDelta(t, 0, ndc.Y(), 1e-5, "face %d", i)
		assert.True(t, ndc.Z() > -1 && ndc.Z() < 1, "face %d in depth range", i)
	}
}

func TestApplyBindsAfterMaterialSlots(t *testing.T) {
	f := newFixture(t, WithMaxPointShadows(2))
	f.lit.Bind()
	f.pass.Apply(f.lit)

	p := f.lit.Program()
	unit, _ := f.rec.Uniform(p, "u_shadowMap")
	assert.Equal(t, int32(material.MaxTextureSlots), unit)
	unit, _ = f.rec.Uniform(p, "u_pointShadowMap[0]")
	assert.Equal(t, int32(material.MaxTextureSlots+1), unit)
	unit, _ = f.rec.Uniform(p, "u_pointShadowMap[1]")
	assert.Equal(t, int32(material.MaxTextureSlots+2), unit)
	count, _ := f.rec.Uniform(p, "u_pointShadowCount")
	assert.Equal(t, int32(0), count)

	desc := f.rec.Textures[f.pass.DirectionalTexture()]
	assert.Equal(t, gfx.FormatDepth24, desc.Format)
}

func TestNoLightsNoWork(t *testing.T) {
	f := newFixture(t)
	f.spawnMesh(t, mgl32.Vec3{})
	scene.PropagateTransforms(f.reg)
	f.rec.Reset()

	f.pass.RenderShadows(f.reg, f.directional, f.point)
	assert.Equal(t, 0, f.rec.CallCount())
}

func TestReleaseDeletesTargets(t *testing.T) {
	f := newFixture(t, WithMaxPointShadows(3))
	assert.Len(t, f.rec.Framebufs, 4)
	f.pass.Release()
	assert.Empty(t, f.rec.Framebufs)
}
