package light

import (
	"regexp"
	"sort"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var pointIndex = regexp.MustCompile(`^u_pointLight\[(\d+)\]\.`)

func newLitShader(t *testing.T, rec *gfxtest.Recorder) shader.Shader {
	t.Helper()
	sh := shader.NewLitShader(8, 1)
	require.NoError(t, sh.Initialize(rec))
	return sh
}

func spawnPoint(reg ecs.Registry, pos mgl32.Vec3, opts ...LightBuilderOption) ecs.Entity {
	e := reg.Spawn()
	ecs.Insert(reg, e, scene.FromTranslation(pos))
	ecs.Insert(reg, e, scene.GlobalTransform{})
	ecs.Insert(reg, e, NewPoint(opts...))
	return e
}

func writtenIndices(rec *gfxtest.Recorder, sh shader.Shader) []string {
	seen := make(map[string]bool)
	for _, name := range rec.UniformNames(sh.Program()) {
		if m := pointIndex.FindStringSubmatch(name); m != nil {
			seen[m[1]] = true
		}
	}
	out := make([]string, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Strings(out)
	return out
}

func TestPointLightIndicesStayContiguous(t *testing.T) {
	rec := gfxtest.NewRecorder()
	sh := newLitShader(t, rec)
	sys := NewSystem(WithLimits(8, 1))
	reg := ecs.NewRegistry()

	spawnPoint(reg, mgl32.Vec3{1, 0, 0})
	middle := spawnPoint(reg, mgl32.Vec3{2, 0, 0})
	spawnPoint(reg, mgl32.Vec3{3, 0, 0})
	scene.PropagateTransforms(reg)

	sys.UpdateLights(reg, sh)
	assert.Equal(t, []string{"0", "1", "2"}, writtenIndices(rec, sh))

	require.True(t, reg.Despawn(middle))
	rec.Reset()
	sys.UpdateLights(reg, sh)

	assert.Equal(t, []string{"0", "1"}, writtenIndices(rec, sh))
	count, _ := rec.Uniform(sh.Program(), "u_pointLightCount")
	assert.Equal(t, int32(2), count)
	pos, _ := rec.Uniform(sh.Program(), "u_pointLight[1].position")
	assert.Equal(t, mgl32.Vec3{3, 0, 0}, pos, "the third light moves down to index 1")

	p, _, _ := rec.Bound()
	assert.Zero(t, p, "shader unbound after update")
}

func TestZeroIlluminanceDeactivatesDirectionalLight(t *testing.T) {
	rec := gfxtest.NewRecorder()
	sh := newLitShader(t, rec)
	sys := NewSystem()
	reg := ecs.NewRegistry()

	sun := reg.Spawn()
	ecs.Insert(reg, sun, NewDirectional(WithDirection(0, -2, 0), WithColor(1, 0.5, 0.25), WithIntensity(0)))

	sys.UpdateLights(reg, sh)

	active, ok := rec.Uniform(sh.Program(), "u_directionalLight.isActive")
	require.True(t, ok)
	assert.Equal(t, int32(0), active)
	dir, _ := rec.Uniform(sh.Program(), "u_directionalLight.direction")
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, dir)

	l, ok := ecs.Get[Light](reg, sun)
	require.True(t, ok)
	l.Intensity = 2
	sys.UpdateLights(reg, sh)
	active, _ = rec.Uniform(sh.Program(), "u_directionalLight.isActive")
	assert.Equal(t, int32(1), active)
	color, _ := rec.Uniform(sh.Program(), "u_directionalLight.color")
	assert.Equal(t, mgl32.Vec3{2, 1, 0.5}, color)
}

func TestNoDirectionalLightDeactivatesUniform(t *testing.T) {
	rec := gfxtest.NewRecorder()
	sh := newLitShader(t, rec)
	reg := ecs.NewRegistry()

	NewSystem().UpdateLights(reg, sh)

	active, ok := rec.Uniform(sh.Program(), "u_directionalLight.isActive")
	require.True(t, ok)
	assert.Equal(t, int32(0), active)
	_, ok = rec.Uniform(sh.Program(), "u_directionalLight.direction")
	assert.False(t, ok)
	count, _ := rec.Uniform(sh.Program(), "u_pointLightCount")
	assert.Equal(t, int32(0), count)
}

func TestDespawnedDirectionalLightStopsShading(t *testing.T) {
	rec := gfxtest.NewRecorder()
	sh := newLitShader(t, rec)
	sys := NewSystem()
	reg := ecs.NewRegistry()

	sun := reg.Spawn()
	ecs.Insert(reg, sun, NewDirectional(WithIntensity(2)))
	sys.UpdateLights(reg, sh)
	active, _ := rec.Uniform(sh.Program(), "u_directionalLight.isActive")
	require.Equal(t, int32(1), active)

	require.True(t, reg.Despawn(sun))
	sys.UpdateLights(reg, sh)
	active, _ = rec.Uniform(sh.Program(), "u_directionalLight.isActive")
	assert.Equal(t, int32(0), active)
}

func TestShadowSlotsGoToFirstActiveCasters(t *testing.T) {
	reg := ecs.NewRegistry()
	spawnPoint(reg, mgl32.Vec3{0, 0, 0}, WithIntensity(0))
	spawnPoint(reg, mgl32.Vec3{1, 0, 0}, WithCastsShadows(false))
	spawnPoint(reg, mgl32.Vec3{2, 0, 0})
	spawnPoint(reg, mgl32.Vec3{3, 0, 0})
	spawnPoint(reg, mgl32.Vec3{4, 0, 0})
	scene.PropagateTransforms(reg)

	points := CollectPoints(reg, 2)
	require.Len(t, points, 5)
	var got []int32
	for _, p := range points {
		got = append(got, p.ShadowIndex)
	}
	assert.Equal(t, []int32{-1, -1, 0, 1, -1}, got)
}

func TestInvalidShaderIsSkipped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := gfxtest.NewRecorder()
	sys := NewSystem(WithLogger(zap.New(core)))

	assert.NotPanics(t, func() { sys.UpdateLights(ecs.NewRegistry(), shader.NewLitShader(1, 1)) })
	assert.Equal(t, 0, rec.CallCount())
	assert.Equal(t, 1, logs.Len())
}

func TestPointLightsAreTruncated(t *testing.T) {
	rec := gfxtest.NewRecorder()
	sh := newLitShader(t, rec)
	reg := ecs.NewRegistry()
	for i := 0; i < 4; i++ {
		spawnPoint(reg, mgl32.Vec3{float32(i), 0, 0})
	}
	scene.PropagateTransforms(reg)

	NewSystem(WithLimits(3, 1)).UpdateLights(reg, sh)
	assert.Equal(t, []string{"0", "1", "2"}, writtenIndices(rec, sh))
}
