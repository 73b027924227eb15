package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx/gfxtest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreProcessorIncludesAndDefines(t *testing.T) {
	pp := NewPreProcessor(
		WithInclude("a.glsl", "float a;\n#include \"b.glsl\""),
		WithInclude("b.glsl", "float b;"),
		WithDefine("N", "4"),
	)
	out, err := pp.Process("#version 410 core\n#include \"a.glsl\"\n#include \"b.glsl\"\nvoid main() {}")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "#version 410 core", lines[0])
	assert.Equal(t, "#define N 4", lines[1], "defines follow #version")
	assert.Equal(t, 1, strings.Count(out, "float b;"), "includes expand once")
	assert.Contains(t, out, "float a;")
}

func TestPreProcessorErrors(t *testing.T) {
	pp := NewPreProcessor()

	_, err := pp.Process("#include \"nope.glsl\"")
	assert.ErrorContains(t, err, "unknown include")

	_, err = pp.Process("#include nope.glsl")
	assert.ErrorContains(t, err, "malformed include")
}

func TestBuiltinShadersPreProcess(t *testing.T) {
	lit := NewLitShader(8, 2)
	var frag string
	for _, src := range lit.Sources() {
		if src.Stage == gfx.StageFragment {
			frag = src.Source
		}
	}
	assert.Contains(t, frag, "#define MAX_POINT_LIGHTS 8")
	assert.Contains(t, frag, "#define MAX_POINT_SHADOWS 2")
	assert.Contains(t, frag, "uniform PointLight u_pointLight[MAX_POINT_LIGHTS];")
	assert.NotContains(t, frag, "#include")

	assert.Len(t, NewPointDepthShader().Sources(), 3)
	assert.Len(t, NewDirectionalDepthShader().Sources(), 2)
	assert.Len(t, NewCompositeShader().Sources(), 2)
}

func TestNewShaderPanicsWithoutStages(t *testing.T) {
	assert.Panics(t, func() { NewShader("empty") })
}

func TestShaderCachesUniformLocations(t *testing.T) {
	rec := gfxtest.NewRecorder()
	sh := NewCompositeShader()
	require.NoError(t, sh.Initialize(rec))
	require.True(t, sh.Valid())

	sh.Bind()
	for i := 0; i < 3; i++ {
		sh.SetFloat("u_exposure", 1.5)
		sh.SetBool("u_applyExposure", true)
		sh.SetMat4("u_unused", mgl32.Ident4())
	}

	assert.Equal(t, 1, rec.LocationQueries["u_exposure"])
	assert.Equal(t, 1, rec.LocationQueries["u_applyExposure"])
	v, ok := rec.Uniform(sh.Program(), "u_applyExposure")
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
}

func TestInvalidShaderIsInert(t *testing.T) {
	rec := gfxtest.NewRecorder()
	rec.FailCompile = true
	sh := NewCompositeShader()

	assert.Error(t, sh.Initialize(rec))
	assert.False(t, sh.Valid())

	before := rec.CallCount()
	sh.Bind()
	sh.SetFloat("u_exposure", 1)
	assert.Equal(t, before, rec.CallCount())
	assert.Empty(t, rec.Uniforms)
}

func TestReleaseDeletesProgram(t *testing.T) {
	rec := gfxtest.NewRecorder()
	sh := NewDirectionalDepthShader()
	require.NoError(t, sh.Initialize(rec))
	sh.Release(rec)
	assert.Empty(t, rec.Programs)
	assert.False(t, sh.Valid())
}
