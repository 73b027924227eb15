package postprocess

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compositeShader(t *testing.T, rec *gfxtest.Recorder) shader.Shader {
	t.Helper()
	sh := shader.NewCompositeShader()
	require.NoError(t, sh.Initialize(rec))
	return sh
}

func TestNewFramebufferAllocatesTargets(t *testing.T) {
	rec := gfxtest.NewRecorder()
	fb, err := NewFramebuffer(rec, 800, 600)
	require.NoError(t, err)

	w, h := fb.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	desc, ok := rec.Textures[fb.ColorTexture()]
	require.True(t, ok)
	assert.Equal(t, gfx.FormatRGBA16F, desc.Format)
	assert.Equal(t, 800, desc.Width)
	require.Len(t, rec.Renderbufs, 1)
	for _, format := range rec.Renderbufs {
		assert.Equal(t, gfx.RenderbufferDepth24Stencil8, format)
	}
	require.Len(t, rec.Framebufs, 1)

	_, _, bound := rec.Bound()
	assert.Equal(t, gfx.DefaultFramebuffer, bound)
}

func TestNewFramebufferRejectsEmptySize(t *testing.T) {
	rec := gfxtest.NewRecorder()
	_, err := NewFramebuffer(rec, 0, 600)
	assert.ErrorIs(t, err, ErrInvalidSize)
	assert.Empty(t, rec.Textures)
}

func TestResizeRecreatesAttachments(t *testing.T) {
	rec := gfxtest.NewRecorder()
	fb, err := NewFramebuffer(rec, 800, 600)
	require.NoError(t, err)
	oldColor := fb.ColorTexture()

	require.NoError(t, fb.Resize(800, 600))
	assert.Equal(t, oldColor, fb.ColorTexture(), "same size is a no-op")
	assert.Equal(t, 0, rec.Deleted)

	require.NoError(t, fb.Resize(1024, 768))
	assert.NotEqual(t, oldColor, fb.ColorTexture())
	assert.NotContains(t, rec.Textures, oldColor, "old color attachment destroyed")
	assert.Equal(t, 3, rec.Deleted, "texture, renderbuffer and framebuffer")
	assert.Len(t, rec.Textures, 1)
	assert.Len(t, rec.Renderbufs, 1)
	assert.Len(t, rec.Framebufs, 1)
	assert.Equal(t, 1024, rec.Textures[fb.ColorTexture()].Width)

	assert.ErrorIs(t, fb.Resize(0, 0), ErrInvalidSize)
	w, h := fb.Size()
	assert.Equal(t, 1024, w, "failed resize keeps the old target")
	assert.Equal(t, 768, h)
}

func TestBindSetsAndRestoresViewport(t *testing.T) {
	rec := gfxtest.NewRecorder()
	fb, err := NewFramebuffer(rec, 320, 200)
	require.NoError(t, err)

	fb.Bind()
	_, _, bound := rec.Bound()
	assert.NotEqual(t, gfx.DefaultFramebuffer, bound)
	assert.Equal(t, gfx.Viewport{Width: 320, Height: 200}, rec.Viewport())

	fb.Unbind()
	_, _, bound = rec.Bound()
	assert.Equal(t, gfx.DefaultFramebuffer, bound)
	assert.Equal(t, gfx.Viewport{Width: 1280, Height: 720}, rec.Viewport())
}

func TestDrawForcesFillAndRestoresState(t *testing.T) {
	rec := gfxtest.NewRecorder()
	fb, err := NewFramebuffer(rec, 320, 200, WithExposure(2.5))
	require.NoError(t, err)
	sh := compositeShader(t, rec)

	rec.Enable(gfx.CapDepthTest)
	rec.SetPolygonMode(gfx.PolygonLine)

	fb.Draw(sh)

	require.Len(t, rec.Draws, 1)
	d := rec.Draws[0]
	assert.False(t, d.Indexed)
	assert.Equal(t, int32(3), d.Count, "one full-screen triangle")
	assert.Equal(t, gfx.PolygonFill, d.Polygon)
	assert.Equal(t, gfx.DefaultFramebuffer, d.Framebuffer)
	assert.NotZero(t, d.VertexArray)
	assert.Equal(t, fb.ColorTexture(), d.Textures[0])

	assert.Equal(t, gfx.PolygonLine, rec.PolygonMode(), "wireframe restored")
	assert.True(t, rec.IsEnabled(gfx.CapDepthTest), "depth test restored")

	v, ok := rec.Uniform(sh.Program(), "u_screenTexture")
	require.True(t, ok)
	assert.Equal(t, int32(0), v)
	v, ok = rec.Uniform(sh.Program(), "u_exposure")
	require.True(t, ok)
	assert.Equal(t, float32(2.5), v)
}

func TestSetExposureEnabled(t *testing.T) {
	rec := gfxtest.NewRecorder()
	fb, err := NewFramebuffer(rec, 320, 200)
	require.NoError(t, err)
	sh := compositeShader(t, rec)

	fb.SetExposureEnabled(sh, false)
	v, ok := rec.Uniform(sh.Program(), "u_applyExposure")
	require.True(t, ok)
	assert.Equal(t, int32(0), v)

	fb.SetExposureEnabled(sh, true)
	v, _ = rec.Uniform(sh.Program(), "u_applyExposure")
	assert.Equal(t, int32(1), v)
}

func TestDrawSkipsInvalidShader(t *testing.T) {
	rec := gfxtest.NewRecorder()
	fb, err := NewFramebuffer(rec, 320, 200)
	require.NoError(t, err)

	fb.Draw(shader.NewCompositeShader())
	assert.Empty(t, rec.Draws)
}

func TestRelease(t *testing.T) {
	rec := gfxtest.NewRecorder()
	fb, err := NewFramebuffer(rec, 320, 200)
	require.NoError(t, err)

	fb.Release()
	assert.Empty(t, rec.Textures)
	assert.Empty(t, rec.Renderbufs)
	assert.Empty(t, rec.Framebufs)
	assert.Empty(t, rec.Arrays)
}
