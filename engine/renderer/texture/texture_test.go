package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTextureFormatFollowsColorSpace(t *testing.T) {
	tests := []struct {
		name   string
		cs     common.ColorSpace
		format gfx.TextureFormat
	}{
		{"srgb", common.ColorSpaceSRGB, gfx.FormatSRGBA8},
		{"linear", common.ColorSpaceLinear, gfx.FormatRGBA8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gfxtest.NewRecorder()
			tex := NewTexture("t",
				WithPixels(common.DecodedImage{Pixels: make([]byte, 16), Width: 2, Height: 2}),
				WithColorSpace(tt.cs),
			)
			require.NoError(t, tex.Initialize(rec))
			desc := rec.Textures[tex.Handle()]
			assert.Equal(t, tt.format, desc.Format)
			assert.Equal(t, gfx.Texture2D, desc.Target)
		})
	}
}

func TestTextureRejectsShortPixelData(t *testing.T) {
	tex := NewTexture("bad", WithPixels(common.DecodedImage{Pixels: make([]byte, 3), Width: 1, Height: 1}))
	assert.Error(t, tex.Initialize(gfxtest.NewRecorder()))
}

func TestFallbackIsWhite(t *testing.T) {
	rec := gfxtest.NewRecorder()
	tex := NewFallback()
	require.NoError(t, tex.Initialize(rec))
	w, h := tex.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, []byte{255, 255, 255, 255}, rec.Textures[tex.Handle()].Pixels)

	tex.Bind(3)
	assert.Contains(t, rec.Calls, "BindTexture 3 1")

	tex.Release(rec)
	assert.Empty(t, rec.Textures)
}

func TestDecoderDeduplicatesByContent(t *testing.T) {
	rec := gfxtest.NewRecorder()
	cache := resource.NewCache[Texture](rec)
	dec := NewDecoder(cache, WithWorkers(3))

	red := encodePNG(t, 2, 2, color.RGBA{255, 0, 0, 255})
	blue := encodePNG(t, 4, 1, color.RGBA{0, 0, 255, 255})
	inputs := []*common.ImportedTexture{
		{Name: "a", Data: red, ColorSpace: common.ColorSpaceSRGB},
		{Name: "b", Data: red, ColorSpace: common.ColorSpaceSRGB},
		nil,
		{Name: "c", Data: blue, ColorSpace: common.ColorSpaceLinear},
		{Name: "d", Data: red, ColorSpace: common.ColorSpaceLinear},
	}

	handles := dec.Decode(inputs)
	require.Len(t, handles, len(inputs))
	assert.Equal(t, 3, cache.Len())
	assert.Equal(t, handles[0].ID(), handles[1].ID())
	assert.False(t, handles[2].Valid())
	assert.NotEqual(t, handles[0].ID(), handles[4].ID(), "color space is part of the key")

	w, h := handles[3].Get().Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, 0, rec.CallCount(), "decoding never touches the device")

	again := dec.Decode(inputs[:1])
	assert.Equal(t, handles[0].ID(), again[0].ID())
	assert.Equal(t, 3, cache.Len())
}

func TestDecoderSkipsBrokenImages(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cache := resource.NewCache[Texture](gfxtest.NewRecorder())
	dec := NewDecoder(cache, WithLogger(zap.New(core)))

	handles := dec.Decode([]*common.ImportedTexture{
		{Name: "garbage", Data: []byte("not an image")},
		{Name: "missing", Path: "/nonexistent/albedo.png"},
	})

	assert.False(t, handles[0].Valid())
	assert.False(t, handles[1].Valid())
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, 2, logs.FilterMessage("texture decode failed").Len())
}
