// Package texture provides the texture resource and the parallel image decoder
// that feeds the texture cache.
package texture

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
)

// FallbackKey is the cache key of the 1x1 white texture bound in place of missing textures.
const FallbackKey = "texture:fallback_white"

// texture is the implementation of the Texture interface.
type texture struct {
	key        string
	pixels     []byte
	width      int
	height     int
	colorSpace common.ColorSpace
	sampler    common.SamplerData

	device gfx.Device
	handle gfx.Texture
}

// Texture is a decoded 2D image that uploads itself to the GPU on first use.
//
// The CPU pixel data is dropped after a successful upload.
type Texture interface {
	resource.Resource

	// Key retrieves the cache key the texture was created under.
	//
	// Returns:
	//   - string: the key
	Key() string

	// Handle retrieves the GPU texture, or 0 before initialization.
	//
	// Returns:
	//   - gfx.Texture: the texture handle
	Handle() gfx.Texture

	// Size retrieves the texture dimensions in pixels.
	//
	// Returns:
	//   - int: the width
	//   - int: the height
	Size() (int, int)

	// ColorSpace retrieves whether the pixels are sRGB encoded.
	//
	// Returns:
	//   - common.ColorSpace: the color space
	ColorSpace() common.ColorSpace

	// Bind binds the texture to a texture unit. A texture that was never
	// initialized binds nothing.
	//
	// Parameters:
	//   - unit: the texture unit
	Bind(unit uint32)
}

var _ Texture = &texture{}

// NewTexture creates a Texture from decoded RGBA8 pixels.
//
// Parameters:
//   - key: the cache key
//   - options: variadic list of TextureBuilderOption functions to configure the texture
//
// Returns:
//   - Texture: a new, not yet uploaded Texture
func NewTexture(key string, options ...TextureBuilderOption) Texture {
	t := &texture{
		key:     key,
		sampler: common.DefaultSamplerData(),
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// NewFallback creates the 1x1 opaque white texture used when a material slot has
// no texture or its texture failed to load.
//
// Returns:
//   - Texture: the fallback texture
func NewFallback() Texture {
	return NewTexture(FallbackKey,
		WithPixels(common.DecodedImage{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}),
		WithColorSpace(common.ColorSpaceLinear),
		WithSampler(common.SamplerData{
			MinFilter: common.FilterNearest,
			MagFilter: common.FilterNearest,
			WrapS:     common.WrapRepeat,
			WrapT:     common.WrapRepeat,
		}),
	)
}

func (t *texture) Initialize(dev gfx.Device) error {
	if t.width <= 0 || t.height <= 0 || len(t.pixels) < t.width*t.height*4 {
		return fmt.Errorf("texture %q: invalid pixel data %dx%d (%d bytes)", t.key, t.width, t.height, len(t.pixels))
	}
	format := gfx.FormatRGBA8
	if t.colorSpace == common.ColorSpaceSRGB {
		format = gfx.FormatSRGBA8
	}
	h, err := dev.CreateTexture(gfx.TextureDesc{
		Target:  gfx.Texture2D,
		Format:  format,
		Width:   t.width,
		Height:  t.height,
		Pixels:  t.pixels,
		Sampler: t.sampler,
	})
	if err != nil {
		return fmt.Errorf("texture %q: %w", t.key, err)
	}
	t.device = dev
	t.handle = h
	t.pixels = nil
	return nil
}

func (t *texture) Release(dev gfx.Device) {
	dev.DeleteTexture(t.handle)
	t.handle = 0
	t.device = nil
}

func (t *texture) Key() string {
	return t.key
}

func (t *texture) Handle() gfx.Texture {
	return t.handle
}

func (t *texture) Size() (int, int) {
	return t.width, t.height
}

func (t *texture) ColorSpace() common.ColorSpace {
	return t.colorSpace
}

func (t *texture) Bind(unit uint32) {
	if t.device == nil {
		return
	}
	t.device.BindTexture(unit, gfx.Texture2D, t.handle)
}
