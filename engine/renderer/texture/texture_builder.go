package texture

import "github.com/Carmen-Shannon/oxy-gl/common"

// TextureBuilderOption is a functional option applied to a texture during construction via NewTexture.
type TextureBuilderOption func(*texture)

// WithPixels sets the decoded RGBA8 pixel data and dimensions.
//
// Parameters:
//   - img: the decoded image
//
// Returns:
//   - TextureBuilderOption: option function to apply
func WithPixels(img common.DecodedImage) TextureBuilderOption {
	return func(t *texture) {
		t.pixels = img.Pixels
		t.width = img.Width
		t.height = img.Height
	}
}

// WithColorSpace selects the sRGB or linear internal format.
//
// Parameters:
//   - cs: the color space
//
// Returns:
//   - TextureBuilderOption: option function to apply
func WithColorSpace(cs common.ColorSpace) TextureBuilderOption {
	return func(t *texture) {
		t.colorSpace = cs
	}
}

// WithSampler sets the filtering and wrapping parameters.
//
// Parameters:
//   - s: the sampler parameters
//
// Returns:
//   - TextureBuilderOption: option function to apply
func WithSampler(s common.SamplerData) TextureBuilderOption {
	return func(t *texture) {
		t.sampler = s
	}
}
