// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ColorSpace tells the texture upload whether pixel data is gamma encoded.
type ColorSpace int

const (
	// ColorSpaceSRGB marks color data (base color, emissive) that the GPU must linearize on sample.
	ColorSpaceSRGB ColorSpace = iota

	// ColorSpaceLinear marks non-color data (normals, metallic-roughness) sampled as-is.
	ColorSpaceLinear
)

// FilterMode selects texel filtering for a sampler.
type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// WrapMode selects addressing outside the [0, 1] texture coordinate range.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// SamplerData holds sampler parameters extracted from a model file.
type SamplerData struct {
	// MinFilter and MagFilter specify the filtering mode for minification and magnification.
	MinFilter, MagFilter FilterMode
	// Mipmaps enables mipmap generation and trilinear minification.
	Mipmaps bool
	// WrapS and WrapT specify the addressing mode along U and V.
	WrapS, WrapT WrapMode
}

// DefaultSamplerData returns the glTF default sampler: linear filtering, mipmaps, repeat wrapping.
//
// Returns:
//   - SamplerData: the default sampler parameters
func DefaultSamplerData() SamplerData {
	return SamplerData{
		MinFilter: FilterLinear,
		MagFilter: FilterLinear,
		Mipmaps:   true,
		WrapS:     WrapRepeat,
		WrapT:     WrapRepeat,
	}
}

// ImportedMaterial represents material properties from an imported model file.
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// BaseColor is the albedo/diffuse color (RGBA).
	BaseColor [4]float32

	// Metallic factor (0.0 = dielectric, 1.0 = metal).
	Metallic float32

	// Roughness factor (0.0 = smooth, 1.0 = rough).
	Roughness float32

	// DiffuseTexture is the base color texture (sRGB), nil when absent.
	DiffuseTexture *ImportedTexture

	// NormalTexture is the tangent-space normal map (linear), nil when absent.
	NormalTexture *ImportedTexture

	// MetallicRoughnessTexture is the packed metallic (B) / roughness (G) texture (linear), nil when absent.
	MetallicRoughnessTexture *ImportedTexture
}

// ImportedTexture represents texture data extracted from a model file.
// For embedded textures (GLB), the Data field contains raw image bytes.
// For external textures, the Path field contains the file path.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "diffuse", "normal").
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains raw image bytes for embedded textures (PNG/JPEG).
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/jpeg").
	MimeType string

	// ColorSpace tells the upload whether to use an sRGB internal format.
	ColorSpace ColorSpace

	// Sampler holds the sampler parameters for this texture.
	Sampler SamplerData
}

// DecodedImage is tightly packed RGBA8 pixel data ready for GPU upload.
type DecodedImage struct {
	// Pixels holds 4 bytes per pixel, row-major, top row first.
	Pixels []byte
	// Width and Height are the image dimensions in pixels.
	Width, Height int
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either embedded Data bytes or loads from Path on disk.
// Supports PNG, JPEG, BMP, TIFF and WebP.
//
// Returns:
//   - DecodedImage: the RGBA pixels and dimensions
//   - error: error if decoding fails or the texture has no source
func (t *ImportedTexture) Decode() (DecodedImage, error) {
	if t == nil {
		return DecodedImage{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	switch {
	case len(t.Data) > 0:
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return DecodedImage{}, fmt.Errorf("failed to decode embedded image %q: %w", t.Name, err)
		}
	case t.Path != "":
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return DecodedImage{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return DecodedImage{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	default:
		return DecodedImage{}, fmt.Errorf("texture %q has neither data nor path", t.Name)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Copy(rgba, image.Point{}, img, bounds, draw.Src, nil)

	return DecodedImage{Pixels: rgba.Pix, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// SourceKey identifies the texture source for content-keyed caching: the path for
// external files, the raw bytes for embedded images.
//
// Returns:
//   - []byte: the bytes that identify this texture's content
func (t *ImportedTexture) SourceKey() []byte {
	if len(t.Data) > 0 {
		return t.Data
	}
	return []byte(t.Path)
}
