package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor defines the interface for extracting material and texture data
// from a parsed glTF document into engine-ready ImportedMaterial structs.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index. Embedded images are copied
	// into the texture; external images carry only their resolved path and are decoded
	// when the texture is first used.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - common.ImportedMaterial: the extracted material
	//   - error: error if a texture or image reference is invalid
	ExtractMaterial(materialIndex int) (common.ImportedMaterial, error)

	// ExtractAllMaterials extracts all materials from the document, in document order.
	//
	// Returns:
	//   - []common.ImportedMaterial: all extracted materials
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]common.ImportedMaterial, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (common.ImportedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return common.ImportedMaterial{}, fmt.Errorf("no document loaded")
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return common.ImportedMaterial{}, fmt.Errorf("material index %d out of range", materialIndex)
	}

	mat := &doc.Materials[materialIndex]
	name := common.Coalesce(mat.Name, fmt.Sprintf("material_%d", materialIndex))

	// glTF defaults: white, fully metallic, fully rough
	result := common.ImportedMaterial{
		Name:      name,
		BaseColor: [4]float32{1, 1, 1, 1},
		Metallic:  1.0,
		Roughness: 1.0,
	}

	var err error
	if pbr := mat.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			result.BaseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			result.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			result.Roughness = *pbr.RoughnessFactor
		}

		if pbr.BaseColorTexture != nil {
			result.DiffuseTexture, err = e.loadTexture(pbr.BaseColorTexture.Index, name+"_diffuse", common.ColorSpaceSRGB)
			if err != nil {
				return result, fmt.Errorf("material %q: base color texture: %w", name, err)
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			result.MetallicRoughnessTexture, err = e.loadTexture(pbr.MetallicRoughnessTexture.Index, name+"_metallic_roughness", common.ColorSpaceLinear)
			if err != nil {
				return result, fmt.Errorf("material %q: metallic-roughness texture: %w", name, err)
			}
		}
	}

	if mat.NormalTexture != nil {
		result.NormalTexture, err = e.loadTexture(mat.NormalTexture.Index, name+"_normal", common.ColorSpaceLinear)
		if err != nil {
			return result, fmt.Errorf("material %q: normal texture: %w", name, err)
		}
	}

	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]common.ImportedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	materials := make([]common.ImportedMaterial, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.ExtractMaterial(i)
		if err != nil {
			return nil, err
		}
		materials[i] = mat
	}
	return materials, nil
}

// loadTexture resolves a glTF texture index into an ImportedTexture. Returns nil when the
// texture has no image source.
func (e *gltfMaterialExtractorImpl) loadTexture(textureIndex int, name string, space common.ColorSpace) (*common.ImportedTexture, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}

	tex := &doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}
	if *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", *tex.Source)
	}
	img := &doc.Images[*tex.Source]

	result := &common.ImportedTexture{
		Name:       common.Coalesce(img.Name, name),
		MimeType:   img.MimeType,
		ColorSpace: space,
		Sampler:    common.DefaultSamplerData(),
	}
	if tex.Sampler != nil && *tex.Sampler >= 0 && *tex.Sampler < len(doc.Samplers) {
		result.Sampler = gltfSamplerToSamplerData(&doc.Samplers[*tex.Sampler])
	}

	switch {
	case img.BufferView != nil:
		data, err := e.readBufferViewRaw(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("failed to read image buffer view: %w", err)
		}
		result.Data = data
	case strings.HasPrefix(img.URI, "data:"):
		data, mimeType, err := gltfDecodeDataURI(img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data URI: %w", err)
		}
		result.Data = data
		result.MimeType = common.Coalesce(result.MimeType, mimeType)
	case img.URI != "":
		result.Path = filepath.Join(e.parser.BaseDir(), filepath.FromSlash(img.URI))
	default:
		return nil, nil
	}
	return result, nil
}

// readBufferViewRaw copies the bytes of a buffer view. Images are stored in views without
// an accessor.
func (e *gltfMaterialExtractorImpl) readBufferViewRaw(bufferViewIndex int) ([]byte, error) {
	doc := e.parser.Document()
	if bufferViewIndex < 0 || bufferViewIndex >= len(doc.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", bufferViewIndex)
	}

	bv := &doc.BufferViews[bufferViewIndex]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}

	buf := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(buf) {
		return nil, fmt.Errorf("bufferView exceeds buffer bounds: offset=%d length=%d bufSize=%d", bv.ByteOffset, bv.ByteLength, len(buf))
	}
	return append([]byte(nil), buf[bv.ByteOffset:end]...), nil
}

// gltfSamplerToSamplerData converts a glTF sampler. Unset fields keep the glTF defaults.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
//
// Parameters:
//   - s: the glTF sampler to convert
//
// Returns:
//   - common.SamplerData: the converted sampler parameters
func gltfSamplerToSamplerData(s *gltfSampler) common.SamplerData {
	result := common.DefaultSamplerData()

	if s.MagFilter != nil && *s.MagFilter == gltfFilterNearest {
		result.MagFilter = common.FilterNearest
	}

	if s.MinFilter != nil {
		switch *s.MinFilter {
		case gltfFilterNearest, gltfFilterNearestMipmapNearest, gltfFilterNearestMipmapLinear:
			result.MinFilter = common.FilterNearest
		default:
			result.MinFilter = common.FilterLinear
		}
		switch *s.MinFilter {
		case gltfFilterNearest, gltfFilterLinear:
			result.Mipmaps = false
		case gltfFilterNearestMipmapNearest, gltfFilterLinearMipmapNearest,
			gltfFilterNearestMipmapLinear, gltfFilterLinearMipmapLinear:
			result.Mipmaps = true
		}
	}

	if s.WrapS != nil {
		result.WrapS = gltfWrapToWrapMode(*s.WrapS)
	}
	if s.WrapT != nil {
		result.WrapT = gltfWrapToWrapMode(*s.WrapT)
	}
	return result
}

func gltfWrapToWrapMode(wrap int) common.WrapMode {
	switch wrap {
	case gltfWrapClampToEdge:
		return common.WrapClampToEdge
	case gltfWrapMirroredRepeat:
		return common.WrapMirroredRepeat
	default:
		return common.WrapRepeat
	}
}
