package glbackend

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/go-gl/gl/v4.1-core/gl"
)

func stageEnum(s gfx.ShaderStage) uint32 {
	switch s {
	case gfx.StageGeometry:
		return gl.GEOMETRY_SHADER
	case gfx.StageFragment:
		return gl.FRAGMENT_SHADER
	default:
		return gl.VERTEX_SHADER
	}
}

func bufferTargetEnum(t gfx.BufferTarget) uint32 {
	if t == gfx.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func textureTargetEnum(t gfx.TextureTarget) uint32 {
	if t == gfx.TextureCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

// textureFormatEnums returns the internal format, pixel format and pixel type for f.
func textureFormatEnums(f gfx.TextureFormat) (int32, uint32, uint32) {
	switch f {
	case gfx.FormatSRGBA8:
		return gl.SRGB8_ALPHA8, gl.RGBA, gl.UNSIGNED_BYTE
	case gfx.FormatRGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.FLOAT
	case gfx.FormatDepth24:
		return gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	}
}

func filterEnum(f common.FilterMode) int32 {
	if f == common.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func wrapEnum(w common.WrapMode) int32 {
	switch w {
	case common.WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	case common.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	default:
		return gl.REPEAT
	}
}

func attachmentEnum(a gfx.AttachmentPoint) uint32 {
	switch a {
	case gfx.AttachDepth:
		return gl.DEPTH_ATTACHMENT
	case gfx.AttachDepthStencil:
		return gl.DEPTH_STENCIL_ATTACHMENT
	default:
		return gl.COLOR_ATTACHMENT0
	}
}

func capabilityEnum(c gfx.Capability) uint32 {
	switch c {
	case gfx.CapCullFace:
		return gl.CULL_FACE
	case gfx.CapBlend:
		return gl.BLEND
	default:
		return gl.DEPTH_TEST
	}
}

func primitiveEnum(p gfx.Primitive) uint32 {
	if p == gfx.Lines {
		return gl.LINES
	}
	return gl.TRIANGLES
}
