package shader

import (
	"embed"
	"strconv"

	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
)

//go:embed glsl/*
var glslFS embed.FS

// Keys of the built-in programs.
const (
	KeyLit               = "lit"
	KeyDirectionalDepth  = "shadow_directional"
	KeyPointDepth        = "shadow_point"
	KeyComposite         = "composite"
	DefineMaxPointLights = "MAX_POINT_LIGHTS"
	DefineMaxPointShadow = "MAX_POINT_SHADOWS"
)

// DefaultMaxPointLights sizes the u_pointLight array when no limit is configured.
const DefaultMaxPointLights = 16

func mustRead(name string) string {
	data, err := glslFS.ReadFile("glsl/" + name)
	if err != nil {
		panic("shader: missing embedded source " + name)
	}
	return string(data)
}

func builtinIncludes() map[string]string {
	return map[string]string{
		"lights.glsl":  mustRead("lights.glsl"),
		"shadows.glsl": mustRead("shadows.glsl"),
	}
}

// NewLitShader builds the forward lit program used for every material by default.
//
// Parameters:
//   - maxPointLights: size of the u_pointLight array
//   - maxPointShadows: size of the u_pointShadowMap array, at least 1
//
// Returns:
//   - Shader: the lit shader, not yet compiled
func NewLitShader(maxPointLights, maxPointShadows int) Shader {
	if maxPointLights < 1 {
		maxPointLights = DefaultMaxPointLights
	}
	if maxPointShadows < 1 {
		maxPointShadows = 1
	}
	pp := NewPreProcessor(
		WithDefine(DefineMaxPointLights, strconv.Itoa(maxPointLights)),
		WithDefine(DefineMaxPointShadow, strconv.Itoa(maxPointShadows)),
	)
	return NewShader(KeyLit,
		WithPreProcessor(pp),
		WithStage(gfx.StageVertex, mustRead("lit.vert")),
		WithStage(gfx.StageFragment, mustRead("lit.frag")),
	)
}

// NewDirectionalDepthShader builds the depth-only program for the directional shadow map.
//
// Returns:
//   - Shader: the shader, not yet compiled
func NewDirectionalDepthShader() Shader {
	return NewShader(KeyDirectionalDepth,
		WithStage(gfx.StageVertex, mustRead("depth_directional.vert")),
		WithStage(gfx.StageFragment, mustRead("depth_directional.frag")),
	)
}

// NewPointDepthShader builds the layered cube depth program for point shadows.
// A geometry stage routes each triangle to all six faces in one draw.
//
// Returns:
//   - Shader: the shader, not yet compiled
func NewPointDepthShader() Shader {
	return NewShader(KeyPointDepth,
		WithStage(gfx.StageVertex, mustRead("depth_point.vert")),
		WithStage(gfx.StageGeometry, mustRead("depth_point.geom")),
		WithStage(gfx.StageFragment, mustRead("depth_point.frag")),
	)
}

// NewCompositeShader builds the full-screen exposure composite program.
//
// Returns:
//   - Shader: the shader, not yet compiled
func NewCompositeShader() Shader {
	return NewShader(KeyComposite,
		WithStage(gfx.StageVertex, mustRead("composite.vert")),
		WithStage(gfx.StageFragment, mustRead("composite.frag")),
	)
}
