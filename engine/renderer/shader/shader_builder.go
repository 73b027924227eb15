package shader

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
)

// ShaderBuilderOption is a functional option applied to a shader during construction via NewShader.
type ShaderBuilderOption func(*shader)

// WithStage adds a stage from source text.
//
// Parameters:
//   - stage: the pipeline stage
//   - source: the GLSL source, pre-processed during NewShader
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithStage(stage gfx.ShaderStage, source string) ShaderBuilderOption {
	return func(s *shader) {
		s.sources = append(s.sources, gfx.ShaderSource{Stage: stage, Source: source})
	}
}

// WithStageFromPath adds a stage read from a file. Panics if the file cannot be read.
//
// Parameters:
//   - stage: the pipeline stage
//   - path: the file path of the GLSL source
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithStageFromPath(stage gfx.ShaderStage, path string) ShaderBuilderOption {
	return func(s *shader) {
		data, err := os.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("shader: failed to read source file %q: %v", path, err))
		}
		s.sources = append(s.sources, gfx.ShaderSource{Stage: stage, Source: string(data)})
	}
}

// WithPreProcessor replaces the default pre-processor, e.g. to inject defines.
//
// Parameters:
//   - pp: the pre-processor
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		if pp != nil {
			s.pp = pp
		}
	}
}
