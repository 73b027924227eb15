package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the logger for skipped passes and draws.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithShaderHook sets the hook run once per distinct shader per frame.
//
// Parameters:
//   - hook: the hook
//
// Returns:
//   - RendererBuilderOption: a function that applies the hook option to a renderer
func WithShaderHook(hook ShaderHook) RendererBuilderOption {
	return func(r *renderer) {
		r.hook = hook
	}
}

// WithClearColor sets the color the framebuffer is cleared to before drawing.
//
// Parameters:
//   - c: linear RGBA
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c mgl32.Vec4) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithWireframe starts the renderer in wireframe mode.
func WithWireframe(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.wireframe = enabled
	}
}
