package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/input"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/shadow"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithLogger sets the logger handed to every component the engine creates.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler, e.g. to change its interval.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the window the engine presents to and reads input from.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithInput replaces the per-frame input source. Defaults to the window's Input.
//
// Parameters:
//   - source: function returning the input of the current frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithInput(source func() input.Frame) EngineBuilderOption {
	return func(e *engine) {
		e.input = source
	}
}

// WithSize sets the initial render size used when there is no window.
//
// Parameters:
//   - width: width in pixels
//   - height: height in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSize(width, height int) EngineBuilderOption {
	return func(e *engine) {
		if width > 0 && height > 0 {
			e.width, e.height = width, height
		}
	}
}

// WithCompositeShader selects the shader key used for the post-process composite.
//
// Parameters:
//   - key: the shader cache key
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCompositeShader(key string) EngineBuilderOption {
	return func(e *engine) {
		e.composite = key
	}
}

// WithLightOptions forwards options to the light system.
//
// Parameters:
//   - opts: the light system options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLightOptions(opts ...light.SystemBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.lightOpts = append(e.lightOpts, opts...)
	}
}

// WithShadowOptions forwards options to the shadow pass.
//
// Parameters:
//   - opts: the shadow pass options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShadowOptions(opts ...shadow.PassBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.shadowOpts = append(e.shadowOpts, opts...)
	}
}

// WithRendererOptions forwards options to the render pass.
//
// Parameters:
//   - opts: the renderer options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(opts ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOpts = append(e.rendererOpts, opts...)
	}
}

// WithPostProcessOptions forwards options to the post-process framebuffer.
//
// Parameters:
//   - opts: the framebuffer options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPostProcessOptions(opts ...postprocess.FramebufferBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.fbOpts = append(e.fbOpts, opts...)
	}
}

// WithOverlay registers the overlay drawn after the composite.
//
// Parameters:
//   - overlay: the overlay function
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOverlay(overlay OverlayFunc) EngineBuilderOption {
	return func(e *engine) {
		e.overlay = overlay
	}
}

// WithPhaseHook registers a function called at the start of every frame phase.
//
// Parameters:
//   - hook: the observer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPhaseHook(hook func(Phase)) EngineBuilderOption {
	return func(e *engine) {
		e.phaseHook = hook
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
