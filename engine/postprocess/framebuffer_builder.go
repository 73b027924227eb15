package postprocess

import "go.uber.org/zap"

// FramebufferBuilderOption is a functional option applied during construction via NewFramebuffer.
type FramebufferBuilderOption func(*framebuffer)

// WithLogger sets the logger for recreation and skipped composites.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - FramebufferBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) FramebufferBuilderOption {
	return func(f *framebuffer) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithExposure sets the initial exposure multiplier.
//
// Parameters:
//   - exposure: the exposure; values <= 0 keep DefaultExposure
//
// Returns:
//   - FramebufferBuilderOption: option function to apply
func WithExposure(exposure float32) FramebufferBuilderOption {
	return func(f *framebuffer) {
		if exposure > 0 {
			f.exposure = exposure
		}
	}
}
