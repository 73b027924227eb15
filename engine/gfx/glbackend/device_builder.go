package glbackend

import "go.uber.org/zap"

// DeviceBuilderOption is a functional option applied to the device during construction via New.
type DeviceBuilderOption func(*device)

// WithLogger sets the logger used for context diagnostics.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op logger
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) DeviceBuilderOption {
	return func(d *device) {
		if logger != nil {
			d.logger = logger
		}
	}
}
