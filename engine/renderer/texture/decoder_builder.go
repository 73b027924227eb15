package texture

import "go.uber.org/zap"

// DecoderBuilderOption is a functional option applied to a decoder during construction via NewDecoder.
type DecoderBuilderOption func(*decoder)

// WithWorkers sets the maximum number of decode goroutines per batch.
//
// Parameters:
//   - n: the worker count, values below 1 decode on the caller's goroutine
//
// Returns:
//   - DecoderBuilderOption: option function to apply
func WithWorkers(n int) DecoderBuilderOption {
	return func(d *decoder) {
		d.workers = n
	}
}

// WithLogger sets the logger used for decode failures.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - DecoderBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) DecoderBuilderOption {
	return func(d *decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}
