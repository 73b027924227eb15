package shader

// PreProcessorBuilderOption is a functional option applied during NewPreProcessor.
type PreProcessorBuilderOption func(*preProcessor)

// WithDefine injects `#define name value` into every processed source.
//
// Parameters:
//   - name: the macro name
//   - value: the macro value
//
// Returns:
//   - PreProcessorBuilderOption: option function to apply
func WithDefine(name, value string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.defines[name] = value
	}
}

// WithInclude registers a named snippet for `#include "name"`.
//
// Parameters:
//   - name: the include name
//   - source: the snippet source
//
// Returns:
//   - PreProcessorBuilderOption: option function to apply
func WithInclude(name, source string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.includes[name] = source
	}
}
