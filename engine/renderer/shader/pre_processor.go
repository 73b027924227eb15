// pre_processor.go implements the GLSL pre-processor. It expands
// `#include "<name>"` lines from a registry of named snippets and injects
// `#define` lines directly after the `#version` directive, so engine limits
// such as the point light array size are compiled into every program.
//
// Each snippet is included at most once per Process call; a repeated include
// expands to nothing.
package shader

import (
	"fmt"
	"sort"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// includes maps include names to snippet source.
	includes map[string]string

	// defines maps macro names to values injected after #version.
	defines map[string]string
}

// PreProcessor expands includes and injects defines into GLSL stage sources.
type PreProcessor interface {
	// Process expands every `#include "name"` line and injects the registered defines
	// after the `#version` line (or at the top if there is none).
	//
	// Parameters:
	//   - source: the raw GLSL stage source
	//
	// Returns:
	//   - string: the processed source
	//   - error: an error if an include is unknown or malformed
	Process(source string) (string, error)

	// Define registers or replaces a macro injected into every processed source.
	//
	// Parameters:
	//   - name: the macro name
	//   - value: the macro value
	Define(name, value string)

	// RegisterInclude registers or replaces a named snippet.
	//
	// Parameters:
	//   - name: the name used in #include lines
	//   - source: the snippet source
	RegisterInclude(name, source string)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's built-in snippets registered.
//
// Parameters:
//   - options: functional options adding defines or snippets
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		includes: builtinIncludes(),
		defines:  make(map[string]string),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Define(name, value string) {
	p.defines[name] = value
}

func (p *preProcessor) RegisterInclude(name, source string) {
	p.includes[name] = source
}

func (p *preProcessor) Process(source string) (string, error) {
	body, err := p.expand(source, make(map[string]bool), "")
	if err != nil {
		return "", err
	}

	defines := p.defineLines()
	if len(defines) == 0 {
		return strings.Join(body, "\n"), nil
	}

	out := make([]string, 0, len(body)+len(defines))
	inserted := false
	for _, line := range body {
		out = append(out, line)
		if !inserted && strings.HasPrefix(strings.TrimSpace(line), "#version") {
			out = append(out, defines...)
			inserted = true
		}
	}
	if !inserted {
		out = append(defines, out...)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) expand(source string, seen map[string]bool, from string) ([]string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		name, ok, err := parseInclude(line)
		if err != nil {
			return nil, fmt.Errorf("%sline %d: %w", from, i+1, err)
		}
		if !ok {
			out = append(out, line)
			continue
		}
		if seen[name] {
			continue
		}
		snippet, ok := p.includes[name]
		if !ok {
			return nil, fmt.Errorf("%sline %d: unknown include %q", from, i+1, name)
		}
		seen[name] = true
		inner, err := p.expand(snippet, seen, name+": ")
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}
	return out, nil
}

// parseInclude recognizes `#include "name"` and returns the name.
func parseInclude(line string) (string, bool, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "#include")
	if !ok {
		return "", false, nil
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", false, fmt.Errorf("malformed include %q", strings.TrimSpace(line))
	}
	return rest[1 : len(rest)-1], true, nil
}

func (p *preProcessor) defineLines() []string {
	names := make([]string, 0, len(p.defines))
	for name := range p.defines {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("#define %s %s", name, p.defines[name]))
	}
	return lines
}
