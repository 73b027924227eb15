package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// shader is the implementation of the Shader interface.
// It holds the pre-processed stage sources and, once initialized, the linked program
// together with its uniform location cache.
type shader struct {
	key     string
	sources []gfx.ShaderSource
	pp      PreProcessor

	device    gfx.Device
	program   gfx.Program
	locations map[string]int32
}

// Shader is a GPU program resource. Uniform setters address uniforms by name and write
// to the program that is currently bound, so callers Bind before setting. Every setter
// is a no-op while the shader has no valid program.
type Shader interface {
	resource.Resource

	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Sources returns the pre-processed stage sources.
	//
	// Returns:
	//   - []gfx.ShaderSource: one entry per stage
	Sources() []gfx.ShaderSource

	// Program returns the linked program, or 0 before initialization.
	//
	// Returns:
	//   - gfx.Program: the program handle
	Program() gfx.Program

	// Valid reports whether the shader holds a linked program.
	//
	// Returns:
	//   - bool: true once Initialize succeeded
	Valid() bool

	// Bind makes this shader's program current.
	Bind()

	// Unbind clears the current program.
	Unbind()

	// Location returns the cached location of a uniform, querying the device on first use.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - int32: the location, or -1 if the uniform is not active
	Location(name string) int32

	SetBool(name string, v bool)
	SetInt(name string, v int32)
	SetUint(name string, v uint32)
	SetFloat(name string, v float32)
	SetVec2(name string, v mgl32.Vec2)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
	SetMat3(name string, v mgl32.Mat3)
	SetMat4(name string, v mgl32.Mat4)
}

var _ Shader = &shader{}

// NewShader creates the CPU side of a shader. Stage sources are run through the
// pre-processor immediately; compilation is deferred to Initialize.
// Panics if no stage was provided or pre-processing fails, matching a missing
// shader asset at startup.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - options: functional options providing stage sources and the pre-processor
//
// Returns:
//   - Shader: a new Shader instance with the provided configuration
func NewShader(key string, options ...ShaderBuilderOption) Shader {
	s := &shader{
		key:       key,
		pp:        NewPreProcessor(),
		locations: make(map[string]int32),
	}
	for _, opt := range options {
		opt(s)
	}
	if len(s.sources) == 0 {
		panic(fmt.Sprintf("shader: %s must have at least one stage provided via WithStage", key))
	}
	for i, src := range s.sources {
		out, err := s.pp.Process(src.Source)
		if err != nil {
			panic(fmt.Sprintf("shader: failed to pre-process %s stage of %q: %v", src.Stage, key, err))
		}
		s.sources[i].Source = out
	}
	return s
}

func (s *shader) Initialize(dev gfx.Device) error {
	p, err := dev.CreateProgram(s.sources...)
	if err != nil {
		return fmt.Errorf("shader %q: %w", s.key, err)
	}
	s.device = dev
	s.program = p
	return nil
}

func (s *shader) Release(dev gfx.Device) {
	dev.DeleteProgram(s.program)
	s.program = 0
	s.device = nil
	s.locations = make(map[string]int32)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Sources() []gfx.ShaderSource {
	return s.sources
}

func (s *shader) Program() gfx.Program {
	return s.program
}

func (s *shader) Valid() bool {
	return s.program != 0 && s.device != nil
}

func (s *shader) Bind() {
	if s.Valid() {
		s.device.UseProgram(s.program)
	}
}

func (s *shader) Unbind() {
	if s.device != nil {
		s.device.UseProgram(0)
	}
}

func (s *shader) Location(name string) int32 {
	if !s.Valid() {
		return -1
	}
	if loc, ok := s.locations[name]; ok {
		return loc
	}
	loc := s.device.UniformLocation(s.program, name)
	s.locations[name] = loc
	return loc
}

func (s *shader) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	s.SetInt(name, i)
}

func (s *shader) SetInt(name string, v int32) {
	if loc := s.Location(name); loc >= 0 {
		s.device.SetUniformInt(loc, v)
	}
}

func (s *shader) SetUint(name string, v uint32) {
	if loc := s.Location(name); loc >= 0 {
		s.device.SetUniformUint(loc, v)
	}
}

func (s *shader) SetFloat(name string, v float32) {
	if loc := s.Location(name); loc >= 0 {
		s.device.SetUniformFloat(loc, v)
	}
}

func (s *shader) SetVec2(name string, v mgl32.Vec2) {
	if loc := s.Location(name); loc >= 0 {
		s.device.SetUniformVec2(loc, v)
	}
}

func (s *shader) SetVec3(name string, v mgl32.Vec3) {
	if loc := s.Location(name); loc >= 0 {
		s.device.SetUniformVec3(loc, v)
	}
}

func (s *shader) SetVec4(name string, v mgl32.Vec4) {
	if loc := s.Location(name); loc >= 0 {
		s.device.SetUniformVec4(loc, v)
	}
}

func (s *shader) SetMat3(name string, v mgl32.Mat3) {
	if loc := s.Location(name); loc >= 0 {
		s.device.SetUniformMat3(loc, v)
	}
}

func (s *shader) SetMat4(name string, v mgl32.Mat4) {
	if loc := s.Location(name); loc >= 0 {
		s.device.SetUniformMat4(loc, v)
	}
}
