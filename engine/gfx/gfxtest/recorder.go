// Package gfxtest provides a recording gfx.Device for tests. It keeps the bound
// state the way a real context would and records every call that matters for
// assertions: programs, uniform writes by name, draws and state changes.
package gfxtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrCompile is returned by CreateProgram when the recorder is told to fail compilation.
var ErrCompile = errors.New("gfxtest: compile failed")

// UniformWrite is one uniform assignment.
type UniformWrite struct {
	Program gfx.Program
	Name    string
	Value   any
}

// Draw is one recorded draw call and the state it was issued under.
type Draw struct {
	Program     gfx.Program
	VertexArray gfx.VertexArray
	Framebuffer gfx.Framebuffer
	Mode        gfx.Primitive
	Count       int32
	IndexType   gfx.IndexType
	Indexed     bool
	CullFace    gfx.Face
	CullEnabled bool
	Polygon     gfx.PolygonMode
	Viewport    gfx.Viewport
	Textures    map[uint32]gfx.Texture
}

// Recorder is a gfx.Device that records instead of rendering. It is safe for
// concurrent use so tests can exercise the cache from several goroutines.
type Recorder struct {
	mu sync.Mutex

	// FailCompile makes every CreateProgram call fail.
	FailCompile bool

	next uint32

	Programs   map[gfx.Program][]gfx.ShaderSource
	Textures   map[gfx.Texture]gfx.TextureDesc
	Framebufs  map[gfx.Framebuffer]gfx.FramebufferDesc
	Arrays     map[gfx.VertexArray]bool
	Buffers    map[gfx.Buffer][]byte
	Renderbufs map[gfx.Renderbuffer]gfx.RenderbufferFormat
	Attribs    map[gfx.VertexArray][]gfx.VertexAttrib

	Uniforms        []UniformWrite
	Draws           []Draw
	Calls           []string
	Deleted         int
	LocationQueries map[string]int

	locations map[gfx.Program]map[string]int32
	names     map[gfx.Program]map[int32]string

	program     gfx.Program
	vertexArray gfx.VertexArray
	framebuffer gfx.Framebuffer
	textures    map[uint32]gfx.Texture
	viewport    gfx.Viewport
	caps        map[gfx.Capability]bool
	cullFace    gfx.Face
	polygon     gfx.PolygonMode
}

var _ gfx.Device = &Recorder{}

// NewRecorder returns an empty Recorder with a 1280x720 viewport.
//
// Returns:
//   - *Recorder: the recorder
func NewRecorder() *Recorder {
	return &Recorder{
		Programs:        make(map[gfx.Program][]gfx.ShaderSource),
		Textures:        make(map[gfx.Texture]gfx.TextureDesc),
		Framebufs:       make(map[gfx.Framebuffer]gfx.FramebufferDesc),
		Arrays:          make(map[gfx.VertexArray]bool),
		Buffers:         make(map[gfx.Buffer][]byte),
		Renderbufs:      make(map[gfx.Renderbuffer]gfx.RenderbufferFormat),
		Attribs:         make(map[gfx.VertexArray][]gfx.VertexAttrib),
		LocationQueries: make(map[string]int),
		locations:       make(map[gfx.Program]map[string]int32),
		names:           make(map[gfx.Program]map[int32]string),
		textures:        make(map[uint32]gfx.Texture),
		viewport:        gfx.Viewport{Width: 1280, Height: 720},
		caps:            make(map[gfx.Capability]bool),
	}
}

func (r *Recorder) id() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) call(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) CreateProgram(sources ...gfx.ShaderSource) (gfx.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.call("CreateProgram")
	if r.FailCompile {
		return 0, ErrCompile
	}
	p := gfx.Program(r.id())
	r.Programs[p] = sources
	r.locations[p] = make(map[string]int32)
	r.names[p] = make(map[int32]string)
	return p, nil
}

func (r *Recorder) DeleteProgram(p gfx.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Programs[p]; ok {
		delete(r.Programs, p)
		r.Deleted++
	}
}

func (r *Recorder) UseProgram(p gfx.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = p
	r.call("UseProgram %d", p)
}

func (r *Recorder) UniformLocation(p gfx.Program, name string) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LocationQueries[name]++
	locs, ok := r.locations[p]
	if !ok {
		return -1
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := int32(len(locs))
	locs[name] = loc
	r.names[p][loc] = name
	return loc
}

func (r *Recorder) setUniform(loc int32, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loc < 0 {
		return
	}
	name, ok := r.names[r.program][loc]
	if !ok {
		name = fmt.Sprintf("<location %d>", loc)
	}
	r.Uniforms = append(r.Uniforms, UniformWrite{Program: r.program, Name: name, Value: v})
}

func (r *Recorder) SetUniformInt(loc int32, v int32)       { r.setUniform(loc, v) }
func (r *Recorder) SetUniformUint(loc int32, v uint32)     { r.setUniform(loc, v) }
func (r *Recorder) SetUniformFloat(loc int32, v float32)   { r.setUniform(loc, v) }
func (r *Recorder) SetUniformVec2(loc int32, v mgl32.Vec2) { r.setUniform(loc, v) }
func (r *Recorder) SetUniformVec3(loc int32, v mgl32.Vec3) { r.setUniform(loc, v) }
func (r *Recorder) SetUniformVec4(loc int32, v mgl32.Vec4) { r.setUniform(loc, v) }
func (r *Recorder) SetUniformMat3(loc int32, v mgl32.Mat3) { r.setUniform(loc, v) }
func (r *Recorder) SetUniformMat4(loc int32, v mgl32.Mat4) { r.setUniform(loc, v) }

func (r *Recorder) CreateVertexArray() gfx.VertexArray {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := gfx.VertexArray(r.id())
	r.Arrays[v] = true
	r.call("CreateVertexArray %d", v)
	return v
}

func (r *Recorder) BindVertexArray(v gfx.VertexArray) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vertexArray = v
	r.call("BindVertexArray %d", v)
}

func (r *Recorder) DeleteVertexArray(v gfx.VertexArray) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Arrays[v] {
		delete(r.Arrays, v)
		r.Deleted++
	}
}

func (r *Recorder) CreateBuffer(target gfx.BufferTarget, data []byte) gfx.Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := gfx.Buffer(r.id())
	r.Buffers[b] = append([]byte(nil), data...)
	r.call("CreateBuffer %d", b)
	return b
}

func (r *Recorder) DeleteBuffer(b gfx.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Buffers[b]; ok {
		delete(r.Buffers, b)
		r.Deleted++
	}
}

func (r *Recorder) VertexAttribPointer(attr gfx.VertexAttrib) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attribs[r.vertexArray] = append(r.Attribs[r.vertexArray], attr)
}

func (r *Recorder) CreateTexture(desc gfx.TextureDesc) (gfx.Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("gfxtest: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	t := gfx.Texture(r.id())
	r.Textures[t] = desc
	r.call("CreateTexture %d", t)
	return t, nil
}

func (r *Recorder) BindTexture(unit uint32, target gfx.TextureTarget, tex gfx.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tex == 0 {
		delete(r.textures, unit)
	} else {
		r.textures[unit] = tex
	}
	r.call("BindTexture %d %d", unit, tex)
}

func (r *Recorder) DeleteTexture(t gfx.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Textures[t]; ok {
		delete(r.Textures, t)
		r.Deleted++
	}
}

func (r *Recorder) CreateRenderbuffer(format gfx.RenderbufferFormat, width, height int) gfx.Renderbuffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	rb := gfx.Renderbuffer(r.id())
	r.Renderbufs[rb] = format
	return rb
}

func (r *Recorder) DeleteRenderbuffer(rb gfx.Renderbuffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Renderbufs[rb]; ok {
		delete(r.Renderbufs, rb)
		r.Deleted++
	}
}

func (r *Recorder) CreateFramebuffer(desc gfx.FramebufferDesc) (gfx.Framebuffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(desc.Attachments) == 0 {
		return 0, errors.New("gfxtest: framebuffer has no attachments")
	}
	fb := gfx.Framebuffer(r.id())
	r.Framebufs[fb] = desc
	r.call("CreateFramebuffer %d", fb)
	return fb, nil
}

func (r *Recorder) BindFramebuffer(fb gfx.Framebuffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.framebuffer = fb
	r.call("BindFramebuffer %d", fb)
}

func (r *Recorder) DeleteFramebuffer(fb gfx.Framebuffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Framebufs[fb]; ok {
		delete(r.Framebufs, fb)
		r.Deleted++
	}
}

func (r *Recorder) Viewport() gfx.Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewport
}

func (r *Recorder) SetViewport(v gfx.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport = v
	r.call("SetViewport %dx%d", v.Width, v.Height)
}

func (r *Recorder) Enable(c gfx.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[c] = true
}

func (r *Recorder) Disable(c gfx.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[c] = false
}

func (r *Recorder) IsEnabled(c gfx.Capability) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.caps[c]
}

func (r *Recorder) CullFace() gfx.Face {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cullFace
}

func (r *Recorder) SetCullFace(f gfx.Face) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cullFace = f
	r.call("SetCullFace %d", f)
}

func (r *Recorder) PolygonMode() gfx.PolygonMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.polygon
}

func (r *Recorder) SetPolygonMode(m gfx.PolygonMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polygon = m
	r.call("SetPolygonMode %d", m)
}

func (r *Recorder) ClearColor(_, _, _, _ float32) {}

func (r *Recorder) Clear(mask gfx.ClearMask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.call("Clear %d", mask)
}

func (r *Recorder) draw(mode gfx.Primitive, count int32, indexType gfx.IndexType, indexed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bound := make(map[uint32]gfx.Texture, len(r.textures))
	for unit, tex := range r.textures {
		bound[unit] = tex
	}
	r.Draws = append(r.Draws, Draw{
		Program:     r.program,
		VertexArray: r.vertexArray,
		Framebuffer: r.framebuffer,
		Mode:        mode,
		Count:       count,
		IndexType:   indexType,
		Indexed:     indexed,
		CullFace:    r.cullFace,
		CullEnabled: r.caps[gfx.CapCullFace],
		Polygon:     r.polygon,
		Viewport:    r.viewport,
		Textures:    bound,
	})
	r.call("Draw %d", count)
}

func (r *Recorder) DrawElements(mode gfx.Primitive, count int32, indexType gfx.IndexType, _ int) {
	r.draw(mode, count, indexType, true)
}

func (r *Recorder) DrawArrays(mode gfx.Primitive, _, count int32) {
	r.draw(mode, count, gfx.IndexUint32, false)
}

// Bound returns the currently bound program, vertex array and framebuffer.
func (r *Recorder) Bound() (gfx.Program, gfx.VertexArray, gfx.Framebuffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.program, r.vertexArray, r.framebuffer
}

// Uniform returns the last value written to name in program p.
//
// Parameters:
//   - p: the program
//   - name: the uniform name
//
// Returns:
//   - any: the value
//   - bool: true if the uniform was written
func (r *Recorder) Uniform(p gfx.Program, name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Uniforms) - 1; i >= 0; i-- {
		if w := r.Uniforms[i]; w.Program == p && w.Name == name {
			return w.Value, true
		}
	}
	return nil, false
}

// UniformNames returns the distinct uniform names written to p, in first-write order.
func (r *Recorder) UniformNames(p gfx.Program) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, w := range r.Uniforms {
		if w.Program == p && !seen[w.Name] {
			seen[w.Name] = true
			out = append(out, w.Name)
		}
	}
	return out
}

// CallCount returns the total number of recorded calls, which tests use to prove
// that an operation touched the device not at all.
func (r *Recorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Calls)
}

// Reset clears the recorded uniforms, draws and calls but keeps objects and bound state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Uniforms = nil
	r.Draws = nil
	r.Calls = nil
}
