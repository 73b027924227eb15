// Package gfx defines the immediate-mode graphics device the engine renders through.
// The device follows a current-context model: a bound program receives uniform writes,
// a bound vertex array feeds draws, and a bound framebuffer receives their output.
// All calls must come from the goroutine that owns the graphics context.
package gfx

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Handle types. The zero value of each is "none": binding it unbinds.
type (
	Program      uint32
	VertexArray  uint32
	Buffer       uint32
	Texture      uint32
	Framebuffer  uint32
	Renderbuffer uint32
)

// DefaultFramebuffer is the window surface.
const DefaultFramebuffer Framebuffer = 0

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageGeometry
	StageFragment
)

// String returns the stage name used in compile errors.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// ShaderSource is the source text of one program stage.
type ShaderSource struct {
	Stage  ShaderStage
	Source string
}

// BufferTarget selects the binding point of a buffer.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// VertexAttrib describes one float vertex attribute inside an interleaved array buffer.
type VertexAttrib struct {
	Location   uint32
	Components int32
	Stride     int32
	Offset     int
}

// TextureTarget selects a texture dimensionality.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	TextureCube
)

// TextureFormat is the internal storage format of a texture.
type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatSRGBA8
	FormatRGBA16F
	FormatDepth24
)

// IsDepth reports whether the format stores depth.
func (f TextureFormat) IsDepth() bool {
	return f == FormatDepth24
}

// TextureDesc describes a texture allocation. Pixels may be nil to allocate
// storage only. For cube textures the same Pixels are used for every face.
type TextureDesc struct {
	Target  TextureTarget
	Format  TextureFormat
	Width   int
	Height  int
	Pixels  []byte
	Sampler common.SamplerData
}

// RenderbufferFormat is the storage format of a renderbuffer.
type RenderbufferFormat int

const (
	RenderbufferDepth24Stencil8 RenderbufferFormat = iota
)

// AttachmentPoint selects where a texture or renderbuffer is attached on a framebuffer.
type AttachmentPoint int

const (
	AttachColor0 AttachmentPoint = iota
	AttachDepth
	AttachDepthStencil
)

// Attachment binds either a texture or a renderbuffer to a framebuffer attachment point.
// Cube textures are attached layered so a geometry shader can route primitives to faces.
type Attachment struct {
	Point        AttachmentPoint
	Texture      Texture
	Target       TextureTarget
	Renderbuffer Renderbuffer
}

// FramebufferDesc lists the attachments of a framebuffer. A framebuffer without
// a color attachment has its draw and read buffers disabled.
type FramebufferDesc struct {
	Attachments []Attachment
}

// Capability is a toggleable fixed-function state.
type Capability int

const (
	CapDepthTest Capability = iota
	CapCullFace
	CapBlend
)

// Face selects polygons for culling.
type Face int

const (
	FaceBack Face = iota
	FaceFront
)

// PolygonMode selects how polygons are rasterized.
type PolygonMode int

const (
	PolygonFill PolygonMode = iota
	PolygonLine
)

// ClearMask selects the buffers cleared by Clear.
type ClearMask int

const (
	ClearColorBit ClearMask = 1 << iota
	ClearDepthBit
	ClearStencilBit
)

// Primitive is the topology of a draw.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// IndexType is the element type of an index buffer.
type IndexType int

const (
	IndexUint16 IndexType = iota
	IndexUint32
)

// Viewport is a rectangle in framebuffer pixels.
type Viewport struct {
	X, Y, Width, Height int32
}

// Device is the graphics backend used by every render-side component.
//
// Uniform setters write to the currently bound program, like the underlying API.
// A location of -1 is silently ignored.
type Device interface {
	// CreateProgram compiles and links the given stages into a program.
	//
	// Parameters:
	//   - sources: the stage sources, at least a vertex and a fragment stage
	//
	// Returns:
	//   - Program: the linked program
	//   - error: an error carrying the compiler or linker log
	CreateProgram(sources ...ShaderSource) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)

	// UniformLocation returns the location of a named uniform in p, or -1 if it is not active.
	//
	// Parameters:
	//   - p: the program to query
	//   - name: the uniform name, e.g. "u_pointLight[0].position"
	//
	// Returns:
	//   - int32: the uniform location or -1
	UniformLocation(p Program, name string) int32

	SetUniformInt(loc int32, v int32)
	SetUniformUint(loc int32, v uint32)
	SetUniformFloat(loc int32, v float32)
	SetUniformVec2(loc int32, v mgl32.Vec2)
	SetUniformVec3(loc int32, v mgl32.Vec3)
	SetUniformVec4(loc int32, v mgl32.Vec4)
	SetUniformMat3(loc int32, v mgl32.Mat3)
	SetUniformMat4(loc int32, v mgl32.Mat4)

	// CreateVertexArray allocates a vertex array without binding it; callers bind it
	// before recording attribute pointers.
	//
	// Returns:
	//   - VertexArray: the new vertex array
	CreateVertexArray() VertexArray
	BindVertexArray(v VertexArray)
	DeleteVertexArray(v VertexArray)

	// CreateBuffer allocates a buffer, uploads data into it and leaves it bound to target,
	// so a bound vertex array records it.
	//
	// Parameters:
	//   - target: the binding point
	//   - data: the initial contents
	//
	// Returns:
	//   - Buffer: the new buffer
	CreateBuffer(target BufferTarget, data []byte) Buffer
	DeleteBuffer(b Buffer)

	// VertexAttribPointer enables the attribute and points it at the bound array buffer.
	//
	// Parameters:
	//   - attr: the attribute layout
	VertexAttribPointer(attr VertexAttrib)

	// CreateTexture allocates a texture and uploads its initial pixels.
	//
	// Parameters:
	//   - desc: the texture description
	//
	// Returns:
	//   - Texture: the new texture
	//   - error: an error if the description is invalid
	CreateTexture(desc TextureDesc) (Texture, error)

	// BindTexture activates a texture unit and binds tex to it.
	//
	// Parameters:
	//   - unit: the texture unit index, starting at 0
	//   - target: the texture target
	//   - tex: the texture, or 0 to unbind
	BindTexture(unit uint32, target TextureTarget, tex Texture)
	DeleteTexture(t Texture)

	CreateRenderbuffer(format RenderbufferFormat, width, height int) Renderbuffer
	DeleteRenderbuffer(r Renderbuffer)

	// CreateFramebuffer creates a framebuffer with the given attachments and checks completeness.
	//
	// Parameters:
	//   - desc: the attachments
	//
	// Returns:
	//   - Framebuffer: the new framebuffer
	//   - error: an error if the framebuffer is incomplete
	CreateFramebuffer(desc FramebufferDesc) (Framebuffer, error)
	BindFramebuffer(fb Framebuffer)
	DeleteFramebuffer(fb Framebuffer)

	Viewport() Viewport
	SetViewport(v Viewport)
	Enable(c Capability)
	Disable(c Capability)
	IsEnabled(c Capability) bool
	CullFace() Face
	SetCullFace(f Face)
	PolygonMode() PolygonMode
	SetPolygonMode(m PolygonMode)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)

	// DrawElements issues an indexed draw from the bound vertex array.
	//
	// Parameters:
	//   - mode: the primitive topology
	//   - count: the number of indices
	//   - indexType: the index element type
	//   - offset: byte offset into the bound element buffer
	DrawElements(mode Primitive, count int32, indexType IndexType, offset int)

	// DrawArrays issues a non-indexed draw from the bound vertex array.
	//
	// Parameters:
	//   - mode: the primitive topology
	//   - first: the first vertex
	//   - count: the number of vertices
	DrawArrays(mode Primitive, first, count int32)
}
