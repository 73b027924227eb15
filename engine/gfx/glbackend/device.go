// Package glbackend implements gfx.Device on OpenGL 4.1 core. New must be called
// with the window's context current, and every method must run on that thread.
package glbackend

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// device is the OpenGL implementation of gfx.Device.
type device struct {
	logger *zap.Logger

	// State that GL can only report through legacy queries is shadowed here.
	cullFace gfx.Face
	polygon  gfx.PolygonMode
}

var _ gfx.Device = &device{}

// New loads the GL function pointers for the current context and returns a Device.
//
// Parameters:
//   - options: functional options to configure the device
//
// Returns:
//   - gfx.Device: the OpenGL device
//   - error: an error if the GL bindings could not be initialized
func New(options ...DeviceBuilderOption) (gfx.Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	d := &device{
		logger:   zap.NewNop(),
		cullFace: gfx.FaceBack,
		polygon:  gfx.PolygonFill,
	}
	for _, opt := range options {
		opt(d)
	}
	d.logger.Info("OpenGL context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return d, nil
}

func (d *device) CreateProgram(sources ...gfx.ShaderSource) (gfx.Program, error) {
	if len(sources) == 0 {
		return 0, errors.New("glbackend: program needs at least one stage")
	}

	shaders := make([]uint32, 0, len(sources))
	defer func() {
		for _, s := range shaders {
			gl.DeleteShader(s)
		}
	}()
	for _, src := range sources {
		s, err := compileShader(stageEnum(src.Stage), src.Source)
		if err != nil {
			return 0, fmt.Errorf("%s shader: %w", src.Stage, err)
		}
		shaders = append(shaders, s)
	}

	program := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(program, s)
	}
	gl.LinkProgram(program)
	for _, s := range shaders {
		gl.DetachShader(program, s)
	}

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link error: %s", strings.TrimRight(log, "\x00"))
	}
	return gfx.Program(program), nil
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile error: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func (d *device) DeleteProgram(p gfx.Program) {
	if p != 0 {
		gl.DeleteProgram(uint32(p))
	}
}

func (d *device) UseProgram(p gfx.Program) {
	gl.UseProgram(uint32(p))
}

func (d *device) UniformLocation(p gfx.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (d *device) SetUniformInt(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (d *device) SetUniformUint(loc int32, v uint32) {
	gl.Uniform1ui(loc, v)
}

func (d *device) SetUniformFloat(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (d *device) SetUniformVec2(loc int32, v mgl32.Vec2) {
	gl.Uniform2f(loc, v[0], v[1])
}

func (d *device) SetUniformVec3(loc int32, v mgl32.Vec3) {
	gl.Uniform3f(loc, v[0], v[1], v[2])
}

func (d *device) SetUniformVec4(loc int32, v mgl32.Vec4) {
	gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
}

func (d *device) SetUniformMat3(loc int32, v mgl32.Mat3) {
	gl.UniformMatrix3fv(loc, 1, false, &v[0])
}

func (d *device) SetUniformMat4(loc int32, v mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &v[0])
}

func (d *device) CreateVertexArray() gfx.VertexArray {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return gfx.VertexArray(vao)
}

func (d *device) BindVertexArray(v gfx.VertexArray) {
	gl.BindVertexArray(uint32(v))
}

func (d *device) DeleteVertexArray(v gfx.VertexArray) {
	vao := uint32(v)
	gl.DeleteVertexArrays(1, &vao)
}

func (d *device) CreateBuffer(target gfx.BufferTarget, data []byte) gfx.Buffer {
	var buf uint32
	gl.GenBuffers(1, &buf)
	t := bufferTargetEnum(target)
	gl.BindBuffer(t, buf)
	if len(data) > 0 {
		gl.BufferData(t, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	}
	return gfx.Buffer(buf)
}

func (d *device) DeleteBuffer(b gfx.Buffer) {
	buf := uint32(b)
	gl.DeleteBuffers(1, &buf)
}

func (d *device) VertexAttribPointer(attr gfx.VertexAttrib) {
	gl.EnableVertexAttribArray(attr.Location)
	gl.VertexAttribPointer(attr.Location, attr.Components, gl.FLOAT, false, attr.Stride, gl.PtrOffset(attr.Offset))
}

func (d *device) CreateTexture(desc gfx.TextureDesc) (gfx.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("glbackend: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	internal, format, xtype := textureFormatEnums(desc.Format)
	if desc.Pixels != nil && !desc.Format.IsDepth() && len(desc.Pixels) < desc.Width*desc.Height*4 {
		return 0, fmt.Errorf("glbackend: %d bytes of pixels for %dx%d texture", len(desc.Pixels), desc.Width, desc.Height)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	target := textureTargetEnum(desc.Target)
	gl.BindTexture(target, tex)

	var pixels unsafe.Pointer
	if len(desc.Pixels) > 0 {
		pixels = gl.Ptr(desc.Pixels)
	}
	w, h := int32(desc.Width), int32(desc.Height)
	switch desc.Target {
	case gfx.TextureCube:
		for face := uint32(0); face < 6; face++ {
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face, 0, internal, w, h, 0, format, xtype, pixels)
		}
	default:
		gl.TexImage2D(gl.TEXTURE_2D, 0, internal, w, h, 0, format, xtype, pixels)
	}

	applySampler(target, desc)
	if desc.Sampler.Mipmaps && len(desc.Pixels) > 0 && !desc.Format.IsDepth() {
		gl.GenerateMipmap(target)
	}
	gl.BindTexture(target, 0)
	return gfx.Texture(tex), nil
}

func applySampler(target uint32, desc gfx.TextureDesc) {
	if desc.Format.IsDepth() {
		gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
		return
	}

	s := desc.Sampler
	minFilter := filterEnum(s.MinFilter)
	if s.Mipmaps && len(desc.Pixels) > 0 {
		minFilter = gl.LINEAR_MIPMAP_LINEAR
		if s.MinFilter == common.FilterNearest {
			minFilter = gl.NEAREST_MIPMAP_NEAREST
		}
	}
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, filterEnum(s.MagFilter))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, wrapEnum(s.WrapS))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, wrapEnum(s.WrapT))
	if target == gl.TEXTURE_CUBE_MAP {
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	}
}

func (d *device) BindTexture(unit uint32, target gfx.TextureTarget, tex gfx.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(textureTargetEnum(target), uint32(tex))
}

func (d *device) DeleteTexture(t gfx.Texture) {
	tex := uint32(t)
	gl.DeleteTextures(1, &tex)
}

func (d *device) CreateRenderbuffer(format gfx.RenderbufferFormat, width, height int) gfx.Renderbuffer {
	var rb uint32
	gl.GenRenderbuffers(1, &rb)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rb)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(width), int32(height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	return gfx.Renderbuffer(rb)
}

func (d *device) DeleteRenderbuffer(r gfx.Renderbuffer) {
	rb := uint32(r)
	gl.DeleteRenderbuffers(1, &rb)
}

func (d *device) CreateFramebuffer(desc gfx.FramebufferDesc) (gfx.Framebuffer, error) {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	hasColor := false
	for _, a := range desc.Attachments {
		point := attachmentEnum(a.Point)
		if a.Point == gfx.AttachColor0 {
			hasColor = true
		}
		switch {
		case a.Renderbuffer != 0:
			gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, point, gl.RENDERBUFFER, uint32(a.Renderbuffer))
		case a.Target == gfx.TextureCube:
			// layered attachment, faces are selected by gl_Layer in the geometry stage
			gl.FramebufferTexture(gl.FRAMEBUFFER, point, uint32(a.Texture), 0)
		default:
			gl.FramebufferTexture2D(gl.FRAMEBUFFER, point, gl.TEXTURE_2D, uint32(a.Texture), 0)
		}
	}
	if !hasColor {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fb)
		return 0, fmt.Errorf("glbackend: framebuffer incomplete (status 0x%x)", status)
	}
	return gfx.Framebuffer(fb), nil
}

func (d *device) BindFramebuffer(fb gfx.Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
}

func (d *device) DeleteFramebuffer(f gfx.Framebuffer) {
	fb := uint32(f)
	gl.DeleteFramebuffers(1, &fb)
}

func (d *device) Viewport() gfx.Viewport {
	var v [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &v[0])
	return gfx.Viewport{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
}

func (d *device) SetViewport(v gfx.Viewport) {
	gl.Viewport(v.X, v.Y, v.Width, v.Height)
}

func (d *device) Enable(c gfx.Capability) {
	gl.Enable(capabilityEnum(c))
}

func (d *device) Disable(c gfx.Capability) {
	gl.Disable(capabilityEnum(c))
}

func (d *device) IsEnabled(c gfx.Capability) bool {
	return gl.IsEnabled(capabilityEnum(c))
}

func (d *device) CullFace() gfx.Face {
	return d.cullFace
}

func (d *device) SetCullFace(f gfx.Face) {
	d.cullFace = f
	if f == gfx.FaceFront {
		gl.CullFace(gl.FRONT)
		return
	}
	gl.CullFace(gl.BACK)
}

func (d *device) PolygonMode() gfx.PolygonMode {
	return d.polygon
}

func (d *device) SetPolygonMode(m gfx.PolygonMode) {
	d.polygon = m
	if m == gfx.PolygonLine {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		return
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

func (d *device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *device) Clear(mask gfx.ClearMask) {
	var bits uint32
	if mask&gfx.ClearColorBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gfx.ClearDepthBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if mask&gfx.ClearStencilBit != 0 {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (d *device) DrawElements(mode gfx.Primitive, count int32, indexType gfx.IndexType, offset int) {
	xtype := uint32(gl.UNSIGNED_INT)
	if indexType == gfx.IndexUint16 {
		xtype = gl.UNSIGNED_SHORT
	}
	gl.DrawElements(primitiveEnum(mode), count, xtype, gl.PtrOffset(offset))
}

func (d *device) DrawArrays(mode gfx.Primitive, first, count int32) {
	gl.DrawArrays(primitiveEnum(mode), first, count)
}
