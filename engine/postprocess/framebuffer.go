// Package postprocess owns the off-screen HDR target the scene is rendered into and
// the full-screen composite that tone maps it onto the default framebuffer.
package postprocess

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"go.uber.org/zap"
)

// ErrInvalidSize is returned when a target would have a zero or negative dimension.
var ErrInvalidSize = errors.New("postprocess: invalid framebuffer size")

// DefaultExposure is the exposure applied by the composite when none is configured.
const DefaultExposure float32 = 1.0

// framebuffer is the implementation of the Framebuffer interface.
type framebuffer struct {
	device gfx.Device
	logger *zap.Logger

	width    int
	height   int
	exposure float32

	color gfx.Texture
	depth gfx.Renderbuffer
	fbo   gfx.Framebuffer

	// emptyVAO satisfies the core profile requirement of a bound vertex array for
	// the attribute-less full-screen triangle.
	emptyVAO gfx.VertexArray

	savedViewport gfx.Viewport
	bound         bool
}

// Framebuffer is an off-screen RGBA16F color + depth24/stencil8 target.
//
// Storage is immutable once allocated, so Resize destroys every attachment and
// allocates new ones. Sizes are physical pixels, not window points.
type Framebuffer interface {
	// Bind makes the target current and sets the viewport to its size. The previous
	// viewport is restored by Unbind.
	Bind()

	// Unbind binds the default framebuffer and restores the viewport saved by Bind.
	Unbind()

	// Resize recreates the attachments at a new size. The same size is a no-op.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: ErrInvalidSize for non-positive sizes, or an allocation error
	Resize(width, height int) error

	// Draw composites the color attachment onto the default framebuffer with a
	// full-screen triangle. Depth testing is off and polygons are filled during the
	// draw regardless of any wireframe setting; both are restored afterwards.
	//
	// Parameters:
	//   - sh: the composite shader
	Draw(sh shader.Shader)

	// DrawTexture composites an arbitrary texture the same way Draw does. Overlays use
	// it with exposure disabled.
	//
	// Parameters:
	//   - sh: the composite shader
	//   - tex: the texture to draw
	DrawTexture(sh shader.Shader, tex gfx.Texture)

	// SetExposureEnabled toggles exposure correction in the composite shader.
	//
	// Parameters:
	//   - sh: the composite shader
	//   - enabled: false while drawing textures that must not be graded
	SetExposureEnabled(sh shader.Shader, enabled bool)

	// SetExposure sets the exposure written on every Draw.
	//
	// Parameters:
	//   - exposure: the exposure multiplier
	SetExposure(exposure float32)

	// Exposure retrieves the exposure written on every Draw.
	//
	// Returns:
	//   - float32: the exposure multiplier
	Exposure() float32

	// Size retrieves the current size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// ColorTexture retrieves the current color attachment.
	//
	// Returns:
	//   - gfx.Texture: the texture; changes on Resize
	ColorTexture() gfx.Texture

	// Release deletes the attachments, the framebuffer and the composite vertex array.
	Release()
}

var _ Framebuffer = &framebuffer{}

// NewFramebuffer allocates an off-screen target.
//
// Parameters:
//   - device: the graphics device
//   - width: the width in physical pixels
//   - height: the height in physical pixels
//   - options: variadic list of FramebufferBuilderOption functions to configure the target
//
// Returns:
//   - Framebuffer: the target
//   - error: ErrInvalidSize or an allocation error
func NewFramebuffer(device gfx.Device, width, height int, options ...FramebufferBuilderOption) (Framebuffer, error) {
	f := &framebuffer{
		device:   device,
		logger:   zap.NewNop(),
		exposure: DefaultExposure,
	}
	for _, opt := range options {
		opt(f)
	}
	if err := f.allocate(width, height); err != nil {
		return nil, err
	}
	f.emptyVAO = device.CreateVertexArray()
	return f, nil
}

func (f *framebuffer) allocate(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	color, err := f.device.CreateTexture(gfx.TextureDesc{
		Target: gfx.Texture2D,
		Format: gfx.FormatRGBA16F,
		Width:  width,
		Height: height,
		Sampler: common.SamplerData{
			MinFilter: common.FilterLinear,
			MagFilter: common.FilterLinear,
			WrapS:     common.WrapClampToEdge,
			WrapT:     common.WrapClampToEdge,
		},
	})
	if err != nil {
		return fmt.Errorf("postprocess: color attachment: %w", err)
	}
	depth := f.device.CreateRenderbuffer(gfx.RenderbufferDepth24Stencil8, width, height)
	fbo, err := f.device.CreateFramebuffer(gfx.FramebufferDesc{Attachments: []gfx.Attachment{
		{Point: gfx.AttachColor0, Texture: color, Target: gfx.Texture2D},
		{Point: gfx.AttachDepthStencil, Renderbuffer: depth},
	}})
	if err != nil {
		f.device.DeleteRenderbuffer(depth)
		f.device.DeleteTexture(color)
		return fmt.Errorf("postprocess: framebuffer: %w", err)
	}
	f.device.BindFramebuffer(gfx.DefaultFramebuffer)

	f.color, f.depth, f.fbo = color, depth, fbo
	f.width, f.height = width, height
	return nil
}

func (f *framebuffer) destroy() {
	if f.fbo != 0 {
		f.device.DeleteFramebuffer(f.fbo)
	}
	if f.depth != 0 {
		f.device.DeleteRenderbuffer(f.depth)
	}
	if f.color != 0 {
		f.device.DeleteTexture(f.color)
	}
	f.fbo, f.depth, f.color = 0, 0, 0
}

func (f *framebuffer) Bind() {
	if !f.bound {
		f.savedViewport = f.device.Viewport()
	}
	f.device.BindFramebuffer(f.fbo)
	f.device.SetViewport(gfx.Viewport{Width: int32(f.width), Height: int32(f.height)})
	f.bound = true
}

func (f *framebuffer) Unbind() {
	f.device.BindFramebuffer(gfx.DefaultFramebuffer)
	if f.bound {
		f.device.SetViewport(f.savedViewport)
		f.bound = false
	}
}

func (f *framebuffer) Resize(width, height int) error {
	if width == f.width && height == f.height && f.fbo != 0 {
		return nil
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	f.destroy()
	if err := f.allocate(width, height); err != nil {
		return err
	}
	f.logger.Debug("post-process target recreated", zap.Int("width", width), zap.Int("height", height))
	return nil
}

func (f *framebuffer) Draw(sh shader.Shader) {
	f.DrawTexture(sh, f.color)
}

func (f *framebuffer) DrawTexture(sh shader.Shader, tex gfx.Texture) {
	if sh == nil || !sh.Valid() {
		f.logger.Warn("skipping composite for invalid shader")
		return
	}

	depthTest := f.device.IsEnabled(gfx.CapDepthTest)
	polygon := f.device.PolygonMode()
	f.device.BindFramebuffer(gfx.DefaultFramebuffer)
	f.device.Disable(gfx.CapDepthTest)
	f.device.SetPolygonMode(gfx.PolygonFill)

	sh.Bind()
	f.device.BindTexture(0, gfx.Texture2D, tex)
	sh.SetInt("u_screenTexture", 0)
	sh.SetFloat("u_exposure", f.exposure)
	f.device.BindVertexArray(f.emptyVAO)
	f.device.DrawArrays(gfx.Triangles, 0, 3)
	f.device.BindVertexArray(0)
	sh.Unbind()

	f.device.SetPolygonMode(polygon)
	if depthTest {
		f.device.Enable(gfx.CapDepthTest)
	}
}

func (f *framebuffer) SetExposureEnabled(sh shader.Shader, enabled bool) {
	if sh == nil || !sh.Valid() {
		return
	}
	sh.Bind()
	sh.SetBool("u_applyExposure", enabled)
	sh.Unbind()
}

func (f *framebuffer) SetExposure(exposure float32) {
	f.exposure = exposure
}

func (f *framebuffer) Exposure() float32 {
	return f.exposure
}

func (f *framebuffer) Size() (int, int) {
	return f.width, f.height
}

func (f *framebuffer) ColorTexture() gfx.Texture {
	return f.color
}

func (f *framebuffer) Release() {
	f.destroy()
	if f.emptyVAO != 0 {
		f.device.DeleteVertexArray(f.emptyVAO)
		f.emptyVAO = 0
	}
}
