package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Default perspective parameters applied by NewCamera.
const (
	DefaultFov  float32 = 45.0 * (math.Pi / 180.0) // radians
	DefaultNear float32 = 0.1
	DefaultFar  float32 = 100.0
)

// Camera is a perspective camera component. The camera looks down the local -Z axis of
// its entity; the view matrix is the inverse of the entity's GlobalTransform, so camera
// placement goes through the same hierarchy as everything else.
type Camera struct {
	// Fov is the vertical field of view in radians.
	Fov float32

	// Aspect is width / height of the viewport.
	Aspect float32

	Near float32
	Far  float32

	// Active marks the camera the render pass draws from. The first active camera in
	// insertion order wins.
	Active bool

	// fixedAspect is set when the aspect came from the asset; viewport resizes leave it alone.
	fixedAspect bool
}

// NewCamera creates an active Camera with a 45 degree vertical field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the camera component value
func NewCamera(options ...CameraBuilderOption) Camera {
	c := Camera{
		Fov:    DefaultFov,
		Aspect: 1.0,
		Near:   DefaultNear,
		Far:    DefaultFar,
		Active: true,
	}
	for _, option := range options {
		option(&c)
	}
	return c
}

// FromImported converts an imported perspective camera. Zero or missing parameters
// keep the defaults; a zero aspect ratio follows the viewport. Imported cameras start
// inactive so the caller decides which one to look through.
//
// Parameters:
//   - ic: the imported camera
//
// Returns:
//   - Camera: the camera component value
func FromImported(ic model.ImportedCamera) Camera {
	c := NewCamera()
	c.Active = false
	if ic.YFov > 0 {
		c.Fov = ic.YFov
	}
	if ic.ZNear > 0 {
		c.Near = ic.ZNear
	}
	if ic.ZFar > c.Near {
		c.Far = ic.ZFar
	}
	if ic.AspectRatio > 0 {
		c.Aspect = ic.AspectRatio
		c.fixedAspect = true
	}
	return c
}

// Projection returns the perspective projection matrix.
func (c Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.Fov, c.Aspect, c.Near, c.Far)
}

// View returns the view matrix for a camera placed at the given world matrix.
func (c Camera) View(global mgl32.Mat4) mgl32.Mat4 {
	return global.Inv()
}

// ViewProjection returns Projection * View(global).
func (c Camera) ViewProjection(global mgl32.Mat4) mgl32.Mat4 {
	return c.Projection().Mul4(c.View(global))
}

// SetViewport updates the aspect ratio from a framebuffer size. Zero sizes (a minimized
// window) and cameras with an authored aspect ratio are left unchanged.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 || c.fixedAspect {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// FindActive returns the first active camera in insertion order.
//
// Parameters:
//   - reg: the registry to search
//
// Returns:
//   - ecs.Entity: the camera entity, or ecs.Invalid
//   - *Camera: the component, or nil
//   - bool: false when no camera is active
func FindActive(reg ecs.Registry) (ecs.Entity, *Camera, bool) {
	found := ecs.Invalid
	var cam *Camera
	ecs.Each(reg, func(e ecs.Entity, c *Camera) {
		if cam == nil && c.Active {
			found, cam = e, c
		}
	})
	return found, cam, cam != nil
}

// ResizeAll applies a framebuffer size to every camera in the registry.
//
// Parameters:
//   - reg: the registry holding the cameras
//   - width: the framebuffer width in pixels
//   - height: the framebuffer height in pixels
func ResizeAll(reg ecs.Registry, width, height int) {
	ecs.Each(reg, func(_ ecs.Entity, c *Camera) {
		c.SetViewport(width, height)
	})
}
