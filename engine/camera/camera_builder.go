package camera

// CameraBuilderOption is a functional option applied to a Camera in NewCamera.
type CameraBuilderOption func(*Camera)

// WithFov sets the vertical field of view.
//
// Parameters:
//   - fov: the field of view in radians
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithFov(fov float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Fov = fov
	}
}

// WithAspect fixes the aspect ratio. A fixed aspect is not changed by viewport resizes.
//
// Parameters:
//   - aspect: width / height
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Aspect = aspect
		c.fixedAspect = true
	}
}

// WithNear sets the near clip distance.
func WithNear(near float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Near = near
	}
}

// WithFar sets the far clip distance.
func WithFar(far float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Far = far
	}
}

// WithActive sets whether the camera is the one the render pass draws from.
func WithActive(active bool) CameraBuilderOption {
	return func(c *Camera) {
		c.Active = active
	}
}
