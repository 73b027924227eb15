package camera

// FlyControllerOption is a functional option applied in NewFlyController.
type FlyControllerOption func(*flyController)

// WithMoveSpeed sets the movement speed.
//
// Parameters:
//   - speed: units per second
//
// Returns:
//   - FlyControllerOption: option function to apply
func WithMoveSpeed(speed float32) FlyControllerOption {
	return func(fc *flyController) {
		fc.moveSpeed = speed
	}
}

// WithBoostMultiplier sets the speed factor applied while shift is held.
func WithBoostMultiplier(multiplier float32) FlyControllerOption {
	return func(fc *flyController) {
		fc.boostMultiplier = multiplier
	}
}

// WithMouseSensitivity sets the turn rate.
//
// Parameters:
//   - sensitivity: radians per pixel of mouse movement
//
// Returns:
//   - FlyControllerOption: option function to apply
func WithMouseSensitivity(sensitivity float32) FlyControllerOption {
	return func(fc *flyController) {
		fc.mouseSensitivity = sensitivity
	}
}
