package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

const maxPitch = 89.0 * (math.Pi / 180.0)

// Input is the per-frame input a controller reads. window.Input satisfies it.
type Input interface {
	// KeyDown reports whether the key is currently held.
	KeyDown(key uint32) bool

	// MouseDelta returns the cursor movement since the previous frame in screen pixels.
	MouseDelta() (dx, dy float32)

	// MouseCaptured reports whether the cursor is captured for mouse look.
	MouseCaptured() bool
}

// flyController is the implementation of the FlyController interface.
type flyController struct {
	moveSpeed        float32
	boostMultiplier  float32
	mouseSensitivity float32

	yaw   float32
	pitch float32

	// synced is false until yaw and pitch are derived from the first rotation seen.
	synced bool
}

// FlyController moves a camera's local transform from keyboard and mouse input.
// W/S move along the view direction, A/D strafe, E/Q move along world up, and shift
// multiplies the speed. Mouse movement turns the camera only while the cursor is captured.
type FlyController interface {
	// Update advances the controller by one frame and writes the new pose.
	//
	// Parameters:
	//   - in: the input frame
	//   - dt: the frame time in seconds
	//   - translation: the camera entity's local translation, updated in place
	//   - rotation: the camera entity's local rotation, updated in place
	Update(in Input, dt float32, translation *mgl32.Vec3, rotation *mgl32.Quat)

	// MoveSpeed returns the movement speed in units per second.
	MoveSpeed() float32

	// MouseSensitivity returns the turn rate in radians per pixel.
	MouseSensitivity() float32
}

var _ FlyController = &flyController{}

// NewFlyController creates a FlyController with default speeds.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - FlyController: the newly created controller
func NewFlyController(options ...FlyControllerOption) FlyController {
	fc := &flyController{
		moveSpeed:        5.0,
		boostMultiplier:  4.0,
		mouseSensitivity: 0.0025,
	}
	for _, opt := range options {
		opt(fc)
	}
	return fc
}

func (fc *flyController) MoveSpeed() float32 {
	return fc.moveSpeed
}

func (fc *flyController) MouseSensitivity() float32 {
	return fc.mouseSensitivity
}

func (fc *flyController) Update(in Input, dt float32, translation *mgl32.Vec3, rotation *mgl32.Quat) {
	if !fc.synced {
		fc.yaw, fc.pitch = yawPitch(*rotation)
		fc.synced = true
	}

	if in.MouseCaptured() {
		dx, dy := in.MouseDelta()
		fc.yaw -= dx * fc.mouseSensitivity
		fc.pitch = mgl32.Clamp(fc.pitch-dy*fc.mouseSensitivity, -maxPitch, maxPitch)
	}
	*rotation = orientation(fc.yaw, fc.pitch)

	right, _, forward := localAxes(*rotation)
	var move mgl32.Vec3
	if in.KeyDown(common.KeyW) {
		move = move.Add(forward)
	}
	if in.KeyDown(common.KeyS) {
		move = move.Sub(forward)
	}
	if in.KeyDown(common.KeyD) {
		move = move.Add(right)
	}
	if in.KeyDown(common.KeyA) {
		move = move.Sub(right)
	}
	if in.KeyDown(common.KeyE) {
		move = move.Add(mgl32.Vec3{0, 1, 0})
	}
	if in.KeyDown(common.KeyQ) {
		move = move.Sub(mgl32.Vec3{0, 1, 0})
	}
	if move.Len() == 0 {
		return
	}

	speed := fc.moveSpeed
	if in.KeyDown(common.KeyLeftShift) || in.KeyDown(common.KeyRightShift) {
		speed *= fc.boostMultiplier
	}
	*translation = translation.Add(move.Normalize().Mul(speed * dt))
}

// orientation builds the rotation for a yaw about world Y followed by a pitch about local X.
func orientation(yaw, pitch float32) mgl32.Quat {
	return mgl32.QuatRotate(yaw, mgl32.Vec3{0, 1, 0}).Mul(mgl32.QuatRotate(pitch, mgl32.Vec3{1, 0, 0}))
}

// yawPitch recovers yaw and pitch from a rotation's forward vector; roll is discarded.
func yawPitch(q mgl32.Quat) (yaw, pitch float32) {
	f := q.Rotate(mgl32.Vec3{0, 0, -1})
	yaw = float32(math.Atan2(float64(-f.X()), float64(-f.Z())))
	pitch = float32(math.Asin(float64(mgl32.Clamp(f.Y(), -1, 1))))
	return yaw, mgl32.Clamp(pitch, -maxPitch, maxPitch)
}

// localAxes returns right, up and forward for a camera rotation, forward being local -Z.
func localAxes(q mgl32.Quat) (right, up, forward mgl32.Vec3) {
	return q.Rotate(mgl32.Vec3{1, 0, 0}), q.Rotate(mgl32.Vec3{0, 1, 0}), q.Rotate(mgl32.Vec3{0, 0, -1})
}
