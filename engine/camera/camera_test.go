package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.True(t, c.Active)
	assert.InDelta(t, DefaultFov, c.Fov, 1e-6)
	assert.True(t, common.ApproxEqualMat4(mgl32.Perspective(DefaultFov, 1, DefaultNear, DefaultFar), c.Projection(), 1e-6))
}

func TestViewInvertsGlobal(t *testing.T) {
	c := NewCamera()
	global := mgl32.Translate3D(0, 2, 10)

	eye := c.View(global).Mul4x1(mgl32.Vec4{0, 2, 10, 1})
	assert.InDelta(t, 0, eye.X(), 1e-5)
	assert.InDelta(t, 0, eye.Y(), 1e-5)
	assert.InDelta(t, 0, eye.Z(), 1e-5)

	want := c.Projection().Mul4(global.Inv())
	assert.True(t, common.ApproxEqualMat4(want, c.ViewProjection(global), 1e-5))
}

func TestFromImported(t *testing.T) {
	c := FromImported(model.ImportedCamera{YFov: 1.0, ZNear: 0.5, ZFar: 0, AspectRatio: 2})
	assert.False(t, c.Active)
	assert.Equal(t, float32(1.0), c.Fov)
	assert.Equal(t, float32(0.5), c.Near)
	assert.Equal(t, DefaultFar, c.Far, "infinite far plane keeps the default")

	c.SetViewport(800, 800)
	assert.Equal(t, float32(2), c.Aspect, "authored aspect survives resizes")
}

func TestFindActiveAndResize(t *testing.T) {
	reg := ecs.NewRegistry()
	_, _, ok := FindActive(reg)
	assert.False(t, ok)

	inactive := reg.Spawn()
	ecs.Insert(reg, inactive, NewCamera(WithActive(false)))
	first := reg.Spawn()
	ecs.Insert(reg, first, NewCamera())
	second := reg.Spawn()
	ecs.Insert(reg, second, NewCamera(WithAspect(1.5)))

	e, cam, ok := FindActive(reg)
	require.True(t, ok)
	assert.Equal(t, first, e)

	ResizeAll(reg, 1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, cam.Aspect, 1e-6)
	fixed, _ := ecs.Get[Camera](reg, second)
	assert.Equal(t, float32(1.5), fixed.Aspect)

	ResizeAll(reg, 0, 0)
	assert.InDelta(t, 1920.0/1080.0, cam.Aspect, 1e-6, "minimized window is ignored")
}

type fakeInput struct {
	keys     map[uint32]bool
	dx, dy   float32
	captured bool
}

func (f fakeInput) KeyDown(key uint32) bool { return f.keys[key] }
func (f fakeInput) MouseDelta() (float32, float32) { return f.dx, f.dy }
func (f fakeInput) MouseCaptured() bool { return f.captured }

func keys(codes ...uint32) map[uint32]bool {
	m := make(map[uint32]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "want %v got %v", want, got)
	}
}

func assertQuat(t *testing.T, want, got mgl32.Quat, msg string) {
	t.Helper()
	assert.InDelta(t, want.W, got.W, 1e-4, msg)
	assertVec3(t, want.V, got.V)
}

func TestFlyControllerMovement(t *testing.T) {
	tests := []struct {
		name string
		in   fakeInput
		want mgl32.Vec3
	}{
		{name: "idle", in: fakeInput{}, want: mgl32.Vec3{}},
		{name: "forward", in: fakeInput{keys: keys(common.KeyW)}, want: mgl32.Vec3{0, 0, -2}},
		{name: "strafe left", in: fakeInput{keys: keys(common.KeyA)}, want: mgl32.Vec3{-2, 0, 0}},
		{name: "up", in: fakeInput{keys: keys(common.KeyE)}, want: mgl32.Vec3{0, 2, 0}},
		{name: "boost", in: fakeInput{keys: keys(common.KeyS, common.KeyLeftShift)}, want: mgl32.Vec3{0, 0, 8}},
		{name: "opposing keys cancel", in: fakeInput{keys: keys(common.KeyW, common.KeyS)}, want: mgl32.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := NewFlyController(WithMoveSpeed(4), WithBoostMultiplier(4))
			var pos mgl32.Vec3
			rot := mgl32.QuatIdent()
			fc.Update(tt.in, 0.5, &pos, &rot)
			assertVec3(t, tt.want, pos)
		})
	}
}

func TestFlyControllerKeepsInitialHeading(t *testing.T) {
	fc := NewFlyController(WithMoveSpeed(1))
	var pos mgl32.Vec3
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	fc.Update(fakeInput{keys: keys(common.KeyW), dx: 500}, 1, &pos, &rot)

	assertVec3(t, mgl32.Vec3{-1, 0, 0}, pos)
	assertQuat(t, mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}), rot,
		"mouse delta is ignored while the cursor is free")
}

func TestFlyControllerMouseLook(t *testing.T) {
	fc := NewFlyController(WithMouseSensitivity(0.01))
	var pos mgl32.Vec3
	rot := mgl32.QuatIdent()

	fc.Update(fakeInput{captured: true, dx: -100 * mgl32.DegToRad(90)}, 1, &pos, &rot)
	_, _, forward := localAxes(rot)
	assertVec3(t, mgl32.Vec3{-1, 0, 0}, forward)

	fc.Update(fakeInput{captured: true, dy: -100000}, 1, &pos, &rot)
	_, pitch := yawPitch(rot)
	assert.InDelta(t, maxPitch, pitch, 1e-3, "pitch clamps short of straight up")
}
