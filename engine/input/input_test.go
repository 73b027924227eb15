package input

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/stretchr/testify/assert"
)

func TestKeyEdgesAndHold(t *testing.T) {
	tr := NewTracker()
	tr.KeyEvent(common.KeyW, true)
	tr.KeyEvent(common.KeyW, true) // repeat

	f := tr.Next()
	assert.True(t, f.KeyDown(common.KeyW))
	assert.True(t, f.Pressed(common.KeyW))
	assert.False(t, f.Released(common.KeyW))

	f = tr.Next()
	assert.True(t, f.KeyDown(common.KeyW), "held keys carry over")
	assert.False(t, f.Pressed(common.KeyW), "edges do not")

	tr.KeyEvent(common.KeyW, false)
	tr.KeyEvent(common.KeyA, false)
	f = tr.Next()
	assert.False(t, f.KeyDown(common.KeyW))
	assert.True(t, f.Released(common.KeyW))
	assert.False(t, f.Released(common.KeyA), "release without press is ignored")
}

func TestTapWithinOneFrame(t *testing.T) {
	tr := NewTracker()
	tr.KeyEvent(common.KeyTab, true)
	tr.KeyEvent(common.KeyTab, false)

	f := tr.Next()
	assert.True(t, f.Pressed(common.KeyTab))
	assert.True(t, f.Released(common.KeyTab))
	assert.False(t, f.KeyDown(common.KeyTab))
}

func TestMouseDeltaAccumulates(t *testing.T) {
	tr := NewTracker()
	tr.CursorEvent(100, 100)
	tr.CursorEvent(110, 95)
	tr.CursorEvent(115, 90)
	tr.ScrollEvent(1)
	tr.ScrollEvent(0.5)

	f := tr.Next()
	dx, dy := f.MouseDelta()
	assert.Equal(t, float32(15), dx)
	assert.Equal(t, float32(-10), dy)
	assert.Equal(t, float32(1.5), f.Scroll())

	f = tr.Next()
	dx, dy = f.MouseDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
	assert.Zero(t, f.Scroll())
}

func TestCaptureResetsCursorReference(t *testing.T) {
	tr := NewTracker()
	tr.CursorEvent(10, 10)
	tr.SetCaptured(true)
	tr.CursorEvent(640, 360)
	tr.CursorEvent(650, 360)

	f := tr.Next()
	assert.True(t, f.MouseCaptured())
	dx, _ := f.MouseDelta()
	assert.Equal(t, float32(10), dx, "the warp to the capture position is not movement")
}
