// Package input accumulates raw window events into per-frame snapshots. The window
// feeds events into a Tracker between polls and takes one Frame per engine frame.
package input

import "sync"

// Frame is the input observed during one frame. It is an immutable snapshot; the
// Tracker that produced it keeps accumulating for the next frame.
type Frame struct {
	held     map[uint32]bool
	pressed  map[uint32]bool
	released map[uint32]bool

	dx, dy   float32
	scroll   float32
	captured bool
}

// KeyDown reports whether key is held at the end of the frame.
func (f Frame) KeyDown(key uint32) bool {
	return f.held[key]
}

// Pressed reports whether key went down during the frame. Key repeat does not count.
func (f Frame) Pressed(key uint32) bool {
	return f.pressed[key]
}

// Released reports whether key went up during the frame.
func (f Frame) Released(key uint32) bool {
	return f.released[key]
}

// MouseDelta returns the cursor movement during the frame in screen pixels.
func (f Frame) MouseDelta() (float32, float32) {
	return f.dx, f.dy
}

// Scroll returns the accumulated vertical scroll offset of the frame.
func (f Frame) Scroll() float32 {
	return f.scroll
}

// MouseCaptured reports whether the cursor was captured for mouse look.
func (f Frame) MouseCaptured() bool {
	return f.captured
}

// Tracker accumulates events between frames. Event methods may be called from the
// window's callbacks; Next is called once per frame by the engine.
type Tracker struct {
	mu sync.Mutex

	held     map[uint32]bool
	pressed  map[uint32]bool
	released map[uint32]bool

	lastX, lastY float64
	hasCursor    bool
	dx, dy       float64
	scroll       float64
	captured     bool
}

// NewTracker creates an empty Tracker.
//
// Returns:
//   - *Tracker: the tracker
func NewTracker() *Tracker {
	return &Tracker{
		held:     make(map[uint32]bool),
		pressed:  make(map[uint32]bool),
		released: make(map[uint32]bool),
	}
}

// KeyEvent records a key press or release. A press of a key that is already held is
// a repeat and only keeps it held.
//
// Parameters:
//   - key: the key code
//   - down: true for press or repeat, false for release
func (t *Tracker) KeyEvent(key uint32, down bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if down {
		if !t.held[key] {
			t.pressed[key] = true
		}
		t.held[key] = true
		return
	}
	if t.held[key] {
		t.released[key] = true
	}
	delete(t.held, key)
}

// CursorEvent records an absolute cursor position. The first position after creation
// or a capture change only establishes the reference point.
//
// Parameters:
//   - x: the cursor x in screen pixels
//   - y: the cursor y in screen pixels
func (t *Tracker) CursorEvent(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hasCursor {
		t.dx += x - t.lastX
		t.dy += y - t.lastY
	}
	t.lastX, t.lastY = x, y
	t.hasCursor = true
}

// ScrollEvent records a vertical scroll offset.
func (t *Tracker) ScrollEvent(offset float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scroll += offset
}

// SetCaptured records the cursor capture state. Changing it resets the cursor
// reference so the jump caused by the mode switch is not reported as movement.
func (t *Tracker) SetCaptured(captured bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.captured != captured {
		t.hasCursor = false
	}
	t.captured = captured
}

// Captured reports the current capture state.
func (t *Tracker) Captured() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.captured
}

// Next returns the frame accumulated since the previous call and starts a new one.
// Held keys carry over; edges, mouse movement and scroll are reset.
//
// Returns:
//   - Frame: the snapshot
func (t *Tracker) Next() Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	f := Frame{
		held:     make(map[uint32]bool, len(t.held)),
		pressed:  t.pressed,
		released: t.released,
		dx:       float32(t.dx),
		dy:       float32(t.dy),
		scroll:   float32(t.scroll),
		captured: t.captured,
	}
	for k, v := range t.held {
		f.held[k] = v
	}
	t.pressed = make(map[uint32]bool)
	t.released = make(map[uint32]bool)
	t.dx, t.dy, t.scroll = 0, 0, 0
	return f
}
