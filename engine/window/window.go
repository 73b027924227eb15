package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-gl/engine/input"
)

// Window provides platform windowing, the GL context and per-frame input.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration, after
	// events were polled.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in physical pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// Input returns the input accumulated since the previous call. The engine calls it
	// exactly once per frame.
	//
	// Returns:
	//   - input.Frame: the snapshot
	Input() input.Frame

	// SetMouseCaptured hides and locks the cursor for mouse look, or releases it.
	//
	// Parameters:
	//   - captured: true to capture
	SetMouseCaptured(captured bool)

	// MouseCaptured reports whether the cursor is captured.
	//
	// Returns:
	//   - bool: true if captured
	MouseCaptured() bool

	// SetTitle replaces the title bar text.
	//
	// Parameters:
	//   - title: the window title text
	SetTitle(title string)

	// SwapBuffers presents the default framebuffer.
	SwapBuffers()

	// IsRunning reports whether the window is open.
	//
	// Returns:
	//   - bool: false once closed or asked to close
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close destroys the window and terminates the platform library.
	//
	// Returns:
	//   - error: an error if the window was never created
	Close() error

	// ProcessMessages runs the message loop until the window closes: poll events,
	// then call the update callback.
	ProcessMessages()

	// FramebufferSize returns the drawable size in physical pixels.
	//
	// Returns:
	//   - int: width
	//   - int: height
	FramebufferSize() (int, int)

	// Size returns the window size in logical screen coordinates.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the logical size requested at creation and tracked afterwards.
	width  int
	height int

	// fbWidth and fbHeight are the physical framebuffer size.
	fbWidth  int
	fbHeight int

	vsync bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	tracker *input.Tracker

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates a Window and makes its GL context current on the calling thread,
// which is locked to its OS thread. Applies default values first, then each option.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: an error if the platform window or context cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-gl",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
		vsync:     true,
		tracker:   input.NewTracker(),
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) Input() input.Frame {
	return w.tracker.Next()
}

func (w *engineWindow) SetMouseCaptured(captured bool) {
	platformSetCursorCaptured(w, captured)
	w.tracker.SetCaptured(captured)
}

func (w *engineWindow) MouseCaptured() bool {
	return w.tracker.Captured()
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) SwapBuffers() {
	platformSwapBuffers(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) FramebufferSize() (int, int) {
	return w.fbWidth, w.fbHeight
}

func (w *engineWindow) Size() (int, int) {
	return w.width, w.height
}
