package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/input"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/Carmen-Shannon/oxy-gl/engine/shadow"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"go.uber.org/zap"
)

// Phase names one step of a frame.
type Phase string

const (
	PhaseInput     Phase = "input"
	PhasePropagate Phase = "propagate"
	PhaseLights    Phase = "lights"
	PhaseShadows   Phase = "shadows"
	PhaseRender    Phase = "render"
	PhaseComposite Phase = "composite"
	PhaseOverlay   Phase = "overlay"
	PhasePresent   Phase = "present"
)

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine: no window")

// OverlayFunc draws on top of the composited frame. Exposure is disabled on the
// composite shader while it runs.
type OverlayFunc func(fb postprocess.Framebuffer, composite shader.Shader)

// controlled pairs an entity with the controller driving its Transform.
type controlled struct {
	entity     ecs.Entity
	controller camera.FlyController
}

// engine implements the Engine interface.
// Runs every frame phase in order on the thread that owns the GL context.
type engine struct {
	logger *zap.Logger

	quitOnce sync.Once
	err      error

	window window.Window
	input  func() input.Frame

	scene     scene.Scene
	lights    light.System
	shadows   shadow.Pass
	renderer  renderer.Renderer
	fb        postprocess.Framebuffer
	composite string

	lightOpts    []light.SystemBuilderOption
	shadowOpts   []shadow.PassBuilderOption
	rendererOpts []renderer.RendererBuilderOption
	fbOpts       []postprocess.FramebufferBuilderOption
	width        int
	height       int

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback func(deltaTime float32)
	overlay      OverlayFunc
	phaseHook    func(Phase)
	controllers  []controlled

	// lit holds the shaders whose light uniforms were written this frame.
	lit map[shader.Shader]bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It owns the frame sequence: input, propagate, lights, shadows, render, composite,
// overlay and present, in that order, every frame.
type Engine interface {
	// Window returns the underlying window, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene the engine draws.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Renderer returns the main render pass.
	//
	// Returns:
	//   - renderer.Renderer: the render pass
	Renderer() renderer.Renderer

	// Lights returns the light system.
	//
	// Returns:
	//   - light.System: the light system
	Lights() light.System

	// Shadows returns the shadow pass.
	//
	// Returns:
	//   - shadow.Pass: the shadow pass
	Shadows() shadow.Pass

	// PostProcess returns the off-screen target the scene renders into.
	//
	// Returns:
	//   - postprocess.Framebuffer: the framebuffer
	PostProcess() postprocess.Framebuffer

	// EnableProfiler enables per-phase timing and periodic frame stats in the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickCallback registers the function called each frame during the input phase,
	// after controllers ran. Use this for game logic.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetOverlayCallback registers the function drawing on top of the composited frame.
	//
	// Parameters:
	//   - overlay: the overlay, or nil to disable
	SetOverlayCallback(overlay OverlayFunc)

	// SetPhaseHook registers a function called at the start of every frame phase.
	//
	// Parameters:
	//   - hook: the observer, or nil to disable
	SetPhaseHook(hook func(Phase))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddController lets a fly controller drive the Transform of an entity.
	//
	// Parameters:
	//   - e: the controlled entity
	//   - c: the controller
	AddController(e ecs.Entity, c camera.FlyController)

	// Resize recreates the post-process target and updates every camera's aspect ratio.
	// The window resize callback calls it, so the change is in place before the next
	// render. Non-positive sizes (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: the new framebuffer width in physical pixels
	//   - height: the new framebuffer height in physical pixels
	Resize(width, height int)

	// Frame runs one complete frame.
	//
	// Parameters:
	//   - dt: the time since the previous frame in seconds
	Frame(dt float32)

	// Run drives frames from the window's message loop until the window closes or Quit
	// is called. Blocks.
	//
	// Returns:
	//   - error: ErrNoWindow without a window, or the error a panicking frame produced
	Run() error

	// Quit asks the message loop to stop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Release frees the post-process target and the shadow maps.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine drawing the given scene.
// The light system, shadow pass, render pass and post-process framebuffer are created
// against the scene library's device; a window (if set) supplies the initial size,
// input and the resize callback.
//
// Parameters:
//   - s: the scene to draw; must not be nil
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if a render target cannot be created
func NewEngine(s scene.Scene, options ...EngineBuilderOption) (Engine, error) {
	if s == nil {
		panic("engine: scene must not be nil")
	}
	e := &engine{
		logger:    zap.NewNop(),
		scene:     s,
		composite: shader.KeyComposite,
		width:     1280,
		height:    720,
		lit:       make(map[shader.Shader]bool),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	if e.window != nil {
		if e.input == nil {
			e.input = e.window.Input
		}
		if w, h := e.window.FramebufferSize(); w > 0 && h > 0 {
			e.width, e.height = w, h
		}
	}

	library := s.Library()
	device := library.Device()

	e.lights = light.NewSystem(append([]light.SystemBuilderOption{light.WithLogger(e.logger)}, e.lightOpts...)...)

	shadowOpts := append([]shadow.PassBuilderOption{shadow.WithLogger(e.logger)}, e.shadowOpts...)
	// shadowIndex in the light uniforms addresses these slots
	shadowOpts = append(shadowOpts, shadow.WithMaxPointShadows(e.lights.MaxPointShadows()))
	shadows, err := shadow.NewPass(device, library.Meshes(), shadowOpts...)
	if err != nil {
		return nil, fmt.Errorf("engine: shadow pass: %w", err)
	}
	e.shadows = shadows

	e.renderer = renderer.NewRenderer(device, library,
		append([]renderer.RendererBuilderOption{renderer.WithLogger(e.logger)}, e.rendererOpts...)...)
	e.renderer.SetShaderHook(e.prepareShader)

	fb, err := postprocess.NewFramebuffer(device, e.width, e.height,
		append([]postprocess.FramebufferBuilderOption{postprocess.WithLogger(e.logger)}, e.fbOpts...)...)
	if err != nil {
		e.shadows.Release()
		return nil, fmt.Errorf("engine: post-process target: %w", err)
	}
	e.fb = fb
	camera.ResizeAll(s.Registry(), e.width, e.height)

	if e.window != nil {
		e.window.SetResizeCallback(e.Resize)
	}
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Lights() light.System {
	return e.lights
}

func (e *engine) Shadows() shadow.Pass {
	return e.shadows
}

func (e *engine) PostProcess() postprocess.Framebuffer {
	return e.fb
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickCallback registers the function called each frame.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetOverlayCallback(overlay OverlayFunc) {
	e.overlay = overlay
}

func (e *engine) SetPhaseHook(hook func(Phase)) {
	e.phaseHook = hook
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddController(ent ecs.Entity, c camera.FlyController) {
	e.controllers = append(e.controllers, controlled{entity: ent, controller: c})
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		e.logger.Debug("ignoring empty framebuffer size", zap.Int("width", width), zap.Int("height", height))
		return
	}
	if err := e.fb.Resize(width, height); err != nil {
		e.logger.Error("failed to recreate post-process target", zap.Error(err))
		return
	}
	e.width, e.height = width, height
	camera.ResizeAll(e.scene.Registry(), width, height)
}

func (e *engine) Frame(dt float32) {
	reg := e.scene.Registry()

	e.runPhase(PhaseInput, func() { e.handleInput(reg, dt) })
	e.runPhase(PhasePropagate, e.scene.Propagate)
	e.runPhase(PhaseLights, func() { e.updateLights(reg) })
	e.runPhase(PhaseShadows, func() {
		shaders := e.scene.Library().Shaders()
		e.shadows.RenderShadows(reg,
			shaders.ResourceByKey(shader.KeyDirectionalDepth).Get(),
			shaders.ResourceByKey(shader.KeyPointDepth).Get(),
		)
	})
	e.runPhase(PhaseRender, func() {
		e.fb.Bind()
		e.renderer.Render(reg)
		e.fb.Unbind()
	})

	composite := e.scene.Library().Shaders().ResourceByKey(e.composite).Get()
	e.runPhase(PhaseComposite, func() { e.fb.Draw(composite) })
	if e.overlay != nil && composite != nil {
		e.runPhase(PhaseOverlay, func() {
			e.fb.SetExposureEnabled(composite, false)
			e.overlay(e.fb, composite)
			e.fb.SetExposureEnabled(composite, true)
		})
	}
	e.runPhase(PhasePresent, func() {
		if e.window != nil {
			e.window.SwapBuffers()
		}
	})

	clear(e.lit)
	if e.profilingEnabled {
		e.profiler.Tick()
	}
}

// runPhase notifies the phase hook and times fn when profiling is enabled.
func (e *engine) runPhase(p Phase, fn func()) {
	if e.phaseHook != nil {
		e.phaseHook(p)
	}
	if e.profilingEnabled {
		defer e.profiler.Measure(string(p))()
	}
	fn()
}

func (e *engine) handleInput(reg ecs.Registry, dt float32) {
	var in input.Frame
	if e.input != nil {
		in = e.input()
	}

	if in.Pressed(common.KeyTab) && e.window != nil {
		e.window.SetMouseCaptured(!e.window.MouseCaptured())
	}
	if in.Pressed(common.KeyF) {
		e.renderer.SetWireframe(!e.renderer.Wireframe())
	}

	live := e.controllers[:0]
	for _, c := range e.controllers {
		if !reg.Alive(c.entity) {
			continue
		}
		live = append(live, c)
		if t, ok := ecs.Get[scene.Transform](reg, c.entity); ok {
			c.controller.Update(in, dt, &t.Translation, &t.Rotation)
		}
	}
	e.controllers = live

	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
}

// updateLights writes light uniforms into the lit shader ahead of the shadow pass.
// Shaders first seen during the render pass are updated by prepareShader.
func (e *engine) updateLights(reg ecs.Registry) {
	h := e.scene.Library().Shaders().ResourceByKey(shader.KeyLit)
	if !h.Valid() || !h.Get().Valid() {
		return
	}
	sh := h.Get()
	e.lights.UpdateLights(reg, sh)
	e.lit[sh] = true
}

// prepareShader runs once per shader per frame before its first draw.
func (e *engine) prepareShader(reg ecs.Registry, sh shader.Shader) {
	if !e.lit[sh] {
		e.lights.UpdateLights(reg, sh)
		e.lit[sh] = true
	}
	sh.Bind()
	e.shadows.Apply(sh)
	sh.Unbind()
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	last := time.Now()

	e.window.SetUpdateCallback(func() {
		// Recover from panics inside a frame to shut down instead of crashing the process.
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("frame panicked", zap.Any("panic", r))
				e.err = fmt.Errorf("engine: frame panicked: %v", r)
				e.Quit()
			}
		}()

		start := time.Now()
		dt := float32(start.Sub(last).Seconds())
		last = start

		e.Frame(dt)

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	})
	e.window.ProcessMessages()
	return e.err
}

// Quit asks the window to close.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

func (e *engine) Release() {
	e.fb.Release()
	e.shadows.Release()
}
