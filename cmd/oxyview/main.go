// Command oxyview opens a window and renders a glTF or GLB document with a fly camera,
// shadowed lighting and the HDR composite.
//
// Usage:
//
//	oxyview [--config engine.toml] [--profile] [model.gltf]
//
// Tab toggles mouse capture, F toggles wireframe, WASD/QE fly, Shift boosts.
package main

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/Carmen-Shannon/oxy-gl/engine/assets"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx/glbackend"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/Carmen-Shannon/oxy-gl/engine/shadow"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	profile    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "oxyview [model]",
		Short:         "Render a glTF/GLB document",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath := ""
			if len(args) == 1 {
				modelPath = args[0]
			}
			return run(opts, modelPath)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML or YAML engine config")
	cmd.Flags().BoolVar(&opts.profile, "profile", false, "log per-phase frame timings")
	return cmd
}

func run(opts *options, modelPath string) error {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithVSync(cfg.Window.VSync),
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	device, err := glbackend.New(glbackend.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	library := assets.NewLibrary(device,
		assets.WithLogger(logger),
		assets.WithWorkers(cfg.Assets.DecodeWorkers),
		assets.WithLightLimits(shader.DefaultMaxPointLights, cfg.Shadow.MaxPointShadows),
	)
	defer library.Release()

	s := scene.NewScene("oxyview", library, scene.WithLogger(logger))
	if modelPath != "" {
		m, err := loader.NewLoader(loader.BackendTypeGLTF, loader.WithLogger(logger)).Load(modelPath)
		if err != nil {
			return err
		}
		if _, err := s.Spawn(m); err != nil {
			return fmt.Errorf("failed to spawn %s: %w", modelPath, err)
		}
	}
	cam := ensureCamera(s)
	ensureLight(s, logger)

	eng, err := engine.NewEngine(s,
		engine.WithLogger(logger),
		engine.WithWindow(win),
		engine.WithProfiling(opts.profile),
		engine.WithRenderFrameLimit(cfg.Render.FrameLimit),
		engine.WithLightOptions(light.WithLimits(shader.DefaultMaxPointLights, cfg.Shadow.MaxPointShadows)),
		engine.WithShadowOptions(
			shadow.WithResolution(cfg.Shadow.Resolution, cfg.Shadow.PointResolution),
			shadow.WithDirectionalFrustum(cfg.Shadow.Distance, cfg.Shadow.HalfExtent, cfg.Shadow.Near, cfg.Shadow.Far),
			shadow.WithPointFarPlane(cfg.Shadow.PointFar),
		),
		engine.WithRendererOptions(
			renderer.WithClearColor(mgl32.Vec4(cfg.Render.ClearColor)),
			renderer.WithWireframe(cfg.Render.Wireframe),
		),
		engine.WithPostProcessOptions(postprocess.WithExposure(cfg.Render.Exposure)),
	)
	if err != nil {
		return err
	}
	defer eng.Release()

	eng.AddController(cam, camera.NewFlyController())
	return eng.Run()
}

// ensureCamera returns the active camera, spawning one looking at the origin when the
// document has none.
func ensureCamera(s scene.Scene) ecs.Entity {
	if e, _, ok := camera.FindActive(s.Registry()); ok {
		return e
	}
	return s.SpawnEntity(
		scene.WithName("camera"),
		scene.WithTransform(scene.FromTranslation(mgl32.Vec3{0, 1, 5})),
		scene.WithComponent(camera.NewCamera()),
	)
}

// ensureLight adds a shadow-casting sun when the scene has no lights.
func ensureLight(s scene.Scene, logger *zap.Logger) {
	if ecs.Count[light.Light](s.Registry()) > 0 {
		return
	}
	logger.Debug("scene has no lights, adding a default sun")
	s.SpawnEntity(
		scene.WithName("sun"),
		scene.WithComponent(light.NewDirectional(
			light.WithDirection(-0.3, -1, -0.5),
			light.WithIntensity(3),
		)),
	)
}
