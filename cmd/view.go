package cmd

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-raymarch/config"
	"github.com/Carmen-Shannon/oxy-raymarch/engine"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/input"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/loader"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/model"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/scene"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli"
)

// View opens the viewer window and blocks until it is closed.
func View(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	setupLogging(ctx, cfg)

	models, err := loadModels(cfg.Models)
	if err != nil {
		return err
	}
	presentMode, err := renderer.ParsePresentMode(cfg.Renderer.PresentMode)
	if err != nil {
		return err
	}
	msaa, err := renderer.ParseMSAA(cfg.Renderer.MSAA)
	if err != nil {
		return err
	}
	sceneOptions, err := sceneOptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	sceneOptions = append(sceneOptions, scene.WithModels(models...))

	w := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	)
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warningf("failed to close the window: %v", err)
		}
	}()

	r := renderer.NewRenderer(renderer.BackendTypeWGPU, w,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.Software),
	)
	defer r.Release()

	s, err := scene.NewScene("raymarch", cameraFromConfig(cfg.View), r, sceneOptions...)
	if err != nil {
		return err
	}
	defer s.Release()

	e := engine.NewEngine(
		engine.WithWindow(w),
		engine.WithScene(s),
		engine.WithTickRate(cfg.Animation.TickRate),
		engine.WithProfiling(cfg.Profiling),
	)

	h := input.NewHandler(s, e)
	h.Bind(w)
	defer h.Unbind()

	logger.Noticef("viewing %d model(s) at %dx%d", len(models), cfg.Window.Width, cfg.Window.Height)
	e.Run()
	return nil
}

// loadModels reads the configured model files, or returns the built-in face when there are none.
func loadModels(paths []string) ([]model.Model, error) {
	if len(paths) == 0 {
		return []model.Model{model.NewPyramid()}, nil
	}
	return loader.NewLoader(loader.BackendTypeYAML).LoadAll(paths...)
}

func cameraFromConfig(view config.ViewConfig) camera.Camera {
	return camera.NewCamera(
		camera.WithFov(view.Fov),
		camera.WithRayOrigin(mgl32.Vec3(view.RayOrigin)),
		camera.WithMoveSensitivity(view.MoveSensitivity),
		camera.WithRotateSensitivity(view.RotateSensitivity),
		camera.WithMouseSensitivity(view.MouseSensitivity),
	)
}

func sceneOptionsFromConfig(cfg config.Config) ([]scene.SceneBuilderOption, error) {
	options := []scene.SceneBuilderOption{
		scene.WithState(scene.State{
			RenderType: cfg.View.Type,
			SoftShadow: cfg.View.SoftShadow,
			Animated:   cfg.View.Animated,
			Geodesic:   cfg.View.Geodesic,
			RealLight:  cfg.View.RealLight,
		}),
	}
	if cfg.Shaders.Vertex == "" && cfg.Shaders.Fragment == "" {
		return options, nil
	}

	vs, fs, err := scene.DefaultShaders()
	if err != nil {
		return nil, err
	}
	if cfg.Shaders.Vertex != "" {
		if vs, err = shader.NewShader("custom.vert", shader.ShaderTypeVertex, cfg.Shaders.Vertex); err != nil {
			return nil, fmt.Errorf("failed to load vertex shader: %w", err)
		}
	}
	if cfg.Shaders.Fragment != "" {
		if fs, err = shader.NewShader("custom.frag", shader.ShaderTypeFragment, cfg.Shaders.Fragment); err != nil {
			return nil, fmt.Errorf("failed to load fragment shader: %w", err)
		}
	}
	return append(options, scene.WithShaders(vs, fs)), nil
}
