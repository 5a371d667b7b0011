package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/Carmen-Shannon/oxy-viewer/viewer"
)

func run(ctx context.Context, cfg *config.Config, opts *options) error {
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	r, err := newRenderer(win, cfg, opts, logger)
	if err != nil {
		return err
	}
	defer r.Release()

	sceneRenderer := renderer.NewSceneRenderer(r, renderer.WithSceneRendererLogger(logger))
	defer sceneRenderer.Close()

	assets := loader.NewAsyncLoader(
		loader.NewLoader(loader.WithMaxTextureSize(cfg.Assets.MaxTextureSize), loader.WithLogger(logger)),
		loader.WithAsyncLogger(logger),
	)
	defer assets.Close()

	v, err := viewer.New(viewer.Deps{
		Loader:  assets,
		Surface: r,
		Drawer:  sceneRenderer,
		Scene:   scene.NewScene(scene.WithName("rx7"), scene.WithBackground(0x000000)),
		Camera:  camera.NewCamera(),
	},
		viewer.WithModelPaths(cfg.Assets.Stock, cfg.Assets.Edit),
		viewer.WithInitialStock(cfg.InitialIsStock()),
		viewer.WithToggleKeys(cfg.ToggleViewKey(), cfg.ToggleModelKey()),
		viewer.WithTitle(cfg.Window.Title),
		viewer.WithTitleCallback(win.SetTitle),
		viewer.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	win.SetResizeCallback(v.OnWindowResize)
	win.SetKeyDownCallback(func(code uint32) { v.OnKey(common.Key(code)) })
	win.SetLeftMouseDownCallback(func(x, _ int32) { v.OnPointerDown(float64(x)) })
	win.SetMouseMoveCallback(func(x, _ int32) { v.OnPointerMove(float64(x)) })
	win.SetLeftMouseUpCallback(func(_, _ int32) { v.OnPointerUp() })

	var changes <-chan string
	if cfg.Watch.Enabled {
		w, err := newWatcher(cfg, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		changes = w.Changes()
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithProfiling(opts.profile),
		engine.WithLogger(logger),
		engine.WithFrameCallback(func(float32) {
			v.Pump()
			drainChanges(changes, v)
			if err := v.RenderFrame(); err != nil {
				logger.Debug("frame skipped", "err", err)
			}
		}),
	)
	win.SetCloseCallback(eng.Quit)

	v.Initialize()
	return eng.Run(ctx)
}

// newRenderer creates the GPU renderer. Adapter and device failures panic inside the
// backend; they are turned into an error here.
func newRenderer(win window.Window, cfg *config.Config, opts *options, logger *slog.Logger) (r renderer.Renderer, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("create renderer: %v", p)
		}
	}()

	present := renderer.PresentModeVSync
	if !cfg.Window.VSync {
		present = renderer.PresentModeUncapped
	}
	return renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(present),
		renderer.WithMSAA(renderer.ParseMSAA(cfg.Window.MSAA)),
		renderer.WithForceSoftwareRenderer(opts.software),
		renderer.WithRendererLogger(logger),
	), nil
}

func newWatcher(cfg *config.Config, logger *slog.Logger) (loader.Watcher, error) {
	w, err := loader.NewWatcher(loader.WithDebounce(cfg.Debounce()), loader.WithWatcherLogger(logger))
	if err != nil {
		return nil, err
	}
	for _, path := range []string{cfg.Assets.Stock, cfg.Assets.Edit} {
		if err := w.Add(path); err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}

// drainChanges forwards every pending file change without blocking.
func drainChanges(changes <-chan string, v viewer.Viewer) {
	if changes == nil {
		return
	}
	for {
		select {
		case path, ok := <-changes:
			if !ok {
				return
			}
			v.OnAssetChanged(path)
		default:
			return
		}
	}
}
