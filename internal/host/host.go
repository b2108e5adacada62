// Package host runs the interactive globe: it owns the SDL window and GL
// context and drives the app once per frame.
package host

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/chronoglobe/internal/app"
	"github.com/Faultbox/chronoglobe/internal/assets"
	"github.com/Faultbox/chronoglobe/internal/config"
	"github.com/Faultbox/chronoglobe/internal/engine/globe"
	"github.com/Faultbox/chronoglobe/internal/engine/input"
	"github.com/Faultbox/chronoglobe/internal/engine/renderer"
	"github.com/Faultbox/chronoglobe/internal/engine/screenshot"
	"github.com/Faultbox/chronoglobe/internal/engine/shader"
	"github.com/Faultbox/chronoglobe/internal/engine/text"
	"github.com/Faultbox/chronoglobe/internal/engine/window"
	"github.com/Faultbox/chronoglobe/internal/event"
	"github.com/Faultbox/chronoglobe/internal/logger"
)

// Host is the running application instance.
type Host struct {
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	layouter *text.Layouter
	repo     *assets.Repository
	app      *app.App
	shots    *screenshot.Capture
}

// New opens the window and loads the startup assets. Missing startup assets
// (font, basemap, shaders) are returned as *assets.AssetError.
func New(cfg *config.Config) (*Host, error) {
	logger.Info("initializing host",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("datasets", len(cfg.Data.Datasets)),
	)

	repo, err := app.NewRepository(cfg)
	if err != nil {
		return nil, err
	}
	h := &Host{repo: repo}
	ctx := context.Background()

	fontData, err := loadOptional(ctx, repo, cfg.Labels.Font)
	if err != nil {
		return nil, fmt.Errorf("label font: %w", err)
	}
	h.layouter, err = text.New(fontData, app.TextOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("label font: %w", err)
	}

	basemap, err := loadBasemap(ctx, repo, cfg.Globe)
	if err != nil {
		h.Close()
		return nil, err
	}

	// Create window (this also creates OpenGL context)
	h.window, err = window.New(window.Config{
		Title:      app.Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Samples:    cfg.Graphics.MSAA,
	})
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	width, height := h.window.GetDrawableSize()

	// Create renderer (AFTER window, since OpenGL context must exist)
	shaders := &shader.Preprocessor{
		Dir:  "shaders",
		Load: func(name string) ([]byte, error) { return repo.Load(ctx, name) },
	}
	h.renderer, err = renderer.New(renderer.Config{
		Width:          width,
		Height:         height,
		Radius:         cfg.Globe.Radius,
		Slices:         cfg.Globe.Slices,
		Stacks:         cfg.Globe.Stacks,
		Ocean:          renderer.DefaultOcean,
		FeatureOpacity: 0.85,
	}, shaders, basemap, h.layouter)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	h.app, err = app.NewFromConfig(cfg, repo, h.layouter, h.renderer, width, height, h.window.SetTitle)
	if err != nil {
		h.Close()
		return nil, err
	}

	h.input = input.New()
	h.shots = screenshot.New(cfg.Graphics.ScreenshotDir, app.Title)

	logger.Info("host initialized")
	return h, nil
}

func loadOptional(ctx context.Context, repo *assets.Repository, name string) ([]byte, error) {
	if name == "" {
		return nil, nil
	}
	return repo.Load(ctx, name)
}

func loadBasemap(ctx context.Context, repo *assets.Repository, g config.GlobeConfig) (*image.RGBA, error) {
	data, err := loadOptional(ctx, repo, g.Basemap)
	if err != nil || data == nil {
		return nil, err
	}
	img, err := globe.DecodeBasemap(data, g.BasemapPaddingX, g.BasemapPaddingY)
	if err != nil {
		return nil, &assets.AssetError{Name: g.Basemap, Status: assets.Failed, Err: err}
	}
	logger.Info("basemap loaded", zap.String("asset", g.Basemap), zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	return img, nil
}

// Run starts the main loop and returns when the app quits.
func (h *Host) Run() error {
	h.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	if err := h.app.Start(); err != nil {
		logger.Warn("initial dataset not loaded", zap.Error(err))
	}

	logger.Info("starting main loop")

	for h.running {
		// Calculate delta time
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		h.input.Update()
		for _, e := range h.input.Events() {
			if e.Type == event.Resize {
				// Window events carry points, GL wants pixels.
				e.Width, e.Height = h.window.GetDrawableSize()
			}
			h.app.HandleEvent(e)
		}

		// 2. Deliver finished downloads
		h.app.PollAssets()

		if h.app.Done() {
			h.running = false
			break
		}

		// 3. Update and render
		frame, err := h.app.Frame()
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if frame.Screenshot {
			h.saveScreenshot()
		}

		// 4. Present (swap buffers)
		h.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (h *Host) saveScreenshot() {
	pixels, w, hgt := h.renderer.ReadPixels()
	path, err := h.shots.SaveGL(pixels, w, hgt)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up host resources.
func (h *Host) Close() {
	logger.Info("closing host")

	if h.renderer != nil {
		h.renderer.Close()
	}
	if h.layouter != nil {
		_ = h.layouter.Close()
	}
	if h.window != nil {
		h.window.Close()
	}
	hits, misses := h.repo.Cache().Stats()
	logger.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses))
}
