// Package app sequences the globe per event and per frame: camera, dataset
// store, label placement and the renderer.
package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/chronoglobe/internal/assets"
	"github.com/Faultbox/chronoglobe/internal/engine/camera"
	"github.com/Faultbox/chronoglobe/internal/event"
	"github.com/Faultbox/chronoglobe/internal/feature"
	"github.com/Faultbox/chronoglobe/internal/label"
	"github.com/Faultbox/chronoglobe/internal/logger"
	"github.com/Faultbox/chronoglobe/internal/store"
)

// Title is the window title prefix.
const Title = "chronoglobe"

// Renderer draws frames. The GL renderer implements it.
type Renderer interface {
	Resize(width, height int)
	// SetFeatures replaces the feature mesh in one step. nil clears it.
	SetFeatures(mesh *feature.Mesh) error
	Draw(ctx *FrameContext) error
}

// Poller hands over asynchronously fetched assets. *assets.Repository
// implements it.
type Poller interface {
	Poll() []assets.Result
}

// FrameContext is everything a frame needs, computed in order:
// camera update, feature swap, label regeneration.
type FrameContext struct {
	Width, Height int
	Uniform       camera.Uniform
	Moving        bool

	Dataset    string
	Mesh       *feature.Mesh
	Meta       *feature.Metadata
	Generation uint64

	// Labels are valid only when LabelsReady is set. LabelsRebuilt marks the
	// frame that produced them.
	Labels        []label.Label
	LabelsReady   bool
	LabelsRebuilt bool

	// Screenshot asks the host to save this frame.
	Screenshot bool
}

// Options wires an App.
type Options struct {
	Camera   *camera.GlobeCamera
	Store    *store.Store
	Labels   *label.Engine
	Renderer Renderer
	Assets   Poller

	Width, Height int

	// SetTitle is called when the displayed dataset changes.
	SetTitle func(string)
}

// App is the render orchestrator. It is driven from the main thread.
type App struct {
	camera   *camera.GlobeCamera
	store    *store.Store
	labels   *label.Engine
	renderer Renderer
	assets   Poller
	setTitle func(string)

	width, height int
	generation    uint64
	done          bool
	screenshot    bool
}

// New creates an App.
func New(opts Options) (*App, error) {
	if opts.Camera == nil || opts.Store == nil || opts.Labels == nil || opts.Renderer == nil {
		return nil, errors.New("app: camera, store, labels and renderer are required")
	}
	a := &App{
		camera:   opts.Camera,
		store:    opts.Store,
		labels:   opts.Labels,
		renderer: opts.Renderer,
		assets:   opts.Assets,
		setTitle: opts.SetTitle,
		width:    opts.Width,
		height:   opts.Height,
	}
	a.renderer.Resize(a.width, a.height)
	return a, nil
}

// Done reports whether the app asked to quit.
func (a *App) Done() bool { return a.done }

// Camera returns the camera.
func (a *App) Camera() *camera.GlobeCamera { return a.camera }

// Size returns the viewport size.
func (a *App) Size() (int, int) { return a.width, a.height }

// Start requests the first dataset.
func (a *App) Start() error {
	return a.request(a.store.Request)
}

// PollAssets turns completed remote fetches into AssetLoaded events.
func (a *App) PollAssets() {
	if a.assets == nil {
		return
	}
	for _, res := range a.assets.Poll() {
		a.HandleEvent(event.Event{Type: event.AssetLoaded, Asset: res})
	}
}

// HandleEvent applies one host event.
func (a *App) HandleEvent(e event.Event) {
	switch e.Type {
	case event.Quit:
		a.done = true

	case event.Resize:
		if e.Width <= 0 || e.Height <= 0 {
			return
		}
		a.width, a.height = e.Width, e.Height
		a.renderer.Resize(e.Width, e.Height)
		a.labels.Invalidate()

	case event.KeyDown:
		switch e.Key {
		case event.KeyEscape:
			a.done = true
		case event.KeySpace:
			_ = a.request(a.store.Request)
		case event.KeyLeftBracket:
			_ = a.request(func() error { return a.store.Step(-1) })
		case event.KeyRightBracket:
			_ = a.request(func() error { return a.store.Step(1) })
		case event.KeyScreenshot:
			a.screenshot = true
		}

	case event.MouseDown:
		if e.Button == event.ButtonLeft {
			a.camera.PressLeft()
		}

	case event.MouseUp:
		if e.Button == event.ButtonLeft {
			a.camera.ReleaseLeft()
		}

	case event.MouseMotion:
		a.camera.Drag(e.DX, e.DY)

	case event.MouseScroll:
		a.camera.Scroll(e.DY)

	case event.ScrollStopped:
		a.camera.StopScroll()

	case event.AssetLoaded:
		_ = a.request(func() error { return a.store.Complete(e.Asset.Name, e.Asset) })
	}
}

// request runs a store operation and logs failures other than an
// interrupted load, which the store already reports.
func (a *App) request(op func() error) error {
	err := op()
	if err != nil && !errors.Is(err, store.ErrLoadInProgress) {
		logger.Warn("dataset load failed", zap.Error(err))
	}
	return err
}

// Frame advances one frame and draws it.
func (a *App) Frame() (*FrameContext, error) {
	ctx := a.Prepare()
	if err := a.renderer.Draw(ctx); err != nil {
		return ctx, fmt.Errorf("draw: %w", err)
	}
	return ctx, nil
}

// Prepare builds the frame context without drawing.
func (a *App) Prepare() *FrameContext {
	a.camera.Update()

	ctx := &FrameContext{
		Width:   a.width,
		Height:  a.height,
		Uniform: a.camera.Uniform(a.width, a.height),
		Moving:  a.camera.MovementInProgress(),
	}
	ctx.Screenshot, a.screenshot = a.screenshot, false
	ctx.Dataset, ctx.Mesh, ctx.Meta = a.store.Current()
	ctx.Generation = a.store.Generation()

	if ctx.Generation != a.generation {
		a.generation = ctx.Generation
		if err := a.renderer.SetFeatures(ctx.Mesh); err != nil {
			logger.Error("feature upload failed", zap.String("dataset", ctx.Dataset), zap.Error(err))
		}
		a.labels.Invalidate()
		if a.setTitle != nil {
			a.setTitle(fmt.Sprintf("%s - %s", Title, ctx.Dataset))
		}
	}

	rebuilt, err := a.labels.Update(ctx.Moving, ctx.Uniform, a.width, a.height, ctx.Meta)
	if err != nil {
		logger.Debug("labels skipped", zap.Error(err))
	}
	ctx.LabelsRebuilt = rebuilt
	ctx.LabelsReady = a.labels.Ready()
	if ctx.LabelsReady {
		ctx.Labels = a.labels.Labels()
	}
	return ctx
}
