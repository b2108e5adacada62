package app

import (
	"fmt"

	"github.com/Faultbox/chronoglobe/internal/assets"
	"github.com/Faultbox/chronoglobe/internal/config"
	"github.com/Faultbox/chronoglobe/internal/engine/camera"
	"github.com/Faultbox/chronoglobe/internal/engine/text"
	"github.com/Faultbox/chronoglobe/internal/feature"
	"github.com/Faultbox/chronoglobe/internal/label"
	"github.com/Faultbox/chronoglobe/internal/store"
)

// NewRepository builds the asset repository: the asset directory, then the
// embedded assets, then the remote server when configured.
func NewRepository(cfg *config.Config) (*assets.Repository, error) {
	var sources []assets.Source
	if cfg.Data.AssetDir != "" {
		sources = append(sources, assets.NewDirSource(cfg.Data.AssetDir))
	}
	sources = append(sources, assets.StaticSource())
	repo := assets.NewRepository(sources...)

	if cfg.Data.RemoteURL != "" {
		remote, err := assets.NewRemote(cfg.Data.RemoteURL, nil, cfg.Data.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("data.remote_url: %w", err)
		}
		remote.SetMaxSize(cfg.Data.MaxDownloadBytes)
		repo.SetRemote(remote)
	}
	return repo, nil
}

// TextOptions maps the label settings onto the text layouter.
func TextOptions(cfg *config.Config) text.Options {
	opts := text.DefaultOptions()
	if cfg.Labels.FontSize > 0 {
		opts.Size = cfg.Labels.FontSize
	}
	if cfg.Labels.DPI > 0 {
		opts.DPI = cfg.Labels.DPI
	}
	if cfg.Labels.LineHeight > 0 {
		opts.LineHeight = cfg.Labels.LineHeight
	}
	if cfg.Labels.GlyphCache > 0 {
		opts.CacheSize = cfg.Labels.GlyphCache
	}
	return opts
}

// NewFromConfig wires the camera, dataset store and label engine into an app and
// positions the store on the configured initial dataset.
func NewFromConfig(cfg *config.Config, repo *assets.Repository, layouter label.Layouter, r Renderer, width, height int, setTitle func(string)) (*App, error) {
	st, err := store.New(repo, cfg.Data.Datasets, BuildOptions(cfg))
	if err != nil {
		return nil, err
	}
	if cfg.Data.Initial != "" {
		if err := st.SelectName(cfg.Data.Initial); err != nil {
			return nil, err
		}
	}

	return New(Options{
		Camera:   camera.New(cfg.Globe.Radius),
		Store:    st,
		Labels:   label.NewEngine(layouter, cfg.Globe.Radius, cfg.Labels.RayDensity),
		Renderer: r,
		Assets:   repo,
		Width:    width,
		Height:   height,
		SetTitle: setTitle,
	})
}

// BuildOptions derives tessellation settings from the globe resolution.
func BuildOptions(cfg *config.Config) feature.BuildOptions {
	return feature.BuildOptions{
		SubdivisionDeg: feature.SubdivisionForGlobe(cfg.Globe.Slices, cfg.Globe.Stacks),
		Radius:         cfg.Globe.Radius,
		Lift:           cfg.Globe.FeatureLift,
	}
}
