// Package config handles chronoglobe configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Globe    GlobeConfig    `yaml:"globe"`
	Labels   LabelsConfig   `yaml:"labels"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`

	// MSAA is the multisample count. Zero disables multisampling.
	MSAA int `yaml:"msaa"`

	// ScreenshotDir receives F12 captures.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// GlobeConfig holds the base globe geometry and basemap.
type GlobeConfig struct {
	Radius      float32 `yaml:"radius"`
	Slices      int     `yaml:"slices"`
	Stacks      int     `yaml:"stacks"`
	FeatureLift float32 `yaml:"feature_lift"`

	// Basemap is an asset name. Empty draws a flat ocean.
	Basemap         string `yaml:"basemap"`
	BasemapPaddingX int    `yaml:"basemap_padding_x"`
	BasemapPaddingY int    `yaml:"basemap_padding_y"`
}

// LabelsConfig holds label placement and font settings.
type LabelsConfig struct {
	RayDensity int `yaml:"ray_density"` // Rays across the screen width

	// Font is an asset name of a TrueType or OpenType font. Empty uses Go Regular.
	Font       string  `yaml:"font"`
	FontSize   float64 `yaml:"font_size"`
	LineHeight float64 `yaml:"line_height"`
	DPI        float64 `yaml:"dpi"`
	GlyphCache int     `yaml:"glyph_cache"`
}

// DataConfig holds dataset and asset locations.
type DataConfig struct {
	Datasets     []string      `yaml:"datasets"`
	AssetDir     string        `yaml:"asset_dir"`
	RemoteURL    string        `yaml:"remote_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// MaxDownloadBytes caps one remote dataset. Zero uses the built-in limit.
	MaxDownloadBytes int64 `yaml:"max_download_bytes"`

	// Initial names the first dataset shown. Empty starts with the first in the list.
	Initial string `yaml:"initial"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DefaultDatasets are the historical world boundary slices.
var DefaultDatasets = []string{
	"features/world_100.geojson",
	"features/world_200.geojson",
	"features/world_300.geojson",
	"features/world_400.geojson",
	"features/world_500.geojson",
	"features/world_600.geojson",
	"features/world_700.geojson",
	"features/world_800.geojson",
	"features/world_900.geojson",
	"features/world_1000.geojson",
	"features/world_1100.geojson",
	"features/world_1200.geojson",
	"features/world_1279.geojson",
	"features/world_1300.geojson",
	"features/world_1400.geojson",
	"features/world_1500.geojson",
	"features/world_1530.geojson",
	"features/world_1600.geojson",
	"features/world_1650.geojson",
	"features/world_1700.geojson",
	"features/world_1715.geojson",
	"features/world_1783.geojson",
	"features/world_1800.geojson",
	"features/world_1815.geojson",
	"features/world_1880.geojson",
	"features/world_1900.geojson",
	"features/world_1920.geojson",
	"features/world_1930.geojson",
	"features/world_1938.geojson",
	"features/world_1945.geojson",
	"features/world_1960.geojson",
	"features/world_1994.geojson",
	"features/world_2000.geojson",
	"features/world_2010.geojson",
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:         1280,
			Height:        720,
			Fullscreen:    false,
			VSync:         true,
			MSAA:          4,
			ScreenshotDir: "screenshots",
		},
		Globe: GlobeConfig{
			Radius:      10000,
			Slices:      100,
			Stacks:      100,
			FeatureLift: 1,
			Basemap:     "blue_marble_2048.tif",
		},
		Labels: LabelsConfig{
			RayDensity: 15,
			FontSize:   18,
			LineHeight: 18,
			DPI:        72,
			GlyphCache: 1024,
		},
		Data: DataConfig{
			Datasets:         append([]string(nil), DefaultDatasets...),
			AssetDir:         "assets",
			FetchTimeout:     30 * time.Second,
			MaxDownloadBytes: 256 << 20,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects settings the globe cannot run with.
func (c *Config) Validate() error {
	var err error
	if c.Globe.Radius <= 0 {
		err = multierr.Append(err, fmt.Errorf("globe.radius must be positive, got %v", c.Globe.Radius))
	}
	if c.Globe.Slices < 3 || c.Globe.Stacks < 3 {
		err = multierr.Append(err, fmt.Errorf("globe needs at least 3 slices and stacks, got %d x %d", c.Globe.Slices, c.Globe.Stacks))
	}
	if c.Globe.BasemapPaddingX < 0 || c.Globe.BasemapPaddingY < 0 {
		err = multierr.Append(err, errors.New("globe basemap padding must not be negative"))
	}
	if c.Graphics.MSAA < 0 {
		err = multierr.Append(err, fmt.Errorf("graphics.msaa must not be negative, got %d", c.Graphics.MSAA))
	}
	if c.Data.MaxDownloadBytes < 0 {
		err = multierr.Append(err, fmt.Errorf("data.max_download_bytes must not be negative, got %d", c.Data.MaxDownloadBytes))
	}
	if c.Labels.RayDensity < 1 {
		err = multierr.Append(err, fmt.Errorf("labels.ray_density must be at least 1, got %d", c.Labels.RayDensity))
	}
	if len(c.Data.Datasets) == 0 {
		err = multierr.Append(err, errors.New("data.datasets is empty"))
	}
	if c.Data.Initial != "" && c.DatasetIndex(c.Data.Initial) < 0 {
		err = multierr.Append(err, fmt.Errorf("data.initial %q is not in data.datasets", c.Data.Initial))
	}
	return err
}

// DatasetIndex returns the position of name in the dataset list, or -1.
func (c *Config) DatasetIndex(name string) int {
	for i, d := range c.Data.Datasets {
		if d == name {
			return i
		}
	}
	return -1
}
