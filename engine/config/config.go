// Package config loads engine configuration files. TOML and YAML are supported,
// selected by file extension; every field falls back to Default().
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned when the config file extension is neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the root engine configuration.
type Config struct {
	Window WindowConfig `toml:"window" yaml:"window"`
	Render RenderConfig `toml:"render" yaml:"render"`
	Shadow ShadowConfig `toml:"shadow" yaml:"shadow"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	Assets AssetsConfig `toml:"assets" yaml:"assets"`
}

// WindowConfig configures the platform window.
type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`
}

// RenderConfig configures the main pass and the post-process composite.
type RenderConfig struct {
	ClearColor [4]float32 `toml:"clear_color" yaml:"clear_color"`
	Exposure   float32    `toml:"exposure" yaml:"exposure"`
	Wireframe  bool       `toml:"wireframe" yaml:"wireframe"`
	FrameLimit float64    `toml:"frame_limit" yaml:"frame_limit"`
}

// ShadowConfig configures the directional and point shadow passes.
type ShadowConfig struct {
	Resolution      int     `toml:"resolution" yaml:"resolution"`
	PointResolution int     `toml:"point_resolution" yaml:"point_resolution"`
	MaxPointShadows int     `toml:"max_point_shadows" yaml:"max_point_shadows"`
	Distance        float32 `toml:"distance" yaml:"distance"`
	HalfExtent      float32 `toml:"half_extent" yaml:"half_extent"`
	Near            float32 `toml:"near" yaml:"near"`
	Far             float32 `toml:"far" yaml:"far"`
	PointFar        float32 `toml:"point_far" yaml:"point_far"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `toml:"level" yaml:"level"`
	Development bool   `toml:"development" yaml:"development"`
}

// AssetsConfig configures asset loading.
type AssetsConfig struct {
	DecodeWorkers int `toml:"decode_workers" yaml:"decode_workers"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxyview",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Render: RenderConfig{
			ClearColor: [4]float32{0.05, 0.05, 0.08, 1},
			Exposure:   1.0,
		},
		Shadow: ShadowConfig{
			Resolution:      1024,
			PointResolution: 512,
			MaxPointShadows: 1,
			Distance:        20,
			HalfExtent:      20,
			Near:            0.1,
			Far:             50,
			PointFar:        25,
		},
		Log: LogConfig{
			Level: "info",
		},
		Assets: AssetsConfig{
			DecodeWorkers: 4,
		},
	}
}

// Load reads the file at path over Default(). A leading "~" is expanded.
//
// Parameters:
//   - path: path to a .toml, .yaml or .yml file
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read, parsed, or fails validation
func Load(path string) (Config, error) {
	expanded, err := common.ExpandPath(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", expanded, err)
	}

	return Parse(data, filepath.Ext(expanded))
}

// Parse decodes data over Default() using the decoder selected by ext.
//
// Parameters:
//   - data: the raw file contents
//   - ext: the file extension including the dot (".toml", ".yaml", ".yml")
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the format is unsupported, decoding fails, or validation fails
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode TOML config: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode YAML config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail deep inside GPU resource creation.
//
// Returns:
//   - error: the first invalid field found, or nil
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("config: window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	case c.Shadow.Resolution <= 0 || c.Shadow.PointResolution <= 0:
		return fmt.Errorf("config: shadow resolutions must be positive")
	case c.Shadow.MaxPointShadows < 0:
		return fmt.Errorf("config: max_point_shadows must not be negative")
	case c.Shadow.Near <= 0 || c.Shadow.Far <= c.Shadow.Near:
		return fmt.Errorf("config: shadow near/far must satisfy 0 < near < far")
	case c.Render.Exposure <= 0:
		return fmt.Errorf("config: exposure must be positive")
	case c.Assets.DecodeWorkers <= 0:
		return fmt.Errorf("config: decode_workers must be positive")
	}
	return nil
}
