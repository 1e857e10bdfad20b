// Package config holds the viewer's file-backed settings. Every field has a default so
// a config file only needs to list what it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Present modes accepted by RendererConfig.PresentMode.
const (
	PresentModeVSync    = "vsync"
	PresentModeUncapped = "uncapped"
)

// Config is the root of the YAML document.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Renderer  RendererConfig  `yaml:"renderer"`
	View      ViewConfig      `yaml:"view"`
	Animation AnimationConfig `yaml:"animation"`
	Shaders   ShaderConfig    `yaml:"shaders"`

	// Models lists YAML model definition files. The built-in pyramid is used when empty.
	Models []string `yaml:"models"`

	LogLevel  string `yaml:"log_level"`
	Profiling bool   `yaml:"profiling"`
}

// WindowConfig describes the initial window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RendererConfig selects surface and adapter behavior.
type RendererConfig struct {
	PresentMode string `yaml:"present_mode"`
	MSAA        int    `yaml:"msaa"`
	Software    bool   `yaml:"software"`
}

// ViewConfig holds the initial render and camera state.
type ViewConfig struct {
	Type              int        `yaml:"type"`
	SoftShadow        int        `yaml:"soft_shadow"`
	Fov               float32    `yaml:"fov"`
	RayOrigin         [3]float32 `yaml:"ray_origin,flow"`
	MoveSensitivity   float32    `yaml:"move_sensitivity"`
	RotateSensitivity float32    `yaml:"rotate_sensitivity"`
	MouseSensitivity  float32    `yaml:"mouse_sensitivity"`
	Geodesic          bool       `yaml:"geodesic"`
	RealLight         bool       `yaml:"real_light"`
	Animated          bool       `yaml:"animated"`
}

// AnimationConfig controls the redraw tick used while animation is on.
type AnimationConfig struct {
	TickRate float64 `yaml:"tick_rate"`
}

// ShaderConfig optionally replaces the built-in WGSL sources with files on disk.
type ShaderConfig struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

// Default returns the settings used when no file is supplied.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-raymarch",
			Width:  1024,
			Height: 768,
		},
		Renderer: RendererConfig{
			PresentMode: PresentModeVSync,
			MSAA:        1,
		},
		View: ViewConfig{
			Type:              3,
			SoftShadow:        2,
			Fov:               0.25,
			MoveSensitivity:   0.05,
			RotateSensitivity: 2,
			MouseSensitivity:  0.25,
		},
		Animation: AnimationConfig{
			TickRate: 30,
		},
		LogLevel: "notice",
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected so typos surface
// as errors instead of silently keeping a default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML bytes on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.View.Type < 1 || c.View.Type > 4 {
		errs = append(errs, fmt.Errorf("view type must be in 1..4, got %d", c.View.Type))
	}
	if c.View.SoftShadow < 0 || c.View.SoftShadow > 2 {
		errs = append(errs, fmt.Errorf("soft shadow must be in 0..2, got %d", c.View.SoftShadow))
	}
	if c.View.Fov <= 0 {
		errs = append(errs, fmt.Errorf("fov must be positive, got %v", c.View.Fov))
	}
	if c.View.MoveSensitivity <= 0 {
		errs = append(errs, fmt.Errorf("move sensitivity must be positive, got %v", c.View.MoveSensitivity))
	}
	switch c.Renderer.PresentMode {
	case PresentModeVSync, PresentModeUncapped:
	default:
		errs = append(errs, fmt.Errorf("unknown present mode %q", c.Renderer.PresentMode))
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		errs = append(errs, fmt.Errorf("msaa must be 1 or 4, got %d", c.Renderer.MSAA))
	}
	if c.Animation.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("animation tick rate must be positive, got %v", c.Animation.TickRate))
	}
	return errors.Join(errs...)
}

// Marshal encodes the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("config: failed to encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: failed to encode: %w", err)
	}
	return buf.Bytes(), nil
}
