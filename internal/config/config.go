package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/shade"
	"g3d-renderer/internal/sink"
)

// ZShade fades colors toward the background between Slab and Depth.
type ZShade struct {
	Slab  int `json:"slab" toml:"slab"`
	Depth int `json:"depth" toml:"depth"`
	Power int `json:"power" toml:"power"`
}

// Config holds render settings and paths.
type Config struct {
	// Frame
	Width                int    `json:"width" toml:"width"`
	Height               int    `json:"height" toml:"height"`
	Antialias            bool   `json:"antialias" toml:"antialias"`
	AntialiasTranslucent bool   `json:"antialias_translucent" toml:"antialias_translucent"`
	Background           string `json:"background" toml:"background"`
	BackgroundImage      string `json:"background_image" toml:"background_image"`
	Transparent          bool   `json:"transparent" toml:"transparent"`
	Greyscale            bool   `json:"greyscale" toml:"greyscale"`
	Perspective          bool   `json:"perspective" toml:"perspective"`

	// Shading and clipping. Zero Slab and Depth leave clipping off.
	Lighting *shade.Lighting `json:"lighting" toml:"lighting"`
	Slab     int             `json:"slab" toml:"slab"`
	Depth    int             `json:"depth" toml:"depth"`
	ZShade   *ZShade         `json:"z_shade" toml:"z_shade"`

	// Text
	FontFace string  `json:"font_face" toml:"font_face"`
	FontSize float64 `json:"font_size" toml:"font_size"`

	// Output
	AssetDir  string  `json:"asset_dir" toml:"asset_dir"`
	OutputDir string  `json:"output_dir" toml:"output_dir"`
	Format    string  `json:"format" toml:"format"`
	Fit       float64 `json:"fit" toml:"fit"`
	Workers   int     `json:"workers" toml:"workers"`
}

// Load reads a .json or .toml config file. Fields not set in the file keep
// their zero values. Relative paths are resolved against the file's
// directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: read %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.AssetDir, &cfg.OutputDir, &cfg.BackgroundImage} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir string
	Format    string
	Workers   int
	Width     int
	Height    int
	Antialias bool
}

// Resolve applies CLI overrides, then fills empty fields with defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Antialias {
		c.Antialias = true
	}

	if c.Width <= 0 {
		c.Width = 500
	}
	if c.Height <= 0 {
		c.Height = 500
	}
	if c.Background == "" {
		c.Background = "#000000"
	}
	if c.Lighting == nil {
		l := shade.DefaultLighting()
		c.Lighting = &l
	}
	if c.FontFace == "" {
		c.FontFace = "sans"
	}
	if c.FontSize <= 0 {
		c.FontSize = 14
	}
	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}
	if c.Format == "" {
		c.Format = string(sink.WebP)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate checks values the renderer cannot default.
func (c *Config) Validate() error {
	if _, err := c.BackgroundArgb(); err != nil {
		return fmt.Errorf("config: background: %w", err)
	}
	if _, err := sink.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Fit < 0 || c.Fit > 1 {
		return fmt.Errorf("config: fit %v outside [0, 1]", c.Fit)
	}
	return nil
}

// BackgroundArgb parses Background.
func (c *Config) BackgroundArgb() (uint32, error) {
	return colix.ParseHex(c.Background)
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() sink.Format {
	f, err := sink.ParseFormat(c.Format)
	if err != nil {
		return sink.WebP
	}
	return f
}
