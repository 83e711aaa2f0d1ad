package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"g3d-renderer/internal/shade"
	"g3d-renderer/internal/sink"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "cfg.json", `{
		"width": 320, "height": 200, "antialias": true,
		"background": "#102030", "output_dir": "out",
		"lighting": {"ambient_percent": 10, "diffuse_percent": 90, "specular": false}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.True(t, cfg.Antialias)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "out"), cfg.OutputDir)
	require.NotNil(t, cfg.Lighting)
	assert.Equal(t, 10, cfg.Lighting.AmbientPercent)
	assert.False(t, cfg.Lighting.SpecularOn)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "cfg.toml", `
width = 64
format = "png"
output_dir = "/abs/out"
fit = 0.8

[z_shade]
slab = 10
depth = 90
power = 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, "/abs/out", cfg.OutputDir)
	assert.Equal(t, &ZShade{Slab: 10, Depth: 90, Power: 3}, cfg.ZShade)
	assert.Equal(t, 0.8, cfg.Fit)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorContains(t, err, "config: read")

	_, err = Load(writeFile(t, "cfg.yaml", "width: 1"))
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = Load(writeFile(t, "cfg.json", "{"))
	assert.ErrorContains(t, err, "config: parse")
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})
	assert.Equal(t, 500, cfg.Width)
	assert.Equal(t, 500, cfg.Height)
	assert.Equal(t, "webp", cfg.Format)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, shade.DefaultLighting(), *cfg.Lighting)
	assert.Equal(t, "sans", cfg.FontFace)
	require.NoError(t, cfg.Validate())
	argb, err := cfg.BackgroundArgb()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFF000000), argb)
}

func TestFlagsOverrideFile(t *testing.T) {
	cfg := Config{Width: 100, Format: "png", Workers: 3}
	cfg.Resolve(Flags{Width: 640, Format: "tga", Antialias: true})
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, sink.TGA, cfg.OutputFormat())
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Antialias)
}

func TestValidate(t *testing.T) {
	cfg := Config{Background: "nothex", Format: "webp"}
	assert.ErrorContains(t, cfg.Validate(), "config: background")

	cfg = Config{Background: "#000000", Format: "bmp"}
	assert.ErrorIs(t, cfg.Validate(), sink.ErrFormat)

	cfg = Config{Background: "#000000", Format: "png", Fit: 2}
	assert.ErrorContains(t, cfg.Validate(), "fit")
}
