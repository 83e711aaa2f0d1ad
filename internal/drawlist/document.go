// Package drawlist decodes flat lists of screen-space drawing commands and
// replays them on a raster.Renderer. It is not a scene graph: every
// coordinate is already projected, x and y in window pixels and z growing
// away from the viewer.
package drawlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vec is a screen-space point.
type Vec = [3]float64

// Font selects a label face.
type Font struct {
	Face   string  `json:"face,omitempty" yaml:"face,omitempty"`
	Size   float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Bold   bool    `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty" yaml:"italic,omitempty"`
}

// Command is one primitive. Which fields apply depends on Op; see ops.
type Command struct {
	Op           string   `json:"op" yaml:"op"`
	Color        string   `json:"color,omitempty" yaml:"color,omitempty"`
	Color2       string   `json:"color2,omitempty" yaml:"color2,omitempty"`
	Colors       []string `json:"colors,omitempty" yaml:"colors,omitempty"`
	Translucency float64  `json:"translucency,omitempty" yaml:"translucency,omitempty"`
	Points       []Vec    `json:"points" yaml:"points"`
	Diameter     int      `json:"diameter,omitempty" yaml:"diameter,omitempty"`
	Diameters    []int    `json:"diameters,omitempty" yaml:"diameters,omitempty"`
	Axes         []Vec    `json:"axes,omitempty" yaml:"axes,omitempty"`
	Octant       *int     `json:"octant,omitempty" yaml:"octant,omitempty"`
	Endcap       string   `json:"endcap,omitempty" yaml:"endcap,omitempty"`
	Tension      int      `json:"tension,omitempty" yaml:"tension,omitempty"`
	Fill         bool     `json:"fill,omitempty" yaml:"fill,omitempty"`
	Border       bool     `json:"border,omitempty" yaml:"border,omitempty"`
	Solid        bool     `json:"solid,omitempty" yaml:"solid,omitempty"`
	Barb         bool     `json:"barb,omitempty" yaml:"barb,omitempty"`
	Aspect       int      `json:"aspect,omitempty" yaml:"aspect,omitempty"`
	Dash         [2]int   `json:"dash,omitempty" yaml:"dash,omitempty"`
	Scale        int      `json:"scale,omitempty" yaml:"scale,omitempty"`
	Size         [2]int   `json:"size,omitempty" yaml:"size,omitempty"`
	Text         string   `json:"text,omitempty" yaml:"text,omitempty"`
	Font         *Font    `json:"font,omitempty" yaml:"font,omitempty"`
	Image        string   `json:"image,omitempty" yaml:"image,omitempty"`
	Normals      []Vec    `json:"normals,omitempty" yaml:"normals,omitempty"`
}

// Document is a decoded draw list. Zero Width or Height defer to the
// caller's configuration.
type Document struct {
	Width      int       `json:"width,omitempty" yaml:"width,omitempty"`
	Height     int       `json:"height,omitempty" yaml:"height,omitempty"`
	Background string    `json:"background,omitempty" yaml:"background,omitempty"`
	// View names a preset orientation for normal shading; Rotation adds
	// Euler angles in degrees on top of it.
	View     string `json:"view,omitempty" yaml:"view,omitempty"`
	Rotation *Vec   `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Commands   []Command `json:"commands" yaml:"commands"`
}

// ErrCommand reports a command that cannot be drawn.
var ErrCommand = errors.New("invalid command")

// Decode reads a document in "json" or "yaml". Unknown fields are errors.
func Decode(r io.Reader, format string) (*Document, error) {
	var doc Document
	switch format {
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("drawlist: decode json: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("drawlist: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("drawlist: decode: unknown format %q", format)
	}
	return &doc, nil
}

// ReadFile decodes path, choosing the format from its extension.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("drawlist: read %s: %w", path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	doc, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return doc, nil
}

// IsDrawList reports whether path has a draw-list extension.
func IsDrawList(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
