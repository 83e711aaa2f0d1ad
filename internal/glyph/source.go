// Package glyph rasterizes label text for the renderer using the Go fonts
// shipped with golang.org/x/image.
package glyph

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"g3d-renderer/internal/raster"
)

// DefaultFace is used for unknown face names.
const DefaultFace = "sans"

type styleKey struct {
	face  string
	style raster.FontStyle
}

// Source implements raster.GlyphSource. x/image faces keep scratch state,
// so every call holds the mutex; one Source may serve many renderers.
type Source struct {
	mu    sync.Mutex
	dpi   float64
	fonts map[styleKey]*opentype.Font
	faces map[string]font.Face
}

var _ raster.GlyphSource = (*Source)(nil)

// New returns a Source with the Go fonts registered as "sans" and "mono".
func New() (*Source, error) {
	s := &Source{
		dpi:   72,
		fonts: make(map[styleKey]*opentype.Font),
		faces: make(map[string]font.Face),
	}
	builtin := []struct {
		face  string
		style raster.FontStyle
		ttf   []byte
	}{
		{"sans", 0, goregular.TTF},
		{"sans", raster.FontBold, gobold.TTF},
		{"sans", raster.FontItalic, goitalic.TTF},
		{"sans", raster.FontBold | raster.FontItalic, gobolditalic.TTF},
		{"mono", 0, gomono.TTF},
		{"mono", raster.FontBold, gomonobold.TTF},
	}
	for _, b := range builtin {
		if err := s.Register(b.face, b.style, b.ttf); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds a TrueType or OpenType font under face and style.
func (s *Source) Register(face string, style raster.FontStyle, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("glyph: parse %s: %w", face, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fonts[styleKey{face, style}] = f
	for k, fc := range s.faces {
		fc.Close()
		delete(s.faces, k)
	}
	return nil
}

// lookup falls back from the exact style to the plain face and then to
// DefaultFace.
func (s *Source) lookup(f raster.Font) *opentype.Font {
	for _, k := range []styleKey{
		{f.Face, f.Style},
		{f.Face, 0},
		{DefaultFace, f.Style},
		{DefaultFace, 0},
	} {
		if ot, ok := s.fonts[k]; ok {
			return ot
		}
	}
	return nil
}

// face must be called with mu held.
func (s *Source) face(f raster.Font) font.Face {
	key := f.Key()
	if fc, ok := s.faces[key]; ok {
		return fc
	}
	var fc font.Face = basicfont.Face7x13
	if ot := s.lookup(f); ot != nil && f.Size > 0 {
		otFace, err := opentype.NewFace(ot, &opentype.FaceOptions{
			Size:    f.Size,
			DPI:     s.dpi,
			Hinting: font.HintingFull,
		})
		if err == nil {
			fc = otFace
		} else {
			raster.Logger().Warn("glyph: face fallback", "font", key, "err", err)
		}
	}
	s.faces[key] = fc
	return fc
}

func (s *Source) metrics(fc font.Face) (ascent, descent int) {
	m := fc.Metrics()
	return m.Ascent.Ceil(), m.Descent.Ceil()
}

// Metrics returns the line box of f in pixels.
func (s *Source) Metrics(f raster.Font) (ascent, descent, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ascent, descent = s.metrics(s.face(f))
	return ascent, descent, ascent + descent
}

// Width returns the advance of str in pixels.
func (s *Source) Width(f raster.Font, str string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return font.MeasureString(s.face(f), str).Ceil()
}

// Rasterize draws str into a coverage mask one line box high.
func (s *Source) Rasterize(f raster.Font, str string) *image.Alpha {
	s.mu.Lock()
	defer s.mu.Unlock()
	fc := s.face(f)
	ascent, descent := s.metrics(fc)
	w := font.MeasureString(fc, str).Ceil()
	if w <= 0 || ascent+descent <= 0 {
		return nil
	}
	dst := image.NewAlpha(image.Rect(0, 0, w, ascent+descent))
	d := font.Drawer{
		Dst:  dst,
		Src:  image.Opaque,
		Face: fc,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(str)
	return dst
}

// Close releases cached faces.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, fc := range s.faces {
		fc.Close()
		delete(s.faces, k)
	}
	return nil
}
