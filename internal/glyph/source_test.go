package glyph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"g3d-renderer/internal/mathutil"
	"g3d-renderer/internal/raster"
)

func newSource(t *testing.T) *Source {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMetrics(t *testing.T) {
	s := newSource(t)
	ascent, descent, height := s.Metrics(raster.Font{Face: "sans", Size: 20})
	assert.Greater(t, ascent, 10)
	assert.Greater(t, descent, 0)
	assert.Equal(t, ascent+descent, height)

	bigAscent, _, _ := s.Metrics(raster.Font{Face: "sans", Size: 40})
	assert.Greater(t, bigAscent, ascent)
}

func TestRasterizeCoversInk(t *testing.T) {
	s := newSource(t)
	f := raster.Font{Face: "sans", Size: 24}
	a := s.Rasterize(f, "H")
	require.NotNil(t, a)
	ascent, _, height := s.Metrics(f)
	assert.Equal(t, height, a.Bounds().Dy())
	assert.Equal(t, s.Width(f, "H"), a.Bounds().Dx())

	ink := 0
	for _, v := range a.Pix {
		if v == 0xFF {
			ink++
		}
	}
	assert.Greater(t, ink, 20)
	// below the baseline an H has no ink
	for x := 0; x < a.Bounds().Dx(); x++ {
		assert.Zero(t, a.AlphaAt(x, ascent+1).A)
	}
}

func TestEmptyStringHasNoMask(t *testing.T) {
	s := newSource(t)
	assert.Nil(t, s.Rasterize(raster.Font{Face: "sans", Size: 12}, ""))
}

func TestFallbacks(t *testing.T) {
	s := newSource(t)
	plain := s.Width(raster.Font{Face: "sans", Size: 16}, "wide text")
	assert.Equal(t, plain, s.Width(raster.Font{Face: "nope", Size: 16}, "wide text"))

	// bitmap fallback is 7 pixels per glyph
	assert.Equal(t, 14, s.Width(raster.Font{Face: "sans"}, "ab"))

	mono := raster.Font{Face: "mono", Size: 16, Style: raster.FontItalic}
	assert.Equal(t, s.Width(mono, "iiii"), s.Width(mono, "MMMM"))
}

func TestRegisterRejectsGarbage(t *testing.T) {
	s := newSource(t)
	err := s.Register("bad", 0, []byte("not a font"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glyph: parse bad")
}

func TestLabelsThroughRenderer(t *testing.T) {
	s := newSource(t)
	r := raster.New(nil, raster.WithGlyphSource(s))
	r.SetWindowParameters(80, 40, false)
	require.NoError(t, r.BeginFrame(mathutil.Mat3Identity(), true))
	r.PlotText(4, 30, 10, 0xFFFFFFFF, 0, "Hi", raster.Font{Face: "sans", Size: 20})
	r.EndFrame()
	assert.True(t, r.HasContent())
}
