package raster

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"g3d-renderer/internal/colix"
)

// boxGlyphs rasterizes every character as an opaque 4x10 box.
type boxGlyphs struct {
	calls int
}

func (g *boxGlyphs) Metrics(Font) (int, int, int) { return 8, 2, 10 }

func (g *boxGlyphs) Width(_ Font, s string) int { return 4 * len(s) }

func (g *boxGlyphs) Rasterize(_ Font, s string) *image.Alpha {
	g.calls++
	a := image.NewAlpha(image.Rect(0, 0, 4*len(s), 10))
	for i := range a.Pix {
		a.Pix[i] = 0xFF
	}
	return a
}

func TestPlotTextUsesCache(t *testing.T) {
	g := &boxGlyphs{}
	r := newTestRenderer(t, 64, 64, WithGlyphSource(g))
	f := Font{Face: "mono", Size: 12}

	r.PlotText(10, 20, 5, 0xFF00FF00, 0, "ab", f)
	assert.Equal(t, uint32(0xFF00FF00), r.pixelAt(10, 12), "top row sits ascent above the baseline")
	assert.Equal(t, uint32(0xFF00FF00), r.pixelAt(17, 21))
	assert.Equal(t, zEmpty, r.zAt(18, 12))
	assert.Equal(t, zEmpty, r.zAt(10, 22))

	r.PlotText(30, 40, 5, 0xFF00FF00, 0, "ab", f)
	assert.Equal(t, 1, g.calls)

	r.ClearFontCache()
	r.PlotText(30, 40, 5, 0xFF00FF00, 0, "ab", f)
	assert.Equal(t, 2, g.calls)
}

func TestTextIsDepthTested(t *testing.T) {
	r := newTestRenderer(t, 64, 64, WithGlyphSource(&boxGlyphs{}))
	f := Font{Face: "mono", Size: 12}
	r.PlotText(10, 20, 5, 0xFF00FF00, 0, "a", f)
	r.PlotText(10, 20, 50, 0xFFFF0000, 0, "a", f)
	assert.Equal(t, uint32(0xFF00FF00), r.pixelAt(11, 15))
}

func TestTextWithoutGlyphSourceIsSkipped(t *testing.T) {
	r := newTestRenderer(t, 32, 32)
	r.PlotText(2, 20, 5, 0xFF00FF00, 0, "ab", Font{Face: "mono", Size: 12})
	assert.False(t, r.HasContent())
}

func TestParseMarkup(t *testing.T) {
	runs := parseMarkup("H<sub>2</sub>O")
	require.Len(t, runs, 3)
	assert.Equal(t, textRun{Text: "H"}, runs[0])
	assert.Equal(t, textRun{Text: "2", Shift: shiftSub}, runs[1])
	assert.Equal(t, textRun{Text: "O"}, runs[2])

	runs = parseMarkup("<color #FF0000>red</color>x<sup>+</sup>")
	require.Len(t, runs, 3)
	assert.Equal(t, textRun{Text: "red", Argb: 0xFFFF0000}, runs[0])
	assert.Equal(t, textRun{Text: "x"}, runs[1])
	assert.Equal(t, textRun{Text: "+", Shift: shiftSup}, runs[2])

	assert.Equal(t, []textRun{{Text: "a<b>c"}}, parseMarkup("a<b>c"))
	assert.Equal(t, []textRun{{Text: "a<color blue>c"}}, parseMarkup("a<color blue>c"))
	assert.Equal(t, []textRun{{Text: "x<"}}, parseMarkup("x<"))
}

func TestMarkupRunsAdvanceAndShift(t *testing.T) {
	r := newTestRenderer(t, 64, 64, WithGlyphSource(&boxGlyphs{}))
	f := Font{Face: "mono", Size: 12}
	r.PlotText(10, 20, 5, 0xFF00FF00, 0, "<color #0000FF>a</color>b<sub>c</sub>", f)

	assert.Equal(t, uint32(0xFF0000FF), r.pixelAt(11, 15), "colored run")
	assert.Equal(t, uint32(0xFF00FF00), r.pixelAt(15, 15), "second run follows the first")
	// subscript drops by ascent/3
	assert.Equal(t, uint32(0xFF00FF00), r.pixelAt(19, 14))
	assert.Equal(t, zEmpty, r.zAt(19, 13))
}

func TestRenderAllStringsEmptiesQueue(t *testing.T) {
	g := &boxGlyphs{}
	r := newTestRenderer(t, 64, 64, WithGlyphSource(g))
	r.SetColix(colix.Red)
	r.DrawString("near", Font{Face: "mono", Size: 12}, 4, 20, 5, 5, 0)
	r.DrawStringNoSlab("far", Font{}, 4, 40, 90, 0)
	require.Len(t, r.strings, 2)
	assert.Equal(t, "mono", r.strings[1].font.Face, "a zero font uses the last one")

	r.RenderAllStrings()
	assert.Empty(t, r.strings)
	assert.Equal(t, 5, r.zAt(4, 12))
	assert.Equal(t, 90, r.zAt(4, 32))
	assert.Equal(t, 2, g.calls)
}

func TestFontKeyDistinguishesStyle(t *testing.T) {
	a := Font{Face: "sans", Size: 12}
	b := a
	b.Style = FontBold | FontItalic
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, 24.0, a.Scaled(2).Size)
	assert.Equal(t, 12.0, a.Size)
}
