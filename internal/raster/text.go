package raster

import (
	"cmp"
	"image"
	"slices"
	"strconv"
	"strings"

	"g3d-renderer/internal/colix"
)

// FontStyle is a bit set of font variants.
type FontStyle uint8

const (
	FontBold FontStyle = 1 << iota
	FontItalic
)

// Font names a face at a pixel size.
type Font struct {
	Face  string
	Size  float64
	Style FontStyle
}

// Key identifies the font in glyph caches.
func (f Font) Key() string {
	return f.Face + "/" + strconv.FormatFloat(f.Size, 'f', -1, 64) + "/" + strconv.Itoa(int(f.Style))
}

// Scaled returns f at k times the size.
func (f Font) Scaled(k float64) Font {
	f.Size *= k
	return f
}

// GlyphSource measures and rasterizes text. Rasterize returns a coverage
// mask whose origin is the top left of the text's line box.
type GlyphSource interface {
	Metrics(f Font) (ascent, descent, height int)
	Width(f Font, s string) int
	Rasterize(f Font, s string) *image.Alpha
}

// glyphLevels maps the top three bits of coverage to a translucency
// level for writeImagePixel; empty coverage stays 0.
var glyphLevels = [8]byte{7, 6, 5, 4, 3, 2, 1, 8}

// textMap is a rasterized string quantized to translucency levels.
type textMap struct {
	width, height int
	ascent        int
	levels        []byte
}

func quantize(a *image.Alpha, ascent int) *textMap {
	b := a.Bounds()
	m := &textMap{width: b.Dx(), height: b.Dy(), ascent: ascent}
	m.levels = make([]byte, m.width*m.height)
	for y := 0; y < m.height; y++ {
		o := a.PixOffset(b.Min.X, b.Min.Y+y)
		row := a.Pix[o : o+m.width]
		for x, v := range row {
			if v != 0 {
				m.levels[y*m.width+x] = glyphLevels[v>>5]
			}
		}
	}
	return m
}

type textKey struct {
	font string
	text string
}

// textString is a queued label.
type textString struct {
	text         string
	font         Font
	argb, bgArgb uint32
	x, y, z      int
}

// textRenderer plots strings from cached coverage maps.
type textRenderer struct {
	r     *Renderer
	cache map[textKey]*textMap
}

func (t *textRenderer) init(r *Renderer) { t.r = r }

func (t *textRenderer) clear() { t.cache = nil }

func (t *textRenderer) textMap(f Font, s string) *textMap {
	k := textKey{f.Key(), s}
	if m, ok := t.cache[k]; ok {
		return m
	}
	g := t.r.glyphs
	ascent, _, _ := g.Metrics(f)
	a := g.Rasterize(f, s)
	if a == nil {
		return nil
	}
	m := quantize(a, ascent)
	if t.cache == nil {
		t.cache = make(map[textKey]*textMap)
	}
	t.cache[k] = m
	return m
}

// plot draws s with its baseline at (x, y) and returns its width.
func (t *textRenderer) plot(x, y, z int, argb, bgArgb uint32, s string, f Font) int {
	r := t.r
	if r.glyphs == nil || s == "" {
		return 0
	}
	if r.antialiasThisFrame {
		f = f.Scaled(2)
	}
	if strings.IndexByte(s, '<') >= 0 {
		return t.plotRuns(x, y, z, argb, bgArgb, parseMarkup(s), f)
	}
	return t.plotMap(x, y, z, argb, bgArgb, s, f)
}

// plotMap draws markup-free text with f already scaled for the frame.
func (t *textRenderer) plotMap(x, y, z int, argb, bgArgb uint32, s string, f Font) int {
	r := t.r
	if s == "" {
		return 0
	}
	m := t.textMap(f, s)
	if m == nil {
		return 0
	}
	y -= m.ascent
	if x+m.width <= 0 || x >= r.width || y+m.height <= 0 || y >= r.height {
		return m.width
	}
	tLog := r.translucencyLog
	for i := 0; i < m.height; i++ {
		row := m.levels[i*m.width : (i+1)*m.width]
		for j, level := range row {
			switch {
			case level != 0:
				r.plotImagePixel(argb, x+j, y+i, z, int(level), bgArgb, tLog)
			case bgArgb != 0:
				r.plotImagePixel(bgArgb, x+j, y+i, z, 8, bgArgb, tLog)
			}
		}
	}
	return m.width
}

func (t *textRenderer) plotRuns(x, y, z int, argb, bgArgb uint32, runs []textRun, f Font) int {
	ascent, _, _ := t.r.glyphs.Metrics(f)
	x0 := x
	for _, run := range runs {
		c := argb
		if run.Argb != 0 {
			c = run.Argb
		}
		dy := 0
		switch run.Shift {
		case shiftSub:
			dy = ascent / 3
		case shiftSup:
			dy = -ascent / 3
		}
		x += t.plotMap(x, y+dy, z, c, bgArgb, run.Text, f)
	}
	return x - x0
}

type shift int8

const (
	shiftNone shift = iota
	shiftSub
	shiftSup
)

// textRun is a span of text sharing one baseline shift and color. A zero
// Argb keeps the string's color.
type textRun struct {
	Text  string
	Shift shift
	Argb  uint32
}

// parseMarkup splits s at <sub>, <sup>, their closing tags, <color
// #RRGGBB> and </color>. Unknown tags are kept as text.
func parseMarkup(s string) []textRun {
	var runs []textRun
	cur := textRun{}
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			cur.Text = b.String()
			runs = append(runs, cur)
			b.Reset()
		}
	}
	for i := 0; i < len(s); {
		if s[i] != '<' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		tag := s[i+1 : i+end]
		next := cur
		switch {
		case tag == "sub":
			next.Shift = shiftSub
		case tag == "sup":
			next.Shift = shiftSup
		case tag == "/sub" || tag == "/sup":
			next.Shift = shiftNone
		case tag == "/color":
			next.Argb = 0
		case strings.HasPrefix(tag, "color "):
			argb, ok := parseHexColor(strings.TrimSpace(tag[len("color "):]))
			if !ok {
				b.WriteString(s[i : i+end+1])
				i += end + 1
				continue
			}
			next.Argb = argb
		default:
			b.WriteString(s[i : i+end+1])
			i += end + 1
			continue
		}
		flush()
		cur = next
		i += end + 1
	}
	flush()
	return runs
}

func parseHexColor(s string) (uint32, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return 0xFF000000 | uint32(v), true
}

// SetFont sets the font used when DrawString is given a zero Font.
func (r *Renderer) SetFont(f Font) { r.currentFont = f }

// ClearFontCache drops all cached text maps.
func (r *Renderer) ClearFontCache() { r.text.clear() }

// DrawString queues s at baseline (x, y, z) in the current color unless
// zSlab is outside the slab. A translucent bg colors antialiased edges.
func (r *Renderer) DrawString(s string, f Font, x, y, z, zSlab int, bg colix.Colix) {
	r.currentShadeIndex = 0
	if s == "" || r.IsClippedZ(zSlab) {
		return
	}
	r.DrawStringNoSlab(s, f, x, y, z, bg)
}

// DrawStringNoSlab queues s without a slab test.
func (r *Renderer) DrawStringNoSlab(s string, f Font, x, y, z int, bg colix.Colix) {
	if s == "" {
		return
	}
	if f == (Font{}) {
		f = r.currentFont
	} else {
		r.currentFont = f
	}
	var bgArgb uint32
	if bg.IsTranslucent() {
		bgArgb = r.colorArgb(bg)&0xFFFFFF | uint32(bg&colix.TranslucentMask)<<colix.AlphaShift
	}
	r.strings = append(r.strings, textString{
		text: s, font: f, argb: r.argbCurrent, bgArgb: bgArgb, x: x, y: y, z: z,
	})
}

// RenderAllStrings plots queued strings far to near and empties the
// queue.
func (r *Renderer) RenderAllStrings() {
	slices.SortStableFunc(r.strings, func(a, b textString) int { return cmp.Compare(b.z, a.z) })
	for _, ts := range r.strings {
		r.PlotText(ts.x, ts.y, ts.z, ts.argb, ts.bgArgb, ts.text, ts.font)
	}
	r.strings = r.strings[:0]
}

// PlotText draws text immediately with its baseline at (x, y).
func (r *Renderer) PlotText(x, y, z int, argb, bgArgb uint32, text string, f Font) {
	r.text.plot(x, y, z, argb, bgArgb, text, f)
}
