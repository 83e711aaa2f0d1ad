package raster

import (
	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
	"g3d-renderer/internal/shade"
)

// Rgb16 is a color with 8.8 fixed-point channels for Gouraud stepping.
type Rgb16 struct {
	R, G, B int
}

// SetInt loads an ARGB color, biasing each channel to the middle of its
// fraction.
func (c *Rgb16) SetInt(argb uint32) {
	c.R = int(argb>>8&0xFF00) | 0x80
	c.G = int(argb&0xFF00) | 0x80
	c.B = int(argb<<8&0xFF00) | 0x80
}

// DiffDiv sets c to (a-b)/n per channel.
func (c *Rgb16) DiffDiv(a, b *Rgb16, n int) {
	c.R = (a.R - b.R) / n
	c.G = (a.G - b.G) / n
	c.B = (a.B - b.B) / n
}

// SetAndIncrement copies base into c, then advances base by inc.
func (c *Rgb16) SetAndIncrement(base, inc *Rgb16) {
	*c = *base
	base.R += inc.R
	base.G += inc.G
	base.B += inc.B
}

// Argb returns the opaque color.
func (c Rgb16) Argb() uint32 {
	return 0xFF000000 | uint32(c.R<<8&0xFF0000) | uint32(c.G&0xFF00) | uint32(c.B>>8&0xFF)
}

// triangleRenderer scan-converts triangles into west/east edge rasters
// and fills the spans between them. Spans on a shared edge overlap by a
// pixel so thin slivers never drop out.
type triangleRenderer struct {
	precision
	r *Renderer

	ax, ay, az [3]int
	axW, azW   []int
	axE, azE   []int
	spans      []zInterp
	rgbW, rgbE []Rgb16
	gouraud    [3]Rgb16
}

func (t *triangleRenderer) init(r *Renderer) {
	t.r = r
	t.grow(64)
}

func (t *triangleRenderer) grow(n int) {
	if n <= len(t.axW) {
		return
	}
	n = (n + 31) &^ 31
	t.axW = make([]int, n)
	t.azW = make([]int, n)
	t.axE = make([]int, n)
	t.azE = make([]int, n)
	t.spans = make([]zInterp, n)
	t.rgbW = make([]Rgb16, n)
	t.rgbE = make([]Rgb16, n)
}

func (t *triangleRenderer) setGouraud(a, b, c uint32) {
	t.gouraud[0].SetInt(a)
	t.gouraud[1].SetInt(b)
	t.gouraud[2].SetInt(c)
}

type edgeSide int

const (
	west edgeSide = iota
	east
)

func (t *triangleRenderer) fill(a, b, c Point, useGouraud bool) {
	r := t.r
	t.ax = [3]int{a.X, b.X, c.X}
	t.ay = [3]int{a.Y, b.Y, c.Y}
	t.az = [3]int{a.Z, b.Z, c.Z}
	if a.Z <= 1 || b.Z <= 1 || c.Z <= 1 {
		return
	}
	cc0 := r.ClipCode3(a.X, a.Y, a.Z)
	cc1 := r.ClipCode3(b.X, b.Y, b.Z)
	cc2 := r.ClipCode3(c.X, c.Y, c.Z)
	clipped := cc0|cc1|cc2 != 0
	if clipped && (cc0|cc1|cc2 == ClipHuge || cc0&cc1&cc2 != 0) {
		return
	}
	ay := &t.ay
	iMin := 0
	if ay[1] < ay[iMin] {
		iMin = 1
	}
	if ay[2] < ay[iMin] {
		iMin = 2
	}
	iMid, iMax := (iMin+1)%3, (iMin+2)%3
	if ay[iMid] > ay[iMax] {
		iMid, iMax = iMax, iMid
	}
	yMin, yMid, yMax := ay[iMin], ay[iMid], ay[iMax]
	nLines := yMax - yMin + 1
	if nLines > r.height*3 {
		return
	}
	t.grow(nLines)
	dyMidMin := yMid - yMin
	switch {
	case dyMidMin == 0:
		if t.ax[iMid] < t.ax[iMin] {
			iMid, iMin = iMin, iMid
		}
		t.edge(nLines, iMin, iMax, west, 0, useGouraud)
		t.edge(nLines, iMid, iMax, east, 0, useGouraud)
	case yMid == yMax:
		if t.ax[iMax] < t.ax[iMid] {
			iMid, iMax = iMax, iMid
		}
		t.edge(nLines, iMin, iMid, west, 0, useGouraud)
		t.edge(nLines, iMin, iMax, east, 0, useGouraud)
	default:
		dxMaxMin := t.ax[iMax] - t.ax[iMin]
		round := nLines / 2
		if dxMaxMin < 0 {
			round = -round
		}
		axSplit := t.ax[iMin] + (dxMaxMin*dyMidMin+round)/nLines
		// The second segment regenerates the shared row and drops it.
		if axSplit < t.ax[iMid] {
			t.edge(nLines, iMin, iMax, west, 0, useGouraud)
			t.edge(dyMidMin+1, iMin, iMid, east, 0, useGouraud)
			t.edge(nLines-dyMidMin, iMid, iMax, east, dyMidMin, useGouraud)
		} else {
			t.edge(dyMidMin+1, iMin, iMid, west, 0, useGouraud)
			t.edge(nLines-dyMidMin, iMid, iMax, west, dyMidMin, useGouraud)
			t.edge(nLines, iMin, iMax, east, 0, useGouraud)
		}
	}

	r.SetZMargin(5)
	pass2Row := r.pass2Flag01
	pass2Off := 1 - pass2Row
	i := 0
	if yMin < 0 {
		nLines += yMin
		i -= yMin
		yMin = 0
	}
	if yMin+nLines > r.height {
		nLines = r.height - yMin
	}
	for ; nLines > pass2Row; nLines, yMin, i = nLines-1, yMin+1, i+1 {
		xW := t.axW[i]
		count := t.axE[i] - xW + pass2Off
		if !clipped && pass2Row == 1 && count < 0 {
			// long thin slivers can invert; keep one pixel
			count = 1
			xW--
		}
		if count <= 0 {
			continue
		}
		switch {
		case useGouraud && clipped:
			r.plotPixelsClippedRaster(count, xW, yMin, t.azW[i], t.azE[i], &t.rgbW[i], &t.rgbE[i])
		case useGouraud:
			r.plotPixelsUnclippedRaster(count, xW, yMin, t.azW[i], t.azE[i], &t.rgbW[i], &t.rgbE[i])
		case clipped:
			r.plotPixelsClippedRasterBits(count, xW, yMin, t.azW[i], t.azE[i], nil, nil, t.spans[i])
		default:
			r.plotPixelsUnclippedRasterBits(count, xW, yMin, nil, nil, t.spans[i])
		}
	}
	r.SetZMargin(0)
}

// edge walks the edge from vertex iN down to iS with a Bresenham error
// term, writing dy rows starting at row start. When start > 0 the first
// row is shared with the previous segment and skipped.
func (t *triangleRenderer) edge(dy, iN, iS int, side edgeSide, start int, useGouraud bool) {
	axs, azs := t.axW, t.azW
	if side == east {
		axs, azs = t.axE, t.azE
	}
	xN, xS := t.ax[iN], t.ax[iS]
	dx := xS - xN
	x := xN
	inc, width, errTerm := 1, dx, 0
	if dx < 0 {
		inc, width, errTerm = -1, -dx, 1-dy
	}
	majorInc, majorErr := 0, width
	if width > dy {
		majorInc = dx / dy
		majorErr = width % dy
	}
	zi := t.rastAB(t.ay[iN], t.az[iN], t.ay[iS], t.az[iS])
	last := dy - 1
	for y, zy, i := 0, t.ay[iN], start; y <= last; y, zy, i = y+1, zy+1, i+1 {
		if i == 0 || i > start {
			if y == last {
				axs[i] = xS
			} else {
				axs[i] = x
			}
			azs[i] = zi.z(zy)
			if side == east {
				t.spans[i] = t.rastAB(t.axW[i], t.azW[i], axs[i], azs[i])
			}
		}
		x += majorInc
		errTerm += majorErr
		if errTerm > 0 {
			x += inc
			errTerm -= dy
		}
	}
	if !useGouraud {
		return
	}
	rgbs := t.rgbW
	if side == east {
		rgbs = t.rgbE
	}
	base := t.gouraud[iN]
	var step Rgb16
	step.DiffDiv(&t.gouraud[iS], &base, dy)
	for i := start; i < start+dy; i++ {
		rgbs[i].SetAndIncrement(&base, &step)
	}
}

// triangleShadeIndex shades a triangle by its face normal. Back-facing
// solid faces return -1.
func (r *Renderer) triangleShadeIndex(a, b, c mathutil.Vec3, solid bool) int {
	n := b.Sub(a).Cross(c.Sub(a))
	switch {
	case n[2] < 0:
		return r.shader.Index(float32(n[0]), float32(n[1]), float32(-n[2]))
	case solid:
		return -1
	}
	return r.shader.Index(float32(-n[0]), float32(-n[1]), float32(n[2]))
}

func (r *Renderer) fillTriangleVec(a, b, c mathutil.Vec3, useGouraud bool) {
	r.triangle.fill(screenPoint(a), screenPoint(b), screenPoint(c), useGouraud)
}

// DrawTriangleEdges outlines a triangle with per-vertex colors. Bits of
// check select edges: 1 is AB, 2 is BC and 4 is AC.
func (r *Renderer) DrawTriangleEdges(a Point, colixA colix.Colix, b Point, colixB colix.Colix, c Point, colixC colix.Colix, check int) {
	if check&1 != 0 {
		r.DrawLine(colixA, colixB, a, b)
	}
	if check&2 != 0 {
		r.DrawLine(colixB, colixC, b, c)
	}
	if check&4 != 0 {
		r.DrawLine(colixA, colixC, a, c)
	}
}

// FillTriangleTwoSided fills a flat triangle shaded by a normix.
func (r *Renderer) FillTriangleTwoSided(normix int16, a, b, c mathutil.Vec3) {
	r.setColorNoisy(r.ShadeIndex(normix))
	r.fillTriangleVec(a, b, c, false)
}

// FillTriangleFlat fills a triangle shaded by its own normal. Solid
// triangles facing away are culled; others get an undithered shade.
func (r *Renderer) FillTriangleFlat(a, b, c mathutil.Vec3, solid bool) {
	i := r.triangleShadeIndex(a, b, c, solid)
	if i < 0 {
		return
	}
	if solid {
		r.setColorNoisy(i)
	} else {
		r.setColor(r.shadesCurrent[i])
	}
	r.fillTriangleVec(a, b, c, false)
}

// FillTriangleShaded fills a triangle in the current color, optionally
// shading it first. With c nil the AB direction alone picks the shade.
func (r *Renderer) FillTriangleShaded(a, b mathutil.Vec3, c *mathutil.Vec3, doShade bool) {
	if doShade {
		v := b.Sub(a)
		var i int
		if c == nil {
			i = r.shader.Index(float32(-v[0]), float32(-v[1]), float32(v[2]))
		} else {
			v = v.Cross(c.Sub(a))
			if v[2] >= 0 {
				i = r.shader.Index(float32(-v[0]), float32(-v[1]), float32(v[2]))
			} else {
				i = r.shader.Index(float32(v[0]), float32(v[1]), float32(-v[2]))
			}
		}
		r.setColorNoisy(min(i, shade.IndexNoisyLimit))
	}
	if c == nil {
		return
	}
	r.fillTriangleVec(a, b, *c, false)
}

// Vertex is a triangle corner with its color and normix.
type Vertex struct {
	Colix  colix.Colix
	Normix int16
}

// FillTriangle fills an integer triangle, Gouraud shaded unless all
// three corners share color and normal.
func (r *Renderer) FillTriangle(a Point, va Vertex, b Point, vb Vertex, c Point, vc Vertex) {
	r.triangle.fill(a, b, c, r.checkGouraud(va, vb, vc))
}

// FillTriangleBits is FillTriangle on float screen points.
func (r *Renderer) FillTriangleBits(a mathutil.Vec3, va Vertex, b mathutil.Vec3, vb Vertex, c mathutil.Vec3, vc Vertex) {
	r.fillTriangleVec(a, b, c, r.checkGouraud(va, vb, vc))
}

func (r *Renderer) checkGouraud(a, b, c Vertex) bool {
	if !r.isPass2 && a == b && a == c {
		i := r.ShadeIndex(a.Normix)
		if a.Colix != r.colixCurrent || r.currentShadeIndex != i {
			r.currentShadeIndex = -1
			r.SetColix(a.Colix)
			r.setColorNoisy(i)
		}
		return false
	}
	r.setTriangleTranslucency(a.Colix, b.Colix, c.Colix)
	r.triangle.setGouraud(
		r.shades(a.Colix)[r.ShadeIndex(a.Normix)],
		r.shades(b.Colix)[r.ShadeIndex(b.Normix)],
		r.shades(c.Colix)[r.ShadeIndex(c.Normix)])
	return true
}

// setTriangleTranslucency averages the corner translucency levels in the
// translucent pass.
func (r *Renderer) setTriangleTranslucency(a, b, c colix.Colix) {
	if !r.isPass2 {
		return
	}
	level := func(x colix.Colix) int {
		return int(x & colix.TranslucentMask &^ colix.Transparent)
	}
	mask := colix.Colix((level(a)+level(b)+level(c))/3) & colix.TranslucentMask
	r.translucencyMask = uint32(mask)<<colix.AlphaShift | 0xFFFFFF
}

// FillQuadrilateral fills ABCD as two triangles sharing one shade.
func (r *Renderer) FillQuadrilateral(a, b, c, d mathutil.Vec3, solid bool) {
	i := r.triangleShadeIndex(a, b, c, solid)
	if i < 0 {
		return
	}
	r.setColorNoisy(i)
	r.fillTriangleVec(a, b, c, false)
	r.fillTriangleVec(a, c, d, false)
}
