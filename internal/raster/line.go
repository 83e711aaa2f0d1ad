package raster

import (
	"math"

	"github.com/chewxy/math32"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
	"g3d-renderer/internal/shade"
)

// Trimmed-line visibility.
const (
	lineUnclipped = iota
	lineClipped
	lineOffscreen
)

// lineBits is the minor-axis step pattern for one slope: bit i set means
// the line steps on the minor axis after major-axis pixel i.
type lineBits []uint64

func newLineBits(n int) lineBits { return make(lineBits, (n+63)/64) }

func (b lineBits) set(i int)      { b[i>>6] |= 1 << (i & 63) }
func (b lineBits) get(i int) bool { return b[i>>6]&(1<<(i&63)) != 0 }

// LineCache holds step patterns keyed by slope. Patterns depend on the
// raster size, so the cache is cleared whenever buffers are released.
type LineCache struct {
	bits map[float32]lineBits
}

// Len reports the number of cached slopes.
func (c *LineCache) Len() int { return len(c.bits) }

// Clear drops every cached pattern.
func (c *LineCache) Clear() { c.bits = nil }

func (c *LineCache) get(slope float32) (lineBits, bool) {
	b, ok := c.bits[slope]
	return b, ok
}

func (c *LineCache) put(slope float32, b lineBits) {
	if c.bits == nil {
		c.bits = make(map[float32]lineBits)
	}
	c.bits[slope] = b
}

// lineRenderer draws Bresenham lines. The logical endpoints drive the
// stepping; the Cohen-Sutherland trimmed endpoints (x1t..z2t) only bound
// which steps are written, so adjacent segments stay crack-free.
type lineRenderer struct {
	precision
	r     *Renderer
	cache LineCache

	bits      lineBits
	slope     float32
	lineTypeX bool
	nBits     int

	x1t, y1t, z1t int
	x2t, y2t, z2t int
}

func (l *lineRenderer) init(r *Renderer) { l.r = r }

// setLineBits selects the cached step pattern for the slope dy/dx.
func (l *lineRenderer) setLineBits(dx, dy float32) {
	switch {
	case dx != 0:
		l.slope = dy / dx
	case dy >= 0:
		l.slope = math.MaxFloat32
	default:
		l.slope = -math.MaxFloat32
	}
	l.lineTypeX = l.slope <= 1 && l.slope >= -1
	if l.lineTypeX {
		l.nBits = l.r.width
	} else {
		l.nBits = l.r.height
	}
	if b, ok := l.cache.get(l.slope); ok {
		l.bits = b
		return
	}
	b := newLineBits(l.nBits)
	dy = math32.Abs(dy)
	dx = math32.Abs(dx)
	if dy > dx {
		dx, dy = dy, dx
	}
	var twoDError float32
	twoDx, twoDy := dx+dx, dy+dy
	for i := 0; i < l.nBits; i++ {
		twoDError += twoDy
		if twoDError > dx {
			b.set(i)
			twoDError -= twoDx
		}
	}
	l.cache.put(l.slope, b)
	l.bits = b
}

func (l *lineRenderer) setTrim(xA, yA, zA, xB, yB, zB int) {
	l.x1t, l.y1t, l.z1t = xA, yA, zA
	l.x2t, l.y2t, l.z2t = xB, yB, zB
}

// trim runs Cohen-Sutherland clipping on the trimmed endpoints and reports
// their visibility. Intersections truncate toward zero.
func (l *lineRenderer) trim() int {
	r := l.r
	cc1 := r.ClipCode3(l.x1t, l.y1t, l.z1t)
	cc2 := r.ClipCode3(l.x2t, l.y2t, l.z2t)
	c := cc1 | cc2
	if c == 0 {
		return lineUnclipped
	}
	if c == ClipHuge {
		return lineOffscreen
	}
	xLast, yLast := r.xLast, r.yLast
	slab, depth := r.slab, r.depth
	for {
		if cc1&cc2 != 0 {
			return lineOffscreen
		}
		dx := float32(l.x2t - l.x1t)
		dy := float32(l.y2t - l.y1t)
		dz := float32(l.z2t - l.z1t)
		if cc1 != 0 {
			l.x1t, l.y1t, l.z1t = clipEnd(cc1, l.x1t, l.y1t, l.z1t, dx, dy, dz, xLast, yLast, slab, depth)
			cc1 = r.ClipCode3(l.x1t, l.y1t, l.z1t)
		} else {
			l.x2t, l.y2t, l.z2t = clipEnd(cc2, l.x2t, l.y2t, l.z2t, dx, dy, dz, xLast, yLast, slab, depth)
			cc2 = r.ClipCode3(l.x2t, l.y2t, l.z2t)
		}
		if cc1|cc2 == 0 {
			return lineClipped
		}
	}
}

// clipEnd moves one endpoint onto the first boundary its code violates.
func clipEnd(cc, x, y, z int, dx, dy, dz float32, xLast, yLast, slab, depth int) (int, int, int) {
	switch {
	case cc&ClipXLT != 0:
		y += int(float32(-x) * dy / dx)
		z += int(float32(-x) * dz / dx)
		x = 0
	case cc&ClipXGT != 0:
		y += int(float32(xLast-x) * dy / dx)
		z += int(float32(xLast-x) * dz / dx)
		x = xLast
	case cc&ClipYLT != 0:
		x += int(float32(-y) * dx / dy)
		z += int(float32(-y) * dz / dy)
		y = 0
	case cc&ClipYGT != 0:
		x += int(float32(yLast-y) * dx / dy)
		z += int(float32(yLast-y) * dz / dy)
		y = yLast
	case cc&ClipZLT != 0:
		x += int(float32(slab-z) * dx / dz)
		y += int(float32(slab-z) * dy / dz)
		z = slab
	default:
		x += int(float32(depth-z) * dx / dz)
		y += int(float32(depth-z) * dy / dz)
		z = depth
	}
	return x, y, z
}

// plotLineOld draws A to B with linear z. The second color takes over at
// the midpoint; a zero color leaves its half undrawn.
func (l *lineRenderer) plotLineOld(argbA, argbB uint32, xA, yA, zA, xB, yB, zB int) {
	l.setTrim(xA, yA, zA, xB, yB, zB)
	clipped := true
	switch l.trim() {
	case lineUnclipped:
		clipped = false
	case lineOffscreen:
		return
	}
	l.plotLineClippedOld(argbA, argbB, xA, yA, zA, xB-xA, yB-yA, zB-zA, clipped, 0, 0)
}

// plotLineDeltaOld is plotLineOld from a start point and a delta; clipped
// false skips the visibility test.
func (l *lineRenderer) plotLineDeltaOld(argbA, argbB uint32, xA, yA, zA, dx, dy, dz int, clipped bool) {
	l.setTrim(xA, yA, zA, xA+dx, yA+dy, zA+dz)
	if clipped {
		switch l.trim() {
		case lineOffscreen:
			return
		case lineUnclipped:
			clipped = false
		}
	}
	l.plotLineClippedOld(argbA, argbB, xA, yA, zA, dx, dy, dz, clipped, 0, 0)
}

// plotLineClippedOld steps the logical line with 10-bit fractional z,
// writing only the steps inside the trimmed segment.
func (l *lineRenderer) plotLineClippedOld(argb1, argb2 uint32, x, y, z, dx, dy, dz int, clipped bool, run, rise int) {
	r := l.r
	zb := r.platform.Z
	width := r.width
	runIndex := 0
	if run == 0 {
		rise = math.MaxInt32
		run = 1
	}
	offset := y*width + x
	offsetMax := r.bufferSize
	argb := argb1
	p := r.pixel
	if argb != 0 && !clipped && offset >= 0 && offset < offsetMax && z < zb[offset] {
		p.WritePixel(offset, z, argb)
	}
	if dx == 0 && dy == 0 {
		return
	}
	xInc := 1
	yOffsetInc := width
	x2 := x + dx
	y2 := y + dy
	if dx < 0 {
		dx = -dx
		xInc = -1
	}
	if dy < 0 {
		dy = -dy
		yOffsetInc = -width
	}
	twoDx, twoDy := dx+dx, dy+dy
	zScaled := z << 10

	major := dx
	majorInc, minorInc := xInc, yOffsetInc
	n1 := abs(x2-l.x2t) - 1
	n2 := abs(x2-l.x1t) - 1
	twoMajor, twoMinor := twoDx, twoDy
	if dy > dx {
		major = dy
		majorInc, minorInc = yOffsetInc, xInc
		n1 = abs(y2-l.y2t) - 1
		n2 = abs(y2-l.y1t) - 1
		twoMajor, twoMinor = twoDy, twoDx
	}
	round := major - 1
	if dz < 0 {
		round = -round
	}
	zInc := (dz<<10 + round) / major
	errAcc := 0
	nMid := (major - 1) / 2
	for n := major - 2; n >= n1; n-- {
		if n == nMid {
			argb = argb2
			if argb == 0 {
				return
			}
		}
		offset += majorInc
		zScaled += zInc
		errAcc += twoMinor
		if errAcc > major {
			offset += minorInc
			errAcc -= twoMajor
		}
		if argb != 0 && n < n2 && offset >= 0 && offset < offsetMax && runIndex < rise {
			if zc := zScaled >> 10; zc < zb[offset] {
				p.WritePixel(offset, zc, argb)
			}
		}
		runIndex = (runIndex + 1) % run
	}
}

// noisyShades holds a shade and its dither neighbours.
type noisyShades struct{ c, up, dn uint32 }

func shadeTriple(shades []uint32, i int) noisyShades {
	up := i
	if i < shade.IndexLast {
		up = i + 1
	}
	dn := i
	if i > 0 {
		dn = i - 1
	}
	return noisyShades{c: shades[i], up: shades[up], dn: shades[dn]}
}

func (s noisyShades) pick(rand8 int) uint32 {
	switch {
	case rand8 < 85:
		return s.dn
	case rand8 > 170:
		return s.up
	}
	return s.c
}

// plotLineDeltaAOld draws one generatrix of a two-colored cylinder with
// dithered shading. screenMask bit 0 screens the first half and bit 1 the
// second.
func (l *lineRenderer) plotLineDeltaAOld(shades1, shades2 []uint32, screenMask, shadeIndex, x, y, z, dx, dy, dz int, clipped bool) {
	l.setTrim(x, y, z, x+dx, y+dy, z+dz)
	if clipped {
		switch l.trim() {
		case lineOffscreen:
			return
		case lineUnclipped:
			clipped = false
		}
	}
	r := l.r
	zb := r.platform.Z
	width := r.width
	offset := y*width + x
	offsetMax := r.bufferSize
	s1 := shadeTriple(shades1, shadeIndex)
	s2 := shadeTriple(shades2, shadeIndex)
	cur := s1
	p := r.pixel
	if screenMask != 0 {
		p = r.setScreened(screenMask&1 == 1)
		r.currentShadeIndex = 0
	}
	if cur.c != 0 && !clipped && offset >= 0 && offset < offsetMax && z < zb[offset] {
		p.WritePixel(offset, z, cur.c)
	}
	if dx == 0 && dy == 0 {
		return
	}
	xInc := 1
	yOffsetInc := width
	x2 := x + dx
	y2 := y + dy
	if dx < 0 {
		dx = -dx
		xInc = -1
	}
	if dy < 0 {
		dy = -dy
		yOffsetInc = -width
	}
	major := dx
	majorInc, minorInc := xInc, yOffsetInc
	twoMajor, twoMinor := dx+dx, dy+dy
	n1 := abs(x2-l.x2t) - 1
	n2 := abs(x2-l.x1t) - 1
	if dy > dx {
		major = dy
		majorInc, minorInc = yOffsetInc, xInc
		twoMajor, twoMinor = dy+dy, dx+dx
		n1 = abs(y2-l.y2t) - 1
		n2 = abs(y2-l.y1t) - 1
	}
	round := major - 1
	if dz < 0 {
		round = -round
	}
	zInc := (dz<<10 + round) / major
	zScaled := z << 10
	errAcc := 0
	nMid := (major - 1) / 2
	for n := major - 2; n >= n1; n-- {
		if n == nMid {
			cur = s2
			if cur.c == 0 {
				return
			}
			if screenMask%3 != 0 {
				p = r.setScreened(screenMask&2 == 2)
				r.currentShadeIndex = 0
			}
		}
		offset += majorInc
		zScaled += zInc
		errAcc += twoMinor
		if errAcc > major {
			offset += minorInc
			errAcc -= twoMajor
		}
		if cur.c != 0 && n < n2 && offset >= 0 && offset < offsetMax {
			if zc := zScaled >> 10; zc < zb[offset] {
				p.WritePixel(offset, zc, cur.pick(r.shader.NextRandom8Bit()))
			}
		}
	}
}

// plotLineDeltaABits draws a dithered generatrix stepped by the cached
// line bits, with depth from the projection-aware interpolator. The caller
// has set the line bits for the cylinder axis.
func (l *lineRenderer) plotLineDeltaABits(shades1, shades2 []uint32, shadeIndex int, a, b Point, zi zInterp, screenMask int, clipped bool) {
	x, y := a.X, a.Y
	dx := b.X - x
	dy := b.Y - y
	l.setTrim(x, y, a.Z, b.X, b.Y, b.Z)
	if clipped && l.trim() == lineOffscreen {
		return
	}
	r := l.r
	zb := r.platform.Z
	width := r.width
	s1 := shadeTriple(shades1, shadeIndex)
	s2 := shadeTriple(shades2, shadeIndex)
	offset := y*width + x
	offsetMax := r.bufferSize
	var i0, iMid, i1, i2, iInc, xInc, yOffsetInc int
	if l.lineTypeX {
		i0, i1, i2 = x, l.x1t, l.x2t
		iMid = x + dx/2
		iInc = sign(dx)
		xInc = iInc
		yOffsetInc = width * sign(dy)
	} else {
		i0, i1, i2 = y, l.y1t, l.y2t
		iMid = y + dy/2
		iInc = sign(dy)
		xInc = width * sign(dy)
		yOffsetInc = sign(dx)
	}
	cur := s1
	inWindow := false
	p := r.pixel
	if screenMask != 0 {
		p = r.setScreened(screenMask&1 == 1)
		r.currentShadeIndex = 0
	}
	for i, iBits := i0, i0; ; i, iBits = i+iInc, iBits+iInc {
		if i == i1 {
			inWindow = true
		}
		if i == iMid {
			cur = s2
			if cur.c == 0 {
				return
			}
			if screenMask%3 != 0 {
				p = r.setScreened(screenMask&2 == 2)
				r.currentShadeIndex = 0
			}
		}
		if cur.c != 0 && inWindow && offset >= 0 && offset < offsetMax {
			if zc := zi.z(i); zc < zb[offset] {
				p.WritePixel(offset, zc, cur.pick(r.shader.NextRandom8Bit()))
			}
		}
		if i == i2 {
			break
		}
		offset += xInc
		for iBits < 0 {
			iBits += l.nBits
		}
		if l.bits.get(iBits % l.nBits) {
			offset += yOffsetInc
		}
	}
}

// plotLineDeltaABitsFloat rounds float endpoints and interpolates depth
// from the unrounded ones.
func (l *lineRenderer) plotLineDeltaABitsFloat(shades1, shades2 []uint32, shadeIndex int, a, b mathutil.Vec3, screenMask int, clipped bool) {
	pa, pb := screenPoint(a), screenPoint(b)
	var zi zInterp
	if l.lineTypeX {
		zi = l.rastABFloat(float32(a[0]), float32(a[2]), float32(b[0]), float32(b[2]))
	} else {
		zi = l.rastABFloat(float32(a[1]), float32(a[2]), float32(b[1]), float32(b[2]))
	}
	l.plotLineDeltaABits(shades1, shades2, shadeIndex, pa, pb, zi, screenMask, clipped)
}

// plotLineDeltaABitsInt is the integer-endpoint variant.
func (l *lineRenderer) plotLineDeltaABitsInt(shades1, shades2 []uint32, shadeIndex int, a, b Point, screenMask int, clipped bool) {
	var zi zInterp
	if l.lineTypeX {
		zi = l.rastAB(a.X, a.Z, b.X, b.Z)
	} else {
		zi = l.rastAB(a.Y, a.Z, b.Y, b.Z)
	}
	l.plotLineDeltaABits(shades1, shades2, shadeIndex, a, b, zi, screenMask, clipped)
}

// plotLineBits draws A to B with projection-aware z, dashed when run > 0
// (rise pixels drawn out of every run). Points at or behind the eye
// (z <= 1) are rejected. With andClip the trimmed endpoints are written
// back into a and b.
func (l *lineRenderer) plotLineBits(argbA, argbB uint32, a, b *Point, run, rise int, andClip bool) {
	if a.Z <= 1 || b.Z <= 1 {
		return
	}
	zclipped := true
	l.setTrim(a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	switch l.trim() {
	case lineOffscreen:
		return
	case lineUnclipped:
		zclipped = false
	default:
		if andClip {
			*a = Point{l.x1t, l.y1t, l.z1t}
			*b = Point{l.x2t, l.y2t, l.z2t}
		}
	}
	r := l.r
	zb := r.platform.Z
	width := r.width
	runIndex := 0
	if run == 0 {
		rise = math.MaxInt32
		run = 1
	}
	x, y, z := a.X, a.Y, a.Z
	dx := b.X - x
	x2 := x + dx
	dy := b.Y - y
	y2 := y + dy
	offset := y*width + x
	offsetMax := r.bufferSize
	argb := argbA
	p := r.pixel
	if argb != 0 && !zclipped && offset >= 0 && offset < offsetMax && z < zb[offset] {
		p.WritePixel(offset, z, argb)
	}
	if dx == 0 && dy == 0 {
		return
	}
	xInc, yInc := 1, 1
	yOffsetInc := width
	if dx < 0 {
		dx = -dx
		xInc = -1
	}
	if dy < 0 {
		dy = -dy
		yOffsetInc = -width
		yInc = -1
	}
	twoDx, twoDy := dx+dx, dy+dy
	if dy <= dx {
		zi := l.rastAB(a.X, a.Z, b.X, b.Z)
		errAcc := 0
		n1 := abs(x2-l.x2t) - 1
		n2 := abs(x2-l.x1t) - 1
		nMid := (dx - 1) / 2
		for n := dx - 2; n >= n1; n-- {
			if n == nMid {
				argb = argbB
				if argb == 0 {
					return
				}
			}
			offset += xInc
			x += xInc
			errAcc += twoDy
			if errAcc > dx {
				offset += yOffsetInc
				errAcc -= twoDx
			}
			if argb != 0 && n < n2 && offset >= 0 && offset < offsetMax && runIndex < rise {
				if zc := zi.z(x); zc < zb[offset] {
					p.WritePixel(offset, zc, argb)
				}
			}
			runIndex = (runIndex + 1) % run
		}
		return
	}
	zi := l.rastAB(a.Y, a.Z, b.Y, b.Z)
	errAcc := 0
	n1 := abs(y2-l.y2t) - 1
	n2 := abs(y2-l.y1t) - 1
	nMid := (dy - 1) / 2
	for n := dy - 2; n >= n1; n-- {
		if n == nMid {
			argb = argbB
			if argb == 0 {
				return
			}
		}
		offset += yOffsetInc
		y += yInc
		errAcc += twoDx
		if errAcc > dy {
			offset += xInc
			errAcc -= twoDy
		}
		if argb != 0 && n < n2 && offset >= 0 && offset < offsetMax && runIndex < rise {
			if zc := zi.z(y); zc < zb[offset] {
				p.WritePixel(offset, zc, argb)
			}
		}
		runIndex = (runIndex + 1) % run
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v >= 0 {
		return 1
	}
	return -1
}

// screenPoint rounds a float screen point half up on each axis.
func screenPoint(v mathutil.Vec3) Point {
	return Point{
		X: roundf(float32(v[0])),
		Y: roundf(float32(v[1])),
		Z: roundf(float32(v[2])),
	}
}

// DrawLine draws A to B, colored colixA for the first half and colixB for
// the second. A colix not drawn in this pass leaves its half empty.
func (r *Renderer) DrawLine(colixA, colixB colix.Colix, a, b Point) {
	if !r.SetColix(colixA) {
		colixA = 0
	}
	argbA := r.argbCurrent
	if !r.SetColix(colixB) {
		colixB = 0
	}
	if colixA == 0 && colixB == 0 {
		return
	}
	if colixA == 0 {
		argbA = 0
	}
	argbB := r.argbCurrent
	if colixB == 0 {
		argbB = 0
	}
	r.line.plotLineOld(argbA, argbB, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
}

// DrawLineXYZ draws a line in the current color.
func (r *Renderer) DrawLineXYZ(x1, y1, z1, x2, y2, z2 int) {
	r.line.plotLineOld(r.argbCurrent, r.argbCurrent, x1, y1, z1, x2, y2, z2)
}

// DrawLineBits draws between float points with projection-aware depth.
func (r *Renderer) DrawLineBits(colixA, colixB colix.Colix, a, b mathutil.Vec3) {
	if !r.SetColix(colixA) {
		colixA = 0
	}
	argbA := r.argbCurrent
	if !r.SetColix(colixB) {
		colixB = 0
	}
	if colixA == 0 && colixB == 0 {
		return
	}
	if colixA == 0 {
		argbA = 0
	}
	argbB := r.argbCurrent
	if colixB == 0 {
		argbB = 0
	}
	pa, pb := screenPoint(a), screenPoint(b)
	r.line.plotLineBits(argbA, argbB, &pa, &pb, 0, 0, false)
}

// DrawLineAB draws between float points in the current color.
func (r *Renderer) DrawLineAB(a, b mathutil.Vec3) {
	pa, pb := screenPoint(a), screenPoint(b)
	r.line.plotLineBits(r.argbCurrent, r.argbCurrent, &pa, &pb, 0, 0, false)
}

// DrawDashedLine draws rise pixels of every run from a to b. Supersampled
// frames double the pattern and thicken the line by one pixel.
func (r *Renderer) DrawDashedLine(run, rise int, a, b mathutil.Vec3) {
	if r.antialiasThisFrame {
		run += run
		rise += rise
	}
	pa, pb := screenPoint(a), screenPoint(b)
	r.line.plotLineBits(r.argbCurrent, r.argbCurrent, &pa, &pb, run, rise, true)
	if !r.antialiasThisFrame {
		return
	}
	if math.Abs(a[0]-b[0]) < math.Abs(a[1]-b[1]) {
		pa.X++
		pb.X++
	} else {
		pa.Y++
		pb.Y++
	}
	r.line.plotLineBits(r.argbCurrent, r.argbCurrent, &pa, &pb, run, rise, true)
}

// LineCache exposes the slope pattern cache.
func (r *Renderer) LineCache() *LineCache { return &r.line.cache }
