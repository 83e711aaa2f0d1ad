package raster

import (
	"math"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
	"g3d-renderer/internal/shade"
)

var noShades [shade.IndexMax]uint32

// profile is the cylinder's cross-section ellipse, sampled adaptively
// over half a turn. Integer points drive the integer paths, float points
// the precise ones; t is the curve parameter and fp8 the 24.8 shade.
type profile struct {
	xf, yf, zf, fp8 []int
	xt, yt, zt, t   []float64
	n               int
}

func (p *profile) reset(n int) {
	p.n = n
	p.ensure(n)
}

func (p *profile) ensure(n int) {
	for len(p.xf) < n {
		p.xf = append(p.xf, 0)
		p.yf = append(p.yf, 0)
		p.zf = append(p.zf, 0)
		p.fp8 = append(p.fp8, 0)
		p.xt = append(p.xt, 0)
		p.yt = append(p.yt, 0)
		p.zt = append(p.zt, 0)
		p.t = append(p.t, 0)
	}
}

func (p *profile) alloc() int {
	p.ensure(p.n + 1)
	p.n++
	return p.n - 1
}

// cylinderRenderer draws a cylinder as a bundle of generatrix lines, one
// per profile point, on the visible side and optionally the back side.
type cylinderRenderer struct {
	r *Renderer

	colixA, colixB   colix.Colix
	shadesA, shadesB []uint32

	xA, yA, zA          int
	xAend, yAend, zAend int
	dxB, dyB, dzB       int
	xAf, yAf, zAf       float64
	dxBf, dyBf, dzBf    float64
	xTip, yTip, zTip    float64

	evenDiameter bool
	diameter     int
	endcaps      Endcap
	endcapHidden bool

	xEndcap, yEndcap, zEndcap int
	argbEndcap                uint32
	colixEndcap               colix.Colix
	endcapShadeIndex          int

	radius, radius2          float64
	cosTheta, cosPhi, sinPhi float64

	clipped bool
	prof    profile
}

func (c *cylinderRenderer) init(r *Renderer) { c.r = r }

func (c *cylinderRenderer) shades(cx colix.Colix) []uint32 {
	if cx == 0 {
		return noShades[:]
	}
	return c.r.shades(cx)
}

// clipBox tests the cylinder's bounding cubes at both ends. It reports
// false when the cylinder is entirely outside and records whether any
// part is.
func (c *cylinderRenderer) clipBox(xa, ya, za, xb, yb, zb, diameter int) bool {
	r := c.r
	rad := diameter/2 + 1
	minA := r.ClipCode3(xa-rad, ya-rad, za-rad)
	maxA := r.ClipCode3(xa+rad, ya+rad, za+rad)
	minB := r.ClipCode3(xb-rad, yb-rad, zb-rad)
	maxB := r.ClipCode3(xb+rad, yb+rad, zb+rad)
	all := minA | maxA | minB | maxB
	c.clipped = all != 0
	return all != ClipHuge && minA&maxB&maxA&minB == 0
}

// drawBackside reports whether the far generatrices must be drawn too.
func (c *cylinderRenderer) drawBackside(screen int) bool {
	return screen == 0 && (c.clipped || c.endcaps == EndcapFlat || c.endcaps == EndcapNone)
}

// plotHiddenEndcap stamps the open end of a hidden-endcap cylinder.
func (c *cylinderRenderer) plotHiddenEndcap(x, y, z int) {
	if !c.endcapHidden || c.argbEndcap == 0 {
		return
	}
	r := c.r
	if c.clipped {
		r.plotPixelClipped(c.argbEndcap, c.xEndcap+x, c.yEndcap+y, c.zEndcap-z-1)
		r.plotPixelClipped(c.argbEndcap, c.xEndcap-x, c.yEndcap-y, c.zEndcap+z-1)
	} else {
		r.plotPixelUnclipped(c.argbEndcap, c.xEndcap+x, c.yEndcap+y, c.zEndcap-z-1)
		r.plotPixelUnclipped(c.argbEndcap, c.xEndcap-x, c.yEndcap-y, c.zEndcap+z-1)
	}
}

// renderOld draws an integer cylinder with linear depth. screen bit 0
// screens the A half and bit 1 the B half. A zero colix leaves its half
// undrawn.
func (c *cylinderRenderer) renderOld(colixA, colixB colix.Colix, screen int, endcaps Endcap, diameter, xa, ya, za, xb, yb, zb int) {
	r := c.r
	if !c.clipBox(xa, ya, za, xb, yb, zb, diameter) {
		return
	}
	c.dxB, c.dyB, c.dzB = xb-xa, yb-ya, zb-za
	if diameter <= 1 {
		r.line.plotLineDeltaOld(c.argbOf(colixA), c.argbOf(colixB), xa, ya, za, c.dxB, c.dyB, c.dzB, c.clipped)
		return
	}
	c.endcaps = endcaps
	backside := c.drawBackside(screen)
	c.diameter = diameter
	c.xA, c.yA, c.zA = xa, ya, za
	c.colixA, c.colixB = colixA, colixB
	c.shadesA = c.shades(colixA)
	c.shadesB = c.shades(colixB)
	c.calcArgbEndcap(true, false)

	c.calcCosSin(float64(c.dxB), float64(c.dyB), float64(c.dzB))
	c.calcPoints(3, false)
	c.interpolate(0, 1)
	c.interpolate(1, 2)

	if endcaps == EndcapFlat {
		c.renderFlatEndcap(true, false)
	}
	r.SetZMargin(5)
	p := &c.prof
	for i := p.n - 1; i >= 0; i-- {
		fpz := p.fp8[i] >> 8
		fpzBack := fpz >> 1
		x, y, z := p.xf[i], p.yf[i], p.zf[i]
		c.plotHiddenEndcap(x, y, z)
		r.line.plotLineDeltaAOld(c.shadesA, c.shadesB, screen, fpz, c.xA+x, c.yA+y, c.zA-z, c.dxB, c.dyB, c.dzB, c.clipped)
		if backside {
			r.line.plotLineDeltaOld(c.shadesA[fpzBack], c.shadesB[fpzBack], c.xA-x, c.yA-y, c.zA+z, c.dxB, c.dyB, c.dzB, c.clipped)
		}
	}
	r.SetZMargin(0)
	if endcaps == EndcapSpherical {
		c.renderSphericalEndcaps()
	}
}

func (c *cylinderRenderer) argbOf(cx colix.Colix) uint32 {
	if cx == 0 {
		return 0
	}
	return c.r.colorArgb(cx)
}

// renderBits draws with float start/delta and depth interpolated per
// generatrix by the projection mode. Precise points come from a and b;
// with intPoints the generatrices use integer endpoints.
func (c *cylinderRenderer) renderBits(colixA, colixB colix.Colix, screen int, endcaps Endcap, diameter int, a, b mathutil.Vec3, intPoints bool) {
	r := c.r
	ia, ib := screenPoint(a), screenPoint(b)
	if intPoints {
		ia = Point{int(a[0]), int(a[1]), int(a[2])}
		ib = Point{int(b[0]), int(b[1]), int(b[2])}
	}
	if !c.clipBox(ia.X, ia.Y, ia.Z, ib.X, ib.Y, ib.Z, diameter) {
		return
	}
	c.dxBf, c.dyBf, c.dzBf = b[0]-a[0], b[1]-a[1], b[2]-a[2]
	if diameter > 0 {
		c.diameter = diameter
		c.xAf, c.yAf, c.zAf = a[0], a[1], a[2]
	}
	c.endcaps = endcaps
	backside := c.drawBackside(screen)
	c.xA, c.yA, c.zA = int(c.xAf), int(c.yAf), int(c.zAf)
	c.dxB, c.dyB, c.dzB = int(c.dxBf), int(c.dyBf), int(c.dzBf)
	c.colixA, c.colixB = colixA, colixB
	c.shadesA = c.shades(colixA)
	c.shadesB = c.shades(colixB)
	c.calcArgbEndcap(true, true)
	if diameter > 0 {
		c.generateBaseEllipsePrecisely(false)
	}
	if endcaps == EndcapFlat {
		c.renderFlatEndcap(true, true)
	}
	r.line.setLineBits(float32(c.dxBf), float32(c.dyBf))
	r.SetZMargin(5)
	p := &c.prof
	for i := p.n - 1; i >= 0; i-- {
		fpz := p.fp8[i] >> 8
		fpzBack := fpz >> 1
		x, y, z := p.xf[i], p.yf[i], p.zf[i]
		c.plotHiddenEndcap(x, y, z)
		c.generatrix(fpz, screen, c.xA+x, c.yA+y, c.zA-z, intPoints)
		if backside {
			c.generatrix(fpzBack, screen, c.xA-x, c.yA-y, c.zA+z, intPoints)
		}
	}
	r.SetZMargin(0)
	if endcaps == EndcapSpherical {
		c.renderSphericalEndcaps()
	}
	c.xAf += c.dxBf
	c.yAf += c.dyBf
	c.zAf += c.dzBf
}

func (c *cylinderRenderer) generatrix(fpz, screen, x, y, z int, intPoints bool) {
	a := Point{x, y, z}
	b := Point{x + c.dxB, y + c.dyB, z + c.dzB}
	if intPoints {
		c.r.line.plotLineDeltaABitsInt(c.shadesA, c.shadesB, fpz, a, b, screen, c.clipped)
		return
	}
	c.r.line.plotLineDeltaABitsFloat(c.shadesA, c.shadesB, fpz,
		mathutil.Vec3{float64(a.X), float64(a.Y), float64(a.Z)},
		mathutil.Vec3{float64(b.X), float64(b.Y), float64(b.Z)}, screen, c.clipped)
}

// renderCone draws a cone from a base of the given diameter to the tip.
// Filled cones thicken each generatrix; barbs draw half the profile.
func (c *cylinderRenderer) renderCone(cx colix.Colix, endcap Endcap, diameter int, base, tip mathutil.Vec3, fill, isBarb bool) {
	r := c.r
	c.xAf, c.yAf, c.zAf = base[0], base[1], base[2]
	c.dxBf = tip[0] - c.xAf
	c.dyBf = tip[1] - c.yAf
	c.dzBf = tip[2] - c.zAf
	c.xA = int(math.Floor(c.xAf))
	c.yA = int(math.Floor(c.yAf))
	c.zA = int(math.Floor(c.zAf))
	c.dxB = int(math.Floor(c.dxBf))
	c.dyB = int(math.Floor(c.dyBf))
	c.dzB = int(math.Floor(c.dzBf))
	c.xTip, c.yTip, c.zTip = tip[0], tip[1], tip[2]
	c.colixA = cx
	c.colixB = 0
	c.shadesA = c.shades(cx)
	tipShade := r.shader.Index(float32(c.dxB), float32(c.dyB), float32(-c.dzB))
	r.plotPixelClipped(c.shadesA[tipShade], int(tip[0]), int(tip[1]), int(tip[2]))

	c.diameter = diameter
	if diameter <= 1 {
		if diameter == 1 {
			argb := r.colorArgb(cx)
			r.line.plotLineDeltaOld(argb, argb, c.xA, c.yA, c.zA, c.dxB, c.dyB, c.dzB, true)
		}
		return
	}
	c.endcaps = endcap
	c.calcArgbEndcap(false, true)
	c.generateBaseEllipsePrecisely(isBarb)
	if !isBarb && endcap == EndcapFlat {
		c.renderFlatEndcap(false, true)
	}
	r.SetZMargin(5)
	sA := c.shadesA
	open := c.endcapHidden && c.argbEndcap != 0
	p := &c.prof
	ceil := func(v float64) int { return int(math.Ceil(v)) }
	for i := p.n - 1; i >= 0; i-- {
		x, y, z := p.xt[i], p.yt[i], p.zt[i]
		fpz := p.fp8[i] >> 8
		xUp, yUp, zUp := c.xAf+x, c.yAf+y, c.zAf-z
		xDn, yDn, zDn := c.xAf-x, c.yAf-y, c.zAf+z
		argb := sA[0]
		if open {
			r.plotPixelClipped(c.argbEndcap, int(xUp), int(yUp), int(zUp))
			r.plotPixelClipped(c.argbEndcap, int(xDn), int(yDn), int(zDn))
		}
		if argb == 0 {
			continue
		}
		dx, dy, dz := ceil(c.xTip-xUp), ceil(c.yTip-yUp), ceil(c.zTip-zUp)
		r.line.plotLineDeltaAOld(sA, sA, 0, fpz, int(xUp), int(yUp), int(zUp), dx, dy, dz, true)
		if fill {
			r.line.plotLineDeltaAOld(sA, sA, 0, fpz, int(xUp), int(yUp)+1, int(zUp), dx, dy+1, dz, true)
			r.line.plotLineDeltaAOld(sA, sA, 0, fpz, int(xUp)+1, int(yUp), int(zUp), dx+1, dy, dz, true)
		}
		if !isBarb && !(endcap != EndcapFlat && c.dzB > 0) {
			r.line.plotLineDeltaOld(argb, argb, int(xDn), int(yDn), int(zDn),
				ceil(c.xTip-xDn), ceil(c.yTip-yDn), ceil(c.zTip-zDn), true)
		}
	}
	r.SetZMargin(0)
}

func (c *cylinderRenderer) generateBaseEllipsePrecisely(isBarb bool) {
	c.calcCosSin(c.dxBf, c.dyBf, c.dzBf)
	n := 3
	if isBarb {
		n = 2
	}
	c.calcPoints(n, true)
	c.interpolatePrecisely(0, 1)
	if !isBarb {
		c.interpolatePrecisely(1, 2)
	}
	p := &c.prof
	for j := p.n - 1; j >= 0; j-- {
		p.xf[j] = int(math.Floor(p.xt[j]))
		p.yf[j] = int(math.Floor(p.yt[j]))
		p.zf[j] = int(math.Floor(p.zt[j]))
	}
}

func (c *cylinderRenderer) calcPoints(count int, precise bool) {
	c.prof.reset(count)
	c.calcRotatedPoint(0, 0, precise)
	c.calcRotatedPoint(0.5, 1, precise)
	if count == 3 {
		c.calcRotatedPoint(1, 2, precise)
	}
}

func (c *cylinderRenderer) calcCosSin(dx, dy, dz float64) {
	mag2d2 := dx*dx + dy*dy
	if mag2d2 == 0 {
		c.cosTheta = 1
		c.cosPhi = 1
		c.sinPhi = 0
		return
	}
	mag2d := math.Sqrt(mag2d2)
	mag3d := math.Sqrt(mag2d2 + dz*dz)
	c.cosTheta = dz / mag3d
	c.cosPhi = dx / mag2d
	c.sinPhi = dy / mag2d
}

// calcRotatedPoint places profile point i at parameter t in [0,1] on the
// projected cross-section.
func (c *cylinderRenderer) calcRotatedPoint(t float64, i int, precise bool) {
	p := &c.prof
	p.t[i] = t
	tPI := t * math.Pi
	xT := math.Sin(tPI) * c.cosTheta
	yT := math.Cos(tPI)
	xR := c.radius * (xT*c.cosPhi - yT*c.sinPhi)
	yR := c.radius * (xT*c.sinPhi + yT*c.cosPhi)
	z2 := c.radius2 - (xR*xR + yR*yR)
	zR := 0.0
	if z2 > 0 {
		zR = math.Sqrt(z2)
	}
	switch {
	case precise:
		p.xt[i], p.yt[i], p.zt[i] = xR, yR, zR
	case c.evenDiameter:
		p.xf[i] = int(xR - 0.5)
		p.yf[i] = int(yR - 0.5)
		p.zf[i] = int(zR + 0.5)
	default:
		p.xf[i] = int(xR)
		p.yf[i] = int(yR)
		p.zf[i] = int(zR + 0.5)
	}
	p.fp8[i] = c.r.shader.Fp8(float32(xR), float32(yR), float32(zR))
}

// interpolate bisects the profile between two points until neighbours
// land on the same or adjacent pixels.
func (c *cylinderRenderer) interpolate(lo, hi int) {
	p := &c.prof
	dx := abs(p.xf[hi] - p.xf[lo])
	dy := abs(p.yf[hi] - p.yf[lo])
	if dx+dy <= 1 {
		return
	}
	mid := p.alloc()
	tLo, tHi := p.t[lo], p.t[hi]
	for j := 0; j < 4; j++ {
		tMid := (tLo + tHi) / 2
		c.calcRotatedPoint(tMid, mid, false)
		switch {
		case p.xf[mid] == p.xf[lo] && p.yf[mid] == p.yf[lo]:
			p.fp8[lo] = int(uint32(p.fp8[lo]+p.fp8[mid]) >> 1)
			tLo = tMid
		case p.xf[mid] == p.xf[hi] && p.yf[mid] == p.yf[hi]:
			p.fp8[hi] = int(uint32(p.fp8[hi]+p.fp8[mid]) >> 1)
			tHi = tMid
		default:
			c.interpolate(lo, mid)
			c.interpolate(mid, hi)
			return
		}
	}
	p.xf[mid] = p.xf[lo]
	p.yf[mid] = p.yf[hi]
}

func (c *cylinderRenderer) interpolatePrecisely(lo, hi int) {
	p := &c.prof
	fl := func(v float64) int { return int(math.Floor(v)) }
	dx := abs(fl(p.xt[hi]) - fl(p.xt[lo]))
	dy := abs(fl(p.yt[hi]) - fl(p.yt[lo]))
	if dx+dy <= 1 {
		return
	}
	tLo, tHi := p.t[lo], p.t[hi]
	mid := p.alloc()
	for j := 0; j < 4; j++ {
		tMid := (tLo + tHi) / 2
		c.calcRotatedPoint(tMid, mid, true)
		switch {
		case fl(p.xt[mid]) == fl(p.xt[lo]) && fl(p.yt[mid]) == fl(p.yt[lo]):
			p.fp8[lo] = int(uint32(p.fp8[lo]+p.fp8[mid]) >> 1)
			tLo = tMid
		case fl(p.xt[mid]) == fl(p.xt[hi]) && fl(p.yt[mid]) == fl(p.yt[hi]):
			p.fp8[hi] = int(uint32(p.fp8[hi]+p.fp8[mid]) >> 1)
			tHi = tMid
		default:
			c.interpolatePrecisely(lo, mid)
			c.interpolatePrecisely(mid, hi)
			return
		}
	}
	p.xt[mid] = p.xt[lo]
	p.yt[mid] = p.yt[hi]
}

// renderFlatEndcap fills the visible end disk by scanning the profile's
// extent on each row.
func (c *cylinderRenderer) renderFlatEndcap(isCylinder, precise bool) {
	r := c.r
	var xT, yT, zT int
	if precise {
		if c.dzBf == 0 || c.colixEndcap == 0 || !r.SetColix(c.colixEndcap) {
			return
		}
		xTf, yTf, zTf := c.xAf, c.yAf, c.zAf
		if isCylinder && c.dzBf < 0 {
			xTf += c.dxBf
			yTf += c.dyBf
			zTf += c.dzBf
		}
		xT, yT, zT = int(xTf), int(yTf), int(zTf)
	} else {
		if c.dzB == 0 || c.colixEndcap == 0 || !r.SetColix(c.colixEndcap) {
			return
		}
		xT, yT, zT = c.xAend, c.yAend, c.zAend
		if isCylinder && c.dzB < 0 {
			xT += c.dxB
			yT += c.dyB
			zT += c.dzB
		}
	}
	p := &c.prof
	xr, yr, zr := p.xf, p.yf, p.zf
	yMin, yMax := yr[0], yr[0]
	for i := p.n - 1; i > 0; i-- {
		y := yr[i]
		switch {
		case y < yMin:
			yMin = y
		case y > yMax:
			yMax = y
		default:
			y = -y
			if y < yMin {
				yMin = y
			} else if y > yMax {
				yMax = y
			}
		}
	}
	var zXMin, zXMax int
	for y := yMin; y <= yMax; y++ {
		xMin, xMax := math.MaxInt32, math.MinInt32
		for i := p.n - 1; i >= 0; i-- {
			if yr[i] == y {
				x := xr[i]
				if x < xMin {
					xMin, zXMin = x, zr[i]
				}
				if x > xMax {
					xMax, zXMax = x, zr[i]
				}
			}
			if yr[i] == -y {
				x := -xr[i]
				if x < xMin {
					xMin, zXMin = x, -zr[i]
				}
				if x > xMax {
					xMax, zXMax = x, -zr[i]
				}
			}
		}
		r.setColorNoisy(c.endcapShadeIndex)
		r.plotPixelsClippedRaster(xMax-xMin+1, xT+xMin, yT+y, zT-zXMin-1, zT-zXMax-1, nil, nil)
	}
}

func (c *cylinderRenderer) renderSphericalEndcaps() {
	r := c.r
	if c.colixA != 0 && r.SetColix(c.colixA) {
		r.FillSphereXYZ(c.diameter, c.xA, c.yA, c.zA+1)
	}
	if c.colixB != 0 && r.SetColix(c.colixB) {
		r.FillSphereXYZ(c.diameter, c.xA+c.dxB, c.yA+c.dyB, c.zA+c.dzB+1)
	}
}

// calcArgbEndcap picks which end faces the viewer and its shade.
func (c *cylinderRenderer) calcArgbEndcap(isCylinder, isFloat bool) {
	c.evenDiameter = c.diameter&1 == 0
	c.radius = float64(c.diameter) / 2
	c.radius2 = c.radius * c.radius
	c.endcapHidden = false
	dzf := float64(c.dzB)
	if isFloat {
		dzf = c.dzBf
	}
	if c.endcaps == EndcapSpherical || dzf == 0 {
		return
	}
	c.xEndcap, c.xAend = c.xA, c.xA
	c.yEndcap, c.yAend = c.yA, c.yA
	c.zEndcap, c.zAend = c.zA, c.zA
	dxf, dyf := float64(c.dxB), float64(c.dyB)
	if isFloat {
		dxf, dyf = c.dxBf, c.dyBf
	}
	sh := c.r.shader
	if dzf >= 0 || !isCylinder {
		c.endcapShadeIndex = sh.Index(float32(-dxf), float32(-dyf), float32(dzf))
		if c.colixA == 0 {
			c.xAend += c.dxB / 2
			c.yAend += c.dyB / 2
			c.zAend += c.dzB / 2
			c.colixEndcap = c.colixB
		} else {
			c.colixEndcap = c.colixA
		}
	} else {
		c.endcapShadeIndex = sh.Index(float32(dxf), float32(dyf), float32(-dzf))
		if c.colixB == 0 {
			c.colixEndcap = c.colixA
			c.xAend -= c.dxB / 2
			c.yAend -= c.dyB / 2
			c.zAend -= c.dzB / 2
		} else {
			c.colixEndcap = c.colixB
			c.xEndcap += c.dxB
			c.yEndcap += c.dyB
			c.zEndcap += c.dzB
		}
	}
	shades := c.shadesB
	if c.colixEndcap == c.colixA {
		shades = c.shadesA
	}
	c.endcapShadeIndex = min(c.endcapShadeIndex, shade.IndexNoisyLimit)
	c.argbEndcap = shades[c.endcapShadeIndex]
	c.endcapHidden = c.endcaps == EndcapHidden
}

// screenedHalves sets colixB then colixA and reports, per half, whether
// it draws in this pass and is screened.
func (r *Renderer) screenedHalves(colixA, colixB colix.Colix) (colix.Colix, colix.Colix, int) {
	screen := 0
	r.currentShadeIndex = 0
	if !r.SetColix(colixB) {
		colixB = 0
	}
	if r.wasScreened {
		screen = 2
	}
	if !r.SetColix(colixA) {
		colixA = 0
	}
	if r.wasScreened {
		screen++
	}
	return colixA, colixB, screen
}

// FillCylinderXYZ fills a two-colored cylinder between integer points.
func (r *Renderer) FillCylinderXYZ(colixA, colixB colix.Colix, endcaps Endcap, diameter int, a, b Point) {
	if diameter > r.ht3 {
		return
	}
	colixA, colixB, screen := r.screenedHalves(colixA, colixB)
	if colixA == 0 && colixB == 0 {
		return
	}
	r.cylinder.renderOld(colixA, colixB, screen, endcaps, diameter, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
}

// FillCylinder fills a cylinder in the current color.
func (r *Renderer) FillCylinder(endcaps Endcap, diameter int, a, b Point) {
	if diameter <= r.ht3 {
		r.cylinder.renderOld(r.colixCurrent, r.colixCurrent, 0, endcaps, diameter, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}
}

// FillCylinderScreen fills a current-color cylinder between truncated
// float points.
func (r *Renderer) FillCylinderScreen(endcaps Endcap, diameter int, a, b mathutil.Vec3) {
	if diameter <= r.ht3 {
		r.cylinder.renderOld(r.colixCurrent, r.colixCurrent, 0, endcaps, diameter,
			int(a[0]), int(a[1]), int(a[2]), int(b[0]), int(b[1]), int(b[2]))
	}
}

// FillCylinderBits fills a current-color cylinder from float points with
// projection-aware depth. It keeps very short or flat cylinders exact.
func (r *Renderer) FillCylinderBits(endcaps Endcap, diameter int, a, b mathutil.Vec3) {
	if diameter > r.ht3 || a[2] == 1 || b[2] == 1 {
		return
	}
	if diameter <= 1 {
		argb := r.colorArgb(r.colixCurrent)
		pa, pb := screenPoint(a), screenPoint(b)
		r.line.plotLineBits(argb, argb, &pa, &pb, 0, 0, false)
		return
	}
	r.cylinder.renderBits(r.colixCurrent, r.colixCurrent, 0, endcaps, diameter, a, b, false)
}

// FillCylinderBits2 is the two-colored FillCylinderBits on rounded points.
func (r *Renderer) FillCylinderBits2(colixA, colixB colix.Colix, endcaps Endcap, diameter int, a, b mathutil.Vec3) {
	if diameter > r.ht3 {
		return
	}
	colixA, colixB, screen := r.screenedHalves(colixA, colixB)
	if colixA == 0 && colixB == 0 {
		return
	}
	pa, pb := screenPoint(a), screenPoint(b)
	if diameter <= 1 {
		r.line.plotLineBits(r.cylinder.argbOf(colixA), r.cylinder.argbOf(colixB), &pa, &pb, 0, 0, false)
		return
	}
	r.cylinder.renderBits(colixA, colixB, screen, endcaps, diameter,
		mathutil.Vec3{float64(pa.X), float64(pa.Y), float64(pa.Z)},
		mathutil.Vec3{float64(pb.X), float64(pb.Y), float64(pb.Z)}, true)
}

// FillCone fills a cone from base to tip in the current color. Barbs
// draw half a cone.
func (r *Renderer) FillCone(endcap Endcap, diameter int, base, tip mathutil.Vec3, isBarb bool) {
	if diameter <= r.ht3 {
		r.cylinder.renderCone(r.colixCurrent, endcap, diameter, base, tip, true, isBarb)
	}
}
