package raster

import (
	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
)

// hermiteDepth bounds the subdivision stack.
const hermiteDepth = 16

// hermiteSegment is a cardinal spline from p1 to p2 whose tangents come
// from the neighbouring points p0 and p3, scaled by tension/8. Control
// points are snapped to integers.
type hermiteSegment struct {
	p1, p2, t1, t2 [3]int
}

func newHermiteSegment(tension int, p0, p1, p2, p3 mathutil.Vec3) hermiteSegment {
	var h hermiteSegment
	for i := 0; i < 3; i++ {
		h.p1[i] = int(p1[i])
		h.p2[i] = int(p2[i])
		h.t1[i] = (h.p2[i] - int(p0[i])) * tension / 8
		h.t2[i] = (int(p3[i]) - h.p1[i]) * tension / 8
	}
	return h
}

func (h hermiteSegment) at(s float64) mathutil.Vec3 {
	s2 := s * s
	s3 := s2 * s
	h1 := 2*s3 - 3*s2 + 1
	h2 := -2*s3 + 3*s2
	h3 := s3 - 2*s2 + s
	h4 := s3 - s2
	var v mathutil.Vec3
	for i := 0; i < 3; i++ {
		v[i] = h1*float64(h.p1[i]) + h2*float64(h.p2[i]) + h3*float64(h.t1[i]) + h4*float64(h.t2[i])
	}
	return v
}

func (h hermiteSegment) atInt(s float64) Point {
	v := h.at(s)
	return Point{int(v[0]), int(v[1]), int(v[2])}
}

func (h hermiteSegment) start() Point { return Point{h.p1[0], h.p1[1], h.p1[2]} }
func (h hermiteSegment) end() Point   { return Point{h.p2[0], h.p2[1], h.p2[2]} }

func toVec(p Point) mathutil.Vec3 {
	return mathutil.Vec3{float64(p.X), float64(p.Y), float64(p.Z)}
}

// hermiteRenderer subdivides spline segments on an explicit stack until
// each piece spans about a pixel, then stamps it.
type hermiteRenderer struct {
	r *Renderer

	left, right   [hermiteDepth]Point
	sLeft, sRight [hermiteDepth]float64

	topL, topR, botL, botR [hermiteDepth]mathutil.Vec3
	needFill               [hermiteDepth]bool
}

func (h *hermiteRenderer) init(r *Renderer) { h.r = r }

// rope draws a single strand. Filled ropes stamp spheres whose diameter
// runs from dBeg through dMid to dEnd; outlines plot pixels.
func (h *hermiteRenderer) rope(fill bool, tension, dBeg, dMid, dEnd int, p0, p1, p2, p3 mathutil.Vec3) {
	r := h.r
	z1, z2 := int(p1[2]), int(p2[2])
	if p0[2] == 1 || z1 == 1 || z2 == 1 || p3[2] == 1 {
		return
	}
	if r.IsClippedZ(z1) || r.IsClippedZ(z2) {
		return
	}
	seg := newHermiteSegment(tension, p0, p1, p2, p3)
	h.sLeft[0], h.left[0] = 0, seg.start()
	h.sRight[0], h.right[0] = 1, seg.end()
	var dFirst, dSecond int
	if fill {
		dFirst = 2 * (dMid - dBeg)
		dSecond = 2 * (dEnd - dMid)
	}
	for sp := 0; sp >= 0; {
		a, b := h.left[sp], h.right[sp]
		if dx, dy := b.X-a.X, b.Y-a.Y; dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1 {
			s := h.sLeft[sp]
			if fill {
				d := dMid + int(float64(dSecond)*(s-0.5))
				if s < 0.5 {
					d = dBeg + int(float64(dFirst)*s)
				}
				r.FillSphere(d, a)
			} else {
				r.plotPixelClipped(r.argbCurrent, a.X, a.Y, a.Z)
			}
			sp--
			continue
		}
		if sp >= hermiteDepth-1 {
			break
		}
		s := (h.sLeft[sp] + h.sRight[sp]) / 2
		mid := seg.atInt(s)
		h.right[sp+1], h.sRight[sp+1] = h.right[sp], h.sRight[sp]
		h.right[sp], h.sRight[sp] = mid, s
		sp++
		h.left[sp], h.sLeft[sp] = mid, s
	}
}

// Ribbon fill selection.
const (
	ribbonBoth  = 0
	ribbonFront = 1
	ribbonBack  = -1
)

func isFront(a, b, c mathutil.Vec3) int {
	if b.Sub(a).Cross(c.Sub(a))[2] < 0 {
		return ribbonBack
	}
	return ribbonFront
}

// ribbon fills the band between the top strand p0..p3 and the bottom
// strand p4..p7. A negative tension reverses the winding. A positive
// aspect ratio gives the band thickness, boxed with four quads per step.
func (h *hermiteRenderer) ribbon(fill, border bool, tension int, p [8]mathutil.Vec3, aspectRatio, fillType int) {
	r := h.r
	for _, q := range p {
		if q[2] == 1 {
			return
		}
	}
	if !fill {
		h.parallelPair(abs(tension), p)
		return
	}
	rev := tension < 0
	if rev {
		tension = -tension
	}
	ratio := 1 / float64(aspectRatio)
	top := newHermiteSegment(tension, p[0], p[1], p[2], p[3])
	bot := newHermiteSegment(tension, p[4], p[5], p[6], p[7])
	h.topL[0], h.topR[0] = toVec(top.start()), toVec(top.end())
	h.botL[0], h.botR[0] = toVec(bot.start()), toVec(bot.end())
	h.sLeft[0], h.sRight[0] = 0, 1
	h.needFill[0] = true

	var a1, a2, c1, c2 mathutil.Vec3
	closeEnd := false
	for sp := 0; sp >= 0; {
		a, b := h.topL[sp], h.topR[sp]
		c, d := h.botL[sp], h.botR[sp]
		dxTop, dyTop := b[0]-a[0], b[1]-a[1]
		dxBot, dyBot := d[0]-c[0], d[1]-c[1]
		dTop2 := dxTop*dxTop + dyTop*dyTop
		dBot2 := dxBot*dxBot + dyBot*dyBot
		if dxTop*dxTop < 10 && dyTop*dyTop < 10 && dxBot*dxBot < 8 && dyBot*dyBot < 8 {
			if border {
				r.FillSphereBits(3, a)
				r.FillSphereBits(3, c)
			}
			if h.needFill[sp] {
				if aspectRatio > 0 {
					t1 := a.Sub(c).Scale(ratio)
					depth := t1.Cross(a.Sub(b))
					if l := depth.Len(); l > 0 {
						depth = depth.Scale(t1.Len() / l)
					}
					a1, a2 = a.Add(depth), a.Sub(depth)
					b1, b2 := b.Add(depth), b.Sub(depth)
					c1, c2 = c.Add(depth), c.Sub(depth)
					d1, d2 := d.Add(depth), d.Sub(depth)
					r.FillQuadrilateral(a1, b1, d1, c1, false)
					r.FillQuadrilateral(a2, b2, d2, c2, false)
					r.FillQuadrilateral(a1, b1, b2, a2, false)
					r.FillQuadrilateral(c1, d1, d2, c2, false)
					closeEnd = true
				} else {
					h.fillBand(a, b, c, d, fillType, rev)
				}
				h.needFill[sp] = false
			}
			if dTop2 < 2 && dBot2 < 2 {
				sp--
				continue
			}
		}
		if sp >= hermiteDepth-1 {
			break
		}
		s := (h.sLeft[sp] + h.sRight[sp]) / 2
		midTop, midBot := top.at(s), bot.at(s)
		next := sp + 1
		h.topR[next], h.topR[sp] = h.topR[sp], midTop
		h.botR[next], h.botR[sp] = h.botR[sp], midBot
		h.sRight[next], h.sRight[sp] = h.sRight[sp], s
		h.needFill[next] = h.needFill[sp]
		h.topL[next], h.botL[next] = midTop, midBot
		h.sLeft[next] = s
		sp = next
	}
	if closeEnd {
		a1[2]++
		c1[2]++
		c2[2]++
		a2[2]++
		r.FillQuadrilateral(a1, c1, c2, a2, false)
	}
}

func (h *hermiteRenderer) fillBand(a, b, c, d mathutil.Vec3, fillType int, rev bool) {
	r := h.r
	if fillType == ribbonBoth {
		if rev {
			r.FillQuadrilateral(c, d, b, a, false)
		} else {
			r.FillQuadrilateral(a, b, d, c, false)
		}
		return
	}
	if (fillType == isFront(a, b, d)) != rev {
		r.FillTriangleFlat(a, b, d, false)
	}
	if (fillType == isFront(a, d, c)) != rev {
		r.FillTriangleFlat(a, d, c, false)
	}
}

// parallelPair draws a mesh ribbon: both strands as sphere chains joined
// by rungs at fixed intervals of the curve parameter.
func (h *hermiteRenderer) parallelPair(tension int, p [8]mathutil.Vec3) {
	r := h.r
	const perSegment = 5.0
	interval := 1 / perSegment
	ends := [4]mathutil.Vec3{p[2], p[1], p[6], p[5]}
	points := make([]mathutil.Vec3, 0, 16)
	nTop := 2
	strands := [2]hermiteSegment{
		newHermiteSegment(tension, p[0], p[1], p[2], p[3]),
		newHermiteSegment(tension, p[4], p[5], p[6], p[7]),
	}
	for k, seg := range strands {
		h.sLeft[0], h.left[0] = 0, seg.start()
		h.sRight[0], h.right[0] = 1, seg.end()
		points = append(points, ends[2*k])
		next := interval
		for sp := 0; sp >= 0; {
			a, b := h.left[sp], h.right[sp]
			dx, dy := b.X-a.X, b.Y-a.Y
			if dx*dx+dy*dy <= 2 {
				r.FillSphere(3, a)
				if h.sLeft[sp] < 1-next {
					points = append(points, toVec(a))
					next += interval
					if k == 0 {
						nTop++
					}
				}
				sp--
				continue
			}
			if sp >= hermiteDepth-1 {
				break
			}
			s := (h.sLeft[sp] + h.sRight[sp]) / 2
			mid := seg.atInt(s)
			h.right[sp+1], h.sRight[sp+1] = h.right[sp], h.sRight[sp]
			h.right[sp], h.sRight[sp] = mid, s
			sp++
			h.left[sp], h.sLeft[sp] = mid, s
		}
		points = append(points, ends[2*k+1])
	}
	for i := 0; i < nTop && i+nTop < len(points); i++ {
		r.DrawLineAB(points[i], points[i+nTop])
	}
}

// DrawHermite4 draws a one-pixel spline through p1..p2 in the current
// color.
func (r *Renderer) DrawHermite4(tension int, p0, p1, p2, p3 mathutil.Vec3) {
	r.hermite.rope(false, tension, 0, 0, 0, p0, p1, p2, p3)
}

// FillHermite draws a tube along the spline, its diameter varying from
// dBeg at p1 through dMid to dEnd at p2.
func (r *Renderer) FillHermite(tension, dBeg, dMid, dEnd int, p0, p1, p2, p3 mathutil.Vec3) {
	r.hermite.rope(true, tension, dBeg, dMid, dEnd, p0, p1, p2, p3)
}

// DrawHermite7 draws a ribbon between two strands. A nonzero colixBack
// colors the back faces separately.
func (r *Renderer) DrawHermite7(fill, border bool, tension int, p [8]mathutil.Vec3, aspectRatio int, colixBack colix.Colix) {
	if colixBack == 0 {
		r.hermite.ribbon(fill, border, tension, p, aspectRatio, ribbonBoth)
		return
	}
	r.hermite.ribbon(fill, border, tension, p, aspectRatio, ribbonFront)
	prev := r.colixCurrent
	r.SetColix(colixBack)
	r.hermite.ribbon(fill, border, tension, p, aspectRatio, ribbonBack)
	r.SetColix(prev)
}
