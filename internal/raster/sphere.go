package raster

import (
	"math"

	"github.com/chewxy/math32"

	"g3d-renderer/internal/mathutil"
	"g3d-renderer/internal/shade"
)

const (
	maxOddSizeSphere   = 49
	maxSphereDiameter  = 1000
	maxSphereDiameter2 = maxSphereDiameter * 2

	shadeSlabClipped = shade.IndexNormal - 5
)

// sphereCell is one pixel offset of a cached sphere octant: its height
// above the sphere's center plane and the shade index of the pixel in each
// of the four quadrant reflections. last marks the end of a row.
type sphereCell struct {
	height         uint8
	se, sw, ne, nw uint8
	last           bool
}

// SphereCache holds the shape of every sphere diameter up to
// shade.MaxSphereCache. Shapes bake in shade indexes, so the cache empties
// when the lighting model changes.
type SphereCache struct {
	shapes     [shade.MaxSphereCache][]sphereCell
	generation uint64
	built      int
}

// Clear drops every cached shape.
func (c *SphereCache) Clear() {
	c.shapes = [shade.MaxSphereCache][]sphereCell{}
	c.built = 0
}

// Len reports the number of cached diameters.
func (c *SphereCache) Len() int { return c.built }

// shape returns the octant shape for diameter, building it on first use.
// The slice is stored only once complete.
func (c *SphereCache) shape(sh *shade.Shader, diameter int) []sphereCell {
	if g := sh.Generation(); g != c.generation {
		c.Clear()
		c.generation = g
	}
	if ss := c.shapes[diameter-1]; ss != nil {
		return ss
	}
	ss := buildSphereShape(sh, diameter)
	c.shapes[diameter-1] = ss
	c.built++
	return ss
}

func buildSphereShape(sh *shade.Shader, diameter int) []sphereCell {
	odd := diameter&1 != 0
	radiusF := float32(diameter) / 2
	radiusF2 := radiusF * radiusF
	radius := (diameter + 1) / 2
	var start float32 = 0.5
	if odd {
		start = 0
	}
	ss := make([]sphereCell, 0, radius*radius)
	ys := start
	for i := 0; i < radius; i, ys = i+1, ys+1 {
		y2 := ys * ys
		xs := start
		for j := 0; j < radius; j, xs = j+1, xs+1 {
			z2 := radiusF2 - y2 - xs*xs
			if z2 < 0 {
				continue
			}
			zs := math32.Sqrt(z2)
			ss = append(ss, sphereCell{
				height: uint8(int(zs)),
				se:     sh.Dithered(xs, ys, zs, radiusF),
				sw:     sh.Dithered(-xs, ys, zs, radiusF),
				ne:     sh.Dithered(xs, -ys, zs, radiusF),
				nw:     sh.Dithered(-xs, -ys, zs, radiusF),
			})
		}
		ss[len(ss)-1].last = true
	}
	return ss
}

// Ellipsoid is a screen-space ellipsoid for FillEllipsoid: the implicit
// quadratic
//
//	c0 x² + c1 y² + c2 z² + c3 xy + c4 xz + c5 yz + c6 x + c7 y + c8 z = 1
//
// in absolute screen coordinates, the matrix taking a screen offset from
// the center into the ellipsoid's axis frame, and the gradient matrix used
// for shading. Octant, when >= 0, selects the wedge cut away: bit i set
// means negative along axis i.
type Ellipsoid struct {
	Coef          [9]float64
	ToEllipsoidal mathutil.Mat3
	Deriv         mathutil.Mat4
	Octant        int
	// OctantPoints are the screen points at the ends of the cut axes.
	OctantPoints *[3]mathutil.Vec3
}

// NewEllipsoid builds the quadratic for an ellipsoid centered at center
// whose semi-axes (screen pixels) are axes. octant < 0 draws it whole.
func NewEllipsoid(center mathutil.Vec3, axes [3]mathutil.Vec3, octant int) Ellipsoid {
	var m mathutil.Mat3
	var rows mathutil.Mat3
	for i, a := range axes {
		l2 := a.Dot(a)
		if l2 == 0 {
			continue
		}
		m = m.Add(mathutil.Outer(a, a).Scale(1 / (l2 * l2)))
		u := a.Normalize()
		rows[i*3], rows[i*3+1], rows[i*3+2] = u[0], u[1], u[2]
	}
	mc := m.MulVec3(center)
	d := 1 - center.Dot(mc)
	e := Ellipsoid{
		Coef: [9]float64{
			m[0] / d, m[4] / d, m[8] / d,
			2 * m[1] / d, 2 * m[2] / d, 2 * m[5] / d,
			-2 * mc[0] / d, -2 * mc[1] / d, -2 * mc[2] / d,
		},
		ToEllipsoidal: rows,
		Octant:        octant,
	}
	e.Deriv = mathutil.FromMat3Translation(m.Scale(-2), mc.Scale(2))
	if octant >= 0 {
		var pts [3]mathutil.Vec3
		for i, a := range axes {
			if octant&(1<<i) != 0 {
				a = a.Scale(-1)
			}
			pts[i] = center.Add(a)
		}
		e.OctantPoints = &pts
	}
	return e
}

// sphereRenderer fills spheres from the shape cache and ellipsoids by
// solving their quadratic per pixel.
type sphereRenderer struct {
	r     *Renderer
	cache SphereCache

	ell         *Ellipsoid
	planeShade  int
	planeShades [3]int
	dxyz        [3][3]float32

	offsetBeginLine int
}

func (s *sphereRenderer) init(r *Renderer) { s.r = r }

func (s *sphereRenderer) render(shades []uint32, diameter, x, y, z int, ell *Ellipsoid) {
	r := s.r
	if z == 1 {
		return
	}
	if diameter > maxOddSizeSphere {
		diameter &^= 1
	}
	if r.IsClippedXY(diameter, x, y) {
		return
	}
	slab, depth := r.slab, r.depth
	radius := (diameter + 1) >> 1
	minZ := z - radius
	if z+radius < slab || minZ > depth {
		return
	}
	minX, maxX := x-radius, x+radius
	minY, maxY := y-radius, y+radius
	s.offsetBeginLine = r.width*y + x
	s.ell = ell
	if ell != nil && ell.OctantPoints != nil {
		s.planeShade = -1
		for i, pt := range ell.OctantPoints {
			dx := float32(pt[0]) - float32(x)
			dy := float32(pt[1]) - float32(y)
			dz := float32(pt[2]) - float32(z)
			s.dxyz[i] = [3]float32{dx, dy, dz}
			s.planeShades[i] = r.shader.Index(dx, dy, -dz)
			if dx == 0 && dy == 0 {
				s.planeShade = s.planeShades[i]
				break
			}
		}
	}
	if ell != nil || diameter > shade.MaxSphereCache {
		s.renderQuadrant(-1, -1, x, y, z, diameter, shades)
		s.renderQuadrant(-1, 1, x, y, z, diameter, shades)
		s.renderQuadrant(1, -1, x, y, z, diameter, shades)
		s.renderQuadrant(1, 1, x, y, z, diameter, shades)
		s.ell = nil
		return
	}
	ss := s.cache.shape(r.shader, diameter)
	if minX < 0 || maxX >= r.width || minY < 0 || maxY >= r.height || minZ < slab || z > depth {
		s.renderClipped(ss, x, y, z, diameter, shades)
	} else {
		s.renderUnclipped(ss, z, diameter, shades)
	}
}

func (s *sphereRenderer) renderUnclipped(ss []sphereCell, z, diameter int, shades []uint32) {
	r := s.r
	width := r.width
	zb := r.platform.Z
	p := r.pixel
	even := 1 - diameter&1
	southCenter := s.offsetBeginLine
	northCenter := southCenter - even*width
	k := 0
	for nLines := (diameter + 1) / 2; nLines > 0; nLines-- {
		se := southCenter
		sw := southCenter - even
		ne := northCenter
		nw := northCenter - even
		for {
			c := ss[k]
			k++
			zPixel := z - int(c.height)
			if zPixel < zb[se] {
				p.WritePixel(se, zPixel, shades[c.se])
			}
			if zPixel < zb[sw] {
				p.WritePixel(sw, zPixel, shades[c.sw])
			}
			if zPixel < zb[ne] {
				p.WritePixel(ne, zPixel, shades[c.ne])
			}
			if zPixel < zb[nw] {
				p.WritePixel(nw, zPixel, shades[c.nw])
			}
			se++
			sw--
			ne++
			nw--
			if c.last {
				break
			}
		}
		southCenter += width
		northCenter -= width
	}
}

// renderClipped bounds-checks every pixel. The part of a sphere cut by the
// slab plane is drawn flat at the slab as a dithered core.
func (s *sphereRenderer) renderClipped(ss []sphereCell, x, y, z, diameter int, shades []uint32) {
	r := s.r
	w, h := r.width, r.height
	zb := r.platform.Z
	p := r.pixel
	sl, de := r.slab, r.depth
	even := 1 - diameter&1
	southCenter := s.offsetBeginLine
	northCenter := southCenter - even*w
	ySouth := y
	yNorth := y - even
	seed := rasterSeed(x, y)
	k := 0
	core := func(shift int) int { return shadeSlabClipped - 3 + int(seed>>shift&7) }
	for nLines := (diameter + 1) / 2; nLines > 0; nLines-- {
		southVisible := ySouth >= 0 && ySouth < h
		northVisible := yNorth >= 0 && yNorth < h
		se := southCenter
		sw := southCenter - even
		ne := northCenter
		nw := northCenter - even
		xEast := x
		xWest := x - even
		for {
			westVisible := xWest >= 0 && xWest < w
			eastVisible := xEast >= 0 && xEast < w
			c := ss[k]
			k++
			var zPixel int
			var isCore bool
			if z < sl {
				// center in front of the slab: show the back half
				zPixel = z + int(c.height)
				isCore = zPixel >= sl
			} else {
				zPixel = z - int(c.height)
				isCore = zPixel < sl
			}
			if isCore {
				zPixel = sl
			}
			if zPixel >= sl && zPixel <= de {
				if southVisible {
					if eastVisible && zPixel < zb[se] {
						i := int(c.se)
						if isCore {
							i = core(7)
						}
						p.WritePixel(se, zPixel, shades[i])
					}
					if westVisible && zPixel < zb[sw] {
						i := int(c.sw)
						if isCore {
							i = core(13)
						}
						p.WritePixel(sw, zPixel, shades[i])
					}
				}
				if northVisible {
					if eastVisible && zPixel < zb[ne] {
						i := int(c.ne)
						if isCore {
							i = core(19)
						}
						p.WritePixel(ne, zPixel, shades[i])
					}
					if westVisible && zPixel < zb[nw] {
						i := int(c.nw)
						if isCore {
							i = core(25)
						}
						p.WritePixel(nw, zPixel, shades[i])
					}
				}
			}
			se++
			sw--
			ne++
			nw--
			xEast++
			xWest--
			if isCore {
				seed = randu(seed)
			}
			if c.last {
				break
			}
		}
		southCenter += w
		northCenter -= w
		ySouth++
		yNorth--
	}
}

// renderQuadrant draws one quadrant pixel by pixel, for large spheres and
// for ellipsoids.
func (s *sphereRenderer) renderQuadrant(xSign, ySign, x, y, z, diameter int, shades []uint32) {
	r := s.r
	radius := diameter / 2
	status := func(v, t, lim int) int {
		st := 0
		switch {
		case v < 0:
			st = -1
		case v >= lim:
			st = 1
		}
		switch {
		case t < 0:
			st -= 2
		case t >= lim:
			st += 2
		}
		return st
	}
	xStatus := status(x, x+radius*xSign, r.width)
	if xStatus == -3 || xStatus == 3 {
		return
	}
	yStatus := status(y, y+radius*ySign, r.height)
	if yStatus == -3 || yStatus == 3 {
		return
	}
	if s.ell == nil && xStatus == 0 && yStatus == 0 && z-radius >= r.slab && z <= r.depth {
		s.renderQuadrantUnclipped(radius, xSign, ySign, z, shades)
	} else {
		s.renderQuadrantClipped(radius, xSign, ySign, x, y, z, shades)
	}
}

// isqrt truncates like a float cast of the square root.
func isqrt(v int) int { return int(math.Sqrt(float64(v))) }

func (s *sphereRenderer) renderQuadrantUnclipped(radius, xSign, ySign, z int, shades []uint32) {
	r := s.r
	r2 := radius * radius
	dDivisor := radius*2 + 1
	lineInc := r.width
	if ySign < 0 {
		lineInc = -lineInc
	}
	zb := r.platform.Z
	p := r.pixel
	indexes := &r.shader.SphereShadeIndexes
	ptLine := s.offsetBeginLine
	for i, i2 := 0, 0; i2 <= r2; i, i2, ptLine = i+1, i2+2*i+1, ptLine+lineInc {
		offset := ptLine
		s2 := r2 - i2
		z0 := z - radius
		y8 := ((i*ySign + radius) << 8) / dDivisor
		for j, j2 := 0, 0; j2 <= s2; j, j2, offset = j+1, j2+2*j+1, offset+xSign {
			if zb[offset] <= z0 {
				continue
			}
			z0 = z - isqrt(s2-j2)
			if zb[offset] <= z0 {
				continue
			}
			x8 := ((j*xSign + radius) << 8) / dDivisor
			p.WritePixel(offset, z0, shades[indexes[y8<<8+x8]])
		}
	}
}

const (
	quadCore = iota
	quadSphere
	quadEllipsoid
	quadCutaway
)

func (s *sphereRenderer) renderQuadrantClipped(radius, xSign, ySign, x, y, z int, shades []uint32) {
	r := s.r
	ell := s.ell
	isEllipsoid := ell != nil
	checkOctant := isEllipsoid && ell.Octant >= 0
	r2 := radius * radius
	dDivisor := radius*2 + 1
	lineInc := r.width
	if ySign < 0 {
		lineInc = -lineInc
	}
	ptLine := s.offsetBeginLine
	seed := rasterSeed(x, y)
	y8 := 0
	iShade := 0
	p := r.pixel
	z1 := 0
	h, w := r.height, r.width
	zb := r.platform.Z
	x0, y0, z0 := x, y, z
	sl, de := r.slab, r.depth
	indexes := &r.shader.SphereShadeIndexes
	var rt [2]float64

	for i, i2, yC := 0, 0, y; i2 <= r2; i, i2, ptLine, yC = i+1, i2+2*i+1, ptLine+lineInc, yC+ySign {
		if yC < 0 {
			if ySign < 0 {
				return
			}
			continue
		}
		if yC >= h {
			if ySign > 0 {
				return
			}
			continue
		}
		s2 := r2
		if !isEllipsoid {
			s2 -= i2
			y8 = ((i*ySign + radius) << 8) / dDivisor
		}
		seed = randu(seed)
		xC := x0
		iRoot := -1
		mode := quadSphere
		for j, j2, offset := 0, 0, ptLine; j2 <= s2; j, j2, offset, xC = j+1, j2+2*j+1, offset+xSign, xC+xSign {
			if xC < 0 {
				if xSign < 0 {
					break
				}
				continue
			}
			if xC >= w {
				if xSign > 0 {
					break
				}
				continue
			}
			var zPixel int
			if isEllipsoid {
				c := &ell.Coef
				fx, fy := float64(xC), float64(yC)
				b2a := (c[4]*fx + c[5]*fy + c[8]) / c[2] / 2
				ca := (c[0]*fx*fx + c[1]*fy*fy + c[3]*fx*fy + c[6]*fx + c[7]*fy - 1) / c[2]
				f := b2a*b2a - ca
				if f < 0 {
					if iRoot >= 0 {
						break
					}
					continue
				}
				f = math.Sqrt(f)
				rt[0] = -b2a - f
				rt[1] = -b2a + f
				iRoot = 0
				if z0 < sl {
					iRoot = 1
				}
				if zPixel = int(rt[iRoot]); zPixel == 0 {
					zPixel = z0
				}
				mode = quadEllipsoid
				z1 = zPixel
				if checkOctant {
					if s.inCutOctant(xC-x0, yC-y0, zPixel-z0) {
						rt[0], iShade = s.cutPlane(rt[0], xC, yC, x, y0, z0)
						zPixel = int(rt[0])
						mode = quadCutaway
					}
					if z0 < sl && zPixel >= sl || z0 >= sl && zPixel < sl {
						z1, zPixel = sl, sl
						mode = quadCore
					}
				}
				if zPixel < sl || zPixel > de || zb[offset] <= z1 {
					continue
				}
			} else {
				zOffset := isqrt(s2 - j2)
				if z0 < sl {
					zPixel = z0 + zOffset
				} else {
					zPixel = z0 - zOffset
				}
				if z0 < sl && zPixel >= sl || z0 >= sl && zPixel < sl {
					zPixel = sl
					mode = quadCore
				}
				if zPixel < sl || zPixel > de || zb[offset] <= zPixel {
					continue
				}
			}
			switch mode {
			case quadCore:
				iShade = shadeSlabClipped - 3 + int(seed>>8&7)
				seed = randu(seed)
				mode = quadSphere
			case quadEllipsoid:
				iShade = r.shader.EllipsoidShade(float32(xC), float32(yC), float32(rt[iRoot]), radius, &ell.Deriv)
			case quadCutaway:
				r.clearPixel(offset, z1)
			default:
				x8 := ((j*xSign + radius) << 8) / dDivisor
				iShade = int(indexes[y8<<8+x8])
			}
			p.WritePixel(offset, zPixel, shades[iShade])
		}
		seed = ((seed + int32(xC+yC)) | 1) & 0x7FFFFFFF
	}
}

// inCutOctant reports whether the screen offset lies in the removed wedge.
func (s *sphereRenderer) inCutOctant(dx, dy, dz int) bool {
	pt := s.ell.ToEllipsoidal.MulVec3(mathutil.Vec3{float64(dx), float64(dy), float64(dz)})
	oct := 0
	if pt[0] < 0 {
		oct |= 1
	}
	if pt[1] < 0 {
		oct |= 2
	}
	if pt[2] < 0 {
		oct |= 4
	}
	return oct == s.ell.Octant
}

// cutPlane returns the depth and shade of the nearest exposed cut face at
// pixel (xC, yC). A face seen edge-on keeps the surface depth zNear.
func (s *sphereRenderer) cutPlane(zNear float64, xC, yC, x, y0, z0 int) (float64, int) {
	if s.planeShade >= 0 {
		return zNear, s.planeShade
	}
	iMin := 3
	zMin := float32(math.MaxFloat32)
	for ii := 0; ii < 3; ii++ {
		d := s.dxyz[ii]
		if d[2] == 0 {
			continue
		}
		ptz := float32(z0) + (-d[0]*float32(xC-x)-d[1]*float32(yC-y0))/d[2]
		if ptz < zMin {
			zMin = ptz
			iMin = ii
		}
	}
	if iMin == 3 {
		iMin = 0
		zMin = float32(z0)
	}
	return float64(zMin), s.planeShades[iMin]
}

// FillSphereXYZ fills a sphere of the given pixel diameter in the current
// color.
func (r *Renderer) FillSphereXYZ(diameter, x, y, z int) {
	switch diameter {
	case 0:
		return
	case 1:
		r.plotPixelClipped(r.argbCurrent, x, y, z)
		return
	}
	limit := maxSphereDiameter
	if r.antialiasThisFrame {
		limit = maxSphereDiameter2
	}
	if diameter <= limit {
		r.spheres.render(r.shadesCurrent, diameter, x, y, z, nil)
	}
}

// FillSphere fills a sphere centered at c.
func (r *Renderer) FillSphere(diameter int, c Point) { r.FillSphereXYZ(diameter, c.X, c.Y, c.Z) }

// FillSphereBits fills a sphere at a rounded float center.
func (r *Renderer) FillSphereBits(diameter int, c mathutil.Vec3) {
	p := screenPoint(c)
	r.FillSphereXYZ(diameter, p.X, p.Y, p.Z)
}

// FillEllipsoid fills e, bounded by a sphere of diameter centered at
// (x, y, z), in the current color.
func (r *Renderer) FillEllipsoid(e *Ellipsoid, x, y, z, diameter int) {
	switch diameter {
	case 0:
		return
	case 1:
		r.plotPixelClipped(r.argbCurrent, x, y, z)
		return
	}
	limit := maxSphereDiameter
	if r.antialiasThisFrame {
		limit = maxSphereDiameter2
	}
	if diameter <= limit {
		r.spheres.render(r.shadesCurrent, diameter, x, y, z, e)
	}
}

// SphereCache exposes the sphere shape cache.
func (r *Renderer) SphereCache() *SphereCache { return &r.spheres.cache }
