package drawlist

import (
	"fmt"
	"math"

	"g3d-renderer/internal/mathutil"
	"g3d-renderer/internal/raster"
)

// Options control a replay.
type Options struct {
	// TranslucentMode false keeps only the nearest translucent layer.
	TranslucentMode      bool
	AntialiasTranslucent bool
	// Font is used by text commands without a font of their own.
	Font raster.Font
}

// Render draws one frame: the opaque pass, then the translucent pass when
// any translucent color was seen. Window size and background are the
// renderer's; see List.Width and List.Background.
func (l *List) Render(r *raster.Renderer, opt Options) error {
	if err := r.BeginFrame(l.Rotation, opt.TranslucentMode); err != nil {
		return fmt.Errorf("drawlist: render: %w", err)
	}
	if opt.Font != (raster.Font{}) {
		r.SetFont(opt.Font)
	}
	l.pass(r)
	if r.SetPass2(opt.AntialiasTranslucent) {
		l.pass(r)
	}
	r.EndFrame()
	return nil
}

func (l *List) pass(r *raster.Renderer) {
	k := 1.0
	if r.IsAntialiased() {
		k = 2
	}
	for i := range l.steps {
		l.steps[i].draw(r, k)
	}
	r.RenderAllStrings()
}

func scaled(v Vec, k float64) mathutil.Vec3 {
	return mathutil.Vec3{v[0] * k, v[1] * k, v[2]}
}

func iround(f float64) int { return int(math.Floor(f + 0.5)) }

func point(v Vec, k float64) raster.Point {
	return raster.Point{X: iround(v[0] * k), Y: iround(v[1] * k), Z: iround(v[2])}
}

// draw issues one command. x, y and pixel sizes scale by k on a
// supersampled buffer; depth does not.
func (s *step) draw(r *raster.Renderer, k float64) {
	c := s.cmd
	p := func(i int) mathutil.Vec3 { return scaled(c.Points[i], k) }
	d := iround(float64(c.Diameter) * k)

	switch c.Op {
	case "sphere":
		if r.SetColix(s.c1) {
			r.FillSphereBits(d, p(0))
		}
	case "ellipsoid":
		if !r.SetColix(s.c1) {
			return
		}
		var axes [3]mathutil.Vec3
		maxLen := 0.0
		for i, a := range c.Axes {
			axes[i] = mathutil.Vec3(a).Scale(k)
			maxLen = max(maxLen, axes[i].Len())
		}
		octant := -1
		if c.Octant != nil {
			octant = *c.Octant
		}
		e := raster.NewEllipsoid(p(0), axes, octant)
		at := point(c.Points[0], k)
		r.FillEllipsoid(&e, at.X, at.Y, at.Z, iround(2*maxLen))
	case "cylinder":
		r.FillCylinderBits2(s.c1, s.c2, s.endcap, d, p(0), p(1))
	case "cone":
		if r.SetColix(s.c1) {
			r.FillCone(s.endcap, d, p(0), p(1), c.Barb)
		}
	case "line":
		r.DrawLineBits(s.c1, s.c2, p(0), p(1))
	case "dashed":
		if r.SetColix(s.c1) {
			r.DrawDashedLine(c.Dash[0], c.Dash[1], p(0), p(1))
		}
	case "triangle":
		switch {
		case s.gouraud:
			if r.SetColix(s.vertex[0].Colix) {
				r.FillTriangleBits(p(0), s.vertex[0], p(1), s.vertex[1], p(2), s.vertex[2])
			}
		case r.SetColix(s.c1):
			r.FillTriangleFlat(p(0), p(1), p(2), c.Solid)
		}
	case "quad":
		if r.SetColix(s.c1) {
			r.FillQuadrilateral(p(0), p(1), p(2), p(3), c.Solid)
		}
	case "hermite":
		if !r.SetColix(s.c1) {
			return
		}
		if len(c.Diameters) == 3 {
			r.FillHermite(c.Tension,
				iround(float64(c.Diameters[0])*k), iround(float64(c.Diameters[1])*k), iround(float64(c.Diameters[2])*k),
				p(0), p(1), p(2), p(3))
		} else {
			r.DrawHermite4(c.Tension, p(0), p(1), p(2), p(3))
		}
	case "ribbon":
		if r.SetColix(s.c1) {
			var pts [8]mathutil.Vec3
			for i := range pts {
				pts[i] = p(i)
			}
			r.DrawHermite7(c.Fill, c.Border, c.Tension, pts, c.Aspect, s.c2)
		}
	case "circle":
		at := point(c.Points[0], k)
		r.DrawFilledCircle(s.c2, s.c1, d, at.X, at.Y, at.Z)
	case "text":
		if r.SetColix(s.c1) {
			at := point(c.Points[0], k)
			r.DrawString(c.Text, s.font, at.X, at.Y, at.Z, at.Z, s.c2)
		}
	case "image":
		if r.IsPass2() {
			return
		}
		at := point(c.Points[0], k)
		w, h := c.Size[0], c.Size[1]
		if w <= 0 || h <= 0 {
			b := s.img.Bounds()
			w, h = b.Dx(), b.Dy()
		}
		r.DrawImage(s.img, at.X, at.Y, at.Z, at.Z, s.c2, iround(float64(w)*k), iround(float64(h)*k))
	case "rect":
		if r.SetColix(s.c1) {
			at := point(c.Points[0], k)
			r.DrawRect(at.X, at.Y, at.Z, 0, iround(float64(c.Size[0])*k), iround(float64(c.Size[1])*k))
		}
	case "points":
		if r.SetColix(s.c1) {
			pts := make([]raster.Point, len(c.Points))
			for i, v := range c.Points {
				pts[i] = point(v, k)
			}
			r.DrawPoints(pts, max(1, iround(float64(c.Scale)*k)))
		}
	}
}
