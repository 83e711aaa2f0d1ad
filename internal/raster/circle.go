package raster

import "g3d-renderer/internal/colix"

// circleRenderer draws screen-aligned rings and disks at constant depth
// with the midpoint circle algorithm. Even diameters shift the lower
// right octants in by one pixel so the shape stays centered.
type circleRenderer struct {
	r *Renderer
}

func (c *circleRenderer) init(r *Renderer) { c.r = r }

// walkCircle visits one octant of the circle, calling f for each (x, y) with
// x >= y.
func walkCircle(diameter int, f func(x, y int)) {
	radius := diameter / 2
	x, y := radius, 0
	xChange, yChange := 1-2*radius, 1
	radiusError := 0
	for x >= y {
		f(x, y)
		y++
		radiusError += yChange
		yChange += 2
		if 2*radiusError+xChange > 0 {
			x--
			radiusError += xChange
			xChange += 2
		}
	}
}

func (c *circleRenderer) ring(xC, yC, z, diameter int, clipped bool) {
	r := c.r
	argb := r.argbCurrent
	sc := 1 - diameter&1
	plot := r.plotPixelUnclipped
	if clipped {
		plot = r.plotPixelClipped
	}
	walkCircle(diameter, func(x, y int) {
		plot(argb, xC+x-sc, yC+y-sc, z)
		plot(argb, xC+x-sc, yC-y, z)
		plot(argb, xC-x, yC+y-sc, z)
		plot(argb, xC-x, yC-y, z)
		plot(argb, xC+y-sc, yC+x-sc, z)
		plot(argb, xC+y-sc, yC-x, z)
		plot(argb, xC-y, yC+x-sc, z)
		plot(argb, xC-y, yC-x, z)
	})
}

func (c *circleRenderer) disk(xC, yC, z, diameter int, clipped bool) {
	r := c.r
	argb := r.argbCurrent
	sc := 1 - diameter&1
	span := r.plotPixelsUnclippedCount
	if clipped {
		span = r.plotPixelsClippedCount
	}
	walkCircle(diameter, func(x, y int) {
		span(argb, 2*x+1-sc, xC-x, yC+y-sc, z)
		span(argb, 2*x+1-sc, xC-x, yC-y, z)
		span(argb, 2*y+1-sc, xC-y, yC+x-sc, z)
		span(argb, 2*y+1-sc, xC-y, yC-x, z)
	})
}

// plotPixelsClippedCount writes a constant-depth span, trimmed to the
// window and the slab.
func (r *Renderer) plotPixelsClippedCount(argb uint32, count, x, y, z int) {
	if y < 0 || y >= r.height || x >= r.width || z < r.slab || z > r.depth {
		return
	}
	if x < 0 {
		count += x
		x = 0
	}
	if count+x > r.width {
		count = r.width - x
	}
	if count <= 0 {
		return
	}
	r.plotPixelsUnclippedCount(argb, count, x, y, z)
}

// circleClipped reports whether a circle touches the window edge.
func (r *Renderer) circleClipped(diameter, x, y int) bool {
	rad := (diameter + 1) / 2
	return x < rad || x+rad >= r.width || y < rad || y+rad >= r.height
}

// DrawFilledCircle draws a screen-aligned disk with an optional ring, as
// used for halos and handles. A zero colix skips that part.
func (r *Renderer) DrawFilledCircle(colixRing, colixFill colix.Colix, diameter, x, y, z int) {
	if r.IsClippedZ(z) {
		return
	}
	clipped := r.circleClipped(diameter, x, y)
	if clipped && r.IsClippedXY(diameter, x, y) {
		return
	}
	if colixRing != 0 && r.SetColix(colixRing) {
		r.circle.ring(x, y, z, diameter, clipped)
	}
	if colixFill != 0 && r.SetColix(colixFill) {
		r.circle.disk(x, y, z, diameter, clipped)
	}
}

// VolumeRenderDot stamps a flat disk in the current color for volume
// rendering.
func (r *Renderer) VolumeRenderDot(diameter, x, y, z int) {
	if diameter == 1 {
		r.plotPixelClipped(r.argbCurrent, x, y, z)
		return
	}
	if r.IsClippedZ(z) {
		return
	}
	clipped := r.circleClipped(diameter, x, y)
	if clipped && r.IsClippedXY(diameter, x, y) {
		return
	}
	r.circle.disk(x, y, z, diameter, clipped)
}
