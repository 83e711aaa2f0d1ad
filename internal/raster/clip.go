package raster

import "math"

// Cohen-Sutherland region codes.
const (
	ClipYGT = 1 << iota
	ClipYLT
	ClipXGT
	ClipXLT
	ClipZGT
	ClipZLT

	// ClipHuge marks a point so far off screen that the primitive is dropped.
	ClipHuge = -1
)

// Endcap styles for cylinders and cones.
type Endcap int8

const (
	EndcapNone Endcap = iota
	EndcapHidden
	EndcapFlat
	EndcapSpherical
	EndcapOpenToSpherical
	EndcapFlatToSpherical
)

// setWidthHeight derives the raster size and clipping extents from the
// window size, doubled per axis when supersampling.
func (r *Renderer) setWidthHeight(antialias bool) {
	r.width = r.windowWidth
	r.height = r.windowHeight
	if antialias {
		r.width <<= 1
		r.height <<= 1
	}
	r.xLast = r.width - 1
	r.yLast = r.height - 1
	r.displayMinX = -(r.width >> 1)
	r.displayMaxX = r.width - r.displayMinX
	r.displayMinY = -(r.height >> 1)
	r.displayMaxY = r.height - r.displayMinY
	r.displayMinX2 = r.displayMinX << 2
	r.displayMaxX2 = r.displayMaxX << 2
	r.displayMinY2 = r.displayMinY << 2
	r.displayMaxY2 = r.displayMaxY << 2
	r.ht3 = r.height * 3
	r.bufferSize = r.width * r.height
}

// Width is the raster width, doubled while supersampling.
func (r *Renderer) Width() int { return r.width }

// Height is the raster height, doubled while supersampling.
func (r *Renderer) Height() int { return r.height }

// Slab returns the near clipping plane.
func (r *Renderer) Slab() int { return r.slab }

// Depth returns the far clipping plane.
func (r *Renderer) Depth() int { return r.depth }

// SetSlab sets the near clipping plane, clamped at 0.
func (r *Renderer) SetSlab(v int) { r.slab = max(0, v) }

// SetDepth sets the far clipping plane, clamped at 0.
func (r *Renderer) SetDepth(v int) { r.depth = max(0, v) }

// IsClipped3 reports whether a point lies outside the raster or the slab/depth range.
func (r *Renderer) IsClipped3(x, y, z int) bool {
	return x < 0 || x >= r.width || y < 0 || y >= r.height || z < r.slab || z > r.depth
}

// IsClipped reports whether (x, y) lies outside the raster.
func (r *Renderer) IsClipped(x, y int) bool {
	return x < 0 || x >= r.width || y < 0 || y >= r.height
}

// IsInDisplayRange reports whether (x, y) lies within half a screen of the raster.
func (r *Renderer) IsInDisplayRange(x, y int) bool {
	return x >= r.displayMinX && x < r.displayMaxX && y >= r.displayMinY && y < r.displayMaxY
}

// IsClippedXY reports whether a disc of the given diameter centered at
// (x, y) misses the raster entirely.
func (r *Renderer) IsClippedXY(diameter, x, y int) bool {
	rad := (diameter + 1) >> 1
	return x < -rad || x >= r.width+rad || y < -rad || y >= r.height+rad
}

// IsClippedZ reports whether z is outside the slab/depth range.
// math.MinInt32 is never clipped.
func (r *Renderer) IsClippedZ(z int) bool {
	return z != math.MinInt32 && (z < r.slab || z > r.depth)
}

// ClipCode3 returns the region code of a point. Points beyond twice the
// display range return ClipHuge.
func (r *Renderer) ClipCode3(x, y, z int) int {
	code := 0
	if x < 0 {
		if x < r.displayMinX2 {
			return ClipHuge
		}
		code |= ClipXLT
	} else if x >= r.width {
		if x > r.displayMaxX2 {
			return ClipHuge
		}
		code |= ClipXGT
	}
	if y < 0 {
		if y < r.displayMinY2 {
			return ClipHuge
		}
		code |= ClipYLT
	} else if y >= r.height {
		if y > r.displayMaxY2 {
			return ClipHuge
		}
		code |= ClipYGT
	}
	if z < r.slab {
		code |= ClipZLT
	} else if z > r.depth {
		code |= ClipZGT
	}
	return code
}

// ClipCode returns the depth-only region code.
func (r *Renderer) ClipCode(z int) int {
	switch {
	case z < r.slab:
		return ClipZLT
	case z > r.depth:
		return ClipZGT
	}
	return 0
}
