package raster

import (
	"image"
	"math"

	"g3d-renderer/internal/colix"
)

// Point is an integer screen-space point; Z grows away from the viewer.
type Point struct {
	X, Y, Z int
}

// randu advances the shade-dithering generator.
func randu(seed int32) int32 {
	return (seed<<16 + seed<<1 + seed) & 0x7FFFFFFF
}

// rasterSeed derives the per-span dither seed from its start pixel.
func rasterSeed(x, y int) int32 {
	return (int32(x<<16) + int32(y<<1)) ^ 0x33333333
}

// roundedIncrement returns (delta << 10) / count rounded away from zero,
// the fixed-point z step along a span.
func roundedIncrement(dz, count int) int {
	round := count / 2
	if dz < 0 {
		round = -round
	}
	return (dz<<10 + round) / count
}

func (r *Renderer) plotPixelClipped(argb uint32, x, y, z int) {
	if r.IsClipped3(x, y, z) {
		return
	}
	offset := y*r.width + x
	if z < r.platform.Z[offset] {
		r.pixel.WritePixel(offset, z, argb)
	}
}

func (r *Renderer) plotPixelUnclipped(argb uint32, x, y, z int) {
	offset := y*r.width + x
	if z < r.platform.Z[offset] {
		r.pixel.WritePixel(offset, z, argb)
	}
}

// plotImagePixel writes a coverage-weighted pixel; see writeImagePixel.
func (r *Renderer) plotImagePixel(argb uint32, x, y, z, shade int, bgArgb uint32, tLog int) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	writeImagePixel(r, r.pixel, shade, tLog, y*r.width+x, z, argb, bgArgb)
}

// noisy picks the dithered neighbour shade for a seeded pixel.
func (r *Renderer) noisy(bits int32) uint32 {
	switch bits {
	case 0:
		return r.argbNoisyDn
	case 1:
		return r.argbNoisyUp
	}
	return r.argbCurrent
}

func gouraudArgb(rScaled, gScaled, bScaled int) uint32 {
	return 0xFF000000 | uint32(rScaled&0xFF0000) | uint32(gScaled&0xFF00) | uint32(bScaled>>8&0xFF)
}

// plotPixelsClippedRaster fills a horizontal span of count pixels from x
// with linear z from zAtLeft to zPastRight. A nil rgbL dithers the current
// shade; otherwise colors are interpolated from rgbL to rgbR.
func (r *Renderer) plotPixelsClippedRaster(count, x, y, zAtLeft, zPastRight int, rgbL, rgbR *Rgb16) {
	slab, depth := r.slab, r.depth
	if count <= 0 || y < 0 || y >= r.height || x >= r.width ||
		(zAtLeft < slab && zPastRight < slab) ||
		(zAtLeft > depth && zPastRight > depth) {
		return
	}
	zb := r.platform.Z
	seed := rasterSeed(x, y)
	zScaled := zAtLeft<<10 + 1<<9
	zInc := roundedIncrement(zPastRight-zAtLeft, count)
	if x < 0 {
		x = -x
		zScaled += zInc * x
		count -= x
		if count <= 0 {
			return
		}
		x = 0
	}
	if count+x > r.width {
		count = r.width - x
	}
	offset := y*r.width + x
	p := r.pixel
	if rgbL == nil {
		for ; count > 0; count-- {
			z := zScaled >> 10
			if z >= slab && z <= depth && z < zb[offset] {
				seed = randu(seed)
				p.WritePixel(offset, z, r.noisy(seed>>16&7))
			}
			offset++
			zScaled += zInc
		}
		return
	}
	rScaled := rgbL.R << 8
	rInc := ((rgbR.R - rgbL.R) << 8) / count
	gScaled := rgbL.G
	gInc := (rgbR.G - gScaled) / count
	bScaled := rgbL.B
	bInc := (rgbR.B - bScaled) / count
	for ; count > 0; count-- {
		z := zScaled >> 10
		if z >= slab && z <= depth && z < zb[offset] {
			p.WritePixel(offset, z, gouraudArgb(rScaled, gScaled, bScaled))
		}
		offset++
		zScaled += zInc
		rScaled += rInc
		gScaled += gInc
		bScaled += bInc
	}
}

// plotPixelsUnclippedRaster is plotPixelsClippedRaster for spans known to
// lie inside the raster and the slab.
func (r *Renderer) plotPixelsUnclippedRaster(count, x, y, zAtLeft, zPastRight int, rgbL, rgbR *Rgb16) {
	if count <= 0 {
		return
	}
	seed := rasterSeed(x, y) & 0x7FFFFFFF
	zScaled := zAtLeft<<10 + 1<<9
	zInc := roundedIncrement(zPastRight-zAtLeft, count)
	offset := y*r.width + x
	zb := r.platform.Z
	p := r.pixel
	if rgbL == nil {
		for ; count > 0; count-- {
			z := zScaled >> 10
			if z < zb[offset] {
				seed = randu(seed)
				p.WritePixel(offset, z, r.noisy(seed>>16&7))
			}
			offset++
			zScaled += zInc
		}
		return
	}
	rScaled := rgbL.R << 8
	rInc := ((rgbR.R - rgbL.R) << 8) / count
	gScaled := rgbL.G
	gInc := (rgbR.G - gScaled) / count
	bScaled := rgbL.B
	bInc := (rgbR.B - bScaled) / count
	for ; count > 0; count-- {
		z := zScaled >> 10
		if z < zb[offset] {
			p.WritePixel(offset, z, gouraudArgb(rScaled, gScaled, bScaled))
		}
		offset++
		zScaled += zInc
		rScaled += rInc
		gScaled += gInc
		bScaled += bInc
	}
}

// plotPixelsClippedRasterBits is the perspective-correct span fill: depth
// comes from zi at every x rather than from a linear step.
func (r *Renderer) plotPixelsClippedRasterBits(count, x, y, zAtLeft, zPastRight int, rgbL, rgbR *Rgb16, zi zInterp) {
	slab, depth := r.slab, r.depth
	if count <= 0 || y < 0 || y >= r.height || x >= r.width ||
		(zAtLeft < slab && zPastRight < slab) ||
		(zAtLeft > depth && zPastRight > depth) {
		return
	}
	zb := r.platform.Z
	seed := rasterSeed(x, y)
	if x < 0 {
		x = -x
		count -= x
		if count <= 0 {
			return
		}
		x = 0
	}
	if count+x > r.width {
		count = r.width - x
	}
	offset := y*r.width + x
	p := r.pixel
	if rgbL == nil {
		for ; count > 0; count-- {
			z := zi.z(x)
			x++
			if z >= slab && z <= depth && z < zb[offset] {
				seed = randu(seed)
				var c uint32
				switch bits := seed >> 16 & 7; {
				case bits < 2:
					c = r.argbNoisyDn
				case bits < 6:
					c = r.argbNoisyUp
				default:
					c = r.argbCurrent
				}
				p.WritePixel(offset, z, c)
			}
			offset++
		}
		return
	}
	rScaled := rgbL.R << 8
	rInc := ((rgbR.R - rgbL.R) << 8) / count
	gScaled := rgbL.G
	gInc := (rgbR.G - gScaled) / count
	bScaled := rgbL.B
	bInc := (rgbR.B - bScaled) / count
	for ; count > 0; count-- {
		z := zi.z(x)
		x++
		if z >= slab && z <= depth && z < zb[offset] {
			p.WritePixel(offset, z, gouraudArgb(rScaled, gScaled, bScaled))
		}
		offset++
		rScaled += rInc
		gScaled += gInc
		bScaled += bInc
	}
}

func (r *Renderer) plotPixelsUnclippedRasterBits(count, x, y int, rgbL, rgbR *Rgb16, zi zInterp) {
	if count <= 0 {
		return
	}
	seed := rasterSeed(x, y) & 0x7FFFFFFF
	offset := y*r.width + x
	zb := r.platform.Z
	p := r.pixel
	if rgbL == nil {
		for ; count > 0; count-- {
			z := zi.z(x)
			x++
			if z < zb[offset] {
				seed = randu(seed)
				p.WritePixel(offset, z, r.noisy(seed>>16&7))
			}
			offset++
		}
		return
	}
	rScaled := rgbL.R << 8
	rInc := ((rgbR.R - rgbL.R) << 8) / count
	gScaled := rgbL.G
	gInc := (rgbR.G - gScaled) / count
	bScaled := rgbL.B
	bInc := (rgbR.B - bScaled) / count
	for ; count > 0; count-- {
		z := zi.z(x)
		x++
		if z < zb[offset] {
			p.WritePixel(offset, z, gouraudArgb(rScaled, gScaled, bScaled))
		}
		offset++
		rScaled += rInc
		gScaled += gInc
		bScaled += bInc
	}
}

// plotPixelsUnclippedCount writes count pixels of one color at constant z.
func (r *Renderer) plotPixelsUnclippedCount(argb uint32, count, x, y, z int) {
	offset := y*r.width + x
	zb := r.platform.Z
	for ; count > 0; count-- {
		if z < zb[offset] {
			r.pixel.WritePixel(offset, z, argb)
		}
		offset++
	}
}

// DrawPixel plots one pixel in the current color.
func (r *Renderer) DrawPixel(x, y, z int) {
	r.plotPixelClipped(r.argbCurrent, x, y, z)
}

// DrawPoints plots dots; scale > 1 stamps a small disk at each point.
func (r *Renderer) DrawPoints(points []Point, scale int) {
	if scale <= 1 {
		r.plotPoints(points, 0, 0)
		return
	}
	s2 := float32(scale*scale) * 0.8
	for i := -scale; i < scale; i++ {
		for j := -scale; j < scale; j++ {
			if float32(i*i+j*j) > s2 {
				continue
			}
			r.plotPoints(points, i, j)
		}
	}
}

func (r *Renderer) plotPoints(points []Point, dx, dy int) {
	c := r.argbCurrent
	w := r.width
	zb := r.platform.Z
	p := r.pixel
	for i := len(points) - 1; i >= 0; i-- {
		pt := points[i]
		x, y, z := pt.X+dx, pt.Y+dy, pt.Z
		if r.IsClipped3(x, y, z) {
			continue
		}
		if offset := y*w + x; z < zb[offset] {
			p.WritePixel(offset, z, c)
		}
		if !r.antialiasThisFrame {
			continue
		}
		// fill out the 2x2 block
		for _, d := range [3][2]int{{1, 0}, {1, 1}, {0, 1}} {
			xx, yy := x+d[0], y+d[1]
			if r.IsClipped3(xx, yy, z) {
				continue
			}
			if offset := yy*w + xx; z < zb[offset] {
				p.WritePixel(offset, z, c)
			}
		}
	}
}

// DrawRect outlines a rectangle of rw x rh pixels with its upper left at
// (x, y). A nonzero zSlab is tested against the clipping planes first.
func (r *Renderer) DrawRect(x, y, z, zSlab, rw, rh int) {
	if zSlab != 0 && r.IsClippedZ(zSlab) {
		return
	}
	w := rw - 1
	h := rh - 1
	xRight := x + w
	yBottom := y + h
	if y >= 0 && y < r.height {
		r.drawHLine(x, y, z, w)
	}
	if yBottom >= 0 && yBottom < r.height {
		r.drawHLine(x, yBottom, z, w)
	}
	if x >= 0 && x < r.width {
		r.drawVLine(x, y, z, h)
	}
	if xRight >= 0 && xRight < r.width {
		r.drawVLine(xRight, y, z, h)
	}
}

func (r *Renderer) drawHLine(x, y, z, w int) {
	if w < 0 {
		x += w
		w = -w
	}
	if x < 0 {
		w += x
		x = 0
	}
	if x+w >= r.width {
		w = r.width - 1 - x
	}
	offset := x + r.width*y
	for i := 0; i <= w; i++ {
		if z < r.platform.Z[offset] {
			r.pixel.WritePixel(offset, z, r.argbCurrent)
		}
		offset++
	}
}

func (r *Renderer) drawVLine(x, y, z, h int) {
	if h < 0 {
		y += h
		h = -h
	}
	if y < 0 {
		h += y
		y = 0
	}
	if y+h >= r.height {
		h = r.height - 1 - y
	}
	offset := x + r.width*y
	for i := 0; i <= h; i++ {
		if z < r.platform.Z[offset] {
			r.pixel.WritePixel(offset, z, r.argbCurrent)
		}
		offset += r.width
	}
}

// FillTextRect fills a label background rectangle clipped to the raster.
func (r *Renderer) FillTextRect(x, y, z, zSlab, wFill, hFill int) {
	if r.IsClippedZ(zSlab) {
		return
	}
	if x < 0 {
		wFill += x
		if wFill <= 0 {
			return
		}
		x = 0
	}
	if x+wFill > r.width {
		wFill = r.width - x
		if wFill <= 0 {
			return
		}
	}
	if y < 0 {
		hFill += y
		if hFill <= 0 {
			return
		}
		y = 0
	}
	if y+hFill > r.height {
		hFill = r.height - y
	}
	for ; hFill > 0; hFill-- {
		r.plotPixelsUnclippedCount(r.argbCurrent, wFill, x, y, z)
		y++
	}
}

// DrawImage plots img scaled to w x h with its upper left at (x, y).
func (r *Renderer) DrawImage(img image.Image, x, y, z, zSlab int, bg colix.Colix, w, h int) {
	if img != nil && w > 0 && h > 0 && !r.IsClippedZ(zSlab) {
		r.PlotImage(x, y, z, img, bg, w, h)
	}
}

// PlotImage plots the opaque pixels of img scaled to w x h. A nonzero bg
// colix is painted under its translucent pixels.
func (r *Renderer) PlotImage(x, y, z int, img image.Image, bg colix.Colix, w, h int) {
	r.SetColix(bg)
	if !r.isPass2 {
		r.translucencyMask = 0xFFFFFFFF
	}
	if bg == 0 {
		r.argbCurrent = 0
	}
	r.plotImage(x, y, z, img, r.argbCurrent, w, h)
}

func (r *Renderer) plotBackgroundImage() {
	r.translucencyMask = 0xFFFFFFFF
	r.translucencyLog = 0
	r.plotImage(0, 0, math.MaxInt32-1, r.backgroundImage, r.bgArgb, r.width, r.height)
}

func (r *Renderer) plotImage(x, y, z int, img image.Image, bg uint32, w, h int) {
	if x+w <= 0 || x >= r.width || y+h <= 0 || y >= r.height {
		return
	}
	buf := imageToArgb(img, w, h, bg)
	if buf == nil {
		return
	}
	zb := r.platform.Z
	p := r.pixel
	if x >= 0 && x+w <= r.width && y >= 0 && y+h <= r.height {
		offset := 0
		for i := 0; i < h; i++ {
			po := (y+i)*r.width + x
			for j := 0; j < w; j++ {
				b := buf[offset]
				offset++
				if z < zb[po] && b&0xFF000000 == 0xFF000000 {
					p.WritePixel(po, z, b)
				}
				po++
			}
		}
		return
	}
	t := r.translucencyLog
	offset := 0
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			b := buf[offset]
			offset++
			if b&0xFF000000 == 0xFF000000 {
				r.plotImagePixel(b, x+j, y+i, z, 8, bg, t)
			}
		}
	}
}

// RenderCrossHairs draws the navigation cursor at nav. minMax holds the
// model's screen extent as minX, maxX, minY, maxY; arms turn yellow toward
// sides where the model is out of view.
func (r *Renderer) RenderCrossHairs(minMax [4]int, navX, navY, navZ float64, navDepth float64) {
	aa := r.antialiasThisFrame
	switch {
	case navDepth < 0:
		r.SetColix(colix.Red)
	case navDepth > 100:
		r.SetColix(colix.Green)
	default:
		r.SetColix(colix.Gold)
	}
	x := max(min(r.width, int(math.Round(navX))), 0)
	y := max(min(r.height, int(math.Round(navY))), 0)
	z := int(math.Round(navZ)) + 1
	off, h, w := 4, 10, 1
	if aa {
		off, h, w = 8, 20, 2
	}
	r.DrawRect(x-off, y, z, 0, h, w)
	r.DrawRect(x, y-off, z, 0, w, h)
	r.DrawRect(x-off, y-off, z, 0, h, h)
	off = h
	h >>= 1
	pick := func(out bool) colix.Colix {
		if out {
			return colix.Yellow
		}
		return colix.Green
	}
	r.SetColix(pick(float64(minMax[1]) < navX))
	r.DrawRect(x-off, y, z, 0, h, w)
	r.SetColix(pick(float64(minMax[0]) > navX))
	r.DrawRect(x+h, y, z, 0, h, w)
	r.SetColix(pick(float64(minMax[3]) < navY))
	r.DrawRect(x, y-off, z, 0, w, h)
	r.SetColix(pick(float64(minMax[2]) > navY))
	r.DrawRect(x, y+h, z, 0, w, h)
}

// clearPixel resets the depth at offset when it lies behind z, so a
// cutaway face can be drawn over the surface it replaces.
func (r *Renderer) clearPixel(offset, z int) {
	if r.platform.Z[offset] > z {
		r.platform.Z[offset] = zEmpty
	}
}
