package raster

// PixelWriter is the single path by which rasterizers write pixels.
// Callers have already checked z against the opaque depth buffer.
type PixelWriter interface {
	WritePixel(offset, z int, argb uint32)
}

// directWriter stores color and depth into the opaque buffers.
type directWriter struct {
	buf *Platform
}

func (w *directWriter) WritePixel(offset, z int, argb uint32) {
	w.buf.Z[offset] = z
	w.buf.Pixels[offset] = argb
}

// translucentWriter keeps the nearest translucent layer in the T buffers.
// A layer it displaces, or a new layer arriving behind it, is folded into
// the opaque buffer when the two are more than zMargin apart; closer layers
// are dropped. This bounds blending to two translucent layers.
type translucentWriter struct {
	buf *Platform
	r   *Renderer
}

func (w *translucentWriter) WritePixel(offset, z int, argb uint32) {
	b := w.buf
	r := w.r
	zT := b.ZT[offset]
	switch {
	case z < zT:
		argbT := b.PixelsT[offset]
		if !r.translucentCoverOnly && argbT != 0 && zT-z > r.zMargin {
			b.Pixels[offset] = MergeBufferPixel(b.Pixels[offset], argbT, r.bgArgb)
		}
		b.ZT[offset] = z
		b.PixelsT[offset] = argb & r.translucencyMask
	case z == zT:
	case !r.translucentCoverOnly && z-zT > r.zMargin:
		b.Pixels[offset] = MergeBufferPixel(b.Pixels[offset], argb&r.translucencyMask, r.bgArgb)
	}
}

// screenedWriter passes on every other pixel in a checkerboard.
type screenedWriter struct {
	next PixelWriter
	r    *Renderer
}

func (w *screenedWriter) WritePixel(offset, z int, argb uint32) {
	width := w.r.width
	if (offset%width)%2 == (offset/width)%2 {
		w.next.WritePixel(offset, z, argb)
	}
}

// fog holds the depth-shading planes shared by the depth-shaded writers.
type fog struct {
	zSlab, zDepth, zPower int
	bgR, bgG, bgB         int
}

// depthShadedWriter fades colors toward the background between zSlab and
// zDepth and drops anything behind zDepth.
type depthShadedWriter struct {
	next PixelWriter
	fog  *fog
}

func (w *depthShadedWriter) WritePixel(offset, z int, argb uint32) {
	f := w.fog
	if z > f.zDepth {
		return
	}
	if z >= f.zSlab && argb != 0 {
		t := float32(f.zDepth-z) / float32(f.zDepth-f.zSlab)
		for i := 0; i < f.zPower; i++ {
			t *= t
		}
		r := f.bgR + int(t*float32(int(argb>>16&0xFF)-f.bgR))
		g := f.bgG + int(t*float32(int(argb>>8&0xFF)-f.bgG))
		b := f.bgB + int(t*float32(int(argb&0xFF)-f.bgB))
		argb = argb&0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	}
	w.next.WritePixel(offset, z, argb)
}

// showZBuffer replaces every drawn pixel by a grey level for its depth.
func (f *fog) showZBuffer(buf *Platform) {
	span := float32(f.zDepth - f.zSlab)
	for i, p := range buf.Pixels {
		if p == 0 {
			continue
		}
		v := 255 * float32(f.zDepth-buf.Z[i]) / span
		g := uint32(min(255, max(0, int(v))))
		buf.Pixels[i] = 0xFF000000 | g<<16 | g<<8 | g
	}
}

// writeImagePixel plots a glyph or image pixel. shade 8 is opaque, 0 is
// skipped and 1..7 is a translucency level which, raised by tLog, blends
// over bgArgb or over what is already in the buffer.
func writeImagePixel(r *Renderer, p PixelWriter, shade, tLog, offset, z int, argb, bgArgb uint32) {
	if z >= r.platform.Z[offset] {
		return
	}
	switch shade {
	case 0:
		return
	case 8:
		p.WritePixel(offset, z, argb)
		return
	}
	shade += tLog
	if shade > 7 {
		return
	}
	base := r.platform.Pixels[offset]
	if bgArgb != 0 {
		base = MergeBufferPixel(base, bgArgb, bgArgb)
	}
	p.WritePixel(offset, z, MergeBufferPixel(base, argb&0xFFFFFF|uint32(shade)<<24, r.bgArgb))
}

// writerIndex bits select one of the prebuilt chains.
const (
	chainPass2 = 1 << iota
	chainScreened
	chainShaded
	chainCount = 1 << iota
)

// buildWriters composes every chain over the current buffers.
func (r *Renderer) buildWriters() {
	direct := &directWriter{buf: &r.platform}
	trans := &translucentWriter{buf: &r.platform, r: r}
	for i := 0; i < chainCount; i++ {
		var w PixelWriter = direct
		if i&chainPass2 != 0 {
			w = trans
		}
		if i&chainScreened != 0 {
			w = &screenedWriter{next: w, r: r}
		}
		if i&chainShaded != 0 {
			w = &depthShadedWriter{next: w, fog: &r.fog}
		}
		if r.wrapWriter != nil {
			w = r.wrapWriter(w)
		}
		r.writers[i] = w
	}
	r.selectWriter()
}

// selectWriter installs the chain matching the pass, screening and fog state.
func (r *Renderer) selectWriter() {
	i := 0
	if r.isPass2 {
		i |= chainPass2
	}
	if r.wasScreened {
		i |= chainScreened
	}
	if r.fogOn {
		i |= chainShaded
	}
	r.pixel = r.writers[i]
}
