package raster

// MergeBufferPixel blends translucent argbB over argbA. The low nibble of
// B's alpha byte is a translucency level selecting a fixed B:A weight:
//
//	0 8:0   1 7:1   2 3:1   3 5:3   4 1:1   5 3:5   6 1:3   7 1:7
//
// An empty A takes the background color.
func MergeBufferPixel(argbA, argbB, bg uint32) uint32 {
	if argbB == 0 || argbA == argbB {
		return argbA
	}
	if argbA == 0 {
		argbA = bg
	}
	rbA := argbA & 0x00FF00FF
	gA := argbA & 0x0000FF00
	rbB := argbB & 0x00FF00FF
	gB := argbB & 0x0000FF00
	switch (argbB >> 24) & 0xF {
	case 0:
		rbA, gA = rbB, gB
	case 1:
		rbA = ((rbB<<2 + rbB<<1 + rbB + rbA) >> 3) & 0x00FF00FF
		gA = ((gB<<2 + gB<<1 + gB + gA) >> 3) & 0x0000FF00
	case 2:
		rbA = ((rbB<<1 + rbB + rbA) >> 2) & 0x00FF00FF
		gA = ((gB<<1 + gB + gA) >> 2) & 0x0000FF00
	case 3:
		rbA = ((rbB<<2 + rbB + rbA<<1 + rbA) >> 3) & 0x00FF00FF
		gA = ((gB<<2 + gB + gA<<1 + gA) >> 3) & 0x0000FF00
	case 4:
		rbA = ((rbA + rbB) >> 1) & 0x00FF00FF
		gA = ((gA + gB) >> 1) & 0x0000FF00
	case 5:
		rbA = ((rbB<<1 + rbB + rbA<<2 + rbA) >> 3) & 0x00FF00FF
		gA = ((gB<<1 + gB + gA<<2 + gA) >> 3) & 0x0000FF00
	case 6:
		rbA = ((rbA<<1 + rbA + rbB) >> 2) & 0x00FF00FF
		gA = ((gA<<1 + gA + gB) >> 2) & 0x0000FF00
	case 7:
		rbA = ((rbA<<2 + rbA<<1 + rbA + rbB) >> 3) & 0x00FF00FF
		gA = ((gA<<2 + gA<<1 + gA + gB) >> 3) & 0x0000FF00
	}
	return 0xFF000000 | rbA | gA
}

// Downsample2d box-filters a (2w)x(2h) buffer into its first w*h entries.
// When bgcheck is non-zero, unwritten pixels take that color first and any
// output equal to four background samples is snapped back to it exactly.
func Downsample2d(pbuf []uint32, width, height int, bgcheck uint32) {
	width4 := width << 1
	if bgcheck != 0 {
		bgcheck &= 0xFFFFFF
		for i, p := range pbuf {
			if p == 0 {
				pbuf[i] = bgcheck
			}
		}
	}
	bg0 := ((bgcheck >> 2) & 0x3F3F3F3F) << 2
	bg0 += (bg0 & 0xC0C0C0C0) >> 6
	offset1, offset4 := 0, 0
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			argb := (pbuf[offset4]>>2)&0x3F3F3F3F +
				(pbuf[offset4+width4]>>2)&0x3F3F3F3F +
				(pbuf[offset4+1]>>2)&0x3F3F3F3F +
				(pbuf[offset4+1+width4]>>2)&0x3F3F3F3F
			offset4 += 2
			argb += (argb & 0xC0C0C0C0) >> 6
			if argb&0xFFFFFF == bg0 {
				argb = bgcheck
			}
			pbuf[offset1] = 0xFF000000 | argb&0xFFFFFF
			offset1++
		}
		offset4 += width4
	}
}

// downsample2dZ keeps the nearest of each 2x2 depth block, halved to the
// new scale, and empties depth under background pixels.
func downsample2dZ(pbuf []uint32, zbuf []int, width, height int, bgcheck uint32) {
	width4 := width << 1
	offset1, offset4 := 0, 0
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			z := min(zbuf[offset4], zbuf[offset4+width4], zbuf[offset4+1], zbuf[offset4+1+width4])
			offset4 += 2
			if z != zEmpty {
				z >>= 1
			}
			if pbuf[offset1] == bgcheck {
				z = zEmpty
			}
			zbuf[offset1] = z
			offset1++
		}
		offset4 += width4
	}
}

// downsampleFullScene averages the supersampled frame to window size.
// Before the translucent pass the depth buffer is reduced too, with a
// background marker one step off the true background so that background
// pixels can be told apart.
func (r *Renderer) downsampleFullScene(withZ bool) {
	bgcheck := r.bgArgb
	if withZ {
		if bgcheck&0xFF == 0xFF {
			bgcheck--
		} else {
			bgcheck++
		}
	}
	var empty []bool
	if r.platform.backgroundTransparent {
		empty = r.markEmptyBlocks()
	}
	Downsample2d(r.platform.Pixels, r.windowWidth, r.windowHeight, bgcheck)
	for i, e := range empty {
		if e {
			r.platform.Pixels[i] = 0
		}
	}
	if withZ {
		downsample2dZ(r.platform.Pixels, r.platform.Z, r.windowWidth, r.windowHeight, 0xFF000000|bgcheck)
		r.antialiasThisFrame = false
		r.setWidthHeight(false)
	}
}

// markEmptyBlocks flags each output pixel whose 2x2 source block was never
// written, so a transparent background survives the box filter.
func (r *Renderer) markEmptyBlocks() []bool {
	w, h := r.windowWidth, r.windowHeight
	if cap(r.emptyBlocks) < w*h {
		r.emptyBlocks = make([]bool, w*h)
	}
	empty := r.emptyBlocks[:w*h]
	pbuf := r.platform.Pixels
	width4 := w << 1
	offset1, offset4 := 0, 0
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			empty[offset1] = pbuf[offset4]|pbuf[offset4+1]|pbuf[offset4+width4]|pbuf[offset4+width4+1] == 0
			offset4 += 2
			offset1++
		}
		offset4 += width4
	}
	return empty
}

// Anaglyph selects how a stored channel snapshot is combined with the
// current frame.
type Anaglyph int

const (
	AnaglyphNone Anaglyph = iota
	AnaglyphRedCyan
	AnaglyphRedBlue
	AnaglyphRedGreen
	AnaglyphCustom
)

// SnapshotAnaglyphChannel stores the low byte of every output pixel for a
// later ApplyAnaglyph. Call it between frames.
func (r *Renderer) SnapshotAnaglyphChannel() {
	n := r.windowWidth * r.windowHeight
	if len(r.anaglyph) != n {
		r.anaglyph = make([]byte, n)
	}
	for i := range r.anaglyph {
		r.anaglyph[i] = byte(r.platform.Pixels[i])
	}
}

// ApplyAnaglyph combines the snapshot into the current frame. Custom mode
// keeps colors[0] bits of the frame and fills colors[1] bits from the
// snapshot.
func (r *Renderer) ApplyAnaglyph(mode Anaglyph, colors [2]uint32) {
	pbuf := r.platform.Pixels
	switch mode {
	case AnaglyphRedCyan:
		for i, b := range r.anaglyph {
			blue := uint32(b)
			pbuf[i] = pbuf[i]&0xFFFF0000 | blue<<8 | blue
		}
	case AnaglyphRedBlue:
		for i, b := range r.anaglyph {
			pbuf[i] = pbuf[i]&0xFFFF0000 | uint32(b)
		}
	case AnaglyphRedGreen:
		for i, b := range r.anaglyph {
			pbuf[i] = pbuf[i]&0xFFFF0000 | uint32(b)<<8
		}
	case AnaglyphCustom:
		c1 := colors[0]
		c2 := colors[1] & 0x00FFFFFF
		for i, b := range r.anaglyph {
			a := uint32(b)
			a = (a | (a|a<<8)<<8) & c2
			pbuf[i] = pbuf[i]&c1 | a
		}
	}
}
