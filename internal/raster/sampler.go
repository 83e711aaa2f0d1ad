package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// sampleArgb performs bilinear filtering with clamped UVs in [0,1] and
// returns packed non-premultiplied ARGB.
func sampleArgb(tex *image.NRGBA, u, v float64) uint32 {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	u = min(1, max(0, u))
	v = min(1, max(0, v))

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := min(x0+1, w-1)
	y1 := min(y0+1, h-1)
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	stride := tex.Stride
	pix := tex.Pix
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	var out uint32
	for c, shift := range [4]uint{16, 8, 0, 24} {
		f := float64(pix[i00+c])*w00 + float64(pix[i10+c])*w10 +
			float64(pix[i01+c])*w01 + float64(pix[i11+c])*w11
		out |= uint32(f+0.5) << shift
	}
	return out
}

// imageToArgb resamples img to w x h packed ARGB. A nonzero bg is painted
// under translucent source pixels; otherwise they keep their alpha.
func imageToArgb(img image.Image, w, h int, bg uint32) []uint32 {
	if img == nil || w <= 0 || h <= 0 {
		return nil
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	src, ok := img.(*image.NRGBA)
	if !ok {
		src = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(src, src.Rect, img, b.Min, draw.Src)
	}
	out := make([]uint32, w*h)
	du := 1 / float64(max(1, w-1))
	dv := 1 / float64(max(1, h-1))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			argb := sampleArgb(src, float64(x)*du, float64(y)*dv)
			if bg != 0 {
				argb = MergeBufferPixel(bg|0xFF000000, argb&0xFFFFFF|alphaToLog(argb>>24)<<24, bg)
			}
			out[y*w+x] = argb
		}
	}
	return out
}

// alphaToLog maps 8-bit alpha to the 0..7 translucency log used by
// MergeBufferPixel, 0 being opaque.
func alphaToLog(a uint32) uint32 {
	if a >= 0xF0 {
		return 0
	}
	return 7 - a>>5
}
