package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// ContentBounds returns the smallest rectangle holding every pixel with
// nonzero alpha. It is empty when the image is fully transparent.
func ContentBounds(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x, off = x+1, off+4 {
			if img.Pix[off+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Fit crops img to its content, scales it so the longer side fills
// fill of the canvas and centers it on a transparent w x h canvas.
func Fit(img *image.NRGBA, w, h int, fill float64) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	cb := ContentBounds(img)
	if cb.Empty() || w <= 0 || h <= 0 {
		return canvas
	}
	k := min(float64(w)*fill/float64(cb.Dx()), float64(h)*fill/float64(cb.Dy()))
	nw := max(1, int(float64(cb.Dx())*k+0.5))
	nh := max(1, int(float64(cb.Dy())*k+0.5))

	scaled := Scale(img.SubImage(cb).(*image.NRGBA), nw, nh)
	at := image.Pt((w-nw)/2, (h-nh)/2)
	draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(scaled.Bounds().Size())}, scaled, scaled.Bounds().Min, draw.Src)
	return canvas
}
