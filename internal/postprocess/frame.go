package postprocess

import (
	"image"

	"g3d-renderer/internal/raster"
)

// ToNRGBA converts a finished frame to an image. Unwritten pixels take the
// frame background, or stay fully transparent when the frame asks for it.
func ToNRGBA(f raster.Frame) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	if f.Width <= 0 || f.Height <= 0 {
		return img
	}
	bg := f.Background | 0xFF000000
	for y := 0; y < f.Height; y++ {
		row := f.Pixels[y*f.Width : (y+1)*f.Width]
		off := y * img.Stride
		for _, argb := range row {
			switch {
			case argb != 0:
			case f.Transparent:
				off += 4
				continue
			default:
				argb = bg
			}
			img.Pix[off] = uint8(argb >> 16)
			img.Pix[off+1] = uint8(argb >> 8)
			img.Pix[off+2] = uint8(argb)
			img.Pix[off+3] = uint8(argb >> 24)
			off += 4
		}
	}
	return img
}
