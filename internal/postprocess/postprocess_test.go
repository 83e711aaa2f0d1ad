package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"g3d-renderer/internal/raster"
)

func TestToNRGBA(t *testing.T) {
	f := raster.Frame{
		Width:      2,
		Height:     2,
		Pixels:     []uint32{0xFF102030, 0, 0, 0xFFFFFFFF},
		Background: 0x000A0B0C,
	}
	img := ToNRGBA(f)
	assert.Equal(t, color.NRGBA{0x10, 0x20, 0x30, 0xFF}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{0x0A, 0x0B, 0x0C, 0xFF}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}, img.NRGBAAt(1, 1))

	f.Transparent = true
	img = ToNRGBA(f)
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{0x10, 0x20, 0x30, 0xFF}, img.NRGBAAt(0, 0))
}

func TestToNRGBAEmptyFrame(t *testing.T) {
	img := ToNRGBA(raster.Frame{})
	assert.True(t, img.Bounds().Empty())
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func assertNear(t *testing.T, want, got color.NRGBA) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 1)
	assert.InDelta(t, want.G, got.G, 1)
	assert.InDelta(t, want.B, got.B, 1)
	assert.InDelta(t, want.A, got.A, 1)
}

func TestScaleKeepsSolidColor(t *testing.T) {
	c := color.NRGBA{200, 100, 50, 255}
	out := Scale(solid(40, 40, c), 10, 10)
	require.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())
	assertNear(t, c, out.NRGBAAt(5, 5))
}

func TestScaleSameSizeIsIdentity(t *testing.T) {
	img := solid(8, 8, color.NRGBA{1, 2, 3, 255})
	assert.Same(t, img, Scale(img, 8, 8))
}

func TestScaleAvoidsDarkHalo(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 20; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	out := Scale(img, 10, 10)
	edge := out.NRGBAAt(5, 5)
	if edge.A > 0 {
		assert.GreaterOrEqual(t, edge.R, uint8(250))
	}
}

func TestContentBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	assert.True(t, ContentBounds(img).Empty())
	img.SetNRGBA(3, 4, color.NRGBA{A: 255})
	img.SetNRGBA(10, 12, color.NRGBA{A: 1})
	assert.Equal(t, image.Rect(3, 4, 11, 13), ContentBounds(img))
}

func TestFitCentersContent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 10; y < 20; y++ {
		for x := 10; x < 30; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}
	out := Fit(img, 50, 50, 0.8)
	require.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
	cb := ContentBounds(out)
	assert.Equal(t, 40, cb.Dx())
	assert.Equal(t, 20, cb.Dy())
	assert.Equal(t, 5, cb.Min.X)
	assert.Equal(t, 15, cb.Min.Y)
	assertNear(t, color.NRGBA{255, 0, 0, 255}, out.NRGBAAt(25, 25))
}

func TestFitEmptyImage(t *testing.T) {
	out := Fit(image.NewNRGBA(image.Rect(0, 0, 10, 10)), 16, 16, 0.9)
	assert.True(t, ContentBounds(out).Empty())
}
