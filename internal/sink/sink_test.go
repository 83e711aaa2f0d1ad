package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 60), uint8(y * 100), 7, 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"webp": WebP, ".TGA": TGA, "Png": PNG} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("bmp")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestEncodeRoundTripsPixels(t *testing.T) {
	src := testImage()
	decoders := map[Format]func(io.Reader) (image.Image, error){
		WebP: webp.Decode,
		TGA:  tga.Decode,
		PNG:  png.Decode,
	}
	for f, decode := range decoders {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, src, f), f)
		got, err := decode(&buf)
		require.NoError(t, err, f)
		assert.Equal(t, src.Bounds(), got.Bounds(), f)
		r, g, b, a := got.At(3, 2).RGBA()
		assert.Equal(t, [4]uint32{180, 200, 7, 255}, [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8}, f)
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, testImage(), Format("bmp"))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestWriteFileCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "frame.png")
	require.NoError(t, WriteFile(path, testImage()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.ErrorIs(t, WriteFile(filepath.Join(t.TempDir(), "x.gif"), testImage()), ErrFormat)
}
