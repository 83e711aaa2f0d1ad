package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
)

func newTestRenderer(t *testing.T, w, h int, opts ...Option) *Renderer {
	t.Helper()
	r := New(nil, opts...)
	r.SetWindowParameters(w, h, false)
	require.NoError(t, r.BeginFrame(mathutil.Mat3Identity(), true))
	return r
}

func (r *Renderer) zAt(x, y int) int { return r.platform.Z[y*r.width+x] }

func (r *Renderer) pixelAt(x, y int) uint32 { return r.platform.Pixels[y*r.width+x] }

// countingWriter records how often each offset is written.
type countingWriter struct {
	next   PixelWriter
	writes map[int]int
}

func (w *countingWriter) WritePixel(offset, z int, argb uint32) {
	w.writes[offset]++
	w.next.WritePixel(offset, z, argb)
}

func TestBeginFrameRejectsEmptyWindow(t *testing.T) {
	r := New(nil)
	r.SetWindowParameters(0, 10, false)
	err := r.BeginFrame(mathutil.Mat3Identity(), true)
	require.ErrorIs(t, err, ErrAllocation)
	assert.False(t, r.HasContent())
}

func TestBeginFrameClears(t *testing.T) {
	r := newTestRenderer(t, 32, 32)
	require.True(t, r.SetColix(colix.Red))
	r.FillSphereXYZ(9, 16, 16, 50)
	r.EndFrame()
	assert.True(t, r.HasContent())

	require.NoError(t, r.BeginFrame(mathutil.Mat3Identity(), true))
	assert.False(t, r.HasContent())
	assert.Equal(t, 2, r.Stats().Frames)
}

func TestClipCode3(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	assert.Zero(t, r.ClipCode3(50, 50, 10))
	assert.Equal(t, ClipXLT, r.ClipCode3(-1, 50, 10))
	assert.Equal(t, ClipXGT|ClipYGT, r.ClipCode3(100, 100, 10))
	assert.Equal(t, ClipHuge, r.ClipCode3(-1000, 50, 10))

	r.SetSlab(20)
	assert.Equal(t, ClipZLT, r.ClipCode3(50, 50, 10))
	assert.True(t, r.IsClippedZ(10))
	assert.False(t, r.IsClippedZ(30))
}

func TestOpaqueFrameSkipsTranslucentPass(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	r.FillSphereXYZ(11, 32, 32, 100)
	assert.False(t, r.HaveTranslucentObjects())
	assert.False(t, r.SetPass2(false))
	r.EndFrame()
	assert.Zero(t, r.Stats().TranslucentTouches)
	assert.Zero(t, r.Stats().Pass2Frames)
}

func TestTranslucentPassBlends(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	r.FillSphereXYZ(21, 32, 32, 100)
	opaque := r.pixelAt(32, 32)
	edge := r.pixelAt(24, 32)

	tc := colix.Blue.Translucent(0.5)
	assert.False(t, r.SetColix(tc), "translucent colors wait for the second pass")
	assert.True(t, r.HaveTranslucentObjects())

	require.True(t, r.SetPass2(false))
	assert.True(t, r.IsPass2())
	assert.False(t, r.SetColix(colix.Green), "opaque colors are done after the first pass")
	require.True(t, r.SetColix(tc))
	r.FillSphereXYZ(11, 32, 32, 50)
	r.EndFrame()

	assert.Positive(t, r.Stats().TranslucentTouches)
	f := r.Frame()
	assert.NotEqual(t, opaque, f.Pixels[32*64+32])
	assert.Equal(t, edge, f.Pixels[32*64+24], "pixels outside the translucent sphere keep their color")
}

func TestMergeBufferPixel(t *testing.T) {
	const black, white = 0xFF000000, 0xFFFFFFFF
	assert.Equal(t, uint32(black), MergeBufferPixel(black, 0, 0), "empty B keeps A")
	assert.Equal(t, uint32(white), MergeBufferPixel(white, white, 0))
	assert.Equal(t, uint32(0xFFFFFFFF), MergeBufferPixel(black, 0x00FFFFFF, 0), "level 0 is all B")
	assert.Equal(t, uint32(0xFF7F7F7F), MergeBufferPixel(black, 0x04FFFFFF, 0), "level 4 is half and half")
	assert.Equal(t, uint32(0xFF1F1F1F), MergeBufferPixel(black, 0x07FFFFFF, 0), "level 7 is one eighth B")
	assert.Equal(t, uint32(0xFFDFDFDF), MergeBufferPixel(black, 0x01FFFFFF, 0), "level 1 is seven eighths B")
	assert.Equal(t, uint32(0xFF7F7F7F), MergeBufferPixel(0, 0x04FFFFFF, black), "empty A takes the background")
}

func TestDownsampleUniformBlock(t *testing.T) {
	buf := []uint32{0xFF102030, 0xFF102030, 0xFF102030, 0xFF102030}
	Downsample2d(buf, 1, 1, 0)
	assert.Equal(t, uint32(0xFF102030), buf[0])

	buf = []uint32{0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF}
	Downsample2d(buf, 1, 1, 0)
	assert.Equal(t, uint32(0xFFFFFFFF), buf[0])
}

func TestAntialiasedFrameIsWindowSized(t *testing.T) {
	r := New(nil)
	r.SetWindowParameters(20, 10, true)
	require.NoError(t, r.BeginFrame(mathutil.Mat3Identity(), true))
	assert.Equal(t, 40, r.Width())
	assert.Equal(t, 20, r.Height())
	require.True(t, r.SetColix(colix.White))
	r.DrawRect(0, 0, 10, 0, 40, 20)
	r.EndFrame()

	f := r.Frame()
	assert.Equal(t, 20, f.Width)
	assert.Equal(t, 10, f.Height)
	assert.Len(t, f.Pixels, 200)
}

func TestScreenedColorsDrawCheckerboard(t *testing.T) {
	r := newTestRenderer(t, 32, 32)
	sc := colix.Red.Translucent(-1)
	require.True(t, sc.IsScreened())
	require.True(t, r.SetColix(sc), "screened colors draw in the first pass")
	r.FillSphereXYZ(15, 16, 16, 50)
	written := 0
	for x := 12; x < 20; x++ {
		if r.zAt(x, 16) != zEmpty {
			written++
		}
	}
	assert.Equal(t, 4, written)
}

func TestVolumeRenderRestoresLighting(t *testing.T) {
	r := New(nil)
	before := r.Lighting()
	r.VolumeRender(true)
	assert.Equal(t, 100, r.Lighting().AmbientPercent)
	assert.Zero(t, r.Lighting().DiffusePercent)
	r.VolumeRender(false)
	assert.Equal(t, before, r.Lighting())
}

func TestDepthShadingFadesTowardBackground(t *testing.T) {
	r := newTestRenderer(t, 8, 8)
	r.SetSlabAndZShade(0, 1000, 0, 100, 1)
	r.plotPixelClipped(0xFFFFFFFF, 1, 1, 0)
	r.plotPixelClipped(0xFFFFFFFF, 2, 1, 50)
	r.plotPixelClipped(0xFFFFFFFF, 3, 1, 150)

	assert.Equal(t, uint32(0xFFFFFFFF), r.pixelAt(1, 1))
	assert.Equal(t, uint32(0xFF3F3F3F), r.pixelAt(2, 1))
	assert.Equal(t, zEmpty, r.zAt(3, 1), "behind zDepth is dropped")
}

func TestDepthShadingPowerZeroShowsDepth(t *testing.T) {
	r := newTestRenderer(t, 8, 8)
	r.SetSlabAndZShade(0, 1000, 0, 100, 0)
	r.plotPixelClipped(0xFFFF0000, 2, 1, 50)
	r.EndFrame()
	assert.Equal(t, uint32(0xFF7F7F7F), r.pixelAt(2, 1))
	assert.Zero(t, r.pixelAt(0, 0))
}

func TestAnaglyphRedCyan(t *testing.T) {
	r := newTestRenderer(t, 4, 4)
	r.plotPixelClipped(0xFF0000AB, 0, 0, 10)
	r.EndFrame()
	r.SnapshotAnaglyphChannel()

	require.NoError(t, r.BeginFrame(mathutil.Mat3Identity(), true))
	r.plotPixelClipped(0xFFCC0000, 0, 0, 10)
	r.EndFrame()
	r.ApplyAnaglyph(AnaglyphRedCyan, [2]uint32{})
	assert.Equal(t, uint32(0xFFCCABAB), r.pixelAt(0, 0))
}

func TestAntialiasedFrameKeepsTransparentBackground(t *testing.T) {
	for _, transparent := range []bool{false, true} {
		r := New(nil)
		r.SetBackgroundTransparent(transparent)
		r.SetWindowParameters(32, 32, true)
		require.NoError(t, r.BeginFrame(mathutil.Mat3Identity(), true))
		require.True(t, r.SetColix(colix.Red))
		r.FillSphereXYZ(20, 32, 32, 50)
		r.EndFrame()

		f := r.Frame()
		assert.NotZero(t, f.Pixels[16*32+16])
		if transparent {
			assert.Zero(t, f.Pixels[0], "untouched corner stays unwritten")
		} else {
			assert.Equal(t, uint32(0xFF000000), f.Pixels[0])
		}
	}
}
