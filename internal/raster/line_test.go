package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
)

func TestPerspectiveDepthIsHyperbolic(t *testing.T) {
	zi := newZInterp(0, 10, 100, 100, false)
	assert.Equal(t, 10, zi.z(0))
	assert.Equal(t, 100, zi.z(100))
	assert.Equal(t, 18, zi.z(50), "perspective midpoint sits near the closer end")

	lin := newZInterp(0, 10, 100, 100, true)
	assert.Equal(t, 55, lin.z(50))

	flat := newZInterp(0, 40, 100, 40, false)
	assert.Equal(t, 40, flat.z(73))
}

func TestJoinedLinesWriteSharedEndpointOnce(t *testing.T) {
	writes := map[int]int{}
	r := newTestRenderer(t, 64, 32, WithWriterWrap(func(next PixelWriter) PixelWriter {
		return &countingWriter{next: next, writes: writes}
	}))
	r.DrawLine(colix.Red, colix.Red, Point{10, 10, 100}, Point{20, 10, 100})
	r.DrawLine(colix.Red, colix.Red, Point{20, 10, 100}, Point{30, 10, 100})

	assert.Len(t, writes, 21)
	for off, n := range writes {
		assert.Equal(t, 1, n, "offset %d", off)
	}
	assert.Equal(t, 100, r.zAt(10, 10))
	assert.Equal(t, 100, r.zAt(30, 10))
}

func TestJoinedLinesWithVaryingDepthShareEndpoint(t *testing.T) {
	writes := map[int]int{}
	r := newTestRenderer(t, 64, 64, WithWriterWrap(func(next PixelWriter) PixelWriter {
		return &countingWriter{next: next, writes: writes}
	}))
	for _, z := range [][3]int{{10, 60, 200}, {200, 60, 10}, {90, 90, 90}, {5, 300, 40}} {
		require.NoError(t, r.BeginFrame(mathutil.Mat3Identity(), true))
		clear(writes)
		r.DrawLine(colix.Red, colix.Red, Point{4, 8, z[0]}, Point{30, 20, z[1]})
		r.DrawLine(colix.Red, colix.Red, Point{30, 20, z[1]}, Point{50, 40, z[2]})
		assert.Equal(t, 1, writes[20*64+30], "z %v", z)
	}
}

func TestLineDepthTest(t *testing.T) {
	r := newTestRenderer(t, 64, 32)
	r.DrawLine(colix.Red, colix.Red, Point{5, 5, 50}, Point{40, 5, 50})
	red := r.pixelAt(20, 5)
	r.DrawLine(colix.Blue, colix.Blue, Point{5, 5, 80}, Point{40, 5, 80})
	assert.Equal(t, red, r.pixelAt(20, 5), "farther line is hidden")
	r.DrawLine(colix.Blue, colix.Blue, Point{5, 5, 20}, Point{40, 5, 20})
	assert.NotEqual(t, red, r.pixelAt(20, 5))
	assert.Equal(t, 20, r.zAt(20, 5))
}

func TestTwoColorLineSplitsAtMidpoint(t *testing.T) {
	r := newTestRenderer(t, 64, 32)
	r.DrawLine(colix.Red, colix.Blue, Point{0, 3, 10}, Point{40, 3, 10})
	pal := r.Palette()
	assert.Equal(t, pal.Argb(colix.Red), r.pixelAt(5, 3))
	assert.Equal(t, pal.Argb(colix.Blue), r.pixelAt(35, 3))
}

func TestLineHalfWithTransparentColixIsSkipped(t *testing.T) {
	r := newTestRenderer(t, 64, 32)
	r.DrawLine(colix.Red, colix.Blue.Translucent(1), Point{0, 3, 10}, Point{40, 3, 10})
	assert.Equal(t, 10, r.zAt(5, 3))
	assert.Equal(t, zEmpty, r.zAt(35, 3))
}

func TestClippedLineTrimsToWindow(t *testing.T) {
	r := newTestRenderer(t, 32, 32)
	r.DrawLine(colix.Red, colix.Red, Point{-20, 16, 10}, Point{50, 16, 10})
	for x := 1; x < 32; x++ {
		assert.Equal(t, 10, r.zAt(x, 16), "x=%d", x)
	}
	assert.Equal(t, zEmpty, r.zAt(16, 15))
}

func TestLineBitsCacheBySlope(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	r.FillCylinderBits(EndcapNone, 6, mathutil.Vec3{8, 8, 30}, mathutil.Vec3{50, 26, 60})
	n := r.LineCache().Len()
	require.Equal(t, 1, n)
	r.FillCylinderBits(EndcapNone, 6, mathutil.Vec3{8, 20, 30}, mathutil.Vec3{50, 38, 60})
	assert.Equal(t, n, r.LineCache().Len(), "parallel cylinders share bits")
	r.ReleaseBuffers()
	assert.Zero(t, r.LineCache().Len())
}
