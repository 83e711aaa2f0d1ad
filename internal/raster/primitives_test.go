package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
	"g3d-renderer/internal/shade"
)

func TestTriangleCoverage(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	r.setColorNoisy(20)
	r.triangle.fill(Point{10, 10, 100}, Point{50, 10, 100}, Point{10, 50, 100}, false)

	assert.Equal(t, 100, r.zAt(20, 20))
	assert.Equal(t, 100, r.zAt(10, 50))
	assert.Equal(t, 100, r.zAt(50, 10))
	assert.Equal(t, zEmpty, r.zAt(45, 45))
	assert.Equal(t, zEmpty, r.zAt(9, 20))
}

func TestSplitSquareHasNoGaps(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	r.setColorNoisy(20)
	r.triangle.fill(Point{10, 10, 100}, Point{50, 10, 100}, Point{50, 50, 100}, false)
	r.triangle.fill(Point{10, 10, 100}, Point{50, 50, 100}, Point{10, 50, 100}, false)
	for y := 10; y <= 50; y++ {
		for x := 10; x <= 50; x++ {
			require.Equal(t, 100, r.zAt(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestTriangleRejectsEyePlane(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	r.setColorNoisy(20)
	r.triangle.fill(Point{10, 10, 1}, Point{50, 10, 100}, Point{10, 50, 100}, false)
	assert.False(t, r.HasContent())
}

func TestGouraudTriangleInterpolates(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	a := Vertex{Colix: colix.Red, Normix: shade.NormixNull}
	b := Vertex{Colix: colix.Blue, Normix: shade.NormixNull}
	r.FillTriangle(Point{2, 10, 50}, a, Point{60, 10, 50}, b, Point{2, 40, 50}, a)
	left, right := r.pixelAt(3, 10), r.pixelAt(58, 10)
	assert.Greater(t, left>>16&0xFF, right>>16&0xFF, "red fades toward B")
	assert.Less(t, left&0xFF, right&0xFF, "blue grows toward B")
}

func TestRgb16(t *testing.T) {
	var a, b, step, cur Rgb16
	a.SetInt(0xFF000000)
	b.SetInt(0xFFFF0000)
	assert.Equal(t, uint32(0xFF000000), a.Argb())
	assert.Equal(t, uint32(0xFFFF0000), b.Argb())
	step.DiffDiv(&b, &a, 2)
	cur.SetAndIncrement(&a, &step)
	assert.Equal(t, uint32(0xFF000000), cur.Argb())
	cur.SetAndIncrement(&a, &step)
	assert.Equal(t, uint32(0xFF800000), cur.Argb(), "half-step bias rounds the midpoint up")
	cur.SetAndIncrement(&a, &step)
	assert.Equal(t, uint32(0xFFFF0000), cur.Argb())
}

func TestQuadrilateralCullsBackFaces(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	quad := []mathutil.Vec3{{10, 10, 50}, {40, 10, 50}, {40, 40, 50}, {10, 40, 50}}

	// positive screen z of the face normal points away from the viewer
	r.FillQuadrilateral(quad[0], quad[1], quad[2], quad[3], true)
	assert.False(t, r.HasContent())

	r.FillQuadrilateral(quad[3], quad[2], quad[1], quad[0], true)
	assert.Equal(t, 50, r.zAt(25, 25))
}

func TestTriangleEdgesByMask(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	a, b, c := Point{10, 10, 20}, Point{50, 10, 20}, Point{10, 50, 20}
	r.DrawTriangleEdges(a, colix.Red, b, colix.Red, c, colix.Red, 1)
	assert.Equal(t, 20, r.zAt(30, 10))
	assert.Equal(t, zEmpty, r.zAt(10, 30))
	r.DrawTriangleEdges(a, colix.Red, b, colix.Red, c, colix.Red, 4)
	assert.Equal(t, 20, r.zAt(10, 30))
}

func TestCylinderCoversAxisAndRadius(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	r.FillCylinderXYZ(colix.Red, colix.Blue, EndcapFlat, 10, Point{20, 50, 100}, Point{80, 50, 100})
	assert.Less(t, r.zAt(50, 50), 100, "front surface bulges toward the viewer")
	assert.NotEqual(t, zEmpty, r.zAt(50, 47))
	assert.Equal(t, zEmpty, r.zAt(50, 60))
	assert.Equal(t, zEmpty, r.zAt(10, 50))

	nearA, nearB := r.pixelAt(25, 53), r.pixelAt(75, 53)
	assert.Greater(t, nearA>>16&0xFF, nearA&0xFF, "A half is red: %08x", nearA)
	assert.Greater(t, nearB&0xFF, nearB>>16&0xFF, "B half is blue: %08x", nearB)
}

func TestCylinderHalfSkippedInWrongPass(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	r.FillCylinderXYZ(colix.Red, colix.Blue.Translucent(0.5), EndcapNone, 8, Point{20, 50, 100}, Point{80, 50, 100})
	assert.NotEqual(t, zEmpty, r.zAt(25, 50))
	assert.Equal(t, zEmpty, r.zAt(75, 50))
	assert.True(t, r.HaveTranslucentObjects())
}

func TestSphericalEndcaps(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	r.FillCylinderXYZ(colix.Red, colix.Red, EndcapSpherical, 10, Point{30, 50, 100}, Point{70, 50, 100})
	assert.NotEqual(t, zEmpty, r.zAt(27, 50), "cap extends past A")
	assert.NotEqual(t, zEmpty, r.zAt(73, 50), "cap extends past B")
}

func TestConePointsAtTip(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	require.True(t, r.SetColix(colix.Green))
	r.FillCone(EndcapFlat, 20, mathutil.Vec3{20, 50, 100}, mathutil.Vec3{80, 50, 100}, false)
	assert.NotEqual(t, zEmpty, r.zAt(80, 50), "tip pixel")
	assert.NotEqual(t, zEmpty, r.zAt(25, 56), "wide near the base")
	assert.Equal(t, zEmpty, r.zAt(75, 56), "narrow near the tip")
}

func TestHermiteReachesBothEnds(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	require.True(t, r.SetColix(colix.Red))
	p0 := mathutil.Vec3{10, 50, 100}
	p1 := mathutil.Vec3{20, 50, 100}
	p2 := mathutil.Vec3{80, 50, 100}
	p3 := mathutil.Vec3{90, 50, 100}
	r.DrawHermite4(8, p0, p1, p2, p3)
	for x := 20; x < 80; x++ {
		require.Equal(t, 100, r.zAt(x, 50), "x=%d", x)
	}
	assert.Equal(t, zEmpty, r.zAt(50, 52))
}

func TestFilledHermiteTapers(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	require.True(t, r.SetColix(colix.Red))
	p0 := mathutil.Vec3{10, 50, 100}
	p1 := mathutil.Vec3{20, 50, 100}
	p2 := mathutil.Vec3{80, 50, 100}
	p3 := mathutil.Vec3{90, 50, 100}
	r.FillHermite(8, 4, 12, 4, p0, p1, p2, p3)
	assert.NotEqual(t, zEmpty, r.zAt(50, 55), "thick in the middle")
	assert.Equal(t, zEmpty, r.zAt(22, 55), "thin at the ends")
}

func TestHermiteRibbonFillsBand(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	require.True(t, r.SetColix(colix.Red))
	p := [8]mathutil.Vec3{
		{10, 40, 100}, {20, 40, 100}, {80, 40, 100}, {90, 40, 100},
		{10, 60, 100}, {20, 60, 100}, {80, 60, 100}, {90, 60, 100},
	}
	r.DrawHermite7(true, false, 8, p, 0, 0)
	assert.Equal(t, 100, r.zAt(50, 50))
	assert.Equal(t, zEmpty, r.zAt(50, 70))
}

func TestMeshRibbonDrawsRungs(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	require.True(t, r.SetColix(colix.Red))
	p := [8]mathutil.Vec3{
		{10, 40, 100}, {20, 40, 100}, {80, 40, 100}, {90, 40, 100},
		{10, 60, 100}, {20, 60, 100}, {80, 60, 100}, {90, 60, 100},
	}
	r.DrawHermite7(false, false, 8, p, 0, 0)
	assert.NotEqual(t, zEmpty, r.zAt(50, 40), "top strand")
	assert.NotEqual(t, zEmpty, r.zAt(50, 60), "bottom strand")
	assert.NotEqual(t, zEmpty, r.zAt(80, 50), "end rung")
}

func TestFilledCircle(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	r.DrawFilledCircle(0, colix.Red, 11, 50, 50, 30)
	assert.Equal(t, 30, r.zAt(50, 50))
	assert.Equal(t, 30, r.zAt(55, 50))
	assert.Equal(t, 30, r.zAt(50, 45))
	assert.Equal(t, zEmpty, r.zAt(57, 50))
	assert.Equal(t, zEmpty, r.zAt(55, 55))
}

func TestRingOnly(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	r.DrawFilledCircle(colix.Blue, 0, 21, 50, 50, 30)
	assert.Equal(t, 30, r.zAt(60, 50))
	assert.Equal(t, zEmpty, r.zAt(50, 50))
}

func TestClippedCircleAtCorner(t *testing.T) {
	r := newTestRenderer(t, 40, 40)
	r.DrawFilledCircle(0, colix.Red, 11, 0, 0, 30)
	assert.Equal(t, 30, r.zAt(0, 0))
	assert.Equal(t, 30, r.zAt(4, 0))
}
