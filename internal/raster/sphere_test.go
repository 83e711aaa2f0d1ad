package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
)

func TestSphereFrontIsNearest(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	r.FillSphereXYZ(21, 32, 32, 100)

	zc := r.zAt(32, 32)
	assert.Less(t, zc, 100)
	assert.GreaterOrEqual(t, zc, 89)
	assert.Greater(t, r.zAt(40, 32), zc, "depth grows toward the rim")
	assert.Equal(t, zEmpty, r.zAt(32, 50))
}

func TestSphereDepthOrdering(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	r.FillSphereXYZ(21, 32, 32, 100)
	front := r.pixelAt(32, 32)

	require.True(t, r.SetColix(colix.Blue))
	r.FillSphereXYZ(21, 32, 32, 200)
	assert.Equal(t, front, r.pixelAt(32, 32))

	r.FillSphereXYZ(21, 32, 32, 50)
	assert.NotEqual(t, front, r.pixelAt(32, 32))
	assert.Less(t, r.zAt(32, 32), 50)
}

func TestSphereCacheReusesShapes(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	assert.Zero(t, r.SphereCache().Len())

	r.FillSphereXYZ(21, 20, 20, 100)
	assert.Equal(t, 1, r.SphereCache().Len())
	r.FillSphereXYZ(21, 40, 40, 100)
	assert.Equal(t, 1, r.SphereCache().Len())
	r.FillSphereXYZ(23, 40, 40, 100)
	assert.Equal(t, 2, r.SphereCache().Len())

	r.SetAmbientPercent(10)
	require.True(t, r.SetColix(colix.Red))
	r.FillSphereXYZ(21, 20, 20, 100)
	assert.Equal(t, 1, r.SphereCache().Len(), "lighting changes rebuild shapes")
}

func TestSphereShapesAreDeterministic(t *testing.T) {
	a := newTestRenderer(t, 64, 64)
	b := newTestRenderer(t, 64, 64)
	for _, r := range []*Renderer{a, b} {
		require.True(t, r.SetColix(colix.Green))
		r.FillSphereXYZ(31, 32, 32, 100)
	}
	assert.Equal(t, a.platform.Pixels, b.platform.Pixels)
	assert.Equal(t, a.platform.Z, b.platform.Z)
}

func TestSphereShapeIndependentOfColor(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	r.FillSphereXYZ(27, 30, 34, 100)
	redZ := append([]int(nil), r.platform.Z...)
	redPx := append([]uint32(nil), r.platform.Pixels...)

	require.NoError(t, r.BeginFrame(mathutil.Mat3Identity(), true))
	require.True(t, r.SetColix(colix.Blue))
	r.FillSphereXYZ(27, 30, 34, 100)

	assert.Equal(t, redZ, r.platform.Z)
	written := 0
	for i, z := range redZ {
		if z == zEmpty {
			assert.Zero(t, r.platform.Pixels[i])
			continue
		}
		written++
		assert.NotEqual(t, redPx[i], r.platform.Pixels[i], "offset %d", i)
	}
	assert.Greater(t, written, 400)
}

func TestClippedSphereStaysInWindow(t *testing.T) {
	r := newTestRenderer(t, 32, 32)
	require.True(t, r.SetColix(colix.Red))
	r.FillSphereXYZ(21, 2, 2, 100)
	assert.Less(t, r.zAt(0, 0), 100)
	assert.Less(t, r.zAt(2, 2), 100)
}

func TestLargeSphereUsesQuadrants(t *testing.T) {
	r := newTestRenderer(t, 400, 400)
	require.True(t, r.SetColix(colix.Red))
	r.FillSphereXYZ(301, 200, 200, 1000)
	assert.Zero(t, r.SphereCache().Len())
	assert.Less(t, r.zAt(200, 200), 1000)
	assert.Less(t, r.zAt(300, 200), 1000)
	assert.Equal(t, zEmpty, r.zAt(200, 390))
}

func TestEllipsoidCoefficients(t *testing.T) {
	axes := [3]mathutil.Vec3{{10, 0, 0}, {0, 5, 0}, {0, 0, 2}}
	e := NewEllipsoid(mathutil.Vec3{0, 0, 0}, axes, -1)
	assert.InDelta(t, 1.0/100, e.Coef[0], 1e-12)
	assert.InDelta(t, 1.0/25, e.Coef[1], 1e-12)
	assert.InDelta(t, 1.0/4, e.Coef[2], 1e-12)
	for _, c := range e.Coef[3:] {
		assert.InDelta(t, 0, c, 1e-12)
	}
	assert.Nil(t, e.OctantPoints)
}

func TestEllipsoidOctantPoints(t *testing.T) {
	axes := [3]mathutil.Vec3{{10, 0, 0}, {0, 5, 0}, {0, 0, 2}}
	e := NewEllipsoid(mathutil.Vec3{1, 1, 1}, axes, 5)
	require.NotNil(t, e.OctantPoints)
	assert.Equal(t, mathutil.Vec3{-9, 1, 1}, e.OctantPoints[0])
	assert.Equal(t, mathutil.Vec3{1, 6, 1}, e.OctantPoints[1])
	assert.Equal(t, mathutil.Vec3{1, 1, -1}, e.OctantPoints[2])
}

func TestFillEllipsoid(t *testing.T) {
	r := newTestRenderer(t, 64, 64)
	require.True(t, r.SetColix(colix.Red))
	axes := [3]mathutil.Vec3{{20, 0, 0}, {0, 8, 0}, {0, 0, 8}}
	e := NewEllipsoid(mathutil.Vec3{32, 32, 100}, axes, -1)
	r.FillEllipsoid(&e, 32, 32, 100, 40)
	assert.Less(t, r.zAt(32, 32), 100)
	assert.Less(t, r.zAt(48, 32), 100, "long axis reaches along x")
	assert.Equal(t, zEmpty, r.zAt(32, 48), "short axis stops early along y")
}
