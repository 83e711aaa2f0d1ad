package shade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"g3d-renderer/internal/mathutil"
)

func TestShadeRampAnchorsBaseColor(t *testing.T) {
	s := New()
	sh := s.Shades(0xFF3366CC, false)
	require.Len(t, sh, IndexMax)
	assert.Equal(t, uint32(0xFF3366CC), sh[IndexNormal])

	// ramp is non-decreasing per channel
	for i := 1; i < IndexMax; i++ {
		for shift := 0; shift <= 16; shift += 8 {
			assert.GreaterOrEqual(t, sh[i]>>shift&0xFF, sh[i-1]>>shift&0xFF, "index %d", i)
		}
	}
	for _, c := range sh {
		assert.Equal(t, uint32(0xFF), c>>24)
	}
}

func TestShadesAreCached(t *testing.T) {
	s := New()
	a := s.Shades(0xFF102030, false)
	b := s.Shades(0x102030, false)
	assert.Same(t, &a[0], &b[0])
}

func TestGreyShades(t *testing.T) {
	s := New()
	for _, c := range s.Shades(0xFFFF0000, true) {
		assert.Equal(t, c&0xFF, c>>16&0xFF)
		assert.Equal(t, c&0xFF, c>>8&0xFF)
	}
}

func TestFlushOnLightingChange(t *testing.T) {
	s := New()
	gen := s.Generation()
	before := s.Shades(0xFF808080, false)[0]

	s.SetAmbientPercent(45)
	assert.Equal(t, gen, s.Generation(), "unchanged value does not flush")

	s.SetAmbientPercent(10)
	assert.Greater(t, s.Generation(), gen)
	assert.Less(t, s.Shades(0xFF808080, false)[0]&0xFF, before&0xFF)
}

func TestIndexFacesLight(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Index(1, 1, -2.5), "facing away from the light")
	toward := s.Index(-1, -1, 2.5)
	assert.Greater(t, toward, s.Index(0, 0, 1))
	assert.Greater(t, s.Index(0, 0, 1), s.Index(1, 0, 0.2))
	assert.LessOrEqual(t, toward, IndexLast)
}

func TestFp8MatchesIndex(t *testing.T) {
	s := New()
	fp8 := s.Fp8(0.3, -0.2, 1)
	idx := s.Index(0.3, -0.2, 1)
	assert.InDelta(t, idx, fp8>>8, 1)
}

func TestRandomSequence(t *testing.T) {
	a, b := New(), New()
	for i := 0; i < 100; i++ {
		v := a.NextRandom8Bit()
		assert.Equal(t, v, b.NextRandom8Bit())
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 256)
	}
}

func TestSphereShadeTable(t *testing.T) {
	s := New()
	assert.Equal(t, byte(0), s.SphereShadeIndexes[0], "corner is outside the disc")
	for _, v := range s.SphereShadeIndexes {
		assert.LessOrEqual(t, int(v), IndexLast)
	}
	// upper left faces the light
	assert.Greater(t, s.SphereShadeIndexes[80<<8+80], s.SphereShadeIndexes[200<<8+200])
}

func TestEllipsoidShadeOfSphereMatchesIndex(t *testing.T) {
	s := New()
	// gradient of x²+y²+z² at the origin-centered sphere, negated as the
	// ellipsoid renderer supplies it
	m := mathutil.Mat4{
		-2, 0, 0, 0,
		0, -2, 0, 0,
		0, 0, -2, 0,
		0, 0, 0, 1,
	}
	got := s.EllipsoidShade(0, 0, -10, 40, &m)
	assert.InDelta(t, s.Index(0, 0, 1), got, 1)
}

func TestCelShadingOutline(t *testing.T) {
	s := New()
	s.SetCel(true, 10, 0xFF000000)
	sh := s.Shades(0xFF3366CC, false)
	assert.Equal(t, uint32(0xFFFFFFFE), sh[0])
	assert.Equal(t, sh[0], sh[1])
	assert.True(t, s.Lighting().Cel)
}

func TestNormixLattice(t *testing.T) {
	vs := NormixVectors()
	assert.Len(t, vs, 642)
	for _, v := range vs {
		assert.InDelta(t, 1, v.Len(), 1e-9)
	}
	n := Normix(mathutil.Vec3{0, 0, 5})
	assert.InDelta(t, 1, vs[n][2], 0.1)
	assert.Equal(t, NormixNull, Normix(mathutil.Vec3{}))
}

func TestNormixShades(t *testing.T) {
	s := New()
	ns := s.NormixShades(mathutil.Mat3Identity())
	front := Normix(mathutil.Vec3{0.1, 0.2, 1})
	back := Normix(mathutil.Vec3{-0.1, -0.2, -1})
	assert.Greater(t, ns.Index(front), 0)
	assert.Equal(t, 0, ns.Index(back))
	assert.Equal(t, ns.Index(front), ns.Index(^back))
	assert.Equal(t, NullShadeIndex, ns.Index(NormixNull))
}

func TestLightingRoundTrip(t *testing.T) {
	s := New()
	l := DefaultLighting()
	l.SpecularPercent = 50
	s.Apply(l, 0xFF000000)
	assert.Equal(t, l, s.Lighting())
}
