package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotationsAreOrthonormal(t *testing.T) {
	for _, m := range []Mat3{ViewFront, ViewTop, ViewSide, ViewTilted} {
		assert.InDelta(t, 1.0, m.Det(), 1e-9)
		p := Mat3Mul(m, m.Transpose())
		id := Mat3Identity()
		for i := range p {
			assert.InDelta(t, id[i], p[i], 1e-9)
		}
	}
}

func TestAxisAngleMatchesRotZ(t *testing.T) {
	a := Deg2Rad(30)
	q := QuatToMat3(AxisAngleToQuat(Vec3{0, 0, 1}, a))
	r := RotZ(a)
	for i := range q {
		assert.InDelta(t, r[i], q[i], 1e-9)
	}
}

func TestOuterSum(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := Vec3{0, 0, 1}
	m := Outer(x, x).Add(Outer(y, y)).Add(Outer(z, z).Scale(2))
	assert.Equal(t, Mat3Diag(1, 1, 2), m)
	assert.Equal(t, Vec3{0, 0, 2}, m.Row(2))
}

func TestViewByName(t *testing.T) {
	m, ok := ViewByName(" Top ")
	assert.True(t, ok)
	assert.Equal(t, ViewTop, m)
	_, ok = ViewByName("isometric")
	assert.False(t, ok)
	assert.False(t, math.IsNaN(ViewTilted.Det()))
}
