package shade

import (
	"github.com/chewxy/math32"

	"g3d-renderer/internal/mathutil"
)

func (s *Shader) calcSphereShading() {
	const r = 130
	xF := float32(-127.5)
	for i := 0; i < 256; i++ {
		yF := float32(-127.5)
		xF2 := xF * xF
		for j := 0; j < 256; j++ {
			var idx byte
			if z2 := r*r - xF2 - yF*yF; z2 > 0 {
				idx = s.Dithered(xF, yF, math32.Sqrt(z2), r)
			}
			s.SphereShadeIndexes[j<<8+i] = idx
			yF++
		}
		xF++
	}
}

func (s *Shader) createEllipsoidShades() {
	s.ellipsoidShades = make([]byte, ellipsoidDim*ellipsoidDim*ellipsoidDim)
	for i := 0; i < ellipsoidDim; i++ {
		for j := 0; j < ellipsoidDim; j++ {
			for k := 0; k < ellipsoidDim; k++ {
				s.ellipsoidShades[(i*ellipsoidDim+j)*ellipsoidDim+k] =
					byte(s.Index(float32(i-ellipsoidLimit), float32(j-ellipsoidLimit), float32(k)))
			}
		}
	}
}

// EllipsoidShade returns the shade index at screen point (x, y, z) on an
// ellipsoid whose surface gradient is mDeriv applied to (x, y, z, 1).
// Normals that fall inside the cached lattice come from the table.
func (s *Shader) EllipsoidShade(x, y, z float32, radius int, mDeriv *mathutil.Mat4) int {
	if s.ellipsoidShades == nil {
		s.createEllipsoidShades()
	}
	t := mDeriv.MulPoint(mathutil.Vec3{float64(x), float64(y), float64(z)})
	tx, ty, tz := float32(t[0]), float32(t[1]), float32(t[2])
	f := math32.Min(float32(radius)/2, 45) / math32.Sqrt(tx*tx+ty*ty+tz*tz)
	i := int(-tx * f)
	j := int(-ty * f)
	k := int(tz * f)
	outside := func() bool {
		return i < -ellipsoidLimit || i >= ellipsoidLimit || j < -ellipsoidLimit ||
			j >= ellipsoidLimit || k < 0 || k >= ellipsoidDim
	}
	if outside() {
		for i%2 == 0 && j%2 == 0 && k%2 == 0 && i+j+k > 0 {
			i >>= 1
			j >>= 1
			k >>= 1
		}
		if outside() {
			return s.Index(float32(i), float32(j), float32(k))
		}
	}
	return int(s.ellipsoidShades[((i+ellipsoidLimit)*ellipsoidDim+j+ellipsoidLimit)*ellipsoidDim+k])
}
