package shade

import (
	"math"
	"sync"

	"g3d-renderer/internal/mathutil"
)

// NormixNull marks a triangle with no usable normal. It shades as a flat
// mid-bright face.
const NormixNull int16 = 9999

// NullShadeIndex is the shade used for NormixNull.
const NullShadeIndex = 50

// Geodesic subdivision depth of the normal lattice. Three levels give 642
// directions.
const normixLevel = 3

var (
	normixOnce    sync.Once
	normixVectors []mathutil.Vec3
)

// NormixVectors returns the unit directions of the normal lattice: the
// vertices of an icosahedron subdivided normixLevel times.
func NormixVectors() []mathutil.Vec3 {
	normixOnce.Do(func() { normixVectors = geodesic(normixLevel) })
	return normixVectors
}

// NormixCount is the number of lattice directions.
func NormixCount() int { return len(NormixVectors()) }

// Normix returns the index of the lattice direction nearest v.
// A zero vector yields NormixNull.
func Normix(v mathutil.Vec3) int16 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return NormixNull
	}
	v = v.Scale(1 / l)
	best, bestDot := 0, -2.0
	for i, n := range NormixVectors() {
		if d := n.Dot(v); d > bestDot {
			best, bestDot = i, d
		}
	}
	return int16(best)
}

func geodesic(level int) []mathutil.Vec3 {
	const t = 1.618033988749895 // golden ratio
	verts := []mathutil.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range verts {
		verts[i] = verts[i].Normalize()
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for ; level > 0; level-- {
		mid := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if i, ok := mid[key]; ok {
				return i
			}
			verts = append(verts, verts[a].Add(verts[b]).Normalize())
			mid[key] = len(verts) - 1
			return len(verts) - 1
		}
		next := make([][3]int, 0, len(faces)*4)
		for _, f := range faces {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next,
				[3]int{f[0], ab, ca}, [3]int{f[1], bc, ab},
				[3]int{f[2], ca, bc}, [3]int{ab, bc, ca})
		}
		faces = next
	}
	return verts
}

// NormixShades holds the shade index of every lattice direction under the
// current rotation, one table for front-lit faces and one for two-sided
// faces whose back is turned to the viewer.
type NormixShades struct {
	OneSided []byte
	TwoSided []byte
}

// NormixShades computes the per-direction shades for the rotation rot.
// Screen y points down, so the lattice y is flipped.
func (s *Shader) NormixShades(rot mathutil.Mat3) NormixShades {
	vs := NormixVectors()
	ns := NormixShades{
		OneSided: make([]byte, len(vs)),
		TwoSided: make([]byte, len(vs)),
	}
	for i, v := range vs {
		tv := rot.MulVec3(v)
		x, y, z := float32(tv[0]), float32(tv[1]), float32(tv[2])
		ns.OneSided[i] = s.IndexUnit(x, -y, z)
		if z >= 0 {
			ns.TwoSided[i] = ns.OneSided[i]
		} else {
			ns.TwoSided[i] = s.IndexUnit(-x, y, -z)
		}
	}
	return ns
}

// Index returns the shade for normix n. Negative values select the
// two-sided table at ^n.
func (ns NormixShades) Index(n int16) int {
	switch {
	case n == NormixNull || n == ^NormixNull:
		return NullShadeIndex
	case n < 0:
		return int(ns.TwoSided[^n])
	}
	return int(ns.OneSided[n])
}
