// Package shade computes lighting: per-color shade ramps, normal-to-shade
// index mapping and the precomputed sphere and ellipsoid shade tables.
//
// A Shader is owned by a single renderer and is not safe for concurrent use.
package shade

import (
	"github.com/chewxy/math32"

	"g3d-renderer/internal/colix"
)

const (
	IndexMax = 64
	// IndexLast is the brightest shade in a ramp.
	IndexLast = IndexMax - 1
	// IndexNormal holds the unmodified base color.
	IndexNormal = 52
	// IndexNoisyLimit caps shade indexes that are dithered with up/down neighbours.
	IndexNoisyLimit = 56

	MaxSphereCache = 128

	ellipsoidLimit = 20
	ellipsoidDim   = ellipsoidLimit * 2
)

// Shader holds the lighting model and the caches derived from it. Every
// setter that changes the model flushes the caches and bumps Generation.
type Shader struct {
	xLight, yLight, zLight float32

	specularOn       bool
	usePhongExponent bool
	ambientPercent   int
	diffusePercent   int
	specularExponent int
	specularPercent  int
	specularPower    int
	phongExponent    int

	ambientFraction float32
	diffuseFactor   float32
	intenseFraction float32
	specularFactor  float32

	celOn    bool
	celPower int
	celRGB   uint32
	celZ     float32
	useLight bool

	shades     map[uint32][]uint32
	greyShades map[uint32][]uint32

	// SphereShadeIndexes is a 256x256 shade table of a unit hemisphere,
	// indexed by (y8 << 8) + x8.
	SphereShadeIndexes [256 * 256]byte
	ellipsoidShades    []byte

	seed       int32
	generation uint64
}

// New returns a shader with the default lighting model: light from the
// upper left front, 45% ambient, 84% diffuse, 22% specular.
func New() *Shader {
	s := &Shader{
		specularOn:       true,
		ambientPercent:   45,
		diffusePercent:   84,
		specularExponent: 6,
		specularPercent:  22,
		specularPower:    40,
		phongExponent:    64,
		celPower:         10,
		useLight:         true,
		seed:             0x12345679,
	}
	s.ambientFraction = float32(s.ambientPercent) / 100
	s.diffuseFactor = float32(s.diffusePercent) / 100
	s.intenseFraction = float32(s.specularPower) / 100
	s.specularFactor = float32(s.specularPercent) / 100
	s.setLightSource(-1, -1, 2.5)
	s.flushCaches()
	return s
}

func (s *Shader) setLightSource(x, y, z float32) {
	m := math32.Sqrt(x*x + y*y + z*z)
	s.xLight, s.yLight, s.zLight = x/m, y/m, z/m
}

// Generation changes whenever cached shading becomes invalid. Holders of
// derived caches compare it to decide when to drop them.
func (s *Shader) Generation() uint64 { return s.generation }

func (s *Shader) flushCaches() {
	s.shades = make(map[uint32][]uint32)
	s.greyShades = nil
	s.calcSphereShading()
	s.ellipsoidShades = nil
	s.generation++
}

// Shades returns the 64-entry shade ramp for an opaque color.
func (s *Shader) Shades(argb uint32, grey bool) []uint32 {
	argb |= 0xFF000000
	if grey {
		if s.greyShades == nil {
			s.greyShades = make(map[uint32][]uint32)
		}
		sh, ok := s.greyShades[argb]
		if !ok {
			sh = s.shadeRamp(argb, true)
			s.greyShades[argb] = sh
		}
		return sh
	}
	sh, ok := s.shades[argb]
	if !ok {
		sh = s.shadeRamp(argb, false)
		s.shades[argb] = sh
	}
	return sh
}

func rgb(r, g, b float32) uint32 {
	return 0xFF000000 | uint32(int32(math32.Floor(r)))<<16 | uint32(int32(math32.Floor(g)))<<8 | uint32(int32(math32.Floor(b)))
}

// shadeRamp builds a ramp from ambient black up to the base color at
// IndexNormal and then toward white by the specular power fraction.
func (s *Shader) shadeRamp(argb uint32, grey bool) []uint32 {
	shades := make([]uint32, IndexMax)
	red0 := float32((argb >> 16) & 0xFF)
	grn0 := float32((argb >> 8) & 0xFF)
	blu0 := float32(argb & 0xFF)
	var red, grn, blu float32
	f := s.ambientFraction
	for {
		red = red0*f + 0.5
		grn = grn0*f + 0.5
		blu = blu0*f + 0.5
		if f > 0 && red < 4 && grn < 4 && blu < 4 {
			// near-black colors are lifted so the ramp has visible steps
			red0++
			grn0++
			blu0++
			if f < 0.1 {
				f += 0.1
			}
			argb = rgb(red0, grn0, blu0)
			continue
		}
		break
	}

	i := 0
	f = (1 - f) / IndexNormal
	redStep, grnStep, bluStep := red0*f, grn0*f, blu0*f

	if s.celOn {
		half := IndexMax / 2
		c := rgb(red, grn, blu)
		if s.celPower >= 0 {
			for ; i < half; i++ {
				shades[i] = c
			}
		}
		red += redStep * float32(half)
		grn += grnStep * float32(half)
		blu += bluStep * float32(half)
		c = rgb(red, grn, blu)
		for ; i < IndexMax; i++ {
			shades[i] = c
		}
		shades[0], shades[1] = s.celRGB, s.celRGB
	} else {
		for ; i < IndexNormal; i++ {
			shades[i] = rgb(red, grn, blu)
			red += redStep
			grn += grnStep
			blu += bluStep
		}
		shades[i] = argb | 0xFF000000
		i++
		f = s.intenseFraction / float32(IndexMax-i)
		redStep = (255.5 - red) * f
		grnStep = (255.5 - grn) * f
		bluStep = (255.5 - blu) * f
		for ; i < IndexMax; i++ {
			red += redStep
			grn += grnStep
			blu += bluStep
			shades[i] = rgb(red, grn, blu)
		}
	}
	if grey {
		for i := range shades {
			shades[i] = colix.Greyscale(shades[i])
		}
	}
	return shades
}

func round(f float32) int { return int(math32.Floor(f + 0.5)) }

// Index returns the shade index for an arbitrary (unnormalized) normal.
func (s *Shader) Index(x, y, z float32) int {
	m := math32.Sqrt(x*x + y*y + z*z)
	return round(s.intensity(x/m, y/m, z/m) * IndexLast)
}

// IndexUnit returns the shade index for a normal that is already unit length.
func (s *Shader) IndexUnit(x, y, z float32) byte {
	return byte(round(s.intensity(x, y, z) * IndexLast))
}

// Fp8 returns the shade index in 24.8 fixed point.
func (s *Shader) Fp8(x, y, z float32) int {
	m := math32.Sqrt(x*x + y*y + z*z)
	return int(math32.Floor(s.intensity(x/m, y/m, z/m) * IndexLast * (1 << 8)))
}

func (s *Shader) intensity(x, y, z float32) float32 {
	nDotL := z
	if s.useLight {
		nDotL = x*s.xLight + y*s.yLight + z*s.zLight
	}
	if nDotL <= 0 {
		return 0
	}
	intensity := nDotL * s.diffuseFactor
	if s.specularOn {
		k := 2*nDotL*z - s.zLight
		if k > 0 {
			if s.usePhongExponent {
				k = math32.Pow(k, float32(s.phongExponent))
			} else {
				for n := s.specularExponent; n > 0 && k > .0001; n-- {
					k *= k
				}
			}
			intensity += k * s.specularFactor
		}
	}
	switch {
	case s.celOn && z < s.celZ:
		return 0
	case intensity > 1:
		return 1
	}
	return intensity
}

// Dithered returns a noisy shade index for the point (x, y, z) on a sphere
// of radius r. The fractional part and a random jitter move the index by
// at most one step either way.
func (s *Shader) Dithered(x, y, z, r float32) byte {
	fp8 := int(math32.Floor(s.intensity(x/r, y/r, z/r) * IndexLast * (1 << 8)))
	i := fp8 >> 8
	if !s.useLight {
		return byte(i)
	}
	if fp8&0xFF > s.NextRandom8Bit() {
		i++
	}
	r16 := int(s.seed & 0xFFFF)
	switch {
	case r16 < 65536/3 && i > 0:
		i--
	case r16 > 65536*2/3 && i < IndexLast:
		i++
	}
	return byte(i)
}

// NextRandom8Bit steps the RANDU generator. It is a poor generator, and
// only serves shading noise.
func (s *Shader) NextRandom8Bit() int {
	t := s.seed
	t = (t<<16 + t<<1 + t) & 0x7FFFFFFF
	s.seed = t
	return int(t >> 23)
}
