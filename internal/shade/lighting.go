package shade

import (
	"math"

	"github.com/chewxy/math32"
)

// Lighting is a snapshot of the lighting model, used by configuration.
type Lighting struct {
	AmbientPercent   int  `json:"ambient_percent" toml:"ambient_percent" yaml:"ambient_percent"`
	DiffusePercent   int  `json:"diffuse_percent" toml:"diffuse_percent" yaml:"diffuse_percent"`
	SpecularOn       bool `json:"specular" toml:"specular" yaml:"specular"`
	SpecularPercent  int  `json:"specular_percent" toml:"specular_percent" yaml:"specular_percent"`
	SpecularPower    int  `json:"specular_power" toml:"specular_power" yaml:"specular_power"`
	SpecularExponent int  `json:"specular_exponent" toml:"specular_exponent" yaml:"specular_exponent"`
	PhongExponent    int  `json:"phong_exponent,omitempty" toml:"phong_exponent,omitempty" yaml:"phong_exponent,omitempty"`
	Cel              bool `json:"cel" toml:"cel" yaml:"cel"`
	CelPower         int  `json:"cel_power" toml:"cel_power" yaml:"cel_power"`
}

// DefaultLighting returns the model New starts with.
func DefaultLighting() Lighting {
	return Lighting{
		AmbientPercent:   45,
		DiffusePercent:   84,
		SpecularOn:       true,
		SpecularPercent:  22,
		SpecularPower:    40,
		SpecularExponent: 6,
		CelPower:         10,
	}
}

// Lighting returns the current model.
func (s *Shader) Lighting() Lighting {
	l := Lighting{
		AmbientPercent:   s.ambientPercent,
		DiffusePercent:   s.diffusePercent,
		SpecularOn:       s.specularOn,
		SpecularPercent:  s.specularPercent,
		SpecularPower:    s.specularPower,
		SpecularExponent: s.specularExponent,
		Cel:              s.celOn,
		CelPower:         s.celPower,
	}
	if s.usePhongExponent {
		l.PhongExponent = s.phongExponent
	}
	return l
}

// Apply sets every field of l. bgArgb is needed for the cel outline color.
func (s *Shader) Apply(l Lighting, bgArgb uint32) {
	s.SetAmbientPercent(l.AmbientPercent)
	s.SetDiffusePercent(l.DiffusePercent)
	s.SetSpecular(l.SpecularOn)
	s.SetSpecularPercent(l.SpecularPercent)
	s.SetSpecularPower(l.SpecularPower)
	s.SetSpecularExponent(l.SpecularExponent)
	if l.PhongExponent > 0 {
		s.SetPhongExponent(l.PhongExponent)
	}
	s.SetCel(l.Cel, l.CelPower, bgArgb)
}

// SetAmbientPercent sets the fractional distance from black of the darkest shade.
func (s *Shader) SetAmbientPercent(v int) {
	if s.ambientPercent == v {
		return
	}
	s.ambientPercent = v
	s.ambientFraction = float32(v) / 100
	s.flushCaches()
}

func (s *Shader) SetDiffusePercent(v int) {
	if s.diffusePercent == v {
		return
	}
	s.diffusePercent = v
	s.diffuseFactor = float32(v) / 100
	s.flushCaches()
}

func (s *Shader) SetSpecular(on bool) {
	if s.specularOn == on {
		return
	}
	s.specularOn = on
	s.flushCaches()
}

func (s *Shader) SetSpecularPercent(v int) {
	if s.specularPercent == v {
		return
	}
	s.specularPercent = v
	s.specularFactor = float32(v) / 100
	s.flushCaches()
}

// SetSpecularPower sets the fractional distance to white of the specular
// highlight. A negative value sets the specular exponent instead.
func (s *Shader) SetSpecularPower(v int) {
	if v < 0 {
		s.SetSpecularExponent(-v)
		return
	}
	if s.specularPower == v {
		return
	}
	s.specularPower = v
	s.intenseFraction = float32(v) / 100
	s.flushCaches()
}

// SetSpecularExponent sets log2 of the phong exponent.
func (s *Shader) SetSpecularExponent(v int) {
	if s.specularExponent == v {
		return
	}
	s.specularExponent = v
	s.phongExponent = 1 << uint(v)
	s.usePhongExponent = false
	s.flushCaches()
}

// SetPhongExponent sets the phong exponent directly. Powers of two fall
// back to repeated squaring.
func (s *Shader) SetPhongExponent(v int) {
	if s.phongExponent == v && s.usePhongExponent {
		return
	}
	s.phongExponent = v
	x := math.Log2(float64(v))
	s.usePhongExponent = x != math.Trunc(x)
	if !s.usePhongExponent {
		s.specularExponent = int(x)
	}
	s.flushCaches()
}

// SetCel switches cel shading. Shades 0 and 1 become an outline color
// that contrasts with bgArgb.
func (s *Shader) SetCel(on bool, power int, bgArgb uint32) {
	on = on && power != 0
	argb := contrast(bgArgb)
	switch argb {
	case 0xFF000000:
		argb = 0xFF040404
	case 0xFFFFFFFF:
		argb = 0xFFFFFFFE
	default:
		argb++
	}
	if s.celOn == on && s.celRGB == argb && s.celPower == power {
		return
	}
	s.celOn = on
	s.celPower = power
	s.useLight = !s.celOn || power > 0
	p := power
	if p < 0 {
		p = -p
	}
	s.celZ = 1 - math32.Pow(2, -float32(p)/10)
	s.celRGB = argb
	s.flushCaches()
}

// contrast picks black or white, whichever stands out against argb.
func contrast(argb uint32) uint32 {
	r := (argb >> 16) & 0xFF
	g := (argb >> 8) & 0xFF
	b := argb & 0xFF
	if (2989*r+5870*g+1140*b+5000)/10000 < 128 {
		return 0xFFFFFFFF
	}
	return 0xFF000000
}
