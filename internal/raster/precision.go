package raster

import "github.com/chewxy/math32"

// zInterp maps a screen coordinate along a raster edge or span to depth.
// Under perspective projection depth is hyperbolic in screen position,
// z = a/(b-x); orthographic depth is linear, z = a*x + b.
type zInterp struct {
	a, b     float32
	constant bool // z == b everywhere
	ortho    bool
}

// newZInterp fits the interpolator through (xa, za) and (xb, zb).
func newZInterp(xa, za, xb, zb float32, ortho bool) zInterp {
	zdif := zb - za
	xdif := xb - xa
	if zdif == 0 || xdif == 0 {
		return zInterp{b: za, constant: true}
	}
	if ortho {
		a := zdif / xdif
		return zInterp{a: a, b: za - a*xa, ortho: true}
	}
	return zInterp{
		a: xdif * za * (zb / zdif),
		b: (xb*zb - xa*za) / zdif,
	}
}

// z returns the rounded depth at x.
func (zi zInterp) z(x int) int {
	var v float32
	switch {
	case zi.constant:
		v = zi.b
	case zi.ortho:
		v = zi.a*float32(x) + zi.b
	default:
		v = zi.a / (zi.b - float32(x))
	}
	return int(math32.Floor(v + 0.5))
}

// precision carries the projection mode shared by the line and triangle
// rasterizers.
type precision struct {
	ortho bool
}

func (p *precision) rastAB(xa, za, xb, zb int) zInterp {
	return newZInterp(float32(xa), float32(za), float32(xb), float32(zb), p.ortho)
}

func (p *precision) rastABFloat(xa, za, xb, zb float32) zInterp {
	return newZInterp(xa, za, xb, zb, p.ortho)
}

// roundf rounds half up, matching how screen points are snapped.
func roundf(f float32) int { return int(math32.Floor(f + 0.5)) }
