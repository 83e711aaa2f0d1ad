// Package colix encodes color tokens: a palette index plus a translucency
// level packed into one int16, the way the rasterizer consumes them.
package colix

import "math"

// Colix is a color handle. Bits 0-10 index the palette, bits 11-14 carry the
// translucency level, the sign bit marks a changeable color.
type Colix int16

const (
	TranslucentShift = 11
	// AlphaShift moves the translucency nibble from colix position into the
	// low nibble of an ARGB alpha byte.
	AlphaShift = 24 - TranslucentShift

	TranslucentMask     Colix = 0xF << TranslucentShift
	Transparent         Colix = 8 << TranslucentShift
	TranslucentScreened Colix = TranslucentMask
	OpaqueMask          Colix = ^TranslucentMask
	IndexMask           Colix = 0x07FF

	// MaxIndex is the last index available for dynamically allocated colors.
	MaxIndex = int(IndexMask)
)

// Fixed palette slots.
const (
	Inherit Colix = iota
	InheritColor
	UsePalette
	RawRGB
	Black
	Orange
	Pink
	Blue
	White
	Cyan
	Red
	Green
	Gray
	Silver
	Lime
	Maroon
	Navy
	Olive
	Purple
	Teal
	Magenta
	Yellow
	HotPink
	Gold

	fixedCount
)

// Index returns the palette index, dropping translucency and the changeable bit.
func (c Colix) Index() int { return int(c & IndexMask) }

// Level returns the 4-bit translucency level (0 opaque, 8 transparent, 15 screened).
func (c Colix) Level() int { return int(c&TranslucentMask) >> TranslucentShift }

func (c Colix) IsTranslucent() bool { return c&TranslucentMask != 0 }

// IsTransparent reports a colix that is never drawn.
func (c Colix) IsTransparent() bool { return c&TranslucentMask == Transparent }

func (c Colix) IsScreened() bool { return c&TranslucentMask == TranslucentScreened }

// Opaque strips the translucency bits.
func (c Colix) Opaque() Colix { return c & OpaqueMask }

// Translucent returns c with the given translucency fraction applied.
// See TranslucentFlag for the mapping.
func (c Colix) Translucent(level float64) Colix {
	c &= OpaqueMask
	if c == Inherit {
		c = InheritColor
	}
	return c | TranslucentFlag(level)
}

// TranslucentFlag maps a translucency fraction to the colix translucency bits.
//
//	0           opaque
//	< 0         screened
//	(0, 1)      ((floor(level*256) >> 5) & 0xF) << 11, eighths of translucency
//	1, NaN, 255 transparent
//	(1, 9]      integer eighths, level 2 == 1/8
func TranslucentFlag(level float64) Colix {
	switch {
	case level == 0:
		return 0
	case level < 0:
		return TranslucentScreened
	case math.IsNaN(level) || level >= 255 || level == 1:
		return Transparent
	}
	var iLevel int
	switch {
	case level < 1:
		iLevel = int(math.Floor(level * 256))
	case level >= 15:
		iLevel = int(level)
	case level <= 9:
		iLevel = int(math.Floor(level-1)) << 5
	default:
		iLevel = 8 << 5
	}
	return Colix(((iLevel >> 5) & 0xF) << TranslucentShift)
}

// AlphaMask converts the translucency bits into the mask applied to ARGB
// values written to the translucent buffer: the level lands in the low
// nibble of the alpha byte and RGB passes through.
func (c Colix) AlphaMask() uint32 {
	return uint32(c&TranslucentMask)<<AlphaShift | 0xFFFFFF
}
