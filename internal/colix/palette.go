package colix

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Palette resolves colix indices to ARGB and allocates new colors.
type Palette interface {
	Argb(c Colix) uint32
	Colix(argb uint32) Colix
}

// Table is the default Palette: a fixed set of named colors followed by
// colors allocated on demand. Safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	argbs []uint32
	index map[uint32]Colix
}

var fixedArgbs = [fixedCount]uint32{
	Inherit:      0x00000000,
	InheritColor: 0x00000000,
	UsePalette:   0x00000000,
	RawRGB:       0x00000000,
	Black:        0xFF000000,
	Orange:       0xFFFFA500,
	Pink:         0xFFFFC0CB,
	Blue:         0xFF0000FF,
	White:        0xFFFFFFFF,
	Cyan:         0xFF00FFFF,
	Red:          0xFFFF0000,
	Green:        0xFF008000,
	Gray:         0xFF808080,
	Silver:       0xFFC0C0C0,
	Lime:         0xFF00FF00,
	Maroon:       0xFF800000,
	Navy:         0xFF000080,
	Olive:        0xFF808000,
	Purple:       0xFF800080,
	Teal:         0xFF008080,
	Magenta:      0xFFFF00FF,
	Yellow:       0xFFFFFF00,
	HotPink:      0xFFFF69B4,
	Gold:         0xFFFFD700,
}

var names = map[string]Colix{
	"black":   Black,
	"orange":  Orange,
	"pink":    Pink,
	"blue":    Blue,
	"white":   White,
	"cyan":    Cyan,
	"red":     Red,
	"green":   Green,
	"gray":    Gray,
	"grey":    Gray,
	"silver":  Silver,
	"lime":    Lime,
	"maroon":  Maroon,
	"navy":    Navy,
	"olive":   Olive,
	"purple":  Purple,
	"teal":    Teal,
	"magenta": Magenta,
	"yellow":  Yellow,
	"hotpink": HotPink,
	"gold":    Gold,
}

// ByName returns the fixed colix for a lower-case color name.
func ByName(name string) (Colix, bool) {
	c, ok := names[name]
	return c, ok
}

// NewTable returns a palette holding the fixed colors.
func NewTable() *Table {
	t := &Table{
		argbs: make([]uint32, fixedCount, 256),
		index: make(map[uint32]Colix, 256),
	}
	copy(t.argbs, fixedArgbs[:])
	for i := Black; i < fixedCount; i++ {
		t.index[fixedArgbs[i]] = i
	}
	return t
}

// Argb returns the opaque color for c. Unknown indices resolve to black.
func (t *Table) Argb(c Colix) uint32 {
	i := c.Index()
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i >= len(t.argbs) {
		return 0xFF000000
	}
	return t.argbs[i]
}

// Colix returns the opaque colix for argb, allocating a slot if needed.
// When the table is full the nearest existing color is returned.
func (t *Table) Colix(argb uint32) Colix {
	argb |= 0xFF000000
	t.mu.RLock()
	c, ok := t.index[argb]
	t.mu.RUnlock()
	if ok {
		return c
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.index[argb]; ok {
		return c
	}
	if len(t.argbs) > MaxIndex {
		return t.nearest(argb)
	}
	c = Colix(len(t.argbs))
	t.argbs = append(t.argbs, argb)
	t.index[argb] = c
	return c
}

// Parse resolves a color name or hex string to an opaque colix.
func (t *Table) Parse(s string) (Colix, error) {
	if c, ok := ByName(strings.ToLower(s)); ok {
		return c, nil
	}
	argb, err := ParseHex(s)
	if err != nil {
		return 0, err
	}
	return t.Colix(argb), nil
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.argbs)
}

func (t *Table) nearest(argb uint32) Colix {
	best, bestD := Black, int64(1)<<62
	r, g, b := int64(argb>>16&0xFF), int64(argb>>8&0xFF), int64(argb&0xFF)
	for i := int(Black); i < len(t.argbs); i++ {
		c := t.argbs[i]
		dr := int64(c>>16&0xFF) - r
		dg := int64(c>>8&0xFF) - g
		db := int64(c&0xFF) - b
		if d := dr*dr + dg*dg + db*db; d < bestD {
			best, bestD = Colix(i), d
		}
	}
	return best
}

// Greyscale converts argb to an opaque grey of equal luminance.
func Greyscale(argb uint32) uint32 {
	r := (argb >> 16) & 0xFF
	g := (argb >> 8) & 0xFF
	b := argb & 0xFF
	grey := (2989*r + 5870*g + 1140*b + 5000) / 10000
	return 0xFF000000 | grey<<16 | grey<<8 | grey
}

// ParseHex parses "#RRGGBB", "RRGGBB" or "#AARRGGBB" into an ARGB value.
// Six-digit forms are opaque.
func ParseHex(s string) (uint32, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 && len(s) != 8 {
		return 0, fmt.Errorf("colix: parse color %q: want 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("colix: parse color %q: %w", s, err)
	}
	if len(s) == 6 {
		v |= 0xFF000000
	}
	return uint32(v), nil
}
