package drawlist

import (
	"fmt"
	"image"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
	"g3d-renderer/internal/raster"
	"g3d-renderer/internal/shade"
	"g3d-renderer/internal/texture"
)

// opInfo describes the points an op takes and the color it needs.
type opInfo struct {
	points   int // exact count, or -1 for one or more
	needs    colorNeed
	diameter bool
}

type colorNeed int

const (
	needColor colorNeed = iota
	needAnyColor
	needNone
)

var ops = map[string]opInfo{
	"sphere":    {points: 1, diameter: true},
	"ellipsoid": {points: 1},
	"cylinder":  {points: 2, diameter: true},
	"cone":      {points: 2, diameter: true},
	"line":      {points: 2},
	"dashed":    {points: 2},
	"triangle":  {points: 3, needs: needAnyColor},
	"quad":      {points: 4},
	"hermite":   {points: 4},
	"ribbon":    {points: 8},
	"circle":    {points: 1, needs: needAnyColor, diameter: true},
	"text":      {points: 1},
	"image":     {points: 1, needs: needNone},
	"rect":      {points: 1},
	"points":    {points: -1},
}

var endcaps = map[string]raster.Endcap{
	"":                  raster.EndcapFlat,
	"flat":              raster.EndcapFlat,
	"none":              raster.EndcapNone,
	"open":              raster.EndcapNone,
	"hidden":            raster.EndcapHidden,
	"spherical":         raster.EndcapSpherical,
	"round":             raster.EndcapSpherical,
	"open_to_spherical": raster.EndcapOpenToSpherical,
	"flat_to_spherical": raster.EndcapFlatToSpherical,
}

// step is a command with its colors, fonts and images resolved.
type step struct {
	cmd     *Command
	c1, c2  colix.Colix
	vertex  [3]raster.Vertex
	gouraud bool
	endcap  raster.Endcap
	font    raster.Font
	img     image.Image
}

// List is a compiled document ready to replay.
type List struct {
	Width, Height int
	// Background is zero when the document leaves it to the caller.
	Background uint32
	Rotation   mathutil.Mat3

	steps []step
}

// Len returns the number of commands.
func (l *List) Len() int { return len(l.steps) }

// Compile validates doc and resolves its colors in pal and its images
// through images, which may be nil when no command uses one.
func Compile(doc *Document, pal *colix.Table, images texture.Resolver) (*List, error) {
	l := &List{Width: doc.Width, Height: doc.Height}
	if doc.Background != "" {
		argb, err := colix.ParseHex(doc.Background)
		if err != nil {
			return nil, fmt.Errorf("drawlist: background: %w", err)
		}
		l.Background = argb
	}
	rot, ok := mathutil.ViewByName(doc.View)
	if !ok {
		return nil, fmt.Errorf("drawlist: view %q: %w", doc.View, ErrCommand)
	}
	if e := doc.Rotation; e != nil {
		q := mathutil.EulerToQuat(mathutil.Deg2Rad(e[0]), mathutil.Deg2Rad(e[1]), mathutil.Deg2Rad(e[2]))
		rot = mathutil.Mat3Mul(rot, mathutil.QuatToMat3(q))
	}
	l.Rotation = rot

	l.steps = make([]step, len(doc.Commands))
	for i := range doc.Commands {
		c := &doc.Commands[i]
		if err := l.steps[i].compile(c, pal, images); err != nil {
			return nil, fmt.Errorf("drawlist: command %d (%s): %w", i, c.Op, err)
		}
	}
	return l, nil
}

func (s *step) compile(c *Command, pal *colix.Table, images texture.Resolver) error {
	info, ok := ops[c.Op]
	if !ok {
		return fmt.Errorf("unknown op: %w", ErrCommand)
	}
	if n := len(c.Points); info.points < 0 && n == 0 || info.points >= 0 && n != info.points {
		return fmt.Errorf("%d points: %w", n, ErrCommand)
	}
	if info.diameter && c.Diameter <= 0 {
		return fmt.Errorf("diameter %d: %w", c.Diameter, ErrCommand)
	}
	s.cmd = c

	var err error
	if s.c1, err = parseColor(pal, c.Color, c.Translucency); err != nil {
		return err
	}
	if s.c2, err = parseColor(pal, c.Color2, c.Translucency); err != nil {
		return err
	}
	switch info.needs {
	case needColor:
		if s.c1 == 0 {
			return fmt.Errorf("missing color: %w", ErrCommand)
		}
	case needAnyColor:
		if s.c1 == 0 && s.c2 == 0 && len(c.Colors) == 0 {
			return fmt.Errorf("missing color: %w", ErrCommand)
		}
	}

	switch c.Op {
	case "cylinder", "cone":
		if s.endcap, ok = endcaps[c.Endcap]; !ok {
			return fmt.Errorf("endcap %q: %w", c.Endcap, ErrCommand)
		}
		if s.c2 == 0 {
			s.c2 = s.c1
		}
	case "line":
		if s.c2 == 0 {
			s.c2 = s.c1
		}
	case "dashed":
		if c.Dash[0] <= 0 || c.Dash[1] < 0 {
			return fmt.Errorf("dash %v: %w", c.Dash, ErrCommand)
		}
	case "ellipsoid":
		if len(c.Axes) != 3 {
			return fmt.Errorf("%d axes: %w", len(c.Axes), ErrCommand)
		}
	case "hermite":
		if n := len(c.Diameters); n != 0 && n != 3 {
			return fmt.Errorf("%d diameters: %w", n, ErrCommand)
		}
	case "triangle":
		return s.compileTriangle(c, pal)
	case "text":
		if c.Font != nil {
			s.font = raster.Font{Face: c.Font.Face, Size: c.Font.Size}
			if c.Font.Bold {
				s.font.Style |= raster.FontBold
			}
			if c.Font.Italic {
				s.font.Style |= raster.FontItalic
			}
		}
	case "image":
		if images != nil {
			if img := images.Resolve(c.Image); img != nil {
				s.img = img
			}
		}
		if s.img == nil {
			return fmt.Errorf("image %q not found: %w", c.Image, ErrCommand)
		}
	}
	return nil
}

// compileTriangle sets up per-vertex colors and normals. A triangle with
// either is Gouraud shaded; otherwise it is shaded by its face normal.
func (s *step) compileTriangle(c *Command, pal *colix.Table) error {
	if n := len(c.Colors); n != 0 && n != 3 {
		return fmt.Errorf("%d colors: %w", n, ErrCommand)
	}
	if n := len(c.Normals); n != 0 && n != 3 {
		return fmt.Errorf("%d normals: %w", n, ErrCommand)
	}
	if len(c.Colors) == 0 && len(c.Normals) == 0 {
		if s.c1 == 0 {
			return fmt.Errorf("missing color: %w", ErrCommand)
		}
		return nil
	}
	s.gouraud = true
	for i := range s.vertex {
		v := &s.vertex[i]
		v.Colix, v.Normix = s.c1, shade.NormixNull
		if len(c.Colors) == 3 {
			cx, err := parseColor(pal, c.Colors[i], c.Translucency)
			if err != nil {
				return err
			}
			v.Colix = cx
		}
		if len(c.Normals) == 3 {
			v.Normix = shade.Normix(c.Normals[i])
		}
	}
	if s.vertex[0].Colix == 0 {
		return fmt.Errorf("missing color: %w", ErrCommand)
	}
	return nil
}

func parseColor(pal *colix.Table, s string, translucency float64) (colix.Colix, error) {
	if s == "" {
		return 0, nil
	}
	c, err := pal.Parse(s)
	if err != nil {
		return 0, err
	}
	if translucency != 0 {
		c = c.Translucent(translucency)
	}
	return c, nil
}
