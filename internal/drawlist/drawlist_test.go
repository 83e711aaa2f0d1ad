package drawlist

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
	"g3d-renderer/internal/postprocess"
	"g3d-renderer/internal/raster"
	"g3d-renderer/internal/shade"
)

const sceneYAML = `
width: 64
height: 48
background: "#101010"
view: tilted
commands:
  - op: sphere
    color: red
    diameter: 20
    points: [[20, 24, 100]]
  - op: cylinder
    color: blue
    color2: "#00FF00"
    translucency: 0.5
    diameter: 6
    endcap: round
    points: [[10, 40, 90], [54, 40, 90]]
  - op: text
    color: white
    text: H<sub>2</sub>O
    font: {face: mono, size: 10, bold: true}
    points: [[40, 12, 50]]
`

func decodeString(t *testing.T, s, format string) *Document {
	t.Helper()
	doc, err := Decode(strings.NewReader(s), format)
	require.NoError(t, err)
	return doc
}

func TestDecodeYAML(t *testing.T) {
	doc := decodeString(t, sceneYAML, "yaml")
	assert.Equal(t, 64, doc.Width)
	assert.Equal(t, "tilted", doc.View)
	require.Len(t, doc.Commands, 3)
	assert.Equal(t, Vec{20, 24, 100}, doc.Commands[0].Points[0])
	assert.Equal(t, 0.5, doc.Commands[1].Translucency)
	require.NotNil(t, doc.Commands[2].Font)
	assert.True(t, doc.Commands[2].Font.Bold)
}

func TestDecodeJSON(t *testing.T) {
	doc := decodeString(t, `{"rotation": [0, 90, 0], "commands": [
		{"op": "line", "color": "lime", "points": [[1, 2, 3], [4, 5, 6]]}
	]}`, "json")
	require.NotNil(t, doc.Rotation)
	assert.Equal(t, Vec{0, 90, 0}, *doc.Rotation)
	assert.Equal(t, "line", doc.Commands[0].Op)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"commands": [], "bogus": 1}`), "json")
	assert.ErrorContains(t, err, "drawlist: decode json")
	_, err = Decode(strings.NewReader("commands: []\nbogus: 1\n"), "yaml")
	assert.ErrorContains(t, err, "drawlist: decode yaml")
	_, err = Decode(strings.NewReader(""), "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yml")
	require.NoError(t, os.WriteFile(path, []byte(sceneYAML), 0o644))
	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.Commands, 3)
	assert.True(t, IsDrawList(path))
	assert.False(t, IsDrawList(filepath.Join(dir, "scene.webp")))

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "drawlist: read")
}

func TestCompileResolves(t *testing.T) {
	pal := colix.NewTable()
	l, err := Compile(decodeString(t, sceneYAML, "yaml"), pal, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, uint32(0xFF101010), l.Background)
	assert.Equal(t, mathutil.ViewTilted, l.Rotation)

	cyl := l.steps[1]
	assert.Equal(t, raster.EndcapSpherical, cyl.endcap)
	assert.True(t, cyl.c1.IsTranslucent())
	assert.Equal(t, uint32(0xFF00FF00), pal.Argb(cyl.c2))
	assert.Equal(t, raster.Font{Face: "mono", Size: 10, Style: raster.FontBold}, l.steps[2].font)
}

func TestCompileEulerRotation(t *testing.T) {
	doc := &Document{Rotation: &Vec{0, 0, 90}}
	l, err := Compile(doc, colix.NewTable(), nil)
	require.NoError(t, err)
	v := l.Rotation.MulVec3(mathutil.Vec3{1, 0, 0})
	assert.InDelta(t, 0, v[0], 1e-9)
	assert.InDelta(t, 1, v[1], 1e-9)
}

func TestCompileErrors(t *testing.T) {
	cases := map[string]Command{
		"unknown op":    {Op: "torus", Color: "red", Points: []Vec{{}}},
		"1 points":      {Op: "line", Color: "red", Points: []Vec{{}}},
		"diameter 0":    {Op: "sphere", Color: "red", Points: []Vec{{}}},
		"missing color": {Op: "quad", Points: make([]Vec, 4)},
		"endcap":        {Op: "cylinder", Color: "red", Diameter: 3, Endcap: "square", Points: make([]Vec, 2)},
		"2 axes":        {Op: "ellipsoid", Color: "red", Axes: make([]Vec, 2), Points: make([]Vec, 1)},
		"dash":          {Op: "dashed", Color: "red", Points: make([]Vec, 2)},
		"2 colors":      {Op: "triangle", Colors: []string{"red", "blue"}, Points: make([]Vec, 3)},
		"not found":     {Op: "image", Image: "logo", Points: make([]Vec, 1)},
		"parse color":   {Op: "rect", Color: "#12", Points: make([]Vec, 1)},
	}
	for want, cmd := range cases {
		_, err := Compile(&Document{Commands: []Command{cmd}}, colix.NewTable(), nil)
		require.Error(t, err, want)
		assert.Contains(t, err.Error(), want)
		assert.Contains(t, err.Error(), "drawlist: command 0")
	}

	_, err := Compile(&Document{View: "under"}, colix.NewTable(), nil)
	assert.ErrorIs(t, err, ErrCommand)
}

func TestCompileTriangleVertices(t *testing.T) {
	doc := &Document{Commands: []Command{{
		Op:      "triangle",
		Colors:  []string{"red", "lime", "blue"},
		Normals: []Vec{{0, 0, -1}, {0, 0, -1}, {0, 0, -1}},
		Points:  make([]Vec, 3),
	}}}
	l, err := Compile(doc, colix.NewTable(), nil)
	require.NoError(t, err)
	s := l.steps[0]
	assert.True(t, s.gouraud)
	assert.Equal(t, colix.Lime, s.vertex[1].Colix)
	assert.Equal(t, shade.Normix(mathutil.Vec3{0, 0, -1}), s.vertex[2].Normix)
}

func newRenderer(w, h int, aa bool) *raster.Renderer {
	r := raster.New(colix.NewTable())
	r.SetWindowParameters(w, h, aa)
	return r
}

func TestRenderRunsBothPasses(t *testing.T) {
	pal := colix.NewTable()
	l, err := Compile(decodeString(t, sceneYAML, "yaml"), pal, nil)
	require.NoError(t, err)
	r := raster.New(pal)
	r.SetWindowParameters(l.Width, l.Height, false)
	require.NoError(t, l.Render(r, Options{TranslucentMode: true}))

	assert.Equal(t, 1, r.Stats().Pass2Frames)
	f := r.Frame()
	require.Equal(t, 64*48, len(f.Pixels))
	assert.NotZero(t, f.Pixels[24*64+20], "sphere center")
	assert.NotZero(t, f.Pixels[40*64+30], "translucent cylinder merged")
}

func TestRenderOpaqueSkipsPass2(t *testing.T) {
	doc := &Document{Commands: []Command{
		{Op: "sphere", Color: "red", Diameter: 9, Points: []Vec{{8, 8, 50}}},
		{Op: "rect", Color: "white", Size: [2]int{4, 4}, Points: []Vec{{1, 1, 10}}},
	}}
	l, err := Compile(doc, colix.NewTable(), nil)
	require.NoError(t, err)
	r := newRenderer(16, 16, false)
	require.NoError(t, l.Render(r, Options{}))
	assert.Zero(t, r.Stats().Pass2Frames)
	assert.True(t, r.HasContent())
}

func TestRenderAntialiasedScalesToWindow(t *testing.T) {
	doc := &Document{Commands: []Command{
		{Op: "sphere", Color: "red", Diameter: 10, Points: []Vec{{16, 16, 50}}},
	}}
	l, err := Compile(doc, colix.NewTable(), nil)
	require.NoError(t, err)
	r := newRenderer(32, 32, true)
	r.SetBackgroundTransparent(true)
	require.NoError(t, l.Render(r, Options{}))
	f := r.Frame()
	require.Len(t, f.Pixels, 32*32)
	assert.NotZero(t, f.Pixels[16*32+16])
	assert.NotZero(t, f.Pixels[16*32+12], "radius is in window pixels")
	assert.Zero(t, f.Pixels[16*32+24])
	assert.Zero(t, postprocess.ToNRGBA(f).NRGBAAt(0, 0).A)
}

func TestRenderRejectsEmptyWindow(t *testing.T) {
	l, err := Compile(&Document{}, colix.NewTable(), nil)
	require.NoError(t, err)
	err = l.Render(newRenderer(0, 0, false), Options{})
	assert.ErrorIs(t, err, raster.ErrAllocation)
}

type oneImage struct{ img *image.NRGBA }

func (o oneImage) Resolve(name string) *image.NRGBA {
	if name == "logo" {
		return o.img
	}
	return nil
}

func TestRenderImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 16; i++ {
		img.SetNRGBA(i%4, i/4, color.NRGBA{0, 0, 255, 255})
	}
	doc := &Document{Commands: []Command{
		{Op: "image", Image: "logo", Size: [2]int{8, 8}, Points: []Vec{{2, 2, 10}}},
	}}
	l, err := Compile(doc, colix.NewTable(), oneImage{img})
	require.NoError(t, err)
	r := newRenderer(16, 16, false)
	require.NoError(t, l.Render(r, Options{}))
	assert.Equal(t, uint32(0xFF0000FF), r.Frame().Pixels[5*16+5])
}
