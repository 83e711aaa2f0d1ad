// Package raster is a software rasterizer for screen-space spheres,
// cylinders, lines, triangles, splines and text. It writes packed ARGB into
// an integer depth-buffered frame, with a two-pass translucency model and
// optional 2x2 supersampling.
//
// A Renderer is single-threaded: one goroutine calls BeginFrame, the draw
// methods and EndFrame in that order.
package raster

import (
	"image"
	"math"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/mathutil"
	"g3d-renderer/internal/shade"
)

// Renderer owns the frame buffers, the rasterizers and the per-frame
// shading state.
type Renderer struct {
	palette  colix.Palette
	shader   *shade.Shader
	glyphs   GlyphSource
	platform Platform

	windowWidth, windowHeight int
	newWidth, newHeight       int
	newAntialias              bool

	width, height int
	xLast, yLast  int

	displayMinX, displayMaxX, displayMinY, displayMaxY     int
	displayMinX2, displayMaxX2, displayMinY2, displayMaxY2 int

	ht3        int
	bufferSize int
	slab       int
	depth      int

	antialiasEnabled   bool
	antialiasThisFrame bool
	antialias2         bool

	currentlyRendering   bool
	twoPass              bool
	isPass2              bool
	haveTranslucent      bool
	pass2Flag01          int
	translucentCoverOnly bool
	renderLow            bool
	greyscale            bool

	bgArgb          uint32
	backgroundImage image.Image

	colixCurrent      colix.Colix
	currentShadeIndex int
	shadesCurrent     []uint32
	argbCurrent       uint32
	argbNoisyUp       uint32
	argbNoisyDn       uint32
	translucencyMask  uint32
	translucencyLog   int
	wasScreened       bool
	zMargin           int

	writers    [chainCount]PixelWriter
	pixel      PixelWriter
	wrapWriter func(PixelWriter) PixelWriter
	fog        fog
	fogOn      bool

	normix   shade.NormixShades
	normixZ  []float64
	rotation mathutil.Mat3

	line     lineRenderer
	spheres  sphereRenderer
	cylinder cylinderRenderer
	triangle triangleRenderer
	hermite  hermiteRenderer
	circle   circleRenderer
	text     textRenderer

	strings     []textString
	currentFont Font
	anaglyph    []byte
	emptyBlocks []bool

	saveAmbient, saveDiffuse int

	frames      int
	pass2Frames int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithGlyphSource sets the font collaborator used by the text rasterizer.
func WithGlyphSource(g GlyphSource) Option {
	return func(r *Renderer) { r.glyphs = g }
}

// WithShader shares a lighting model instead of creating a new one.
func WithShader(s *shade.Shader) Option {
	return func(r *Renderer) { r.shader = s }
}

// WithWriterWrap wraps every pixel writer chain, for instrumentation. The
// renderer prebuilds one chain per combination of pass, screening and depth
// shading, and f is called once for each, so f must return a distinct
// wrapper around every next it is given.
func WithWriterWrap(f func(PixelWriter) PixelWriter) Option {
	return func(r *Renderer) { r.wrapWriter = f }
}

// New returns a renderer resolving colors through palette. A nil palette
// uses a fresh colix.Table.
func New(palette colix.Palette, opts ...Option) *Renderer {
	if palette == nil {
		palette = colix.NewTable()
	}
	r := &Renderer{
		palette:           palette,
		depth:             math.MaxInt32,
		currentShadeIndex: -1,
		bgArgb:            0xFF000000,
		translucencyMask:  0xFFFFFFFF,
	}
	for _, o := range opts {
		o(r)
	}
	if r.shader == nil {
		r.shader = shade.New()
	}
	r.line.init(r)
	r.spheres.init(r)
	r.cylinder.init(r)
	r.triangle.init(r)
	r.hermite.init(r)
	r.circle.init(r)
	r.text.init(r)
	r.buildWriters()
	r.setRotation(mathutil.Mat3Identity())
	return r
}

// Shader exposes the lighting model.
func (r *Renderer) Shader() *shade.Shader { return r.shader }

// Palette returns the color collaborator.
func (r *Renderer) Palette() colix.Palette { return r.palette }

// SetWindowParameters records the window size and supersampling mode for
// the next frame. A frame in progress is ended.
func (r *Renderer) SetWindowParameters(width, height int, antialias bool) {
	r.newWidth = width
	r.newHeight = height
	r.newAntialias = antialias
	if r.currentlyRendering {
		r.EndFrame()
	}
}

// SetBackgroundArgb sets the background color.
func (r *Renderer) SetBackgroundArgb(argb uint32) {
	r.bgArgb = argb
	l := r.shader.Lighting()
	r.shader.SetCel(l.Cel, l.CelPower, argb)
}

// BackgroundArgb returns the background color.
func (r *Renderer) BackgroundArgb() uint32 { return r.bgArgb }

// SetBackgroundImage sets an image painted behind everything each frame.
func (r *Renderer) SetBackgroundImage(img image.Image) { r.backgroundImage = img }

// SetBackgroundTransparent marks unwritten pixels as transparent in Frame.
func (r *Renderer) SetBackgroundTransparent(v bool) { r.platform.backgroundTransparent = v }

// SetGreyscaleMode renders every color as grey of equal luminance.
func (r *Renderer) SetGreyscaleMode(v bool) { r.greyscale = v }

// SetRenderLow draws translucent colors as opaque.
func (r *Renderer) SetRenderLow(v bool) { r.renderLow = v }

// SetPerspective selects hyperbolic (true) or linear depth interpolation
// for the line and triangle rasterizers.
func (r *Renderer) SetPerspective(v bool) {
	r.line.ortho = !v
	r.triangle.ortho = !v
}

// IsAntialiased reports whether the current frame is supersampled.
func (r *Renderer) IsAntialiased() bool { return r.antialiasThisFrame }

// IsPass2 reports whether the translucent pass is active.
func (r *Renderer) IsPass2() bool { return r.isPass2 }

// HaveTranslucentObjects reports whether a translucent colix was set this frame.
func (r *Renderer) HaveTranslucentObjects() bool { return r.haveTranslucent }

// BeginFrame starts a frame: it (re)allocates buffers if the window changed,
// computes per-normal shades for rotation and clears the buffers.
// translucentMode false keeps only the nearest translucent layer.
func (r *Renderer) BeginFrame(rotation mathutil.Mat3, translucentMode bool) error {
	if r.currentlyRendering {
		r.EndFrame()
	}
	if r.windowWidth != r.newWidth || r.windowHeight != r.newHeight ||
		r.newAntialias != r.antialiasEnabled {
		r.windowWidth = r.newWidth
		r.windowHeight = r.newHeight
		r.antialiasEnabled = r.newAntialias
		r.releaseBuffers()
	}
	r.setRotation(rotation)
	r.antialiasEnabled = r.newAntialias
	r.antialiasThisFrame = r.newAntialias
	r.strings = r.strings[:0]
	r.twoPass = true
	r.isPass2 = false
	r.pass2Flag01 = 0
	r.colixCurrent = 0
	r.currentShadeIndex = -1
	r.haveTranslucent = false
	r.wasScreened = false
	r.translucentCoverOnly = !translucentMode
	if !r.platform.hasBuffers() {
		if err := r.platform.allocate(r.windowWidth, r.windowHeight, r.antialiasThisFrame); err != nil {
			Logger().Warn("raster: frame rejected", "err", err)
			return err
		}
	}
	r.currentlyRendering = true
	r.setWidthHeight(r.antialiasThisFrame)
	r.selectWriter()
	r.platform.clear()
	if r.backgroundImage != nil {
		r.plotBackgroundImage()
	}
	r.frames++
	return nil
}

func (r *Renderer) releaseBuffers() {
	r.platform.release()
	r.line.cache.Clear()
}

// ReleaseBuffers frees the frame buffers and the line cache.
func (r *Renderer) ReleaseBuffers() {
	if r.currentlyRendering {
		r.EndFrame()
	}
	r.releaseBuffers()
	r.windowWidth, r.windowHeight = 0, 0
}

func (r *Renderer) setRotation(rot mathutil.Mat3) {
	r.rotation = rot
	r.normix = r.shader.NormixShades(rot)
	vs := shade.NormixVectors()
	if len(r.normixZ) != len(vs) {
		r.normixZ = make([]float64, len(vs))
	}
	for i, v := range vs {
		r.normixZ[i] = rot.MulVec3(v)[2]
	}
}

// IsDirectedTowardsCamera reports whether normix faces the viewer.
// Two-sided normixes always do.
func (r *Renderer) IsDirectedTowardsCamera(normix int16) bool {
	return normix < 0 || (normix != shade.NormixNull && r.normixZ[normix] > 0)
}

// ShadeIndex returns the shade for a normix under the frame rotation.
func (r *Renderer) ShadeIndex(normix int16) int { return r.normix.Index(normix) }

// SetPass2 switches to the translucent pass. It returns false, and the
// caller skips the pass, when no translucent colix was seen.
// antialiasTranslucent keeps the translucent pass supersampled; otherwise
// the opaque frame is downsampled first.
func (r *Renderer) SetPass2(antialiasTranslucent bool) bool {
	if !r.haveTranslucent || !r.currentlyRendering {
		return false
	}
	r.isPass2 = true
	r.pass2Flag01 = 1
	r.colixCurrent = 0
	r.currentShadeIndex = -1
	if r.platform.PixelsT == nil || r.antialias2 != antialiasTranslucent {
		r.platform.allocateT(antialiasTranslucent && r.antialiasThisFrame)
	}
	r.antialias2 = antialiasTranslucent
	if r.antialiasThisFrame && !r.antialias2 {
		r.downsampleFullScene(true)
	}
	r.platform.clearT()
	r.selectWriter()
	r.pass2Frames++
	Logger().Debug("raster: translucent pass", "width", r.width, "height", r.height)
	return true
}

// EndFrame merges the translucent layer, applies depth display and
// downsamples a supersampled frame. The result is available from Frame.
func (r *Renderer) EndFrame() {
	if !r.currentlyRendering {
		return
	}
	p := &r.platform
	if p.hasBuffers() {
		if r.isPass2 && p.PixelsT != nil {
			p.touches++
			for i, t := range p.PixelsT {
				p.Pixels[i] = MergeBufferPixel(p.Pixels[i], t, r.bgArgb)
			}
		}
		if r.fogOn && r.fog.zPower == 0 {
			r.fog.showZBuffer(p)
		}
		if r.antialiasThisFrame {
			r.downsampleFullScene(false)
		}
	}
	p.background = r.bgArgb
	r.currentlyRendering = false
	r.isPass2 = false
	r.wasScreened = false
}

// HasContent reports whether the last frame drew anything.
func (r *Renderer) HasContent() bool {
	return r.platform.hasBuffers() && r.platform.hasContent()
}

// SetSlabAndZShade sets the clipping planes and, when zSlab < zDepth, fades
// colors toward the background between zSlab and zDepth. zPower 0 renders
// the depth buffer itself as grey.
func (r *Renderer) SetSlabAndZShade(slab, depth, zSlab, zDepth, zPower int) {
	r.SetSlab(slab)
	r.SetDepth(depth)
	if zSlab < zDepth {
		bg := r.bgArgb
		r.fog = fog{
			zSlab:  max(0, zSlab),
			zDepth: max(0, zDepth),
			zPower: zPower,
			bgR:    int(bg >> 16 & 0xFF),
			bgG:    int(bg >> 8 & 0xFF),
			bgB:    int(bg & 0xFF),
		}
		r.fogOn = true
	} else {
		r.fogOn = false
	}
	r.selectWriter()
}

// SetZMargin sets the depth gap below which stacked translucent layers
// are not blended.
func (r *Renderer) SetZMargin(dz int) { r.zMargin = dz }

// SetColix makes c the current color and reports whether the caller should
// draw with it in the current pass. Transparent colors never draw; in the
// opaque pass only opaque and screened colors draw and in the translucent
// pass only translucent ones.
func (r *Renderer) SetColix(c colix.Colix) bool {
	if c == r.colixCurrent && r.currentShadeIndex == -1 {
		return true
	}
	mask := c & colix.TranslucentMask
	if mask == colix.Transparent {
		return false
	}
	if r.renderLow {
		mask = 0
	}
	isTranslucent := mask != 0
	isScreened := isTranslucent && mask == colix.TranslucentScreened
	r.setScreened(isScreened)
	if !r.checkTranslucent(isTranslucent && !isScreened) {
		return false
	}
	if r.isPass2 {
		r.translucencyMask = uint32(mask)<<colix.AlphaShift | 0xFFFFFF
		r.translucencyLog = int(mask) >> colix.TranslucentShift
	} else {
		r.translucencyLog = 0
	}
	r.colixCurrent = c
	r.shadesCurrent = r.shades(c)
	r.currentShadeIndex = -1
	r.setColor(r.colorArgb(c))
	return true
}

// Colix returns the current color token.
func (r *Renderer) Colix() colix.Colix { return r.colixCurrent }

// Argb returns the current flat color.
func (r *Renderer) Argb() uint32 { return r.argbCurrent }

func (r *Renderer) checkTranslucent(alphaTranslucent bool) bool {
	if alphaTranslucent {
		r.haveTranslucent = true
	}
	return !r.twoPass || r.isPass2 == alphaTranslucent
}

func (r *Renderer) setScreened(screened bool) PixelWriter {
	if r.wasScreened != screened {
		r.wasScreened = screened
		r.selectWriter()
	}
	return r.pixel
}

func (r *Renderer) shades(c colix.Colix) []uint32 {
	return r.shader.Shades(r.palette.Argb(c), r.greyscale)
}

func (r *Renderer) colorArgb(c colix.Colix) uint32 {
	argb := r.palette.Argb(c)
	if r.greyscale {
		return colix.Greyscale(argb)
	}
	return argb
}

func (r *Renderer) setColor(argb uint32) {
	r.argbCurrent = argb
	r.argbNoisyUp = argb
	r.argbNoisyDn = argb
}

// setColorNoisy selects a shade with its neighbours for dithered fills.
func (r *Renderer) setColorNoisy(i int) {
	r.currentShadeIndex = i
	r.argbCurrent = r.shadesCurrent[i]
	r.argbNoisyUp = r.shadesCurrent[min(i+1, shade.IndexLast)]
	r.argbNoisyDn = r.shadesCurrent[max(i-1, 0)]
}

// Stats are instrumentation counters.
type Stats struct {
	Frames      int
	Pass2Frames int
	// TranslucentTouches counts allocations, clears and merges of the
	// translucent buffer pair.
	TranslucentTouches int
}

func (r *Renderer) Stats() Stats {
	return Stats{
		Frames:             r.frames,
		Pass2Frames:        r.pass2Frames,
		TranslucentTouches: r.platform.touches,
	}
}

// Frame is a finished window-sized ARGB image. Pixels aliases the
// renderer's buffer and is valid until the next BeginFrame.
type Frame struct {
	Width       int
	Height      int
	Pixels      []uint32
	Background  uint32
	Transparent bool
}

// Frame returns the last finished frame.
func (r *Renderer) Frame() Frame {
	n := r.windowWidth * r.windowHeight
	px := r.platform.Pixels
	if len(px) > n {
		px = px[:n]
	}
	return Frame{
		Width:       r.windowWidth,
		Height:      r.windowHeight,
		Pixels:      px,
		Background:  r.bgArgb,
		Transparent: r.platform.backgroundTransparent,
	}
}
