package raster

import (
	"errors"
	"fmt"
	"math"
)

// ErrAllocation is returned when a frame buffer cannot be allocated.
var ErrAllocation = errors.New("buffer allocation failed")

// MaxBufferPixels bounds a single color buffer, supersampled size included.
const MaxBufferPixels = 1 << 26

// zEmpty marks an unwritten depth buffer slot.
const zEmpty = math.MaxInt32

// Platform owns the color and depth buffers plus the translucent pair used
// in the second pass. It knows nothing about geometry.
type Platform struct {
	windowWidth  int
	windowHeight int
	windowSize   int
	bufferSize   int // windowSize, quadrupled when supersampling

	Pixels []uint32 // ARGB, 0 = never written
	Z      []int    // depth, zEmpty = never written

	PixelsT []uint32
	ZT      []int

	backgroundTransparent bool
	background            uint32

	// touches counts every allocation, clear or read of the translucent pair.
	touches int
}

// allocate sizes the opaque buffers for a window, reusing them when they fit.
func (p *Platform) allocate(w, h int, antialias bool) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("raster: allocate %dx%d: %w", w, h, ErrAllocation)
	}
	size := w * h
	bufSize := size
	if antialias {
		bufSize *= 4
	}
	if size/h != w || bufSize > MaxBufferPixels {
		return fmt.Errorf("raster: allocate %dx%d: %w", w, h, ErrAllocation)
	}
	p.windowWidth, p.windowHeight = w, h
	p.windowSize = size
	p.bufferSize = bufSize
	if cap(p.Pixels) >= bufSize {
		p.Pixels = p.Pixels[:bufSize]
		p.Z = p.Z[:bufSize]
	} else {
		p.Pixels = make([]uint32, bufSize)
		p.Z = make([]int, bufSize)
	}
	Logger().Debug("raster: buffers allocated", "width", w, "height", h, "antialias", antialias)
	return nil
}

// allocateT sizes the translucent pair. It is full size only when the
// translucent pass itself is supersampled.
func (p *Platform) allocateT(antialias bool) {
	size := p.windowSize
	if antialias {
		size = p.bufferSize
	}
	p.touches++
	if cap(p.PixelsT) >= size {
		p.PixelsT = p.PixelsT[:size]
		p.ZT = p.ZT[:size]
		return
	}
	p.PixelsT = make([]uint32, size)
	p.ZT = make([]int, size)
}

func (p *Platform) clear() {
	clear(p.Pixels)
	for i := range p.Z {
		p.Z[i] = zEmpty
	}
}

func (p *Platform) clearT() {
	p.touches++
	clear(p.PixelsT)
	for i := range p.ZT {
		p.ZT[i] = zEmpty
	}
}

func (p *Platform) release() {
	p.Pixels, p.Z = nil, nil
	p.PixelsT, p.ZT = nil, nil
	p.windowSize, p.bufferSize = 0, 0
}

func (p *Platform) hasBuffers() bool { return p.Pixels != nil }

// hasContent reports whether anything but the background has been drawn.
func (p *Platform) hasContent() bool {
	for _, z := range p.Z {
		if z != zEmpty {
			return true
		}
	}
	return false
}
