package raster

import "g3d-renderer/internal/shade"

// SetLighting applies a full lighting model. Shade ramps and the sphere
// cache are rebuilt lazily.
func (r *Renderer) SetLighting(l shade.Lighting) {
	r.shader.Apply(l, r.bgArgb)
	r.lightingChanged()
	Logger().Debug("raster: lighting changed", "ambient", l.AmbientPercent, "diffuse", l.DiffusePercent)
}

// Lighting returns the current lighting model.
func (r *Renderer) Lighting() shade.Lighting { return r.shader.Lighting() }

// lightingChanged forgets the current color so the next SetColix picks
// up the new shade ramp.
func (r *Renderer) lightingChanged() {
	r.colixCurrent = 0
	r.currentShadeIndex = -1
}

func (r *Renderer) SetAmbientPercent(v int) {
	r.shader.SetAmbientPercent(v)
	r.lightingChanged()
}

func (r *Renderer) SetDiffusePercent(v int) {
	r.shader.SetDiffusePercent(v)
	r.lightingChanged()
}

func (r *Renderer) SetSpecular(on bool) {
	r.shader.SetSpecular(on)
	r.lightingChanged()
}

func (r *Renderer) SetSpecularPercent(v int) {
	r.shader.SetSpecularPercent(v)
	r.lightingChanged()
}

func (r *Renderer) SetSpecularPower(v int) {
	r.shader.SetSpecularPower(v)
	r.lightingChanged()
}

func (r *Renderer) SetSpecularExponent(v int) {
	r.shader.SetSpecularExponent(v)
	r.lightingChanged()
}

func (r *Renderer) SetPhongExponent(v int) {
	r.shader.SetPhongExponent(v)
	r.lightingChanged()
}

// SetCel turns cel shading on or off; outlines contrast with the
// background.
func (r *Renderer) SetCel(on bool, power int) {
	r.shader.SetCel(on, power, r.bgArgb)
	r.lightingChanged()
}

// VolumeRender switches to flat, fully ambient shading for volume dots
// and back. Calls must pair.
func (r *Renderer) VolumeRender(on bool) {
	if on {
		l := r.shader.Lighting()
		r.saveAmbient, r.saveDiffuse = l.AmbientPercent, l.DiffusePercent
		r.shader.SetAmbientPercent(100)
		r.shader.SetDiffusePercent(0)
	} else {
		r.shader.SetAmbientPercent(r.saveAmbient)
		r.shader.SetDiffusePercent(r.saveDiffuse)
	}
	r.lightingChanged()
}
