// Package geometry implements the pure panel-framing math: cover-fit
// scaling, focal-point positioning against the shared target Y, and
// saturating offset clamping for user pan.
package geometry

import "github.com/menta2k/strip-composer/pkg/types"

// Rect is a panel rectangle in canvas pixels.
type Rect struct {
	W float64
	H float64
}

// Size is a source image size in pixels.
type Size struct {
	W int
	H int
}

// DrawParams are the rasterizer inputs for one panel: the scaled draw size of
// the source image and the offset of its top-left corner relative to the
// panel's top-left corner. Offsets are always in [panelDim - drawDim, 0] so
// the drawn image covers the panel on both edges.
type DrawParams struct {
	DrawWidth  float64
	DrawHeight float64
	OffsetX    float64
	OffsetY    float64
}

// CoverScale returns the minimal scale at which an image of size img fully
// covers the panel rectangle with no empty margin.
func CoverScale(panel Rect, img Size) float64 {
	if img.W <= 0 || img.H <= 0 {
		return 1
	}
	sx := panel.W / float64(img.W)
	sy := panel.H / float64(img.H)
	if sx > sy {
		return sx
	}
	return sy
}

// Layout computes the draw parameters for one panel. The image is scaled to
// cover the panel (multiplied by the user zoom, floored at 1 so coverage is
// preserved), auto-positioned so the focal point lands at the panel's
// horizontal center and at targetY vertically, shifted by the user pan, and
// finally clamped so no panel edge is left uncovered. Pan is a delta on the
// auto-computed position; out-of-range values saturate rather than error.
func Layout(panel Rect, img Size, focal types.FocalPoint, targetY float64, adj types.Adjustment) DrawParams {
	zoom := adj.Scale
	if zoom < 1 {
		zoom = 1
	}
	scale := CoverScale(panel, img) * zoom

	drawW := float64(img.W) * scale
	drawH := float64(img.H) * scale

	rawX := 0.5*panel.W - focal.X*drawW
	rawY := targetY*panel.H - focal.Y*drawH

	return DrawParams{
		DrawWidth:  drawW,
		DrawHeight: drawH,
		OffsetX:    clampOffset(rawX+adj.PanX, panel.W, drawW),
		OffsetY:    clampOffset(rawY+adj.PanY, panel.H, drawH),
	}
}

// clampOffset restricts offset to [panelDim - drawDim, 0]: positive offsets
// would expose the near edge, offsets below panelDim-drawDim the far edge.
func clampOffset(offset, panelDim, drawDim float64) float64 {
	min := panelDim - drawDim
	if offset < min {
		return min
	}
	if offset > 0 {
		return 0
	}
	return offset
}
