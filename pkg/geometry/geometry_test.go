package geometry

import (
	"math"
	"testing"

	"github.com/menta2k/strip-composer/pkg/types"
)

func TestCoverScale(t *testing.T) {
	tests := []struct {
		name     string
		panel    Rect
		img      Size
		expected float64
	}{
		{"exact fit", Rect{W: 400, H: 300}, Size{W: 400, H: 300}, 1.0},
		{"downscale wide image", Rect{W: 400, H: 400}, Size{W: 800, H: 400}, 1.0},
		{"height constrained", Rect{W: 200, H: 600}, Size{W: 400, H: 300}, 2.0},
		{"width constrained", Rect{W: 800, H: 100}, Size{W: 400, H: 300}, 2.0},
		{"upscale small image", Rect{W: 500, H: 500}, Size{W: 100, H: 50}, 10.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CoverScale(tc.panel, tc.img)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("CoverScale(%+v, %+v) = %f; want %f", tc.panel, tc.img, got, tc.expected)
			}
		})
	}
}

func TestCoverScaleDegenerate(t *testing.T) {
	if got := CoverScale(Rect{W: 400, H: 300}, Size{W: 0, H: 0}); got != 1 {
		t.Errorf("CoverScale with zero-size image = %f; want 1", got)
	}
}

func TestLayoutCoverInvariant(t *testing.T) {
	panels := []Rect{{W: 529, H: 800}, {W: 397, H: 1200}, {W: 100, H: 100}}
	sizes := []Size{{W: 4000, H: 3000}, {W: 640, H: 480}, {W: 333, H: 777}}
	zooms := []float64{1.0, 1.3, 2.0, 5.0}

	for _, panel := range panels {
		for _, img := range sizes {
			for _, zoom := range zooms {
				adj := types.Adjustment{Scale: zoom}
				p := Layout(panel, img, types.CenterFocalPoint(), 0.5, adj)

				if p.DrawWidth < panel.W-1e-6 {
					t.Errorf("panel %+v img %+v zoom %f: draw width %f below panel width %f",
						panel, img, zoom, p.DrawWidth, panel.W)
				}
				if p.DrawHeight < panel.H-1e-6 {
					t.Errorf("panel %+v img %+v zoom %f: draw height %f below panel height %f",
						panel, img, zoom, p.DrawHeight, panel.H)
				}
			}
		}
	}
}

func TestLayoutOffsetClampRange(t *testing.T) {
	panel := Rect{W: 500, H: 400}
	img := Size{W: 2000, H: 1500}

	pans := []float64{0, 50, -50, 1e6, -1e6, 123456.7}
	for _, panX := range pans {
		for _, panY := range pans {
			adj := types.Adjustment{PanX: panX, PanY: panY, Scale: 1.5}
			p := Layout(panel, img, types.FocalPoint{X: 0.3, Y: 0.7, Found: true}, 0.4, adj)

			if p.OffsetX > 0 || p.OffsetX < panel.W-p.DrawWidth {
				t.Errorf("pan (%f,%f): OffsetX %f outside [%f, 0]",
					panX, panY, p.OffsetX, panel.W-p.DrawWidth)
			}
			if p.OffsetY > 0 || p.OffsetY < panel.H-p.DrawHeight {
				t.Errorf("pan (%f,%f): OffsetY %f outside [%f, 0]",
					panX, panY, p.OffsetY, panel.H-p.DrawHeight)
			}
		}
	}
}

func TestLayoutCentersDefaultFocal(t *testing.T) {
	// Center focal point, target Y 0.5, no pan: the image must be centered in
	// both axes.
	panel := Rect{W: 400, H: 400}
	img := Size{W: 800, H: 400}

	p := Layout(panel, img, types.CenterFocalPoint(), 0.5, types.DefaultAdjustment())

	if math.Abs(p.OffsetX-(panel.W-p.DrawWidth)/2) > 1e-9 {
		t.Errorf("OffsetX %f does not center draw width %f in panel", p.OffsetX, p.DrawWidth)
	}
	if math.Abs(p.OffsetY-(panel.H-p.DrawHeight)/2) > 1e-9 {
		t.Errorf("OffsetY %f does not center draw height %f in panel", p.OffsetY, p.DrawHeight)
	}
}

func TestLayoutFocalPointPlacement(t *testing.T) {
	// With no clamping pressure, the focal point must land at the horizontal
	// center and at targetY vertically.
	panel := Rect{W: 300, H: 300}
	img := Size{W: 3000, H: 3000}
	focal := types.FocalPoint{X: 0.5, Y: 0.5, Found: true}
	targetY := 0.4

	// Zoom past cover so the clamp has slack in both axes.
	p := Layout(panel, img, focal, targetY, types.Adjustment{Scale: 2})

	focalCanvasX := p.OffsetX + focal.X*p.DrawWidth
	focalCanvasY := p.OffsetY + focal.Y*p.DrawHeight

	if math.Abs(focalCanvasX-0.5*panel.W) > 1e-9 {
		t.Errorf("Focal X lands at %f; want panel center %f", focalCanvasX, 0.5*panel.W)
	}
	if math.Abs(focalCanvasY-targetY*panel.H) > 1e-9 {
		t.Errorf("Focal Y lands at %f; want target line %f", focalCanvasY, targetY*panel.H)
	}
}

func TestLayoutZoomFloor(t *testing.T) {
	// Scale below 1 would break coverage; it is floored at 1.
	panel := Rect{W: 400, H: 300}
	img := Size{W: 400, H: 300}

	p := Layout(panel, img, types.CenterFocalPoint(), 0.5, types.Adjustment{Scale: 0.5})

	if p.DrawWidth != 400 || p.DrawHeight != 300 {
		t.Errorf("Zoom below 1 must be floored: got %fx%f", p.DrawWidth, p.DrawHeight)
	}
}

func TestLayoutPanSaturates(t *testing.T) {
	panel := Rect{W: 400, H: 300}
	img := Size{W: 800, H: 600}

	// Huge pan right saturates at offset 0; huge pan left at panelDim-drawDim.
	right := Layout(panel, img, types.CenterFocalPoint(), 0.5, types.Adjustment{PanX: 1e9, Scale: 1})
	if right.OffsetX != 0 {
		t.Errorf("Saturated right pan should clamp OffsetX to 0, got %f", right.OffsetX)
	}

	left := Layout(panel, img, types.CenterFocalPoint(), 0.5, types.Adjustment{PanX: -1e9, Scale: 1})
	if left.OffsetX != panel.W-left.DrawWidth {
		t.Errorf("Saturated left pan should clamp OffsetX to %f, got %f", panel.W-left.DrawWidth, left.OffsetX)
	}
}

func BenchmarkLayout(b *testing.B) {
	panel := Rect{W: 529, H: 800}
	img := Size{W: 4000, H: 3000}
	focal := types.FocalPoint{X: 0.4, Y: 0.3, Found: true}
	adj := types.Adjustment{PanX: 25, PanY: -10, Scale: 1.4}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Layout(panel, img, focal, 0.45, adj)
	}
}
