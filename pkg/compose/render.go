package compose

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/strip-composer/pkg/geometry"
)

// renderFormatLocked paints one format's canvas: divider color first across
// the whole surface (integer slot widths can round short, so the background
// is the divider and panels paint over it), then each panel left to right at
// its computed scale and offset, clipped to its slot rectangle.
func (s *Session) renderFormatLocked(format int) error {
	if !s.composed {
		return fmt.Errorf("no active composition")
	}

	f := s.formats[format]
	canvas := imaging.New(f.Width, f.Height, s.divider.Color)

	slotW := s.SlotWidth(format)
	stride := slotW + s.divider.Width
	panelRect := geometry.Rect{W: float64(slotW), H: float64(f.Height)}

	for i := 0; i < s.layout.Panels; i++ {
		photo := s.photos[i]
		if photo == nil || photo.Image == nil || photo.Width == 0 || photo.Height == 0 {
			continue
		}

		params := geometry.Layout(
			panelRect,
			geometry.Size{W: photo.Width, H: photo.Height},
			photo.Focal,
			s.targetY,
			s.adjustments[format][i],
		)

		drawW := int(math.Round(params.DrawWidth))
		drawH := int(math.Round(params.DrawHeight))
		if drawW < 1 || drawH < 1 {
			continue
		}
		offX := int(math.Round(params.OffsetX))
		offY := int(math.Round(params.OffsetY))

		scaled := imaging.Resize(photo.Image, drawW, drawH, imaging.Lanczos)

		// The visible window of the scaled image within this panel. The clamp
		// guarantees it lies inside the scaled bounds up to rounding, so the
		// intersect only trims stray single pixels.
		window := image.Rect(-offX, -offY, -offX+slotW, -offY+f.Height)
		window = window.Intersect(scaled.Bounds())
		if window.Empty() {
			continue
		}

		visible := imaging.Crop(scaled, window)
		canvas = imaging.Paste(canvas, visible, image.Pt(i*stride, 0))
	}

	s.outputs[format] = canvas
	return nil
}
