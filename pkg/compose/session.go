// Package compose owns the mutable state of a strip composition: the loaded
// photos, the active layout, the shared vertical alignment target, and one
// pan/zoom adjustment per (output format, panel) pair. It renders each output
// format independently so reframing one export never disturbs the other.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/menta2k/strip-composer/pkg/focal"
	"github.com/menta2k/strip-composer/pkg/types"
)

// Format is one fixed output target: an exact canvas size plus the label used
// for export naming. The set of formats never changes at runtime.
type Format struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

// Layout is the selected split configuration of the strip.
type Layout struct {
	Panels int    `json:"panels"`
	Name   string `json:"name"`
}

// DividerSpec describes the fixed separator painted between panels. It is
// constant across formats.
type DividerSpec struct {
	Width int
	Color color.NRGBA
}

// Common layouts and the default output set.
var (
	TwoWay   = Layout{Panels: 2, Name: "2-way"}
	ThreeWay = Layout{Panels: 3, Name: "3-way"}

	WideFormat     = Format{Width: 1600, Height: 800, Label: "2x1"}
	ClassicFormat  = Format{Width: 1600, Height: 1200, Label: "4x3"}
	DefaultDivider = DividerSpec{Width: 8, Color: color.NRGBA{255, 255, 255, 255}}
)

// DefaultFormats returns the two output formats every composition renders.
func DefaultFormats() []Format {
	return []Format{WideFormat, ClassicFormat}
}

// Photo is one analyzed source image occupying a slot. Immutable once set;
// re-uploading replaces it wholesale.
type Photo struct {
	Image  image.Image
	Width  int
	Height int
	Focal  types.FocalPoint
	Report types.QualityReport
	Tag    types.QualityTag
}

// NewPhoto builds a Photo from a decoded image and its analysis results.
// A nil image (decode failure) produces a usable zero-size photo that renders
// as an empty panel.
func NewPhoto(img image.Image, fp types.FocalPoint, report types.QualityReport, tag types.QualityTag) *Photo {
	p := &Photo{Image: img, Focal: fp, Report: report, Tag: tag}
	if img != nil {
		b := img.Bounds()
		p.Width, p.Height = b.Dx(), b.Dy()
	}
	return p
}

// Session holds one composition: photos keyed by slot index, the adjustment
// arena indexed by (format, panel), and the last-rendered buffer per format.
// All methods are safe for use from multiple goroutines; writes and renders
// serialize so a render always sees the latest fully-written adjustment.
type Session struct {
	mu      sync.Mutex
	layout  Layout
	formats []Format
	divider DividerSpec

	photos      []*Photo
	targetY     float64
	adjustments [][]types.Adjustment
	outputs     []*image.NRGBA
	composed    bool
}

// NewSession creates a session for the given layout and output formats.
func NewSession(layout Layout, formats []Format, divider DividerSpec) *Session {
	return &Session{
		layout:  layout,
		formats: formats,
		divider: divider,
		photos:  make([]*Photo, layout.Panels),
		outputs: make([]*image.NRGBA, len(formats)),
	}
}

// Layout returns the active layout.
func (s *Session) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Formats returns the fixed output formats.
func (s *Session) Formats() []Format {
	return s.formats
}

// Composed reports whether a composition is currently active.
func (s *Session) Composed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composed
}

// TargetY returns the shared vertical alignment target of the current
// composition, or 0.5 when nothing is composed.
func (s *Session) TargetY() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.composed {
		return 0.5
	}
	return s.targetY
}

// SetLayout switches the split configuration. Changing to a layout with a
// different panel count invalidates all loaded photos, since slot semantics
// change. Any active composition is discarded either way.
func (s *Session) SetLayout(layout Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if layout.Panels != s.layout.Panels {
		s.photos = make([]*Photo, layout.Panels)
	}
	s.layout = layout
	s.invalidateLocked()
}

// SetPhoto places a photo into a slot, replacing any previous occupant. An
// existing composition is discarded so adjustments never survive an upload.
func (s *Session) SetPhoto(slot int, photo *Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot < 0 || slot >= s.layout.Panels {
		return fmt.Errorf("slot %d out of range for %d-panel layout", slot, s.layout.Panels)
	}
	s.photos[slot] = photo
	s.invalidateLocked()
	return nil
}

// ClearPhoto empties a slot and discards any active composition.
func (s *Session) ClearPhoto(slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot < 0 || slot >= s.layout.Panels {
		return fmt.Errorf("slot %d out of range for %d-panel layout", slot, s.layout.Panels)
	}
	s.photos[slot] = nil
	s.invalidateLocked()
	return nil
}

// Photo returns the occupant of a slot, or nil when empty.
func (s *Session) Photo(slot int) *Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot < 0 || slot >= len(s.photos) {
		return nil
	}
	return s.photos[slot]
}

// Compose (re)initiates the composition: it requires every slot to be filled,
// derives the shared target Y from the slots' focal points, atomically
// replaces the whole adjustment arena with defaults, and renders every
// format. This is the only operation with a caller-visible precondition.
func (s *Session) Compose() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := make([]types.FocalPoint, 0, s.layout.Panels)
	for i, photo := range s.photos {
		if photo == nil {
			return fmt.Errorf("slot %d is empty: %s layout needs %d photos", i, s.layout.Name, s.layout.Panels)
		}
		points = append(points, photo.Focal)
	}

	s.targetY = focal.Resolve(points)

	// Fresh arena before any render; formats never share an entry.
	s.adjustments = make([][]types.Adjustment, len(s.formats))
	for f := range s.formats {
		s.adjustments[f] = make([]types.Adjustment, s.layout.Panels)
		for p := range s.adjustments[f] {
			s.adjustments[f][p] = types.DefaultAdjustment()
		}
	}
	s.composed = true

	for f := range s.formats {
		if err := s.renderFormatLocked(f); err != nil {
			return err
		}
	}
	return nil
}

// Adjustment returns the current pan/zoom for one (format, panel) pair.
func (s *Session) Adjustment(format, panel int) (types.Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkKeyLocked(format, panel); err != nil {
		return types.Adjustment{}, err
	}
	return s.adjustments[format][panel], nil
}

// SetPan writes a panel's pan and re-renders only the affected format. The
// stored values are not clamped; coverage clamping happens at render time, so
// out-of-range pans simply saturate visually.
func (s *Session) SetPan(format, panel int, panX, panY float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkKeyLocked(format, panel); err != nil {
		return err
	}
	s.adjustments[format][panel].PanX = panX
	s.adjustments[format][panel].PanY = panY
	return s.renderFormatLocked(format)
}

// SetScale writes a panel's zoom (floored at 1 so coverage is preserved) and
// re-renders only the affected format.
func (s *Session) SetScale(format, panel int, scale float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkKeyLocked(format, panel); err != nil {
		return err
	}
	if scale < 1 {
		scale = 1
	}
	s.adjustments[format][panel].Scale = scale
	return s.renderFormatLocked(format)
}

// ResetPanel restores one panel's adjustment to the default and re-renders
// its format, reproducing the auto-framed result exactly.
func (s *Session) ResetPanel(format, panel int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkKeyLocked(format, panel); err != nil {
		return err
	}
	s.adjustments[format][panel] = types.DefaultAdjustment()
	return s.renderFormatLocked(format)
}

// RenderFormat re-renders a single format's buffer.
func (s *Session) RenderFormat(format int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.composed {
		return fmt.Errorf("no active composition")
	}
	if format < 0 || format >= len(s.formats) {
		return fmt.Errorf("format %d out of range", format)
	}
	return s.renderFormatLocked(format)
}

// RenderAll re-renders every format.
func (s *Session) RenderAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.composed {
		return fmt.Errorf("no active composition")
	}
	for f := range s.formats {
		if err := s.renderFormatLocked(f); err != nil {
			return err
		}
	}
	return nil
}

// Output returns the last-rendered buffer for a format, at the format's exact
// declared size. The buffer is owned by the session and valid until the next
// render of that format; callers needing a stable copy should clone it.
func (s *Session) Output(format int) (*image.NRGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if format < 0 || format >= len(s.outputs) {
		return nil, fmt.Errorf("format %d out of range", format)
	}
	if s.outputs[format] == nil {
		return nil, fmt.Errorf("format %q has not been rendered", s.formats[format].Label)
	}
	return s.outputs[format], nil
}

// SlotWidth returns the panel width in a format's canvas: the canvas width
// minus the dividers, split evenly and floored.
func (s *Session) SlotWidth(format int) int {
	f := s.formats[format]
	n := s.layout.Panels
	return (f.Width - s.divider.Width*(n-1)) / n
}

// PanelAt resolves which panel a canvas-space x coordinate falls in for the
// given format, scanning slot boundaries left to right. It returns -1 for a
// hit on a divider or outside the strip.
func (s *Session) PanelAt(format int, canvasX float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelAtLocked(format, canvasX)
}

func (s *Session) panelAtLocked(format int, canvasX float64) int {
	if format < 0 || format >= len(s.formats) {
		return -1
	}
	slotW := float64(s.SlotWidth(format))
	stride := slotW + float64(s.divider.Width)

	for i := 0; i < s.layout.Panels; i++ {
		left := float64(i) * stride
		if canvasX >= left && canvasX < left+slotW {
			return i
		}
	}
	return -1
}

func (s *Session) checkKeyLocked(format, panel int) error {
	if !s.composed {
		return fmt.Errorf("no active composition")
	}
	if format < 0 || format >= len(s.formats) {
		return fmt.Errorf("format %d out of range", format)
	}
	if panel < 0 || panel >= s.layout.Panels {
		return fmt.Errorf("panel %d out of range for %d-panel layout", panel, s.layout.Panels)
	}
	return nil
}

// invalidateLocked atomically discards the adjustment arena and rendered
// buffers before any new render can be requested.
func (s *Session) invalidateLocked() {
	s.composed = false
	s.adjustments = nil
	s.outputs = make([]*image.NRGBA, len(s.formats))
	s.targetY = 0
}
