package types

import "math"

// FocalPoint is the normalized subject location within a photo, with
// coordinates in [0,1] relative to the photo's own dimensions. Found reports
// whether a face was actually detected; when it is false the coordinates are
// the center fallback.
type FocalPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Found bool    `json:"found"`
}

// CenterFocalPoint returns the default focal point used when detection is
// unavailable or fails.
func CenterFocalPoint() FocalPoint {
	return FocalPoint{X: 0.5, Y: 0.5, Found: false}
}

// QualityTag is the advisory warning attached to a photo after analysis.
type QualityTag string

const (
	TagNone          QualityTag = ""
	TagLowResolution QualityTag = "low resolution"
	TagMayLookSoft   QualityTag = "may look soft"
)

// QualityReport holds the raw quality signals measured for a photo.
// BlurScore is +Inf when analysis could not run (assumed sharp, fail open).
type QualityReport struct {
	TooSmall  bool    `json:"too_small"`
	BlurScore float64 `json:"blur_score"`
}

// IsBlurry reports whether the blur score falls below the given threshold.
// An infinite score (failed analysis) is never blurry.
func (r QualityReport) IsBlurry(threshold float64) bool {
	return !math.IsInf(r.BlurScore, 1) && r.BlurScore < threshold
}

// Adjustment is the user-controlled pan/zoom delta layered on top of
// auto-framing, scoped to one panel within one output format. Pan values are
// pixel offsets in that format's canvas space; Scale is a multiplier >= 1.
type Adjustment struct {
	PanX  float64 `json:"pan_x"`
	PanY  float64 `json:"pan_y"`
	Scale float64 `json:"scale"`
}

// DefaultAdjustment returns the neutral adjustment applied when a composition
// is (re)initialized.
func DefaultAdjustment() Adjustment {
	return Adjustment{PanX: 0, PanY: 0, Scale: 1.0}
}

// IsDefault reports whether the adjustment is the neutral one.
func (a Adjustment) IsDefault() bool {
	return a.PanX == 0 && a.PanY == 0 && a.Scale == 1.0
}

// Box represents a normalized bounding box with coordinates in [0,1] range,
// as returned by the vision models.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the center point of the box.
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// FaceResult is the JSON shape the vision models are prompted to return for
// face localization.
type FaceResult struct {
	Found      bool    `json:"found"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
	Cx         float64 `json:"cx"`
	Cy         float64 `json:"cy"`
}
