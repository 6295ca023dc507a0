// Package focal derives the shared vertical alignment target for a strip
// composition. Every panel in every output format frames its subject against
// the same target Y so the subjects line up horizontally across the strip.
package focal

import "github.com/menta2k/strip-composer/pkg/types"

// Clamp bounds for the shared target. Keeping the alignment line away from
// the extreme top/bottom of a panel prevents pathological crops when faces
// are detected near frame edges.
const (
	MinTargetY = 0.25
	MaxTargetY = 0.65
)

// Resolve combines the focal points of all panels into a single shared target
// Y: the arithmetic mean of the normalized Y components, clamped to
// [MinTargetY, MaxTargetY]. Callers substitute the center fallback for photos
// without a detected face before calling. An empty slice resolves to 0.5.
// The result is order-independent.
func Resolve(points []types.FocalPoint) float64 {
	if len(points) == 0 {
		return 0.5
	}

	var sum float64
	for _, p := range points {
		sum += p.Y
	}
	return clamp(sum/float64(len(points)), MinTargetY, MaxTargetY)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
