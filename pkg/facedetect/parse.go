package facedetect

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/menta2k/strip-composer/pkg/types"
)

// ParseFaceResponse interprets the raw model text as a FaceResult and reduces
// it to a focal point. Malformed or evasive responses yield the center
// fallback; a well-formed result with found=false does too. Coordinates are
// clamped into [0,1] since models occasionally overshoot.
func ParseFaceResponse(raw string) types.FocalPoint {
	raw = sanitizeModelJSON(raw)

	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return types.CenterFocalPoint()
	}

	var result types.FaceResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		// Conservative brace-slice retry before giving up.
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return types.CenterFocalPoint()
		}
		if err2 := json.Unmarshal([]byte(raw[start:end+1]), &result); err2 != nil {
			return types.CenterFocalPoint()
		}
	}

	if !result.Found {
		return types.CenterFocalPoint()
	}

	cx, cy := result.Cx, result.Cy
	if cx == 0 && cy == 0 {
		// Some models fill the box but omit the center.
		cx, cy = result.Box.Center()
		if cx == 0 && cy == 0 {
			return types.CenterFocalPoint()
		}
	}

	return types.FocalPoint{
		X:     clamp(cx, 0, 1),
		Y:     clamp(cy, 0, 1),
		Found: true,
	}
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

// sanitizeModelJSON removes code fences, comments, and trailing commas from
// a model response before JSON parsing.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	// Remove /* ... */ block comments
	reBlock := regexp.MustCompile(`(?s)/\*.*?\*/`)
	raw = reBlock.ReplaceAllString(raw, "")

	// Remove // line/inline comments
	reLine := regexp.MustCompile(`(?m)^\s*//.*$`)
	raw = reLine.ReplaceAllString(raw, "")
	reInline := regexp.MustCompile(`(?m)//.*$`)
	raw = reInline.ReplaceAllString(raw, "")

	// Remove trailing commas before } or ]
	reTrailing := regexp.MustCompile(`,(\s*[}\]])`)
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}

	return strings.TrimSpace(raw)
}
