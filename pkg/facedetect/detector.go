// Package facedetect locates the subject's face in a photo as a normalized
// focal point. Detection is a capability: when a vision backend is reachable
// the VisionDetector asks it for a face box, otherwise the CenterDetector
// supplies the center fallback. Both conform to the same Detector contract,
// and every path fails open — a detector never returns an unusable result.
package facedetect

import (
	"context"
	"image"

	"github.com/menta2k/strip-composer/pkg/client"
	"github.com/menta2k/strip-composer/pkg/llamacpp"
	"github.com/menta2k/strip-composer/pkg/ollama"
	"github.com/menta2k/strip-composer/pkg/processing"
	"github.com/menta2k/strip-composer/pkg/types"
)

// FacePrompt instructs the vision model to localize the most prominent face.
const FacePrompt = `You are a face locator.

Return JSON only:
{
  "found": true,
  "confidence": 0.0,
  "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0},
  "cx": 0.0,
  "cy": 0.0
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels).
- The box must tightly include the single most prominent human face.
- cx,cy is the center of that face.
- If no face is visible, return:
  {"found":false,"confidence":0.0,"box":{"x":0.25,"y":0.25,"w":0.5,"h":0.5},"cx":0.5,"cy":0.5}
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Detector resolves a photo to a focal point. Implementations never fail:
// when detection cannot run, the result is the center fallback with
// Found=false.
type Detector interface {
	Detect(ctx context.Context, img image.Image) types.FocalPoint
}

// CenterDetector is the fallback used when no vision backend is available.
// It always reports the photo center with no face found.
type CenterDetector struct{}

// Detect returns the center fallback.
func (CenterDetector) Detect(ctx context.Context, img image.Image) types.FocalPoint {
	return types.CenterFocalPoint()
}

// SendOptions control how photos are downscaled and encoded before being
// sent to the vision backend.
type SendOptions struct {
	Format  string
	MaxDim  int
	Quality int
}

// DefaultSendOptions returns the encoding used for model payloads.
func DefaultSendOptions() SendOptions {
	return SendOptions{Format: "jpg", MaxDim: 1024, Quality: 85}
}

// VisionDetector locates faces through a vision model behind a
// client.VisionClient transport.
type VisionDetector struct {
	client    client.VisionClient
	processor *processing.Processor
	model     string
	send      SendOptions
}

// NewVisionDetector creates a detector over an existing transport.
func NewVisionDetector(c client.VisionClient, model string) *VisionDetector {
	return &VisionDetector{
		client:    c,
		processor: processing.NewProcessor(),
		model:     model,
		send:      DefaultSendOptions(),
	}
}

// SetSendOptions overrides how photos are encoded for the model.
func (d *VisionDetector) SetSendOptions(opts SendOptions) {
	d.send = opts
}

// Detect asks the model where the face is. Any failure along the way —
// encoding, transport, an unparseable response — resolves to the center
// fallback rather than an error, so a slow or broken backend degrades to
// default framing instead of blocking the upload.
func (d *VisionDetector) Detect(ctx context.Context, img image.Image) types.FocalPoint {
	if img == nil {
		return types.CenterFocalPoint()
	}

	imgB64, err := d.processor.PrepareImageForModel(img, d.send.Format, d.send.MaxDim, d.send.Quality)
	if err != nil {
		return types.CenterFocalPoint()
	}

	raw, err := d.client.Query(ctx, d.model, FacePrompt, imgB64)
	if err != nil {
		return types.CenterFocalPoint()
	}

	return ParseFaceResponse(raw)
}

// Select picks the detector implementation for the configured backend.
// Backend "" or "none" selects the center fallback; unknown backends and
// transport construction failures also fall back rather than erroring, since
// detection availability is a capability check, not an error.
func Select(backend, serverURL, model string) Detector {
	switch backend {
	case "ollama":
		if serverURL == "" {
			serverURL = "http://localhost:11434"
		}
		c, err := ollama.NewClient(serverURL)
		if err != nil {
			return CenterDetector{}
		}
		return NewVisionDetector(c, model)
	case "llamacpp":
		c, err := llamacpp.NewClient(serverURL)
		if err != nil {
			return CenterDetector{}
		}
		return NewVisionDetector(c, model)
	default:
		return CenterDetector{}
	}
}
