// Package stripcomposer combines 2-3 photos into a fixed-aspect composite
// strip, automatically framed around each photo's subject and exported in two
// independent output aspect ratios.
//
// The engine measures quality signals (blur, resolution) per photo, locates
// each subject's face through an optional vision backend, derives one shared
// vertical alignment target so subjects line up across the strip, and keeps
// an independent pan/zoom adjustment per (output format, panel) pair — the
// same photos can be framed differently in the 2x1 export than in the 4x3
// export.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		stripcomposer "github.com/menta2k/strip-composer"
//		"github.com/menta2k/strip-composer/pkg/compose"
//	)
//
//	func main() {
//		composer := stripcomposer.New()
//		ctx := context.Background()
//
//		// Load and analyze a photo per slot (quality check and face
//		// detection run concurrently and always settle).
//		if err := composer.LoadPhoto(ctx, 0, "left.jpg"); err != nil {
//			log.Fatal(err)
//		}
//		if err := composer.LoadPhoto(ctx, 1, "right.jpg"); err != nil {
//			log.Fatal(err)
//		}
//
//		// Compose and render both formats.
//		if err := composer.Compose(); err != nil {
//			log.Fatal(err)
//		}
//
//		// Fine-tune one panel in one format only.
//		composer.Session().SetScale(1, 0, 1.4)
//
//		for f := range compose.DefaultFormats() {
//			if err := composer.SaveOutput(f, "out", "strip", "jpg", 90, false); err != nil {
//				log.Fatal(err)
//			}
//		}
//	}
//
// The package consists of five main components:
//
// 1. Quality (pkg/quality): resolution check and Laplacian-variance blur score
// 2. Focal (pkg/focal): shared vertical alignment target across panels
// 3. Geometry (pkg/geometry): cover-fit scale/offset math with pan clamping
// 4. Compose (pkg/compose): per-format adjustment state, rendering, dragging
// 5. Facedetect (pkg/facedetect): face location behind a capability interface
//
// Analysis is fail-open throughout: a photo that cannot be decoded or a
// vision backend that cannot be reached degrades to default center framing
// and an assumed-sharp quality score, never to a hard error.
package stripcomposer

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/menta2k/strip-composer/internal/utils"
	"github.com/menta2k/strip-composer/pkg/compose"
	"github.com/menta2k/strip-composer/pkg/facedetect"
	"github.com/menta2k/strip-composer/pkg/processing"
	"github.com/menta2k/strip-composer/pkg/quality"
	"github.com/menta2k/strip-composer/pkg/types"
)

// Version of the strip composer library
const Version = "1.0.0"

// StripComposer provides a high-level interface over the composition engine.
type StripComposer struct {
	quality   *quality.Analyzer
	detector  facedetect.Detector
	processor *processing.Processor
	session   *compose.Session
	drag      *compose.DragController
}

// New creates a StripComposer with default configuration: a 2-way layout,
// the two standard output formats, and no face-detection backend (center
// fallback).
func New() *StripComposer {
	return NewWithDetector(facedetect.CenterDetector{})
}

// NewWithDetector creates a StripComposer using the given face detector,
// typically selected via facedetect.Select at startup.
func NewWithDetector(detector facedetect.Detector) *StripComposer {
	session := compose.NewSession(compose.TwoWay, compose.DefaultFormats(), compose.DefaultDivider)
	return &StripComposer{
		quality:   quality.New(),
		detector:  detector,
		processor: processing.NewProcessor(),
		session:   session,
		drag:      compose.NewDragController(session),
	}
}

// NewWithConfig creates a StripComposer with custom components.
func NewWithConfig(qualityConfig quality.Config, detector facedetect.Detector, layout compose.Layout, formats []compose.Format, divider compose.DividerSpec) *StripComposer {
	session := compose.NewSession(layout, formats, divider)
	return &StripComposer{
		quality:   quality.NewWithConfig(qualityConfig),
		detector:  detector,
		processor: processing.NewProcessor(),
		session:   session,
		drag:      compose.NewDragController(session),
	}
}

// Session exposes the underlying composition session for adjustment access.
func (sc *StripComposer) Session() *compose.Session {
	return sc.session
}

// Drag exposes the session's drag controller.
func (sc *StripComposer) Drag() *compose.DragController {
	return sc.drag
}

// SetLayout switches the split configuration; see compose.Session.SetLayout
// for the invalidation semantics.
func (sc *StripComposer) SetLayout(layout compose.Layout) {
	sc.session.SetLayout(layout)
}

// AnalyzePhoto runs the full per-photo analysis: the quality check and face
// detection are issued concurrently and the photo is assembled only once both
// settle, so a slot's state never reflects partial results. A nil image is
// acceptable and yields fail-open defaults.
func (sc *StripComposer) AnalyzePhoto(ctx context.Context, img image.Image) *compose.Photo {
	var (
		wg     sync.WaitGroup
		report types.QualityReport
		fp     types.FocalPoint
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		report = sc.quality.Analyze(img)
	}()
	go func() {
		defer wg.Done()
		fp = sc.detector.Detect(ctx, img)
	}()
	wg.Wait()

	return compose.NewPhoto(img, fp, report, sc.quality.Tag(report))
}

// LoadPhoto loads a photo from a file path or URL into a slot and analyzes
// it. A decode failure is not fatal: the slot is filled with a fail-open
// photo that renders as an empty panel, and the error is returned so the
// caller can surface it as a badge rather than a stop.
func (sc *StripComposer) LoadPhoto(ctx context.Context, slot int, source string) error {
	img, loadErr := sc.processor.LoadImageSmart(source)

	photo := sc.AnalyzePhoto(ctx, img)
	if err := sc.session.SetPhoto(slot, photo); err != nil {
		return err
	}

	if loadErr != nil {
		return fmt.Errorf("photo %q loaded with defaults: %w", source, loadErr)
	}
	return nil
}

// Compose (re)initiates the composition and renders every format; it fails
// only on the slot-count precondition.
func (sc *StripComposer) Compose() error {
	return sc.session.Compose()
}

// Output returns the rendered buffer for one format.
func (sc *StripComposer) Output(format int) (*image.NRGBA, error) {
	return sc.session.Output(format)
}

// QualityTag returns the advisory tag for a slot's photo, and whether a face
// was found there.
func (sc *StripComposer) QualityTag(slot int) (types.QualityTag, bool) {
	photo := sc.session.Photo(slot)
	if photo == nil {
		return types.TagNone, false
	}
	return photo.Tag, photo.Focal.Found
}

// SaveOutput exports one rendered format to outputDir using the format's
// label in the filename.
func (sc *StripComposer) SaveOutput(format int, outputDir, prefix, ext string, quality int, lossless bool) error {
	out, err := sc.session.Output(format)
	if err != nil {
		return err
	}

	if err := utils.EnsureDir(outputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	label := sc.session.Formats()[format].Label
	path := utils.ExportFilename(outputDir, prefix, label, ext)
	if err := sc.processor.SaveImage(out, path, ext, quality, lossless); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
