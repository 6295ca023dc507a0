package quality

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/strip-composer/pkg/types"
)

// Analyzer measures quality signals for an uploaded photo: a resolution check
// against a minimum dimension and a focus measure based on the variance of the
// Laplacian. Both signals are advisory; analysis never blocks composition.
type Analyzer struct {
	config Config
}

// Config holds configuration for quality analysis.
type Config struct {
	// MinDimension is the smallest acceptable value for the larger of the
	// photo's width/height before it is flagged as low resolution.
	MinDimension int
	// BlurSampleSize is the side of the square the photo is downsampled to
	// before computing the focus measure.
	BlurSampleSize int
	// BlurThreshold is the Laplacian-variance score below which a photo is
	// tagged as possibly soft.
	BlurThreshold float64
}

// New creates an Analyzer with default configuration.
func New() *Analyzer {
	return &Analyzer{
		config: Config{
			MinDimension:   1500,
			BlurSampleSize: 150,
			BlurThreshold:  100,
		},
	}
}

// NewWithConfig creates an Analyzer with custom configuration.
func NewWithConfig(config Config) *Analyzer {
	return &Analyzer{config: config}
}

// Analyze measures the quality signals for img. A nil image (decode failure
// upstream) fails open: dimensions are treated as unknown (not too small) and
// the blur score is +Inf (assumed sharp).
func (a *Analyzer) Analyze(img image.Image) types.QualityReport {
	if img == nil {
		return types.QualityReport{TooSmall: false, BlurScore: math.Inf(1)}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	tooSmall := false
	if width > 0 && height > 0 {
		longSide := width
		if height > longSide {
			longSide = height
		}
		tooSmall = longSide < a.config.MinDimension
	}

	return types.QualityReport{
		TooSmall:  tooSmall,
		BlurScore: a.BlurScore(img),
	}
}

// Tag derives the advisory quality tag from a report. Resolution takes
// precedence over softness.
func (a *Analyzer) Tag(report types.QualityReport) types.QualityTag {
	if report.TooSmall {
		return types.TagLowResolution
	}
	if report.IsBlurry(a.config.BlurThreshold) {
		return types.TagMayLookSoft
	}
	return types.TagNone
}

// BlurScore computes the variance-of-Laplacian focus measure for img.
// The photo is downsampled to a fixed square, converted to luminance, and the
// discrete Laplacian (4*center minus the 4-neighbour sum) is evaluated at
// every interior pixel; the returned score is the population variance of that
// response field. In-focus, detailed images score high; flat or blurred
// images score low. A nil image scores +Inf.
func (a *Analyzer) BlurScore(img image.Image) float64 {
	if img == nil {
		return math.Inf(1)
	}

	size := a.config.BlurSampleSize
	if size < 3 {
		size = 3
	}
	sample := imaging.Resize(img, size, size, imaging.Lanczos)

	luma := toLuma(sample)

	// Laplacian response at interior pixels only.
	n := 0
	var sum, sumSq float64
	for y := 1; y < size-1; y++ {
		for x := 1; x < size-1; x++ {
			lap := 4*luma[y][x] - luma[y-1][x] - luma[y+1][x] - luma[y][x-1] - luma[y][x+1]
			sum += lap
			sumSq += lap * lap
			n++
		}
	}
	if n == 0 {
		return math.Inf(1)
	}

	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

// toLuma converts an NRGBA sample to a row-major luminance grid using the
// ITU-R BT.601 weights.
func toLuma(img *image.NRGBA) [][]float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	luma := make([][]float64, height)
	for y := 0; y < height; y++ {
		luma[y] = make([]float64, width)
		i := y * img.Stride
		for x := 0; x < width; x++ {
			r := float64(img.Pix[i+0])
			g := float64(img.Pix[i+1])
			b := float64(img.Pix[i+2])
			luma[y][x] = 0.299*r + 0.587*g + 0.114*b
			i += 4
		}
	}
	return luma
}
