package stages

import (
	"math"

	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
)

const (
	mfParamLevels             = "levels"
	mfParamBaseSigma          = "base_sigma"
	mfParamScaleFactor        = "scale_factor"
	mfParamExponentContrast   = "exponent_contrast"
	mfParamExponentSaturation = "exponent_saturation"
	mfParamExponentExposed    = "exponent_exposedness"
	mfParamSharpenAmount      = "sharpen_amount"
)

// sigmoidGain controls the steepness of the gentle_contrast variant's
// S-curve. Not user-exposed; the Beer-Lambert-style parametrization lives
// on sharpen_amount instead.
const sigmoidGain = 3.0

// exposednessSigma is the spread of the "well exposed" Gaussian used by
// the exposedness weight map, centered at mid-gray.
const exposednessSigma = 0.2

type multiscaleFusion struct{}

// NewMultiscaleFusion constructs the Multi-Scale Fusion stage.
func NewMultiscaleFusion() Stage { return &multiscaleFusion{} }

func (s *multiscaleFusion) ID() StageID { return MultiscaleFusion }

func (s *multiscaleFusion) Describe() string {
	return "Fuses identity, contrast-enhanced, and sharpened variants of the image through Laplacian pyramid blending."
}

func (s *multiscaleFusion) Bounds() map[string]Bound {
	return map[string]Bound{
		mfParamLevels:             {Kind: KindInt, Min: 2, Max: 6, Default: Int(3)},
		mfParamBaseSigma:          {Kind: KindFloat, Min: 0.3, Max: 2.0, Default: Float(1.0)},
		mfParamScaleFactor:        {Kind: KindFloat, Min: 1.2, Max: 3.0, Default: Float(2.0)},
		mfParamExponentContrast:   {Kind: KindFloat, Min: 0.1, Max: 3.0, Default: Float(1.0)},
		mfParamExponentSaturation: {Kind: KindFloat, Min: 0.1, Max: 3.0, Default: Float(1.0)},
		mfParamExponentExposed:    {Kind: KindFloat, Min: 0.1, Max: 3.0, Default: Float(1.0)},
		mfParamSharpenAmount:      {Kind: KindFloat, Min: 0.0, Max: 1.0, Default: Float(0.3)},
	}
}

func (s *multiscaleFusion) DefaultParams() Params {
	return Params{
		mfParamLevels:             Int(3),
		mfParamBaseSigma:          Float(1.0),
		mfParamScaleFactor:        Float(2.0),
		mfParamExponentContrast:   Float(1.0),
		mfParamExponentSaturation: Float(1.0),
		mfParamExponentExposed:    Float(1.0),
		mfParamSharpenAmount:      Float(0.3),
	}
}

func (s *multiscaleFusion) Apply(img *pixelops.Image, params Params) (*pixelops.Image, error) {
	levels := params.GetInt(mfParamLevels, 3)
	baseSigma := params.GetFloat(mfParamBaseSigma, 1.0)
	scaleFactor := params.GetFloat(mfParamScaleFactor, 2.0)
	alpha := params.GetFloat(mfParamExponentContrast, 1.0)
	beta := params.GetFloat(mfParamExponentSaturation, 1.0)
	gamma := params.GetFloat(mfParamExponentExposed, 1.0)
	sharpenAmount := params.GetFloat(mfParamSharpenAmount, 0.3)

	variants := []*pixelops.Image{
		img.Clone(),
		gentleContrastVariant(img),
		gentleSharpenVariant(img, sharpenAmount),
	}

	weights := make([][]float64, len(variants))
	var sum []float64
	for i, v := range variants {
		w := fusionWeight(v, alpha, beta, gamma)
		weights[i] = w
		if sum == nil {
			sum = make([]float64, len(w))
		}
		for p := range w {
			sum[p] += w[p]
		}
	}
	for i := range weights {
		for p := range weights[i] {
			if sum[p] > 1e-9 {
				weights[i][p] /= sum[p]
			} else {
				weights[i][p] = 1.0 / float64(len(variants))
			}
		}
	}

	out := pixelops.New(img.Width, img.Height)
	for c := 0; c < 3; c++ {
		blended := blendChannel(variants, weights, c, img.Width, img.Height, levels, baseSigma, scaleFactor)
		for p := 0; p < len(blended); p++ {
			out.Pix[p*3+c] = clamp01(blended[p])
		}
	}
	return out, nil
}

// gentleContrastVariant applies a mid-gray-centered logistic S-curve to
// each channel, boosting midtone contrast without clipping the extremes.
func gentleContrastVariant(img *pixelops.Image) *pixelops.Image {
	out := img.Clone()
	for i := range out.Pix {
		v := out.Pix[i]
		out.Pix[i] = clamp01(1 / (1 + math.Exp(-sigmoidGain*(v-0.5))))
	}
	return out
}

// gentleSharpenVariant applies an unsharp mask: image plus amount times
// the high-frequency residual against a Gaussian-blurred copy.
func gentleSharpenVariant(img *pixelops.Image, amount float64) *pixelops.Image {
	blurred := img.GaussianBlurImage(1.0)
	out := img.Clone()
	for i := range out.Pix {
		out.Pix[i] = clamp01(img.Pix[i] + amount*(img.Pix[i]-blurred.Pix[i]))
	}
	return out
}

// fusionWeight computes the unnormalized per-pixel weight map for one
// variant: contrast (Laplacian magnitude of luminance), saturation
// (per-pixel standard deviation across channels), and exposedness
// (Gaussian distance of luminance from mid-gray), combined with
// exponents alpha/beta/gamma.
func fusionWeight(img *pixelops.Image, alpha, beta, gamma float64) []float64 {
	lum := img.Luminance()
	lap := pixelops.LaplacianPlane(lum, img.Width, img.Height)
	std := img.StdDevAcrossChannels()

	n := img.Width * img.Height
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		contrast := math.Abs(lap[i])
		saturation := std[i]
		d := lum[i] - 0.5
		exposedness := math.Exp(-(d * d) / (2 * exposednessSigma * exposednessSigma))

		w[i] = math.Pow(contrast+1e-6, alpha) * math.Pow(saturation+1e-6, beta) * math.Pow(exposedness+1e-6, gamma)
	}
	return w
}

// blendChannel builds a Laplacian pyramid per variant and a Gaussian
// pyramid of each variant's normalized weight map, fuses them level by
// level, and collapses the result back to a single plane.
func blendChannel(variants []*pixelops.Image, weights [][]float64, channel, width, height, levels int, baseSigma, scaleFactor float64) []float64 {
	fused := make([]pixelops.PlaneLevel, 0)

	for i, v := range variants {
		gaussian := pixelops.GaussianPyramidPlane(v.Channel(channel), width, height, levels, baseSigma, scaleFactor)
		laplacian := pixelops.LaplacianPyramidPlane(gaussian)
		weightPyr := pixelops.GaussianPyramidPlane(weights[i], width, height, levels, baseSigma, scaleFactor)

		if i == 0 {
			for _, lvl := range laplacian {
				fused = append(fused, pixelops.PlaneLevel{Width: lvl.Width, Height: lvl.Height, Data: make([]float64, len(lvl.Data))})
			}
		}
		for lvlIdx, lvl := range laplacian {
			wp := weightPyr[lvlIdx]
			for p := 0; p < len(lvl.Data); p++ {
				fused[lvlIdx].Data[p] += wp.Data[p] * lvl.Data[p]
			}
		}
	}

	return pixelops.CollapseLaplacianPyramid(fused)
}

// AutoTune applies the documented defaults; the fusion stage has no
// scene-dependent tuning rules beyond those defaults.
func (s *multiscaleFusion) AutoTune(img *pixelops.Image, sig *scenesig.Signature) (Params, error) {
	return s.DefaultParams(), nil
}
