package stages

import (
	"fmt"
	"math"

	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
)

const (
	wbParamMethod     = "method"
	wbParamPercentile = "percentile"
	wbParamMaxGain    = "max_gain"

	wbMethodGrayWorld     = "gray_world"
	wbMethodWhitePatch    = "white_patch"
	wbMethodShadesOfGray  = "shades_of_gray"
	wbMethodGreyEdge      = "grey_edge"
	wbMethodLakeGreenWater = "lake_green_water"
)

// shadesOfGrayPower is the Minkowski norm exponent, fixed at 6.
const shadesOfGrayPower = 6.0

// lakeRedFloor is the "red floor" strength for Lake-Green-Water, a
// documented choice in the range [1.0, 1.05].
const lakeRedFloor = 1.02

type whiteBalance struct{}

// NewWhiteBalance constructs the White Balance stage.
func NewWhiteBalance() Stage { return &whiteBalance{} }

func (s *whiteBalance) ID() StageID { return WhiteBalance }

func (s *whiteBalance) Describe() string {
	return "Neutralizes color cast using one of five configurable white-balance methods."
}

func (s *whiteBalance) Bounds() map[string]Bound {
	return map[string]Bound{
		wbParamMethod: {Kind: KindEnum, Default: Enum(wbMethodGrayWorld),
			Allowed: []string{wbMethodGrayWorld, wbMethodWhitePatch, wbMethodShadesOfGray, wbMethodGreyEdge, wbMethodLakeGreenWater}},
		wbParamPercentile: {Kind: KindFloat, Min: 1, Max: 99, Default: Float(15)},
		wbParamMaxGain:    {Kind: KindFloat, Min: 1.0, Max: 5.0, Default: Float(2.0)},
	}
}

func (s *whiteBalance) DefaultParams() Params {
	return Params{
		wbParamMethod:     Enum(wbMethodGrayWorld),
		wbParamPercentile: Float(15),
		wbParamMaxGain:    Float(2.0),
	}
}

func (s *whiteBalance) Apply(img *pixelops.Image, params Params) (*pixelops.Image, error) {
	method := params.GetEnum(wbParamMethod, wbMethodGrayWorld)
	percentile := params.GetFloat(wbParamPercentile, 15)
	maxGain := params.GetFloat(wbParamMaxGain, 2.0)

	var gains [3]float64
	switch method {
	case wbMethodGrayWorld:
		gains = grayWorldGains(img, percentile, maxGain)
	case wbMethodWhitePatch:
		gains = whitePatchGains(img, maxGain)
	case wbMethodShadesOfGray:
		gains = shadesOfGrayGains(img, maxGain)
	case wbMethodGreyEdge:
		gains = greyEdgeGains(img, percentile, maxGain)
	case wbMethodLakeGreenWater:
		gains = lakeGreenWaterGains(img, percentile, maxGain)
	default:
		return nil, fmt.Errorf("unknown white balance method %q", method)
	}

	out := pixelops.New(img.Width, img.Height)
	n := img.Width * img.Height
	for i := 0; i < n; i++ {
		out.Pix[i*3] = clamp01(img.Pix[i*3] * gains[0])
		out.Pix[i*3+1] = clamp01(img.Pix[i*3+1] * gains[1])
		out.Pix[i*3+2] = clamp01(img.Pix[i*3+2] * gains[2])
	}
	return out, nil
}

func clampGain(g, maxGain float64) float64 {
	lo := 1 / maxGain
	if g < lo {
		return lo
	}
	if g > maxGain {
		return maxGain
	}
	return g
}

func grayWorldGains(img *pixelops.Image, percentile, maxGain float64) [3]float64 {
	means := img.ChannelPercentileMeans(percentile)
	target := (means[0] + means[1] + means[2]) / 3
	var gains [3]float64
	for c := 0; c < 3; c++ {
		gains[c] = clampGain(safeDiv(target, means[c]), maxGain)
	}
	return gains
}

func whitePatchGains(img *pixelops.Image, maxGain float64) [3]float64 {
	p99 := img.ChannelPercentiles(99)
	target := math.Max(p99[0], math.Max(p99[1], p99[2]))
	var gains [3]float64
	for c := 0; c < 3; c++ {
		gains[c] = clampGain(safeDiv(target, p99[c]), maxGain)
	}
	return gains
}

func shadesOfGrayGains(img *pixelops.Image, maxGain float64) [3]float64 {
	var norms [3]float64
	for c := 0; c < 3; c++ {
		norms[c] = pixelops.MinkowskiNorm(img.Channel(c), shadesOfGrayPower)
	}
	target := (norms[0] + norms[1] + norms[2]) / 3
	var gains [3]float64
	for c := 0; c < 3; c++ {
		gains[c] = clampGain(safeDiv(target, norms[c]), maxGain)
	}
	return gains
}

func greyEdgeGains(img *pixelops.Image, percentile, maxGain float64) [3]float64 {
	sobel := img.SobelMagnitudePerChannel()
	var refs [3]float64
	for c := 0; c < 3; c++ {
		refs[c] = pixelops.PercentileMean(sobel[c], percentile)
	}
	target := (refs[0] + refs[1] + refs[2]) / 3
	var gains [3]float64
	for c := 0; c < 3; c++ {
		gains[c] = clampGain(safeDiv(target, refs[c]), maxGain)
	}
	return gains
}

// lakeGreenWaterGains implements the three-step specialized mode for
// green-dominant lake water: gray-world base gains, a green-suppression
// scalar solved so the post-correction G/R ratio lands within
// 1.05 +/- 0.05, then a red floor so the red channel is never suppressed
// below its pre-gain strength.
func lakeGreenWaterGains(img *pixelops.Image, percentile, maxGain float64) [3]float64 {
	gains := grayWorldGains(img, percentile, maxGain)
	means := img.ChannelMeans()

	postR := means[0] * gains[0]
	postG := means[1] * gains[1]
	if postR > 0 {
		targetRatio := 1.05
		sg := targetRatio * postR / postG
		if sg < 0.6 {
			sg = 0.6
		}
		if sg > 1.0 {
			sg = 1.0
		}
		gains[1] *= sg
	}

	if gains[0] < lakeRedFloor {
		gains[0] = lakeRedFloor
	}
	return gains
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// AutoTune implements the water-type decision tree for white balance.
func (s *whiteBalance) AutoTune(img *pixelops.Image, sig *scenesig.Signature) (Params, error) {
	means := sig.ChannelMeans
	r, g, b := means[0], means[1], means[2]

	params := Params{}

	maxGain := 2.0
	var method string

	switch {
	case g > 1.15*math.Max(r, b):
		method = wbMethodLakeGreenWater
		params[wbParamPercentile] = Float(15)
	case sig.HistogramSpread > 0.5 && balanced(means):
		method = wbMethodGrayWorld
		params[wbParamPercentile] = Float(20)
		maxGain = 1.8
	case isolatedBrightPeak(sig):
		method = wbMethodWhitePatch
		params[wbParamPercentile] = Float(15)
		maxGain = 2.2
	default:
		method = wbMethodShadesOfGray
		params[wbParamPercentile] = Float(15)
		maxGain = 2.0
	}

	satFraction := math.Max(sig.SaturatedFraction[0], math.Max(sig.SaturatedFraction[1], sig.SaturatedFraction[2]))
	if satFraction > 0.05 {
		maxGain *= 0.8
	}

	params[wbParamMethod] = Enum(method)
	params[wbParamMaxGain] = Float(maxGain)
	return params, nil
}

func balanced(means [3]float64) bool {
	maxV := math.Max(means[0], math.Max(means[1], means[2]))
	minV := math.Min(means[0], math.Min(means[1], means[2]))
	if maxV == 0 {
		return true
	}
	return (maxV-minV)/maxV < 0.3
}

func isolatedBrightPeak(sig *scenesig.Signature) bool {
	p95 := sig.ChannelPercents[95]
	p99 := sig.ChannelPercents[99]
	for c := 0; c < 3; c++ {
		if p99[c]-p95[c] > 0.1 {
			return true
		}
	}
	return false
}
