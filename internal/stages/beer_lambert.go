package stages

import (
	"math"

	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
)

const (
	blParamDepthFactor = "depth_factor"
	blParamKRed        = "k_red"
	blParamKGreen      = "k_green"
	blParamKBlue       = "k_blue"
	blParamEnhancement = "enhancement"
)

// Reference absorption coefficients: red is most strongly attenuated
// underwater, blue least.
const (
	baseKRed   = 0.6
	baseKGreen = 0.25
	baseKBlue  = 0.1
)

type beerLambert struct{}

// NewBeerLambert constructs the Beer-Lambert attenuation-compensation stage.
func NewBeerLambert() Stage { return &beerLambert{} }

func (s *beerLambert) ID() StageID { return BeerLambert }

func (s *beerLambert) Describe() string {
	return "Compensates per-channel wavelength attenuation via an exponential Beer-Lambert model."
}

func (s *beerLambert) Bounds() map[string]Bound {
	return map[string]Bound{
		blParamDepthFactor: {Kind: KindFloat, Min: 0.01, Max: 1.2, Default: Float(0.5)},
		blParamKRed:        {Kind: KindFloat, Min: 0.05, Max: 2.0, Default: Float(baseKRed)},
		blParamKGreen:      {Kind: KindFloat, Min: 0.05, Max: 1.5, Default: Float(baseKGreen)},
		blParamKBlue:       {Kind: KindFloat, Min: 0.05, Max: 1.0, Default: Float(baseKBlue)},
		blParamEnhancement: {Kind: KindFloat, Min: 1.0, Max: 3.0, Default: Float(1.0)},
	}
}

func (s *beerLambert) DefaultParams() Params {
	return Params{
		blParamDepthFactor: Float(0.5),
		blParamKRed:        Float(baseKRed),
		blParamKGreen:      Float(baseKGreen),
		blParamKBlue:       Float(baseKBlue),
		blParamEnhancement: Float(1.0),
	}
}

func (s *beerLambert) Apply(img *pixelops.Image, params Params) (*pixelops.Image, error) {
	depth := params.GetFloat(blParamDepthFactor, 0.5)
	kR := params.GetFloat(blParamKRed, baseKRed)
	kG := params.GetFloat(blParamKGreen, baseKGreen)
	kB := params.GetFloat(blParamKBlue, baseKBlue)
	enhancement := params.GetFloat(blParamEnhancement, 1.0)

	out := pixelops.New(img.Width, img.Height)
	n := img.Width * img.Height
	gr := math.Exp(kR * depth * enhancement)
	gg := math.Exp(kG * depth * enhancement)
	gb := math.Exp(kB * depth * enhancement)
	for i := 0; i < n; i++ {
		out.Pix[i*3] = clamp01(img.Pix[i*3] * gr)
		out.Pix[i*3+1] = clamp01(img.Pix[i*3+1] * gg)
		out.Pix[i*3+2] = clamp01(img.Pix[i*3+2] * gb)
	}
	return out, nil
}

// AutoTune derives a distance proxy from the blue/red spectral ratio to
// set depth_factor, and scales the reference coefficients down by the
// available saturation headroom to avoid clipping.
func (s *beerLambert) AutoTune(img *pixelops.Image, sig *scenesig.Signature) (Params, error) {
	r, b := sig.ChannelMeans[0], sig.ChannelMeans[2]
	var d float64
	if r > 1e-6 && b > 1e-6 {
		d = math.Log(b / r)
	}
	if d < 0 {
		d = -d
	}

	depth := 0.3 + math.Min(0.9, d*1.5)
	if depth > 1.2 {
		depth = 1.2
	}

	headroom := 1 - math.Max(sig.ChannelPercents[99][0], math.Max(sig.ChannelPercents[99][1], sig.ChannelPercents[99][2]))
	scale := 1.0
	if headroom < 0.1 {
		scale = 0.7
	}

	return Params{
		blParamDepthFactor: Float(depth),
		blParamKRed:        Float(baseKRed * scale),
		blParamKGreen:      Float(baseKGreen * scale),
		blParamKBlue:       Float(baseKBlue * scale),
	}, nil
}
