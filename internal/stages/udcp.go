package stages

import (
	"math"
	"sort"

	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
)

const (
	udcpParamOmega            = "omega"
	udcpParamT0               = "t0"
	udcpParamWindow           = "window"
	udcpParamGuidedRadius     = "guided_radius"
	udcpParamGuidedEps        = "guided_eps"
	udcpParamPostContrastGain = "post_contrast_gain"
)

type udcp struct{}

// NewUDCP constructs the Underwater Dark Channel Prior stage.
func NewUDCP() Stage { return &udcp{} }

func (s *udcp) ID() StageID { return UDCP }

func (s *udcp) Describe() string {
	return "Recovers contrast and range using the underwater dark channel prior with guided-filter transmission refinement."
}

func (s *udcp) Bounds() map[string]Bound {
	return map[string]Bound{
		udcpParamOmega:            {Kind: KindFloat, Min: 0.5, Max: 0.99, Default: Float(0.95)},
		udcpParamT0:               {Kind: KindFloat, Min: 0.05, Max: 0.3, Default: Float(0.1)},
		udcpParamWindow:           {Kind: KindInt, Min: 5, Max: 31, Default: Int(15)},
		udcpParamGuidedRadius:     {Kind: KindFloat, Min: 10, Max: 200, Default: Float(40)},
		udcpParamGuidedEps:        {Kind: KindFloat, Min: 1e-4, Max: 1e-2, Default: Float(1e-3)},
		udcpParamPostContrastGain: {Kind: KindFloat, Min: 1.0, Max: 2.0, Default: Float(1.0)},
	}
}

func (s *udcp) DefaultParams() Params {
	return Params{
		udcpParamOmega:            Float(0.95),
		udcpParamT0:               Float(0.1),
		udcpParamWindow:           Int(15),
		udcpParamGuidedRadius:     Float(40),
		udcpParamGuidedEps:        Float(1e-3),
		udcpParamPostContrastGain: Float(1.0),
	}
}

func (s *udcp) Apply(img *pixelops.Image, params Params) (*pixelops.Image, error) {
	omega := params.GetFloat(udcpParamOmega, 0.95)
	t0 := params.GetFloat(udcpParamT0, 0.1)
	window := oddify(params.GetInt(udcpParamWindow, 15))
	guidedRadius := int(params.GetFloat(udcpParamGuidedRadius, 40))
	guidedEps := params.GetFloat(udcpParamGuidedEps, 1e-3)
	postGain := params.GetFloat(udcpParamPostContrastGain, 1.0)

	w, h := img.Width, img.Height
	n := w * h

	dark := img.DarkChannel(window)
	a := atmosphericLight(img, dark)

	// Raw transmission estimate: 1 - omega * min_c min_window(I_c/A_c).
	normalized := pixelops.New(w, h)
	for i := 0; i < n; i++ {
		normalized.Pix[i*3] = safeDivNonZero(img.Pix[i*3], a[0])
		normalized.Pix[i*3+1] = safeDivNonZero(img.Pix[i*3+1], a[1])
		normalized.Pix[i*3+2] = safeDivNonZero(img.Pix[i*3+2], a[2])
	}
	normDark := normalized.DarkChannel(window)
	tHat := make([]float64, n)
	for i := 0; i < n; i++ {
		tHat[i] = 1 - omega*normDark[i]
	}

	guide := img.Luminance()
	refined := pixelops.GuidedFilter(guide, tHat, w, h, guidedRadius, guidedEps)

	t := make([]float64, n)
	for i := 0; i < n; i++ {
		t[i] = math.Max(refined[i], t0)
	}

	out := pixelops.New(w, h)
	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			v := (img.Pix[i*3+c]-a[c])/t[i] + a[c]
			out.Pix[i*3+c] = clamp01(v)
		}
	}

	if postGain > 1 {
		for i := range out.Pix {
			out.Pix[i] = clamp01((out.Pix[i]-0.5)*postGain + 0.5)
		}
	}

	return out, nil
}

// atmosphericLight averages the RGB of the top 0.1% brightest dark-channel
// pixels.
func atmosphericLight(img *pixelops.Image, dark []float64) [3]float64 {
	n := len(dark)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return dark[idx[i]] > dark[idx[j]] })

	count := maxInt(1, n/1000)
	var sum [3]float64
	for k := 0; k < count; k++ {
		i := idx[k]
		sum[0] += img.Pix[i*3]
		sum[1] += img.Pix[i*3+1]
		sum[2] += img.Pix[i*3+2]
	}
	return [3]float64{sum[0] / float64(count), sum[1] / float64(count), sum[2] / float64(count)}
}

func safeDivNonZero(a, b float64) float64 {
	if b < 1e-6 {
		b = 1e-6
	}
	return a / b
}

func oddify(v int) int {
	if v%2 == 0 {
		v++
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// AutoTune applies three rules: haziness lowers omega, noise raises
// guided_eps, edge density shrinks the window.
func (s *udcp) AutoTune(img *pixelops.Image, sig *scenesig.Signature) (Params, error) {
	omega := 0.95
	if sig.DarkChannelMean > 0.3 {
		reduction := math.Min(0.25, (sig.DarkChannelMean-0.3)*0.8)
		omega -= reduction
		if omega < 0.7 {
			omega = 0.7
		}
	}

	eps := 1e-3
	if sig.LaplacianVariance > 0.01 {
		eps = math.Min(5e-3, 1e-3+sig.LaplacianVariance*0.1)
	}

	window := 15
	if sig.SobelMagnitudeMean > 0.1 {
		window = 7
	} else if sig.SobelMagnitudeMean > 0.05 {
		window = 11
	}

	return Params{
		udcpParamOmega:     Float(omega),
		udcpParamWindow:    Int(window),
		udcpParamGuidedEps: Float(eps),
	}, nil
}
