package stages

import (
	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
)

const (
	crParamMatrixPrefix       = "matrix_" // matrix_00 .. matrix_22
	crParamSaturationLimit    = "saturation_limit"
	crParamPreserveLuminance  = "preserve_luminance"
	magentaHueLow             = 290.0 // documented choice for the magenta guard band
	magentaHueHigh            = 340.0
)

type colorRebalance struct{}

// NewColorRebalance constructs the Color Rebalance stage.
func NewColorRebalance() Stage { return &colorRebalance{} }

func (s *colorRebalance) ID() StageID { return ColorRebalance }

func (s *colorRebalance) Describe() string {
	return "Applies a user 3x3 color matrix, an anti-magenta saturation guard, and optional luminance preservation."
}

func matrixParamName(row, col int) string {
	return crParamMatrixPrefix + string(rune('0'+row)) + string(rune('0'+col))
}

func (s *colorRebalance) Bounds() map[string]Bound {
	bounds := map[string]Bound{
		crParamSaturationLimit:   {Kind: KindFloat, Min: 0.3, Max: 1.0, Default: Float(1.0)},
		crParamPreserveLuminance: {Kind: KindBool, Default: Bool(false)},
	}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			def := 0.0
			if row == col {
				def = 1.0
			}
			bounds[matrixParamName(row, col)] = Bound{Kind: KindFloat, Min: -2.0, Max: 2.0, Default: Float(def)}
		}
	}
	return bounds
}

func (s *colorRebalance) DefaultParams() Params {
	params := Params{
		crParamSaturationLimit:   Float(1.0),
		crParamPreserveLuminance: Bool(false),
	}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			def := 0.0
			if row == col {
				def = 1.0
			}
			params[matrixParamName(row, col)] = Float(def)
		}
	}
	return params
}

func (s *colorRebalance) matrix(params Params) [3][3]float64 {
	var m [3][3]float64
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			def := 0.0
			if row == col {
				def = 1.0
			}
			m[row][col] = params.GetFloat(matrixParamName(row, col), def)
		}
	}
	return m
}

func (s *colorRebalance) Apply(img *pixelops.Image, params Params) (*pixelops.Image, error) {
	m := s.matrix(params)
	satLimit := params.GetFloat(crParamSaturationLimit, 1.0)
	preserveLum := params.GetBool(crParamPreserveLuminance, false)

	out := pixelops.New(img.Width, img.Height)
	n := img.Width * img.Height
	for i := 0; i < n; i++ {
		r, g, b := img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2]
		nr := m[0][0]*r + m[0][1]*g + m[0][2]*b
		ng := m[1][0]*r + m[1][1]*g + m[1][2]*b
		nb := m[2][0]*r + m[2][1]*g + m[2][2]*b
		nr, ng, nb = clamp01(nr), clamp01(ng), clamp01(nb)

		h, s, v := pixelops.RGBToHSV(nr, ng, nb)
		if h >= magentaHueLow && h <= magentaHueHigh && s > satLimit {
			s = satLimit
			nr, ng, nb = pixelops.HSVToRGB(h, s, v)
		}

		if preserveLum {
			origL, _, _ := pixelops.RGBToLAB(r, g, b)
			_, a, bb := pixelops.RGBToLAB(nr, ng, nb)
			nr, ng, nb = pixelops.LABToRGB(origL, a, bb)
		}

		out.Pix[i*3] = clamp01(nr)
		out.Pix[i*3+1] = clamp01(ng)
		out.Pix[i*3+2] = clamp01(nb)
	}
	return out, nil
}

// AutoTune leaves the matrix at identity by default and only adjusts the
// anti-magenta saturation_limit based on the observed red bias, a proxy
// for post-Beer-Lambert overcorrection.
func (s *colorRebalance) AutoTune(img *pixelops.Image, sig *scenesig.Signature) (Params, error) {
	limit := 1.0
	if sig.RatioRG > 1.3 {
		limit = 0.7
	} else if sig.RatioRG > 1.1 {
		limit = 0.85
	}
	return Params{crParamSaturationLimit: Float(limit)}, nil
}
