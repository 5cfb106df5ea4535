package stages

import (
	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
)

const (
	claheParamClipLimit = "clip_limit"
	claheParamTileGrid  = "tile_grid"
)

type clahe struct{}

// NewCLAHE constructs the Contrast-Limited Adaptive Histogram Equalization stage.
func NewCLAHE() Stage { return &clahe{} }

func (s *clahe) ID() StageID { return CLAHE }

func (s *clahe) Describe() string {
	return "Applies contrast-limited adaptive histogram equalization to the LAB lightness channel."
}

func (s *clahe) Bounds() map[string]Bound {
	return map[string]Bound{
		claheParamClipLimit: {Kind: KindFloat, Min: 1.0, Max: 10.0, Default: Float(2.0)},
		claheParamTileGrid:  {Kind: KindInt, Min: 4, Max: 16, Default: Int(8)},
	}
}

func (s *clahe) DefaultParams() Params {
	return Params{
		claheParamClipLimit: Float(2.0),
		claheParamTileGrid:  Int(8),
	}
}

func (s *clahe) Apply(img *pixelops.Image, params Params) (*pixelops.Image, error) {
	clipLimit := params.GetFloat(claheParamClipLimit, 2.0)
	tileGrid := params.GetInt(claheParamTileGrid, 8)

	l, a, b := img.LABPlanes()
	// LAB L* is nominally [0,100]; normalize to [0,1] bins for histogram work.
	norm := make([]float64, len(l))
	for i, v := range l {
		norm[i] = clampUnit(v / 100)
	}

	equalized := claheEqualize(norm, img.Width, img.Height, tileGrid, clipLimit)
	for i := range l {
		l[i] = equalized[i] * 100
	}

	out := pixelops.ImageFromLAB(l, a, b, img.Width, img.Height)
	out.Clamp01()
	return out, nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

const claheBins = 256

// claheEqualize runs contrast-limited adaptive histogram equalization over
// a [0,1] plane, tiled tileGrid x tileGrid, with bilinear blending between
// tile mappings to avoid block artifacts — the textbook CLAHE structure.
func claheEqualize(plane []float64, width, height, tileGrid int, clipLimit float64) []float64 {
	if tileGrid < 1 {
		tileGrid = 1
	}
	tileW := (width + tileGrid - 1) / tileGrid
	tileH := (height + tileGrid - 1) / tileGrid

	// Per-tile cumulative distribution functions, each mapping a [0,255]
	// bin index to an equalized [0,1] value.
	cdfs := make([][]float64, tileGrid*tileGrid)
	for ty := 0; ty < tileGrid; ty++ {
		for tx := 0; tx < tileGrid; tx++ {
			hist := make([]float64, claheBins)
			count := 0
			x0, x1 := tx*tileW, minInt((tx+1)*tileW, width)
			y0, y1 := ty*tileH, minInt((ty+1)*tileH, height)
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					bin := binIndex(plane[y*width+x])
					hist[bin]++
					count++
				}
			}
			cdfs[ty*tileGrid+tx] = clipAndIntegrate(hist, count, clipLimit)
		}
	}

	out := make([]float64, width*height)
	for y := 0; y < height; y++ {
		// Locate the two nearest tile centers in Y and the interpolation weight.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := clampInt(int(floorF(fy)), 0, tileGrid-1)
		ty1 := clampInt(ty0+1, 0, tileGrid-1)
		wy := fy - floorF(fy)
		if ty0 == ty1 {
			wy = 0
		}
		for x := 0; x < width; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := clampInt(int(floorF(fx)), 0, tileGrid-1)
			tx1 := clampInt(tx0+1, 0, tileGrid-1)
			wx := fx - floorF(fx)
			if tx0 == tx1 {
				wx = 0
			}

			bin := binIndex(plane[y*width+x])
			v00 := cdfs[ty0*tileGrid+tx0][bin]
			v01 := cdfs[ty0*tileGrid+tx1][bin]
			v10 := cdfs[ty1*tileGrid+tx0][bin]
			v11 := cdfs[ty1*tileGrid+tx1][bin]

			top := v00*(1-wx) + v01*wx
			bot := v10*(1-wx) + v11*wx
			out[y*width+x] = top*(1-wy) + bot*wy
		}
	}
	return out
}

func binIndex(v float64) int {
	idx := int(v * (claheBins - 1))
	return clampInt(idx, 0, claheBins-1)
}

// clipAndIntegrate clips a histogram at clipLimit times the uniform
// average count, redistributes the clipped mass uniformly, then returns
// the resulting cumulative distribution normalized to [0,1].
func clipAndIntegrate(hist []float64, count int, clipLimit float64) []float64 {
	out := make([]float64, len(hist))
	if count == 0 {
		for i := range out {
			out[i] = float64(i) / float64(len(hist)-1)
		}
		return out
	}
	avg := float64(count) / float64(len(hist))
	limit := avg * clipLimit
	var excess float64
	clipped := make([]float64, len(hist))
	for i, v := range hist {
		if v > limit {
			excess += v - limit
			clipped[i] = limit
		} else {
			clipped[i] = v
		}
	}
	redistribute := excess / float64(len(hist))
	var cum float64
	for i := range clipped {
		cum += clipped[i] + redistribute
		out[i] = cum / float64(count)
		if out[i] > 1 {
			out[i] = 1
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorF(v float64) float64 {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return float64(i)
}

// AutoTune applies three rules: noise reduces clip_limit, low global
// contrast raises it, and tile_grid scales with megapixel count.
func (s *clahe) AutoTune(img *pixelops.Image, sig *scenesig.Signature) (Params, error) {
	clipLimit := 2.0
	if sig.LaplacianVariance > 0.02 {
		clipLimit = 1.5
	}
	if sig.HistogramSpread < 0.4 {
		clipLimit = 4.0
	}

	megapixels := float64(img.Width*img.Height) / 1_000_000
	tileGrid := 6
	switch {
	case megapixels > 4:
		tileGrid = 10
	case megapixels > 1:
		tileGrid = 8
	}

	return Params{
		claheParamClipLimit: Float(clipLimit),
		claheParamTileGrid:  Int(tileGrid),
	}, nil
}
