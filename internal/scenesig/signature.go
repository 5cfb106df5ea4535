// Package scenesig computes the per-image scene signature that every
// stage's auto-tune routine and the water-type classifier consume. It is
// deliberately a leaf package (depends only on pixelops) so both
// internal/stages and internal/autotune can import it without a cycle.
package scenesig

import (
	"math"

	"github.com/dotsoulja/aqualens/internal/pixelops"
)

// Percentiles lists the percentile buckets the signature tracks.
var Percentiles = []int{1, 5, 10, 25, 50, 75, 90, 95, 99}

// Signature holds the stage-agnostic statistics computed once per source
// image and reused by every auto-tune routine. It must never be derived
// from a processed image.
type Signature struct {
	ChannelMeans    [3]float64
	ChannelPercents map[int][3]float64 // percentile -> per-channel value

	RatioRB float64 // R/B
	RatioRG float64 // R/G
	RatioBR float64 // B/R

	MeanDistance float64 // euclidean distance between channel means

	LaplacianVariance  float64
	SobelMagnitudeMean float64

	DarkChannelMean       float64
	DarkChannelPercentile float64 // 10th percentile of the dark channel

	HistogramSpread float64 // luminance P95 - P5

	SaturatedFraction [3]float64 // fraction of pixels > 0.98 per channel

	Width, Height int
}

// Compute derives a Signature from img. It is side-effect-free and
// deterministic: the same image always yields bit-identical results.
func Compute(img *pixelops.Image) *Signature {
	sig := &Signature{Width: img.Width, Height: img.Height}
	sig.ChannelMeans = img.ChannelMeans()

	sig.ChannelPercents = make(map[int][3]float64, len(Percentiles))
	channels := [3][]float64{img.Channel(0), img.Channel(1), img.Channel(2)}
	for _, p := range Percentiles {
		var v [3]float64
		for c := 0; c < 3; c++ {
			v[c] = pixelops.Percentile(channels[c], float64(p))
		}
		sig.ChannelPercents[p] = v
	}

	r, g, b := sig.ChannelMeans[0], sig.ChannelMeans[1], sig.ChannelMeans[2]
	sig.RatioRB = safeDiv(r, b)
	sig.RatioRG = safeDiv(r, g)
	sig.RatioBR = safeDiv(b, r)

	sig.MeanDistance = math.Sqrt((r-g)*(r-g) + (g-b)*(g-b) + (r-b)*(r-b))

	sig.LaplacianVariance = img.LaplacianVariance()

	lum := img.Luminance()
	sobel := pixelops.SobelMagnitude(lum, img.Width, img.Height)
	sig.SobelMagnitudeMean = mean(sobel)

	dark := img.DarkChannel(15)
	sig.DarkChannelMean = mean(dark)
	sig.DarkChannelPercentile = pixelops.Percentile(dark, 10)

	sig.HistogramSpread = pixelops.HistogramSpread(lum)

	n := float64(img.Width * img.Height)
	for c := 0; c < 3; c++ {
		var count float64
		for _, v := range channels[c] {
			if v > 0.98 {
				count++
			}
		}
		sig.SaturatedFraction[c] = count / n
	}

	return sig
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
