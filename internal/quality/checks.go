package quality

import (
	"math"

	"github.com/dotsoulja/aqualens/internal/pixelops"
)

const magentaHueLow, magentaHueHigh = 290.0, 340.0

// checkUnrealisticColors flags pixels whose hue/saturation combination
// cannot plausibly occur underwater (check 1 of the battery).
func checkUnrealisticColors(_, processed *pixelops.Image) CheckResult {
	n := processed.Width * processed.Height
	var neonRed, magentaSaturated, rDominant float64
	for i := 0; i < n; i++ {
		r, g, b := processed.Pix[i*3], processed.Pix[i*3+1], processed.Pix[i*3+2]
		if r > 0.95 && g < 0.3 && b < 0.3 {
			neonRed++
		}
		h, s, _ := pixelops.RGBToHSV(r, g, b)
		if h >= magentaHueLow && h <= magentaHueHigh && s > 0.8 {
			magentaSaturated++
		}
		if r > g && r > b && r > 0.5 {
			rDominant++
		}
	}
	neonRedFrac := neonRed / float64(n)
	magentaFrac := magentaSaturated / float64(n)
	rDominantFrac := rDominant / float64(n)

	score := 10.0 - neonRedFrac*40 - magentaFrac*30 - math.Max(0, rDominantFrac-0.4)*10
	result := CheckResult{
		Name:  "unrealistic_colors",
		Score: clampScore(score),
		Details: map[string]float64{
			"neon_red_fraction":       neonRedFrac,
			"magenta_saturated_frac":  magentaFrac,
			"red_dominance_fraction":  rDominantFrac,
		},
	}
	if neonRedFrac > 0.01 {
		result.Recommendations = append(result.Recommendations, "reduce red-channel gain or enable color rebalance")
	}
	if magentaFrac > 0.02 {
		result.Recommendations = append(result.Recommendations, "tighten the anti-magenta saturation limit")
	}
	return result
}

// checkRedChannelBalance flags red-channel overcorrection (check 2).
func checkRedChannelBalance(original, processed *pixelops.Image) CheckResult {
	origMeans := original.ChannelMeans()
	postMeans := processed.ChannelMeans()

	postRatioRB := safeDiv(postMeans[0], postMeans[2])
	rMeanGrowth := safeDiv(postMeans[0], origMeans[0])

	n := processed.Width * processed.Height
	var redDominant float64
	for i := 0; i < n; i++ {
		r, g, b := processed.Pix[i*3], processed.Pix[i*3+1], processed.Pix[i*3+2]
		if r > g && r > b {
			redDominant++
		}
	}
	redDominantFrac := redDominant / float64(n)

	score := 10.0
	overcompensated := rMeanGrowth > 1.8 && postRatioRB > 1.3
	if overcompensated {
		score -= 5
	}
	score -= math.Max(0, redDominantFrac-0.5) * 10

	result := CheckResult{
		Name:  "red_channel_balance",
		Score: clampScore(score),
		Details: map[string]float64{
			"post_r_over_b_ratio":    postRatioRB,
			"r_mean_growth":          rMeanGrowth,
			"red_dominant_fraction":  redDominantFrac,
		},
	}
	if overcompensated {
		result.Recommendations = append(result.Recommendations, "reduce Beer-Lambert red coefficient or depth_factor")
	}
	return result
}

// checkSaturationClipping flags pixels pushed to saturation extremes (check 3).
func checkSaturationClipping(_, processed *pixelops.Image) CheckResult {
	w, h := processed.Width, processed.Height
	n := w * h
	saturated := make([]bool, n)
	var exactlyOne, above95 float64
	for i := 0; i < n; i++ {
		r, g, b := processed.Pix[i*3], processed.Pix[i*3+1], processed.Pix[i*3+2]
		_, s, _ := pixelops.RGBToHSV(r, g, b)
		if s >= 0.9999 {
			exactlyOne++
		}
		if s > 0.95 {
			above95++
			saturated[i] = true
		}
	}
	largest := largestConnectedArea(saturated, w, h)

	exactFrac := exactlyOne / float64(n)
	aboveFrac := above95 / float64(n)
	largestFrac := float64(largest) / float64(n)

	score := 10.0
	if aboveFrac > 0.02 {
		score -= 5
	}
	if largestFrac > 0.01 {
		score -= 3
	}

	result := CheckResult{
		Name:  "saturation_clipping",
		Score: clampScore(score),
		Details: map[string]float64{
			"fraction_exactly_saturated": exactFrac,
			"fraction_above_95":          aboveFrac,
			"largest_connected_pixels":   float64(largest),
		},
	}
	if aboveFrac > 0.02 || largestFrac > 0.01 {
		result.Recommendations = append(result.Recommendations, "lower the saturation_limit in color rebalance")
	}
	return result
}

// checkColorNoiseAmplification flags noise the pipeline amplified
// relative to the original (check 4).
func checkColorNoiseAmplification(original, processed *pixelops.Image) CheckResult {
	origDark := darkestMask(original, 0.2)
	preVar := maskedChannelLaplacianVariance(original, origDark)
	postVar := maskedChannelLaplacianVariance(processed, origDark)

	var ratios [3]float64
	var maxRatio float64
	for c := 0; c < 3; c++ {
		ratios[c] = safeDiv(postVar[c], preVar[c])
		if ratios[c] > maxRatio {
			maxRatio = ratios[c]
		}
	}

	score := 10.0
	if maxRatio > 1.5 {
		score -= (maxRatio - 1.5) * 6
	}

	result := CheckResult{
		Name:  "color_noise_amplification",
		Score: clampScore(score),
		Details: map[string]float64{
			"max_channel_ratio": maxRatio,
			"ratio_r":           ratios[0],
			"ratio_g":           ratios[1],
			"ratio_b":           ratios[2],
		},
	}
	if maxRatio > 1.5 {
		result.Recommendations = append(result.Recommendations, "reduce UDCP omega or increase guided_eps to suppress shadow noise")
	}
	return result
}

// checkHaloArtifacts flags ringing near strong edges (check 5). Edge
// pixels are approximated by thresholding Sobel magnitude.
func checkHaloArtifacts(_, processed *pixelops.Image) CheckResult {
	w, h := processed.Width, processed.Height
	lum := processed.Luminance()
	sobel := pixelops.SobelMagnitude(lum, w, h)

	threshold := edgeThreshold(sobel)
	var sumVar, count float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if sobel[i] < threshold {
				continue
			}
			sumVar += localVariance(lum, w, h, x, y, 2)
			count++
		}
	}
	meanVar := 0.0
	if count > 0 {
		meanVar = sumVar / count
	}

	const haloThreshold = 0.02
	score := 10.0
	if meanVar > haloThreshold {
		score -= (meanVar - haloThreshold) * 100
	}

	result := CheckResult{
		Name:  "halo_artifacts",
		Score: clampScore(score),
		Details: map[string]float64{
			"mean_edge_neighborhood_variance": meanVar,
			"edge_pixel_count":                count,
		},
	}
	if meanVar > haloThreshold {
		result.Recommendations = append(result.Recommendations, "reduce multiscale_fusion sharpen_amount")
	}
	return result
}

// checkMidtoneBalance flags a midtone histogram skewed toward either
// extreme (check 6).
func checkMidtoneBalance(_, processed *pixelops.Image) CheckResult {
	lum := processed.Luminance()
	n := float64(len(lum))
	var shadows, midtones, highlights float64
	for _, l := range lum {
		switch {
		case l < 0.25:
			shadows++
		case l > 0.75:
			highlights++
		default:
			midtones++
		}
	}
	shadowFrac := shadows / n
	midFrac := midtones / n
	highFrac := highlights / n

	score := 10.0
	if shadowFrac < 0.05 {
		score -= 3
	}
	if shadowFrac > 0.60 {
		score -= 4
	}

	result := CheckResult{
		Name:  "midtone_balance",
		Score: clampScore(score),
		Details: map[string]float64{
			"shadow_fraction":    shadowFrac,
			"midtone_fraction":   midFrac,
			"highlight_fraction": highFrac,
		},
	}
	if shadowFrac < 0.05 {
		result.Recommendations = append(result.Recommendations, "crushed blacks detected; reduce UDCP t0 or contrast gain")
	}
	if shadowFrac > 0.60 {
		result.Recommendations = append(result.Recommendations, "image reads muddy; raise CLAHE clip_limit")
	}
	return result
}

// checkQualityImprovements rewards measurable gains in contrast and
// color balance (check 7). Unlike the others, improvements can raise the
// score above the neutral baseline.
func checkQualityImprovements(original, processed *pixelops.Image) CheckResult {
	origLum := original.Luminance()
	postLum := processed.Luminance()

	origContrast := pixelops.Percentile(origLum, 95) - pixelops.Percentile(origLum, 5)
	postContrast := pixelops.Percentile(postLum, 95) - pixelops.Percentile(postLum, 5)
	deltaContrast := postContrast - origContrast

	origEntropy := rgbEntropy(original)
	postEntropy := rgbEntropy(processed)
	deltaEntropy := postEntropy - origEntropy

	deltaSat := meanSaturation(processed) - meanSaturation(original)

	score := 5.0 + deltaContrast*10 + deltaEntropy*2 + deltaSat*5
	result := CheckResult{
		Name:  "quality_improvements",
		Score: clampScore(score),
		Details: map[string]float64{
			"delta_contrast": deltaContrast,
			"delta_entropy":  deltaEntropy,
			"delta_saturation": deltaSat,
		},
	}
	return result
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func darkestMask(img *pixelops.Image, fraction float64) []bool {
	lum := img.Luminance()
	threshold := pixelops.Percentile(lum, fraction*100)
	mask := make([]bool, len(lum))
	for i, l := range lum {
		mask[i] = l <= threshold
	}
	return mask
}

func maskedChannelLaplacianVariance(img *pixelops.Image, mask []bool) [3]float64 {
	var out [3]float64
	for c := 0; c < 3; c++ {
		plane := img.Channel(c)
		lap := pixelops.LaplacianPlane(plane, img.Width, img.Height)
		var sum, sumSq, count float64
		for i, v := range lap {
			if !mask[i] {
				continue
			}
			sum += v
			sumSq += v * v
			count++
		}
		if count == 0 {
			continue
		}
		m := sum / count
		out[c] = sumSq/count - m*m
	}
	return out
}

func edgeThreshold(sobel []float64) float64 {
	return pixelops.Percentile(sobel, 90)
}

func localVariance(plane []float64, w, h, cx, cy, radius int) float64 {
	var sum, sumSq, count float64
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := cx+dx, cy+dy
			if x < 0 || x >= w || y < 0 || y >= h {
				continue
			}
			v := plane[y*w+x]
			sum += v
			sumSq += v * v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	m := sum / count
	return sumSq/count - m*m
}

// largestConnectedArea finds the largest 4-connected blob of true values
// in mask via iterative flood fill.
func largestConnectedArea(mask []bool, w, h int) int {
	visited := make([]bool, len(mask))
	best := 0
	stack := make([]int, 0, 64)

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		stack = stack[:0]
		stack = append(stack, start)
		visited[start] = true
		size := 0

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++

			x, y := i%w, i/w
			neighbors := [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}}
			for _, nb := range neighbors {
				nx, ny := nb[0], nb[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if mask[ni] && !visited[ni] {
					visited[ni] = true
					stack = append(stack, ni)
				}
			}
		}
		if size > best {
			best = size
		}
	}
	return best
}

func rgbEntropy(img *pixelops.Image) float64 {
	var total float64
	for c := 0; c < 3; c++ {
		hist := pixelops.Histogram(img.Channel(c), 256)
		total += pixelops.Entropy(hist)
	}
	return total / 3
}

func meanSaturation(img *pixelops.Image) float64 {
	n := img.Width * img.Height
	var sum float64
	for i := 0; i < n; i++ {
		r, g, b := img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2]
		_, s, _ := pixelops.RGBToHSV(r, g, b)
		sum += s
	}
	return sum / float64(n)
}
