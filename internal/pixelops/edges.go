package pixelops

import "math"

// SobelMagnitude computes the per-pixel gradient magnitude of a single
// plane using the standard 3x3 Sobel kernels, edge-clamped at borders.
func SobelMagnitude(plane []float64, width, height int) []float64 {
	out := make([]float64, width*height)
	at := func(x, y int) float64 {
		x = clampInt(x, 0, width-1)
		y = clampInt(y, 0, height-1)
		return plane[y*width+x]
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			out[y*width+x] = math.Hypot(gx, gy)
		}
	}
	return out
}

// SobelMagnitudePerChannel runs SobelMagnitude independently over R, G, B
// and returns the three magnitude planes, used by the Grey-Edge white
// balance method.
func (img *Image) SobelMagnitudePerChannel() [3][]float64 {
	var out [3][]float64
	for c := 0; c < 3; c++ {
		out[c] = SobelMagnitude(img.Channel(c), img.Width, img.Height)
	}
	return out
}

// LaplacianPlane applies the discrete 4-neighbor Laplacian kernel to a
// single plane, edge-clamped at borders.
func LaplacianPlane(plane []float64, width, height int) []float64 {
	out := make([]float64, width*height)
	at := func(x, y int) float64 {
		x = clampInt(x, 0, width-1)
		y = clampInt(y, 0, height-1)
		return plane[y*width+x]
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			center := at(x, y)
			out[y*width+x] = at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*center
		}
	}
	return out
}

// LaplacianVariance returns the variance of the Laplacian of an image's
// luminance — the module's noise/detail proxy (scene signature, CLAHE
// auto-tune, UDCP guided-eps auto-tune, quality analyzer noise check).
func (img *Image) LaplacianVariance() float64 {
	return PlaneLaplacianVariance(img.Luminance(), img.Width, img.Height)
}

// PlaneLaplacianVariance computes the Laplacian variance of an arbitrary
// plane, factored out so the quality analyzer can run it over masked
// subsets (e.g. the darkest 20% of pixels).
func PlaneLaplacianVariance(plane []float64, width, height int) float64 {
	lap := LaplacianPlane(plane, width, height)
	return variance(lap)
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, v := range xs {
		mean += v
	}
	mean /= float64(len(xs))
	var sq float64
	for _, v := range xs {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(xs))
}

// DarkChannel computes, for each pixel, the minimum value across R, G, B
// within a window x window square neighborhood. It is implemented as a
// min-channel pass followed by a sliding-window minimum, which keeps the
// cost linear in window size rather than quadratic.
func (img *Image) DarkChannel(window int) []float64 {
	minC := make([]float64, img.Width*img.Height)
	for i := 0; i < len(minC); i++ {
		r, g, b := img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2]
		minC[i] = math.Min(r, math.Min(g, b))
	}
	return windowMin(minC, img.Width, img.Height, window)
}

// windowMin applies a square sliding-window minimum filter of the given
// side length (rounded up to odd) via separable horizontal/vertical
// passes using a monotonic deque, O(W*H) total.
func windowMin(plane []float64, width, height, window int) []float64 {
	if window < 1 {
		window = 1
	}
	if window%2 == 0 {
		window++
	}
	radius := window / 2

	horiz := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := plane[y*width : (y+1)*width]
		copy(horiz[y*width:(y+1)*width], slidingMin1D(row, radius))
	}

	out := make([]float64, width*height)
	col := make([]float64, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = horiz[y*width+x]
		}
		colOut := slidingMin1D(col, radius)
		for y := 0; y < height; y++ {
			out[y*width+x] = colOut[y]
		}
	}
	return out
}

// slidingMin1D returns, for every index i, min(in[i-radius : i+radius])
// (window clamped to slice bounds) using a monotonic deque of indices so
// the whole pass costs O(n) regardless of radius.
func slidingMin1D(in []float64, radius int) []float64 {
	n := len(in)
	out := make([]float64, n)
	deque := make([]int, 0, n)
	for i := 0; i < n+radius; i++ {
		if i < n {
			for len(deque) > 0 && in[deque[len(deque)-1]] >= in[i] {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, i)
		}
		center := i - radius
		if center >= 0 {
			for len(deque) > 0 && deque[0] < center-radius {
				deque = deque[1:]
			}
			out[center] = in[deque[0]]
		}
	}
	return out
}
