package pixelops

import "math"

// BoxBlurPlane applies a separable box filter of the given radius (so a
// window of side 2*radius+1) to a single plane, edge-clamped at borders.
// Implemented via a running sum so the cost is O(W*H) independent of
// radius.
func BoxBlurPlane(plane []float64, width, height, radius int) []float64 {
	if radius < 1 {
		return append([]float64(nil), plane...)
	}
	horiz := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := plane[y*width : (y+1)*width]
		runningBoxSum(row, horiz[y*width:(y+1)*width], radius)
	}
	out := make([]float64, width*height)
	col := make([]float64, height)
	colOut := make([]float64, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = horiz[y*width+x]
		}
		runningBoxSum(col, colOut, radius)
		for y := 0; y < height; y++ {
			out[y*width+x] = colOut[y]
		}
	}
	return out
}

// runningBoxSum fills out[i] with the average of in over the window
// [i-radius, i+radius], clamped to the slice at the edges (edge-replicate
// semantics, matching the rest of the package's border handling).
func runningBoxSum(in, out []float64, radius int) {
	n := len(in)
	at := func(i int) float64 {
		return in[clampInt(i, 0, n-1)]
	}
	var sum float64
	window := 2*radius + 1
	for k := -radius; k <= radius; k++ {
		sum += at(k)
	}
	out[0] = sum / float64(window)
	for i := 1; i < n; i++ {
		sum += at(i+radius) - at(i-radius-1)
		out[i] = sum / float64(window)
	}
}

// BoxBlurImage applies BoxBlurPlane to every channel.
func (img *Image) BoxBlurImage(radius int) *Image {
	out := New(img.Width, img.Height)
	for c := 0; c < 3; c++ {
		out.SetChannel(c, BoxBlurPlane(img.Channel(c), img.Width, img.Height, radius))
	}
	return out
}

// GaussianKernel1D returns a normalized 1-D Gaussian kernel for the given
// sigma, sized to +/-3 sigma (odd length).
func GaussianKernel1D(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	radius := int(math.Ceil(sigma * 3))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianBlurPlane convolves a plane with a separable Gaussian kernel of
// the given sigma, edge-clamped at borders.
func GaussianBlurPlane(plane []float64, width, height int, sigma float64) []float64 {
	kernel := GaussianKernel1D(sigma)
	radius := len(kernel) / 2

	horiz := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				xx := clampInt(x+k, 0, width-1)
				sum += plane[y*width+xx] * kernel[k+radius]
			}
			horiz[y*width+x] = sum
		}
	}

	out := make([]float64, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				yy := clampInt(y+k, 0, height-1)
				sum += horiz[yy*width+x] * kernel[k+radius]
			}
			out[y*width+x] = sum
		}
	}
	return out
}

// GaussianBlurImage applies GaussianBlurPlane to every channel.
func (img *Image) GaussianBlurImage(sigma float64) *Image {
	out := New(img.Width, img.Height)
	for c := 0; c < 3; c++ {
		out.SetChannel(c, GaussianBlurPlane(img.Channel(c), img.Width, img.Height, sigma))
	}
	return out
}

// DownsampleAreaAverage produces a copy scaled so its longest side is at
// most maxSide, using area-average downsampling (a box blur sized to the
// integer scale factor followed by point sampling) for preview generation.
// Images already within bounds are returned unscaled. The scale factor
// actually used is returned alongside.
func (img *Image) DownsampleAreaAverage(maxSide int) (*Image, float64) {
	longest := img.Width
	if img.Height > longest {
		longest = img.Height
	}
	if longest <= maxSide || maxSide < 1 {
		return img.Clone(), 1.0
	}
	scale := float64(maxSide) / float64(longest)
	newW := maxInt(1, int(math.Round(float64(img.Width)*scale)))
	newH := maxInt(1, int(math.Round(float64(img.Height)*scale)))

	// Area-average: blur with a radius approximating the downsample
	// factor, then point-sample on the new grid.
	factor := float64(img.Width) / float64(newW)
	radius := maxInt(1, int(math.Round(factor/2)))
	blurred := img.BoxBlurImage(radius)

	out := New(newW, newH)
	for y := 0; y < newH; y++ {
		sy := clampInt(int(float64(y)*float64(img.Height)/float64(newH)), 0, img.Height-1)
		for x := 0; x < newW; x++ {
			sx := clampInt(int(float64(x)*float64(img.Width)/float64(newW)), 0, img.Width-1)
			r, g, b := blurred.At(sx, sy)
			out.Set(x, y, r, g, b)
		}
	}
	return out, scale
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
