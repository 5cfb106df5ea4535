package pixelops

import "math"

// PlaneLevel is one level of a scalar image pyramid.
type PlaneLevel struct {
	Width, Height int
	Data          []float64
}

// UpsampleBilinear resizes a plane to the given target dimensions using
// bilinear interpolation.
func UpsampleBilinear(plane []float64, width, height, newWidth, newHeight int) []float64 {
	out := make([]float64, newWidth*newHeight)
	if width == 1 && height == 1 {
		for i := range out {
			out[i] = plane[0]
		}
		return out
	}
	at := func(x, y int) float64 {
		x = clampInt(x, 0, width-1)
		y = clampInt(y, 0, height-1)
		return plane[y*width+x]
	}
	for y := 0; y < newHeight; y++ {
		fy := float64(y) * float64(height-1) / math.Max(1, float64(newHeight-1))
		y0 := int(math.Floor(fy))
		dy := fy - float64(y0)
		for x := 0; x < newWidth; x++ {
			fx := float64(x) * float64(width-1) / math.Max(1, float64(newWidth-1))
			x0 := int(math.Floor(fx))
			dx := fx - float64(x0)

			top := at(x0, y0)*(1-dx) + at(x0+1, y0)*dx
			bot := at(x0, y0+1)*(1-dx) + at(x0+1, y0+1)*dx
			out[y*newWidth+x] = top*(1-dy) + bot*dy
		}
	}
	return out
}

// GaussianPyramidPlane builds a Gaussian pyramid of the given number of
// levels, each level downsampled from the previous by scaleFactor after a
// Gaussian smoothing pass (sigma chosen proportional to the scale step,
// driven by the base_sigma/scale_factor parameters).
func GaussianPyramidPlane(plane []float64, width, height, levels int, baseSigma, scaleFactor float64) []PlaneLevel {
	if levels < 1 {
		levels = 1
	}
	out := make([]PlaneLevel, levels)
	out[0] = PlaneLevel{Width: width, Height: height, Data: append([]float64(nil), plane...)}
	for i := 1; i < levels; i++ {
		prev := out[i-1]
		sigma := baseSigma * math.Pow(scaleFactor, float64(i-1))
		blurred := GaussianBlurPlane(prev.Data, prev.Width, prev.Height, sigma)
		newW := maxInt(1, int(math.Round(float64(prev.Width)/scaleFactor)))
		newH := maxInt(1, int(math.Round(float64(prev.Height)/scaleFactor)))
		downsampled := downsamplePlane(blurred, prev.Width, prev.Height, newW, newH)
		out[i] = PlaneLevel{Width: newW, Height: newH, Data: downsampled}
	}
	return out
}

func downsamplePlane(plane []float64, width, height, newWidth, newHeight int) []float64 {
	out := make([]float64, newWidth*newHeight)
	for y := 0; y < newHeight; y++ {
		sy := clampInt(int(float64(y)*float64(height)/float64(newHeight)), 0, height-1)
		for x := 0; x < newWidth; x++ {
			sx := clampInt(int(float64(x)*float64(width)/float64(newWidth)), 0, width-1)
			out[y*newWidth+x] = plane[sy*width+sx]
		}
	}
	return out
}

// LaplacianPyramidPlane derives a Laplacian pyramid from a Gaussian
// pyramid: each level is the difference between the Gaussian level and
// the next (smaller) level upsampled back to its size; the last level is
// the coarsest Gaussian level itself (the residual base band).
func LaplacianPyramidPlane(gaussian []PlaneLevel) []PlaneLevel {
	levels := len(gaussian)
	out := make([]PlaneLevel, levels)
	for i := 0; i < levels-1; i++ {
		g := gaussian[i]
		next := gaussian[i+1]
		up := UpsampleBilinear(next.Data, next.Width, next.Height, g.Width, g.Height)
		diff := make([]float64, len(g.Data))
		for j := range diff {
			diff[j] = g.Data[j] - up[j]
		}
		out[i] = PlaneLevel{Width: g.Width, Height: g.Height, Data: diff}
	}
	out[levels-1] = gaussian[levels-1]
	return out
}

// CollapseLaplacianPyramid reconstructs a plane from a Laplacian pyramid
// by repeatedly upsampling the coarser band and adding the finer detail
// band, finishing at level 0's resolution.
func CollapseLaplacianPyramid(pyr []PlaneLevel) []float64 {
	current := pyr[len(pyr)-1].Data
	currentW, currentH := pyr[len(pyr)-1].Width, pyr[len(pyr)-1].Height
	for i := len(pyr) - 2; i >= 0; i-- {
		target := pyr[i]
		up := UpsampleBilinear(current, currentW, currentH, target.Width, target.Height)
		sum := make([]float64, len(up))
		for j := range sum {
			sum[j] = up[j] + target.Data[j]
		}
		current = sum
		currentW, currentH = target.Width, target.Height
	}
	return current
}
