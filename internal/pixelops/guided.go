package pixelops

// GuidedFilter refines input using guide as an edge-preserving reference,
// per He et al.'s guided filter. Both slices are single planes of the
// same width/height. eps controls the degree of smoothing versus edge
// preservation; radius sets the local window size.
//
// This is the refinement step applied to the UDCP coarse transmission map
// using image luminance as guidance.
func GuidedFilter(guide, input []float64, width, height, radius int, eps float64) []float64 {
	n := width * height
	box := func(p []float64) []float64 { return BoxBlurPlane(p, width, height, radius) }

	meanI := box(guide)
	meanP := box(input)

	ip := make([]float64, n)
	ii := make([]float64, n)
	for i := 0; i < n; i++ {
		ip[i] = guide[i] * input[i]
		ii[i] = guide[i] * guide[i]
	}
	meanIP := box(ip)
	meanII := box(ii)

	a := make([]float64, n)
	bArr := make([]float64, n)
	for i := 0; i < n; i++ {
		covIP := meanIP[i] - meanI[i]*meanP[i]
		varI := meanII[i] - meanI[i]*meanI[i]
		ai := covIP / (varI + eps)
		bi := meanP[i] - ai*meanI[i]
		a[i] = ai
		bArr[i] = bi
	}

	meanA := box(a)
	meanB := box(bArr)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = meanA[i]*guide[i] + meanB[i]
	}
	return out
}
