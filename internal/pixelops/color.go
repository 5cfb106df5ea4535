package pixelops

import "math"

// RGBToLAB converts a single sRGB-ish [0,1] triple to CIE L*a*b* via the
// D65 XYZ intermediate. Inputs outside [0,1] are tolerated (stages may
// briefly overshoot before a final clamp).
func RGBToLAB(r, g, b float64) (l, a, bb float64) {
	lr, lg, lb := linearize(r), linearize(g), linearize(b)

	x := lr*0.4124564 + lg*0.3575761 + lb*0.1804375
	y := lr*0.2126729 + lg*0.7151522 + lb*0.0721750
	z := lr*0.0193339 + lg*0.1191920 + lb*0.9503041

	const xn, yn, zn = 0.95047, 1.0, 1.08883
	fx := labF(x / xn)
	fy := labF(y / yn)
	fz := labF(z / zn)

	l = 116*fy - 16
	a = 500 * (fx - fy)
	bb = 200 * (fy - fz)
	return
}

// LABToRGB is the inverse of RGBToLAB.
func LABToRGB(l, a, b float64) (r, g, bb float64) {
	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200

	const xn, yn, zn = 0.95047, 1.0, 1.08883
	x := xn * labFInv(fx)
	y := yn * labFInv(fy)
	z := zn * labFInv(fz)

	lr := x*3.2404542 + y*-1.5371385 + z*-0.4985314
	lg := x*-0.9692660 + y*1.8760108 + z*0.0415560
	lb := x*0.0556434 + y*-0.2040259 + z*1.0572252

	r = delinearize(lr)
	g = delinearize(lg)
	bb = delinearize(lb)
	return
}

func linearize(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func delinearize(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}

func labFInv(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta {
		return t * t * t
	}
	return 3 * delta * delta * (t - 4.0/29.0)
}

// LABPlanes converts a whole image to three LAB planes (L in [0,100],
// a/b roughly in [-128,127]).
func (img *Image) LABPlanes() (l, a, b []float64) {
	n := img.Width * img.Height
	l = make([]float64, n)
	a = make([]float64, n)
	b = make([]float64, n)
	for i := 0; i < n; i++ {
		ll, aa, bb := RGBToLAB(img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2])
		l[i], a[i], b[i] = ll, aa, bb
	}
	return
}

// ImageFromLAB rebuilds an RGB image from LAB planes.
func ImageFromLAB(l, a, b []float64, width, height int) *Image {
	out := New(width, height)
	for i := 0; i < width*height; i++ {
		r, g, bb := LABToRGB(l[i], a[i], b[i])
		out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2] = r, g, bb
	}
	return out
}

// RGBToHSV converts an RGB triple in [0,1] to hue in [0,360), saturation
// and value in [0,1].
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	maxV := math.Max(r, math.Max(g, b))
	minV := math.Min(r, math.Min(g, b))
	delta := maxV - minV
	v = maxV
	if maxV <= 0 {
		return 0, 0, v
	}
	s = delta / maxV
	if delta == 0 {
		return 0, s, v
	}
	switch maxV {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// HSVToRGB is the inverse of RGBToHSV.
func HSVToRGB(h, s, v float64) (r, g, b float64) {
	c := v * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r1, g1, b1 float64
	switch {
	case hp < 1:
		r1, g1, b1 = c, x, 0
	case hp < 2:
		r1, g1, b1 = x, c, 0
	case hp < 3:
		r1, g1, b1 = 0, c, x
	case hp < 4:
		r1, g1, b1 = 0, x, c
	case hp < 5:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}
	m := v - c
	return r1 + m, g1 + m, b1 + m
}
