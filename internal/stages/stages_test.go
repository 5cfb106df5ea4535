package stages

import (
	"math"
	"math/rand"

	"github.com/dotsoulja/aqualens/internal/pixelops"
)

// solidImage builds a uniform-color synthetic image for scenarios that
// need a flat, known color cast (e.g. gray-world correction).
func solidImage(w, h int, r, g, b float64) *pixelops.Image {
	img := pixelops.New(w, h)
	for i := 0; i < w*h; i++ {
		img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2] = r, g, b
	}
	return img
}

// noisyImage builds a deterministic pseudo-random image so stages that
// depend on local contrast or edges have something to act on.
func noisyImage(w, h int, seed int64) *pixelops.Image {
	r := rand.New(rand.NewSource(seed))
	img := pixelops.New(w, h)
	for i := 0; i < w*h; i++ {
		img.Pix[i*3] = r.Float64()
		img.Pix[i*3+1] = r.Float64()
		img.Pix[i*3+2] = r.Float64()
	}
	return img
}

// hazyImage synthesizes a scene with true per-pixel structure overlaid
// with a strong uniform atmospheric-light haze, the canonical input UDCP
// is meant to recover contrast from.
func hazyImage(w, h int, seed int64) (scene, hazy *pixelops.Image) {
	scene = noisyImage(w, h, seed)
	hazy = pixelops.New(w, h)
	const a, t = 0.85, 0.35 // strong atmospheric light, low transmission
	for i := range hazy.Pix {
		hazy.Pix[i] = scene.Pix[i]*t + a*(1-t)
	}
	return scene, hazy
}

func psnr(a, b *pixelops.Image) float64 {
	var sumSq float64
	n := float64(len(a.Pix))
	for i := range a.Pix {
		d := a.Pix[i] - b.Pix[i]
		sumSq += d * d
	}
	mse := sumSq / n
	if mse <= 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(1/mse)
}

func assertShapePreserved(t testingT, name string, in, out *pixelops.Image) {
	t.Helper()
	if !pixelops.SameShape(in, out) {
		t.Fatalf("%s: output shape %dx%d does not match input %dx%d", name, out.Width, out.Height, in.Width, in.Height)
	}
}

func assertClamped01(t testingT, name string, img *pixelops.Image) {
	t.Helper()
	for _, v := range img.Pix {
		if v < -1e-9 || v > 1+1e-9 {
			t.Fatalf("%s: value %v outside [0,1]", name, v)
		}
	}
}

// testingT is the subset of *testing.T used by the helpers above.
type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}
