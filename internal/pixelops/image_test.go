package pixelops

import (
	"math"
	"testing"
)

func solidImage(w, h int, r, g, b float64) *Image {
	img := New(w, h)
	for i := 0; i < w*h; i++ {
		img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2] = r, g, b
	}
	return img
}

func TestAtSetRoundTrip(t *testing.T) {
	img := New(4, 4)
	img.Set(2, 1, 0.5, 0.25, 0.75)
	r, g, b := img.At(2, 1)
	if r != 0.5 || g != 0.25 || b != 0.75 {
		t.Fatalf("got (%v,%v,%v), want (0.5,0.25,0.75)", r, g, b)
	}
}

func TestAtClampsOutOfRange(t *testing.T) {
	img := New(3, 3)
	img.Set(2, 2, 0.1, 0.2, 0.3)
	r, g, b := img.At(99, 99)
	if r != 0.1 || g != 0.2 || b != 0.3 {
		t.Fatalf("expected edge clamp to (2,2), got (%v,%v,%v)", r, g, b)
	}
}

func TestSetOutOfRangeIsNoop(t *testing.T) {
	img := New(2, 2)
	img.Set(-1, 0, 1, 1, 1)
	img.Set(5, 5, 1, 1, 1)
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatalf("out-of-range Set mutated image: %v", img.Pix)
		}
	}
}

func TestChannelRoundTrip(t *testing.T) {
	img := solidImage(3, 2, 0.2, 0.4, 0.6)
	g := img.Channel(1)
	if len(g) != 6 {
		t.Fatalf("expected 6 pixels, got %d", len(g))
	}
	for _, v := range g {
		if v != 0.4 {
			t.Fatalf("expected 0.4, got %v", v)
		}
	}

	doubled := make([]float64, len(g))
	for i, v := range g {
		doubled[i] = v * 2
	}
	img.SetChannel(1, doubled)
	_, g2, _ := img.At(0, 0)
	if g2 != 0.8 {
		t.Fatalf("SetChannel did not round-trip: got %v", g2)
	}
}

func TestClamp01(t *testing.T) {
	img := New(1, 1)
	img.Set(0, 0, -0.5, 1.5, 0.5)
	img.Clamp01()
	r, g, b := img.At(0, 0)
	if r != 0 || g != 1 || b != 0.5 {
		t.Fatalf("Clamp01 failed: got (%v,%v,%v)", r, g, b)
	}
}

func TestSameShape(t *testing.T) {
	a := New(4, 3)
	b := New(4, 3)
	c := New(3, 4)
	if !SameShape(a, b) {
		t.Fatal("expected equal dimensions to match")
	}
	if SameShape(a, c) {
		t.Fatal("expected different dimensions to not match")
	}
}

func TestLuminanceOfWhiteIsOne(t *testing.T) {
	img := solidImage(2, 2, 1, 1, 1)
	for _, v := range img.Luminance() {
		if math.Abs(v-1) > 1e-9 {
			t.Fatalf("expected luminance 1 for white, got %v", v)
		}
	}
}

func TestHasNonFinite(t *testing.T) {
	img := solidImage(2, 2, 0.1, 0.2, 0.3)
	if img.HasNonFinite() {
		t.Fatal("expected finite image to report false")
	}
	img.Pix[0] = math.NaN()
	if !img.HasNonFinite() {
		t.Fatal("expected NaN to be detected")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	img := solidImage(2, 2, 0.1, 0.2, 0.3)
	clone := img.Clone()
	clone.Set(0, 0, 9, 9, 9)
	r, _, _ := img.At(0, 0)
	if r != 0.1 {
		t.Fatal("mutating clone affected original")
	}
}

func TestNewClampsInvalidDimensions(t *testing.T) {
	img := New(0, -5)
	if img.Width != 1 || img.Height != 1 {
		t.Fatalf("expected degenerate dims to clamp to 1x1, got %dx%d", img.Width, img.Height)
	}
}
