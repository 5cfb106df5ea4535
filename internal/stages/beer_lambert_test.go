package stages

import "testing"

func TestBeerLambert_CompensatesRedMostStrongly(t *testing.T) {
	bl := NewBeerLambert()
	img := solidImage(4, 4, 0.3, 0.3, 0.3)

	out, err := bl.Apply(img, bl.DefaultParams())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	assertShapePreserved(t, "beer_lambert", img, out)
	assertClamped01(t, "beer_lambert", out)

	means := out.ChannelMeans()
	// Red has the largest reference coefficient, so its compensation gain
	// (and thus its output mean, before clamping) should exceed green's,
	// which should exceed blue's.
	if !(means[0] >= means[1] && means[1] >= means[2]) {
		t.Fatalf("expected R >= G >= B after attenuation compensation, got %v", means)
	}
}

func TestBeerLambert_MinimumDepthFactorIsNearIdentity(t *testing.T) {
	bl := NewBeerLambert()
	img := solidImage(4, 4, 0.2, 0.4, 0.6)
	params := bl.DefaultParams()
	params[blParamDepthFactor] = Float(0.01) // bound minimum, smallest nonzero correction

	out, err := bl.Apply(img, params)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	means := out.ChannelMeans()
	orig := img.ChannelMeans()
	for c := 0; c < 3; c++ {
		if diff := means[c] - orig[c]; diff < -0.05 || diff > 0.05 {
			t.Fatalf("expected near-identity at minimal depth_factor, channel %d moved by %v", c, diff)
		}
	}
}
