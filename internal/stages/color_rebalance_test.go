package stages

import (
	"testing"

	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
)

func TestColorRebalance_IdentityMatrixIsNoop(t *testing.T) {
	cr := NewColorRebalance()
	img := noisyImage(6, 6, 21)

	out, err := cr.Apply(img, cr.DefaultParams())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	assertShapePreserved(t, "color_rebalance", img, out)
	assertClamped01(t, "color_rebalance", out)

	for i := range img.Pix {
		if diff := out.Pix[i] - img.Pix[i]; diff < -1e-6 || diff > 1e-6 {
			t.Fatalf("expected identity matrix to leave pixels unchanged, pixel %d moved by %v", i, diff)
		}
	}
}

func TestColorRebalance_MagentaGuardClampsSaturation(t *testing.T) {
	cr := NewColorRebalance()
	// A strongly magenta pixel: high R and B, low G, lands in the 290-340
	// hue band at high saturation.
	img := solidImage(2, 2, 0.9, 0.1, 0.85)

	params := cr.DefaultParams()
	params[crParamSaturationLimit] = Float(0.5)

	out, err := cr.Apply(img, params)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	r, g, b := out.At(0, 0)
	_, s, _ := pixelops.RGBToHSV(r, g, b)
	if s > 0.5+1e-6 {
		t.Fatalf("expected magenta saturation guard to clamp to 0.5, got %v", s)
	}
}

func TestColorRebalance_AutoTuneLeavesMatrixAtIdentity(t *testing.T) {
	cr := NewColorRebalance()
	img := solidImage(4, 4, 0.3, 0.3, 0.3)
	params, err := cr.AutoTune(img, scenesig.Compute(img))
	if err != nil {
		t.Fatalf("AutoTune failed: %v", err)
	}
	if _, ok := params[matrixParamName(0, 0)]; ok {
		t.Fatal("expected AutoTune to leave the color matrix untouched (no matrix keys)")
	}
}
