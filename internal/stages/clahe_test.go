package stages

import (
	"testing"

	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
)

func TestCLAHE_IncreasesLocalContrastOnFlatImage(t *testing.T) {
	clahe := NewCLAHE()
	// A low-contrast gradient: CLAHE should spread the luminance histogram
	// without changing image dimensions or leaving [0,1].
	img := solidImage(32, 32, 0.45, 0.45, 0.45)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := 0.4 + 0.1*float64(x)/32
			img.Set(x, y, v, v, v)
		}
	}

	out, err := clahe.Apply(img, clahe.DefaultParams())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	assertShapePreserved(t, "clahe", img, out)
	assertClamped01(t, "clahe", out)

	inLum, outLum := img.Luminance(), out.Luminance()
	inSpread := pixelops.Percentile(inLum, 95) - pixelops.Percentile(inLum, 5)
	outSpread := pixelops.Percentile(outLum, 95) - pixelops.Percentile(outLum, 5)
	if outSpread <= inSpread {
		t.Fatalf("expected CLAHE to widen the luminance spread: in=%v out=%v", inSpread, outSpread)
	}
}

func TestCLAHE_AutoTune_TileGridScalesWithMegapixels(t *testing.T) {
	clahe := NewCLAHE()

	small := noisyImage(100, 100, 1)  // 0.01MP, below 1MP threshold
	large := noisyImage(2100, 2100, 1) // 4.41MP, above 4MP threshold

	smallParams, err := clahe.AutoTune(small, scenesig.Compute(small))
	if err != nil {
		t.Fatalf("AutoTune failed: %v", err)
	}
	largeParams, err := clahe.AutoTune(large, scenesig.Compute(large))
	if err != nil {
		t.Fatalf("AutoTune failed: %v", err)
	}

	smallGrid := smallParams.GetInt(claheParamTileGrid, 8)
	largeGrid := largeParams.GetInt(claheParamTileGrid, 8)
	if !(smallGrid < largeGrid) {
		t.Fatalf("expected tile_grid to grow with resolution: small=%d large=%d", smallGrid, largeGrid)
	}
}
