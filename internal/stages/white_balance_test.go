package stages

import (
	"testing"

	"github.com/dotsoulja/aqualens/internal/scenesig"
)

func TestWhiteBalance_GrayWorldOnFlatGreen(t *testing.T) {
	wb := NewWhiteBalance()
	img := solidImage(8, 8, 0.2, 0.6, 0.2)

	params := wb.DefaultParams()
	params[wbParamMethod] = Enum(wbMethodGrayWorld)

	out, err := wb.Apply(img, params)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	assertShapePreserved(t, "white_balance", img, out)
	assertClamped01(t, "white_balance", out)

	means := out.ChannelMeans()
	// Gray-world should pull the channels toward parity: the spread
	// between max and min channel mean should shrink substantially.
	inSpread := 0.6 - 0.2
	outSpread := maxOf(means[0], means[1], means[2]) - minOf(means[0], means[1], means[2])
	if outSpread >= inSpread {
		t.Fatalf("expected gray-world to reduce channel spread: in=%v out=%v", inSpread, outSpread)
	}
}

func TestWhiteBalance_DefaultParamsKeepNeutralGray(t *testing.T) {
	// Default params on an already balanced image should not introduce a
	// strong cast.
	wb := NewWhiteBalance()
	img := solidImage(4, 4, 0.4, 0.4, 0.4)
	out, err := wb.Apply(img, wb.DefaultParams())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	means := out.ChannelMeans()
	for _, m := range means {
		if m < 0.35 || m > 0.45 {
			t.Fatalf("expected neutral gray to stay near 0.4, got %v", means)
		}
	}
}

func TestWhiteBalance_AutoTune_LakeGreenWaterClassification(t *testing.T) {
	wb := NewWhiteBalance()
	img := solidImage(8, 8, 0.2, 0.6, 0.2) // green dominant: green > 1.15*max(r,b)
	sig := scenesig.Compute(img)

	params, err := wb.AutoTune(img, sig)
	if err != nil {
		t.Fatalf("AutoTune failed: %v", err)
	}
	if params.GetEnum(wbParamMethod, "") != wbMethodLakeGreenWater {
		t.Fatalf("expected lake_green_water method for green-dominant scene, got %q", params.GetEnum(wbParamMethod, ""))
	}
}

func TestWhiteBalance_Bounds_ClampOutOfRangeMaxGain(t *testing.T) {
	wb := NewWhiteBalance()
	bounds := wb.Bounds()
	b := bounds[wbParamMaxGain]
	clamped, err := b.Clamp(Float(99))
	if err != nil {
		t.Fatalf("Clamp failed: %v", err)
	}
	if clamped.Float != b.Max {
		t.Fatalf("expected clamp to %v, got %v", b.Max, clamped.Float)
	}
}

func maxOf(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
