package quality

import (
	"context"
	"testing"

	"github.com/dotsoulja/aqualens/internal/pixelops"
)

// naturalImage is a smooth grayscale luminance gradient from shadow to
// highlight (0.1 to 0.9 top to bottom), giving a realistic shadow/midtone/
// highlight spread rather than a flat midtone fixture. Equal channels keep
// saturation at zero everywhere, so the identity pair never trips the
// saturation, red-dominance, or magenta checks.
func naturalImage(w, h int) *pixelops.Image {
	img := pixelops.New(w, h)
	for y := 0; y < h; y++ {
		l := 0.1 + 0.8*float64(y)/float64(h-1)
		for x := 0; x < w; x++ {
			img.Set(x, y, l, l, l)
		}
	}
	return img
}

func TestAnalyze_IdenticalImagesScoreHigh(t *testing.T) {
	img := naturalImage(32, 32)
	report, err := New().Analyze(context.Background(), img, img.Clone())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(report.Checks) != 7 {
		t.Fatalf("expected 7 checks, got %d", len(report.Checks))
	}
	if report.OverallScore < 9.0 {
		t.Fatalf("expected a processed-equals-original pair to score at least 9.0, got %v", report.OverallScore)
	}
	for _, c := range report.Checks {
		if c.Score < 0 || c.Score > 10 {
			t.Fatalf("check %s score %v out of [0,10]", c.Name, c.Score)
		}
		if c.Name == "quality_improvements" {
			continue
		}
		if len(c.Recommendations) != 0 {
			t.Fatalf("check %s: expected no recommendations for an identical pair, got %v", c.Name, c.Recommendations)
		}
	}
	for _, c := range report.Checks {
		if c.Name != "quality_improvements" {
			continue
		}
		for _, key := range []string{"delta_contrast", "delta_entropy", "delta_saturation"} {
			if c.Details[key] != 0 {
				t.Fatalf("expected zero %s for an identical pair, got %v", key, c.Details[key])
			}
		}
	}
}

func TestAnalyze_ShapeMismatchErrors(t *testing.T) {
	a := naturalImage(16, 16)
	b := naturalImage(8, 8)
	_, err := New().Analyze(context.Background(), a, b)
	if err == nil {
		t.Fatal("expected shape mismatch to error")
	}
}

func TestRunCheck_RecoversFromPanic(t *testing.T) {
	panicking := func(_, _ *pixelops.Image) CheckResult {
		panic("boom")
	}
	result := runCheck("panicking_check", panicking, naturalImage(4, 4), naturalImage(4, 4))
	if result.Score != 5.0 {
		t.Fatalf("expected neutral score 5.0 for a panicking check, got %v", result.Score)
	}
}

func TestAnalyze_UnrealisticNeonRedScoresLow(t *testing.T) {
	original := naturalImage(8, 8)
	neon := pixelops.New(8, 8)
	for i := 0; i < 64; i++ {
		neon.Pix[i*3], neon.Pix[i*3+1], neon.Pix[i*3+2] = 1.0, 0.0, 0.0
	}
	report, err := New().Analyze(context.Background(), original, neon)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	var unrealistic CheckResult
	for _, c := range report.Checks {
		if c.Name == "unrealistic_colors" {
			unrealistic = c
		}
	}
	if unrealistic.Score > 5.0 {
		t.Fatalf("expected a neon-red processed image to score low on unrealistic_colors, got %v", unrealistic.Score)
	}
}
