package aqualens

import (
	"context"
	"testing"

	"github.com/dotsoulja/aqualens/internal/enginelog"
	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/stages"
)

func greenishImage(w, h int) *pixelops.Image {
	img := pixelops.New(w, h)
	for i := 0; i < w*h; i++ {
		img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2] = 0.15, 0.55, 0.2
	}
	return img
}

func TestEngine_ProcessFullReturnsSourceShape(t *testing.T) {
	eng := NewWithLogger(enginelog.NoopLogger{})
	eng.LoadSource(greenishImage(32, 32))

	out, err := eng.ProcessFull(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessFull failed: %v", err)
	}
	if out.Width != 32 || out.Height != 32 {
		t.Fatalf("expected 32x32 output, got %dx%d", out.Width, out.Height)
	}
}

func TestEngine_GlobalAutoTuneClassifiesWaterType(t *testing.T) {
	eng := NewWithLogger(enginelog.NoopLogger{})
	eng.LoadSource(greenishImage(16, 16))
	eng.GlobalAutoTune(true)

	wt := eng.WaterType()
	if wt == "" {
		t.Fatal("expected a non-empty water type classification")
	}
}

func TestEngine_SetParameterInvalidatesCache(t *testing.T) {
	eng := NewWithLogger(enginelog.NoopLogger{})
	eng.LoadSource(greenishImage(16, 16))

	first, err := eng.ProcessPreview(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessPreview failed: %v", err)
	}

	if err := eng.SetParameter(stages.WhiteBalance, "max_gain", stages.Float(4.0)); err != nil {
		t.Fatalf("SetParameter failed: %v", err)
	}

	second, err := eng.ProcessPreview(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessPreview failed: %v", err)
	}

	var differs bool
	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Fatal("expected changing max_gain to invalidate the cache and change the processed result")
	}
}

func TestEngine_AnalyzeQualityWithoutSourceErrors(t *testing.T) {
	eng := NewWithLogger(enginelog.NoopLogger{})
	if _, err := eng.AnalyzeQuality(context.Background()); err == nil {
		t.Fatal("expected AnalyzeQuality without a loaded source to error")
	}
}

func TestEngine_SetEnabledSkipsStage(t *testing.T) {
	eng := NewWithLogger(enginelog.NoopLogger{})
	img := greenishImage(16, 16)
	eng.LoadSource(img)

	for _, id := range stages.Order {
		eng.SetEnabled(id, false)
	}

	out, err := eng.ProcessFull(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessFull failed: %v", err)
	}
	for i := range img.Pix {
		if out.Pix[i] != img.Pix[i] {
			t.Fatalf("expected all-disabled pipeline to be identity, pixel %d differs", i)
		}
	}
}
