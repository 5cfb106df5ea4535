package engine

import (
	"context"
	"testing"

	"github.com/dotsoulja/aqualens/internal/enginelog"
	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/stages"
)

func testImage(w, h int) *pixelops.Image {
	img := pixelops.New(w, h)
	for i := 0; i < w*h; i++ {
		img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2] = 0.3, 0.5, 0.7
	}
	return img
}

func TestProcess_DisabledPipelineIsIdentity(t *testing.T) {
	eng := New(enginelog.NoopLogger{})
	config := NewPipelineConfig()
	for _, id := range stages.Order {
		config.SetEnabled(id, false)
	}

	img := testImage(4, 4)
	out, meta, err := eng.Process(context.Background(), img, config, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(meta.Degraded) != 0 {
		t.Fatalf("expected no degraded stages, got %v", meta.Degraded)
	}
	for i := range img.Pix {
		if out.Pix[i] != img.Pix[i] {
			t.Fatalf("expected fully-disabled pipeline to be identity, pixel %d: in=%v out=%v", i, img.Pix[i], out.Pix[i])
		}
	}
}

func TestProcess_PreservesShapeAndRange(t *testing.T) {
	eng := New(enginelog.NoopLogger{})
	config := NewPipelineConfig()
	img := testImage(16, 12)

	out, _, err := eng.Process(context.Background(), img, config, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !pixelops.SameShape(img, out) {
		t.Fatalf("expected shape preservation, got %dx%d from %dx%d", out.Width, out.Height, img.Width, img.Height)
	}
	for _, v := range out.Pix {
		if v < -1e-9 || v > 1+1e-9 {
			t.Fatalf("pixel out of [0,1]: %v", v)
		}
	}
}

func TestProcess_ProgressReachesBandEnd(t *testing.T) {
	eng := New(enginelog.NoopLogger{})
	config := NewPipelineConfig()
	img := testImage(4, 4)

	var last int
	var monotonic = true
	cb := func(messageKey string, percent int) {
		if percent < last {
			monotonic = false
		}
		last = percent
	}

	_, _, err := eng.Process(context.Background(), img, config, cb)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !monotonic {
		t.Fatal("expected progress percentages to be non-decreasing")
	}
	if last != bandEnd {
		t.Fatalf("expected final progress to reach %d, got %d", bandEnd, last)
	}
}

func TestProcess_CancelledContextStopsEarly(t *testing.T) {
	eng := New(enginelog.NoopLogger{})
	config := NewPipelineConfig()
	img := testImage(4, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := eng.Process(ctx, img, config, nil)
	if err == nil {
		t.Fatal("expected Process to report an error for an already-cancelled context")
	}
}

func TestProcess_DeterministicForFixedConfig(t *testing.T) {
	eng := New(enginelog.NoopLogger{})
	config := NewPipelineConfig()
	img := testImage(10, 10)

	out1, _, err := eng.Process(context.Background(), img.Clone(), config, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	out2, _, err := eng.Process(context.Background(), img.Clone(), config, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	for i := range out1.Pix {
		if out1.Pix[i] != out2.Pix[i] {
			t.Fatalf("expected deterministic output for identical config and input, pixel %d differs", i)
		}
	}
}

func TestPipelineConfig_EverySTageIDPresent(t *testing.T) {
	config := NewPipelineConfig()
	for _, id := range stages.Order {
		sc := config.Get(id)
		if sc.Params == nil {
			t.Fatalf("expected stage %s to have default params seeded", id)
		}
	}
}

func TestPipelineConfig_SnapshotIsIndependent(t *testing.T) {
	config := NewPipelineConfig()
	snap := config.Snapshot()

	config.SetParam(stages.WhiteBalance, stages.Registry()[0], "max_gain", stages.Float(3.0))

	snapVal := snap.Get(stages.WhiteBalance).Params.GetFloat("max_gain", -1)
	liveVal := config.Get(stages.WhiteBalance).Params.GetFloat("max_gain", -1)
	if snapVal == liveVal {
		t.Fatal("expected snapshot to be unaffected by a subsequent write to the live config")
	}
}
