package autotune

import (
	"errors"
	"testing"

	"github.com/dotsoulja/aqualens/internal/engine"
	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
	"github.com/dotsoulja/aqualens/internal/stages"
)

type failingStage struct {
	stages.Stage
	failWith error
}

func (f failingStage) AutoTune(img *pixelops.Image, sig *scenesig.Signature) (stages.Params, error) {
	return nil, f.failWith
}

func testImage() *pixelops.Image {
	img := pixelops.New(4, 4)
	for i := 0; i < 16; i++ {
		img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2] = 0.3, 0.5, 0.7
	}
	return img
}

func TestComputeSignature_MemoizesByContent(t *testing.T) {
	o := New(nil)
	img := testImage()

	sig1 := o.ComputeSignature(img)
	sig2 := o.ComputeSignature(img)
	if sig1 != sig2 {
		t.Fatal("expected identical image content to return the same memoized signature pointer")
	}

	img.Pix[0] = 0.99
	sig3 := o.ComputeSignature(img)
	if sig3 == sig1 {
		t.Fatal("expected changed image content to recompute the signature")
	}
}

func TestTune_FailurePreservesPreviousParams(t *testing.T) {
	o := New(nil)
	img := testImage()
	config := engine.NewPipelineConfig()

	real := stages.Registry()[0] // white_balance
	original := config.Get(real.ID()).Params.Clone()
	config.SetAutoTuneOn(real.ID(), true)

	failing := failingStage{Stage: real, failWith: errors.New("synthetic tuner failure")}
	registry := map[stages.StageID]stages.Stage{real.ID(): failing}
	for _, id := range stages.Order {
		if id != real.ID() {
			registry[id] = noopStage{id: id}
		}
	}

	sig := scenesig.Compute(img)
	o.Tune(img, config, registry, sig)

	after := config.Get(real.ID()).Params
	for name, v := range original {
		if after[name] != v {
			t.Fatalf("expected param %q to be preserved after tuner failure, got %v want %v", name, after[name], v)
		}
	}
}

func TestTuneOne_FailurePreservesPreviousParams(t *testing.T) {
	o := New(nil)
	img := testImage()
	config := engine.NewPipelineConfig()

	real := stages.Registry()[0]
	original := config.Get(real.ID()).Params.Clone()
	failing := failingStage{Stage: real, failWith: errors.New("synthetic tuner failure")}

	sig := scenesig.Compute(img)
	err := o.TuneOne(img, config, failing, sig)
	if err == nil {
		t.Fatal("expected TuneOne to surface the tuner error")
	}

	after := config.Get(real.ID()).Params
	for name, v := range original {
		if after[name] != v {
			t.Fatalf("expected param %q to be preserved after tuner failure, got %v want %v", name, after[name], v)
		}
	}
}

func TestGlobalAutoTune_TogglesEveryStage(t *testing.T) {
	config := engine.NewPipelineConfig()
	GlobalAutoTune(config, true)
	for _, id := range stages.Order {
		if !config.Get(id).AutoTuneOn {
			t.Fatalf("expected stage %s to have auto-tune on", id)
		}
	}
	GlobalAutoTune(config, false)
	for _, id := range stages.Order {
		if config.Get(id).AutoTuneOn {
			t.Fatalf("expected stage %s to have auto-tune off", id)
		}
	}
}

// noopStage satisfies stages.Stage for registry-filling purposes in tests
// that only exercise one real stage.
type noopStage struct {
	id stages.StageID
}

func (n noopStage) ID() stages.StageID               { return n.id }
func (n noopStage) Describe() string                 { return "noop" }
func (n noopStage) Bounds() map[string]stages.Bound  { return nil }
func (n noopStage) DefaultParams() stages.Params     { return stages.Params{} }
func (n noopStage) Apply(img *pixelops.Image, params stages.Params) (*pixelops.Image, error) {
	return img, nil
}
func (n noopStage) AutoTune(img *pixelops.Image, sig *scenesig.Signature) (stages.Params, error) {
	return stages.Params{}, nil
}
