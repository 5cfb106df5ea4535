package autotune

import (
	"hash/fnv"
	"math"
	"sync"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/enginelog"
	"github.com/dotsoulja/aqualens/internal/engine"
	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
	"github.com/dotsoulja/aqualens/internal/stages"
)

// Orchestrator computes a scene signature once per source image content
// and drives each enabled-auto-tune stage from it. The signature is
// memoized by a content hash so toggling a single stage's auto-tune flag
// re-runs only that stage's tuner, never a full recomputation.
type Orchestrator struct {
	mu        sync.Mutex
	hash      uint64
	signature *scenesig.Signature
	logger    enginelog.Logger
}

// New constructs an Orchestrator. logger may be nil.
func New(logger enginelog.Logger) *Orchestrator {
	if logger == nil {
		logger = enginelog.NoopLogger{}
	}
	return &Orchestrator{logger: logger}
}

// ComputeSignature returns the memoized signature for img, recomputing
// only when img's content hash differs from the last computed one.
func (o *Orchestrator) ComputeSignature(img *pixelops.Image) *scenesig.Signature {
	h := contentHash(img)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.signature != nil && o.hash == h {
		return o.signature
	}
	o.signature = scenesig.Compute(img)
	o.hash = h
	return o.signature
}

// Tune runs every auto-tune-enabled stage's AutoTune against the given
// signature and writes the result into config. A stage whose AutoTune
// fails keeps its previous parameter values and logs the failure instead
// of aborting the whole run.
func (o *Orchestrator) Tune(img *pixelops.Image, config *engine.PipelineConfig, registry map[stages.StageID]stages.Stage, sig *scenesig.Signature) {
	for _, id := range stages.Order {
		sc := config.Get(id)
		if !sc.AutoTuneOn {
			continue
		}
		stage := registry[id]
		previous := sc.Params
		params, err := stage.AutoTune(img, sig)
		if err != nil {
			o.logger.LogError("autotune.Tune", aqerrors.NewStage(aqerrors.StageFailure, "autotune.Tune", string(id), err))
			continue // fall back silently to the previous parameter values
		}
		clamped, err := stages.ClampAll(params, stage.Bounds())
		if err != nil {
			o.logger.LogError("autotune.Tune", aqerrors.NewStage(aqerrors.InvalidParameter, "autotune.Tune", string(id), err))
			clamped = previous
		}
		config.SetParams(id, clamped)
	}
}

// TuneOne re-runs a single stage's AutoTune, used when a caller toggles
// that stage's auto-tune flag on. On failure it keeps the stage's current
// parameters and returns the error.
func (o *Orchestrator) TuneOne(img *pixelops.Image, config *engine.PipelineConfig, stage stages.Stage, sig *scenesig.Signature) error {
	previous := config.Get(stage.ID()).Params
	params, err := stage.AutoTune(img, sig)
	if err != nil {
		return aqerrors.NewStage(aqerrors.StageFailure, "autotune.TuneOne", string(stage.ID()), err)
	}
	clamped, err := stages.ClampAll(params, stage.Bounds())
	if err != nil {
		config.SetParams(stage.ID(), previous)
		return aqerrors.NewStage(aqerrors.InvalidParameter, "autotune.TuneOne", string(stage.ID()), err)
	}
	config.SetParams(stage.ID(), clamped)
	return nil
}

// GlobalAutoTune toggles auto_tune_on for every stage in one call.
func GlobalAutoTune(config *engine.PipelineConfig, on bool) {
	for _, id := range stages.Order {
		config.SetAutoTuneOn(id, on)
	}
}

// contentHash is an FNV-1a digest of the pixel buffer, hashing each
// value's full IEEE-754 bit pattern. It is a cache key, not a security boundary, so
// collisions are acceptable risk in exchange for speed.
func contentHash(img *pixelops.Image) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 8)
	for _, v := range img.Pix {
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf)
	}
	return h.Sum64()
}
