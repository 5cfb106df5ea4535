// Package aqualens is the facade over the underwater image and video
// enhancement engine: it wires together the preview/cache manager, the
// pipeline engine, the auto-tune orchestrator, and the quality analyzer
// behind one stateful editing session's worth of operations. It plays the
// role a Run/Config/Report trio plays for a batch transcode pipeline,
// adapted to a stateful, parameter-driven image engine instead of a
// one-shot batch job.
package aqualens

import (
	"context"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/autotune"
	"github.com/dotsoulja/aqualens/internal/engine"
	"github.com/dotsoulja/aqualens/internal/enginelog"
	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/preview"
	"github.com/dotsoulja/aqualens/internal/quality"
	"github.com/dotsoulja/aqualens/internal/scenesig"
	"github.com/dotsoulja/aqualens/internal/stages"
	"github.com/dotsoulja/aqualens/internal/video"
)

// ProgressFunc reports a stable message key and a percentage in [0, 100].
type ProgressFunc = engine.ProgressFunc

// Engine is the top-level handle a caller (CLI, GUI, batch job) holds for
// one editing session against one source image or video.
type Engine struct {
	config       *engine.PipelineConfig
	pipeline     *engine.PipelineEngine
	orchestrator *autotune.Orchestrator
	state        *preview.State
	registry     map[stages.StageID]stages.Stage
	logger       enginelog.Logger
}

// New constructs an Engine with default parameters for every stage,
// auto-tune off, logging to stdout.
func New() *Engine {
	return NewWithLogger(&enginelog.ConsoleLogger{})
}

// NewWithLogger constructs an Engine with the given logger; pass
// enginelog.NoopLogger{} to silence stdout output entirely.
func NewWithLogger(logger enginelog.Logger) *Engine {
	registry := make(map[stages.StageID]stages.Stage, len(stages.Order))
	for _, s := range stages.Registry() {
		registry[s.ID()] = s
	}
	return &Engine{
		config:       engine.NewPipelineConfig(),
		pipeline:     engine.New(logger),
		orchestrator: autotune.New(logger),
		state:        preview.New(),
		registry:     registry,
		logger:       logger,
	}
}

// LoadSource installs a new source image, resetting every cache and
// recomputing the preview, then triggers tune-on-load for any stage whose
// auto-tune flag is already on. The scene signature is computed from the
// source preview, the same image later auto-tune toggles use, so those
// toggles reuse the memoized signature.
func (e *Engine) LoadSource(img *pixelops.Image) {
	e.state.SetSource(img)
	sig := e.orchestrator.ComputeSignature(e.state.SourcePreview())
	e.orchestrator.Tune(img, e.config, e.registry, sig)
}

// SetParameter clamps value to the named parameter's declared bounds and
// writes it into the stage's parameter record, invalidating caches.
func (e *Engine) SetParameter(id stages.StageID, name string, value stages.ParameterValue) error {
	stage, ok := e.registry[id]
	if !ok {
		return aqerrors.NewStage(aqerrors.InvalidParameter, "Engine.SetParameter", string(id), errUnknownStage)
	}
	if err := e.config.SetParam(id, stage, name, value); err != nil {
		return err
	}
	e.state.Invalidate()
	return nil
}

// SetEnabled toggles whether a stage runs at all and invalidates caches.
func (e *Engine) SetEnabled(id stages.StageID, enabled bool) {
	e.config.SetEnabled(id, enabled)
	e.state.Invalidate()
}

// SetAutoTune toggles a stage's auto-tune flag; turning it on immediately
// re-runs that stage's tuner against the cached signature.
func (e *Engine) SetAutoTune(id stages.StageID, on bool) error {
	e.config.SetAutoTuneOn(id, on)
	if !on {
		return nil
	}
	stage, ok := e.registry[id]
	if !ok {
		return aqerrors.NewStage(aqerrors.InvalidParameter, "Engine.SetAutoTune", string(id), errUnknownStage)
	}
	source := e.state.SourcePreview()
	if source == nil {
		return nil
	}
	sig := e.orchestrator.ComputeSignature(source)
	if err := e.orchestrator.TuneOne(source, e.config, stage, sig); err != nil {
		return err
	}
	e.state.Invalidate()
	return nil
}

// GlobalAutoTune toggles auto-tune for every stage in one call; turning it
// on immediately re-runs every stage's tuner against the cached signature
// of the loaded source preview.
func (e *Engine) GlobalAutoTune(on bool) {
	autotune.GlobalAutoTune(e.config, on)
	if on {
		if source := e.state.SourcePreview(); source != nil {
			sig := e.orchestrator.ComputeSignature(source)
			e.orchestrator.Tune(source, e.config, e.registry, sig)
		}
	}
	e.state.Invalidate()
}

// ProcessPreview returns the processed preview image, from cache when the
// current configuration's fingerprint matches.
func (e *Engine) ProcessPreview(ctx context.Context, cb ProgressFunc) (*pixelops.Image, error) {
	img, _, err := e.state.GetProcessedPreview(ctx, e.pipeline, e.config, cb)
	return img, err
}

// ProcessFull returns the processed full-resolution image, from its own
// independent cache.
func (e *Engine) ProcessFull(ctx context.Context, cb ProgressFunc) (*pixelops.Image, error) {
	img, _, err := e.state.GetProcessedFull(ctx, e.pipeline, e.config, cb)
	return img, err
}

// AnalyzeQuality runs the seven-check battery against the current preview
// pair, computing the processed preview first if needed.
func (e *Engine) AnalyzeQuality(ctx context.Context) (*quality.Report, error) {
	original := e.state.SourcePreview()
	if original == nil {
		return nil, aqerrors.New(aqerrors.InvalidInput, "Engine.AnalyzeQuality", errNoSource)
	}
	processed, err := e.ProcessPreview(ctx, nil)
	if err != nil {
		return nil, err
	}
	return quality.New().Analyze(ctx, original, processed)
}

// ProcessVideo iterates src through the pipeline engine with the current
// configuration, writing each enhanced frame to dst in order.
func (e *Engine) ProcessVideo(ctx context.Context, src video.FrameSource, dst video.FrameSink, cb ProgressFunc) error {
	driver := video.New(e.pipeline)
	return driver.Run(ctx, src, dst, e.config, cb)
}

// Signature exposes the cached scene signature for the current preview
// source, computing it if necessary. Exposed for callers (CLI, tests)
// that want to report water-type classification without re-tuning.
func (e *Engine) Signature() *scenesig.Signature {
	source := e.state.SourcePreview()
	if source == nil {
		return nil
	}
	return e.orchestrator.ComputeSignature(source)
}

// WaterType classifies the current source's water type.
func (e *Engine) WaterType() autotune.WaterTypeTag {
	sig := e.Signature()
	if sig == nil {
		return autotune.Standard
	}
	return autotune.ClassifyWater(sig)
}

type unknownStageErr struct{}

func (unknownStageErr) Error() string { return "unknown stage id" }

var errUnknownStage = unknownStageErr{}

type noSourceErr struct{}

func (noSourceErr) Error() string { return "no source image loaded" }

var errNoSource = noSourceErr{}
