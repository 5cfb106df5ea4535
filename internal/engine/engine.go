package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/enginelog"
	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/stages"
)

// ProgressFunc reports a human-facing message key and a percentage in
// [0, 100]. Implementations must be cheap and safe to call from whatever
// worker goroutine is driving the run.
type ProgressFunc func(messageKey string, percent int)

// bandStart / bandEnd bound the slice of overall progress a single-image
// Process call occupies; the rest is reserved for preview/cache glue
// surrounding it. Percentage is distributed linearly over enabled stages
// within this band.
const (
	bandStart = 10
	bandEnd   = 85
)

// PipelineEngine orders and executes the six stages from the registry in
// their fixed order, skipping disabled ones, reporting progress, and
// degrading gracefully on a stage failure instead of aborting the run.
type PipelineEngine struct {
	registry map[stages.StageID]stages.Stage
	logger   enginelog.Logger
}

// New constructs a PipelineEngine backed by stages.Registry(). logger may
// be nil, in which case a NoopLogger is used.
func New(logger enginelog.Logger) *PipelineEngine {
	reg := make(map[stages.StageID]stages.Stage, len(stages.Order))
	for _, s := range stages.Registry() {
		reg[s.ID()] = s
	}
	if logger == nil {
		logger = enginelog.NoopLogger{}
	}
	return &PipelineEngine{registry: reg, logger: logger}
}

func (e *PipelineEngine) Stage(id stages.StageID) stages.Stage { return e.registry[id] }

// Process applies the six stages in fixed order to img, skipping disabled
// stages, reporting progress in the 10-85 band. A stage failure is
// recorded in the returned RunMetadata and the last successful
// intermediate image is carried forward: the engine never aborts the
// host process over a single stage error.
func (e *PipelineEngine) Process(ctx context.Context, img *pixelops.Image, config *PipelineConfig, cb ProgressFunc) (*pixelops.Image, *RunMetadata, error) {
	return e.run(ctx, img, config, cb, bandStart, bandEnd, func(stageID stages.StageID) string {
		return string(stageID)
	})
}

// ProcessFrame runs the same pipeline over one video frame, mapping stage
// progress into the frame's sub-band of the overall [10, 90] video band:
// the band is divided equally across frameCount frames, and stage
// progress within a frame maps linearly into its slice.
func (e *PipelineEngine) ProcessFrame(ctx context.Context, img *pixelops.Image, config *PipelineConfig, frameIndex, frameCount int, cb ProgressFunc) (*pixelops.Image, *RunMetadata, error) {
	const videoBandStart, videoBandEnd = 10, 90
	if frameCount < 1 {
		frameCount = 1
	}
	span := float64(videoBandEnd-videoBandStart) / float64(frameCount)
	frameLo := videoBandStart + int(float64(frameIndex)*span)
	frameHi := videoBandStart + int(float64(frameIndex+1)*span)
	if frameIndex == frameCount-1 {
		frameHi = videoBandEnd
	}

	return e.run(ctx, img, config, cb, frameLo, frameHi, func(stageID stages.StageID) string {
		return fmt.Sprintf("frame %d/%d: %s", frameIndex+1, frameCount, stageID)
	})
}

// run is the shared stage-iteration loop behind Process and ProcessFrame:
// it differs only in the progress band and message-key formatting.
func (e *PipelineEngine) run(ctx context.Context, img *pixelops.Image, config *PipelineConfig, cb ProgressFunc, lo, hi int, messageKey func(stages.StageID) string) (*pixelops.Image, *RunMetadata, error) {
	snapshot := config.Snapshot()
	meta := &RunMetadata{}
	current := img

	enabled := make([]stages.StageID, 0, len(stages.Order))
	for _, id := range stages.Order {
		if snapshot.Get(id).Enabled {
			enabled = append(enabled, id)
		}
	}

	if len(enabled) == 0 {
		if cb != nil {
			cb("pipeline: no stages enabled", hi)
		}
		return current, meta, nil
	}

	span := float64(hi-lo) / float64(len(enabled))

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		for i, id := range enabled {
			if err := gctx.Err(); err != nil {
				return aqerrors.New(aqerrors.Cancelled, "engine.run", err)
			}

			stage := e.registry[id]
			sc := snapshot.Get(id)

			result, err := stage.Apply(current, sc.Params)
			if err != nil {
				e.logger.LogError("engine.run", aqerrors.NewStage(aqerrors.StageFailure, "engine.run", string(id), err))
				meta.markDegraded(id)
			} else {
				current = result
			}

			percent := lo + int(float64(i+1)*span)
			if cb != nil {
				cb(messageKey(id), percent)
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return current, meta, err
	}
	return current, meta, nil
}
