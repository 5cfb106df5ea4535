// Package video implements the video driver: it iterates decoded frames,
// applies the pipeline engine to each with the current config, and
// reports frame-level plus stage-level progress.
package video

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/engine"
	"github.com/dotsoulja/aqualens/internal/pixelops"
)

// FrameSource yields decoded RGB frames in order. Next returns
// (nil, false, nil) once exhausted.
type FrameSource interface {
	Next(ctx context.Context) (*pixelops.Image, bool, error)
	FrameCount() int
}

// FrameSink receives enhanced frames in the same order they were
// produced by FrameSource.
type FrameSink interface {
	Write(ctx context.Context, frame *pixelops.Image) error
}

// prefetchDepth bounds how many decoded frames are in flight at once,
// counting the frame currently being enhanced: while one frame runs
// through the stages the next one is decoded, so decode overlaps stage
// execution.
const prefetchDepth = 2

// Driver iterates frames from a FrameSource, applies the engine with a
// frozen config per run, and writes results to a FrameSink in strict
// frame order, guaranteeing frame i's output depends only on frame i's
// input and the config snapshot.
type Driver struct {
	eng *engine.PipelineEngine
}

// New constructs a Driver around the given pipeline engine.
func New(eng *engine.PipelineEngine) *Driver {
	return &Driver{eng: eng}
}

type decodedFrame struct {
	index int
	img   *pixelops.Image
}

// Run decodes, enhances, and re-emits every frame from src, in order,
// reporting progress as "frame i/N: <stage_key>" mapped into the global
// [10, 90] band equally divided across frames.
func (d *Driver) Run(ctx context.Context, src FrameSource, dst FrameSink, config *engine.PipelineConfig, cb engine.ProgressFunc) error {
	frameCount := src.FrameCount()
	sem := semaphore.NewWeighted(int64(prefetchDepth))
	decoded := make(chan decodedFrame, prefetchDepth)
	errCh := make(chan error, 1)

	go func() {
		defer close(decoded)
		for i := 0; ; i++ {
			if err := sem.Acquire(ctx, 1); err != nil {
				errCh <- aqerrors.New(aqerrors.Cancelled, "video.Driver.Run", err)
				return
			}
			frame, ok, err := src.Next(ctx)
			if err != nil {
				sem.Release(1)
				errCh <- aqerrors.New(aqerrors.InvalidInput, "video.Driver.Run", err)
				return
			}
			if !ok {
				sem.Release(1)
				return
			}
			decoded <- decodedFrame{index: i, img: frame}
		}
	}()

	for frame := range decoded {
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return aqerrors.New(aqerrors.Cancelled, "video.Driver.Run", ctx.Err())
		default:
		}

		result, _, err := d.eng.ProcessFrame(ctx, frame.img, config, frame.index, frameCount, cb)
		sem.Release(1)
		if err != nil {
			return err
		}
		if err := dst.Write(ctx, result); err != nil {
			return aqerrors.New(aqerrors.ResourceExhaustion, "video.Driver.Run", err)
		}
	}

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	default:
	}
	return nil
}
