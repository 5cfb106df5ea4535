package quality

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/pixelops"
)

type checkFunc func(original, processed *pixelops.Image) CheckResult

// checks lists the seven fixed checks in their fixed run order.
var checks = []checkFunc{
	checkUnrealisticColors,
	checkRedChannelBalance,
	checkSaturationClipping,
	checkColorNoiseAmplification,
	checkHaloArtifacts,
	checkMidtoneBalance,
	checkQualityImprovements,
}

var checkNames = []string{
	"unrealistic_colors",
	"red_channel_balance",
	"saturation_clipping",
	"color_noise_amplification",
	"halo_artifacts",
	"midtone_balance",
	"quality_improvements",
}

// runCheck recovers from a panicking check so one bad check never aborts
// the whole report; it contributes a neutral score for a failed check.
func runCheck(name string, check checkFunc, original, processed *pixelops.Image) (result CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			result = CheckResult{
				Name:            name,
				Score:           5.0,
				Recommendations: []string{"quality check failed to run: " + name},
			}
		}
	}()
	return check(original, processed)
}

// Analyzer runs the fixed battery of quality checks against an
// (original, processed) pair at preview resolution.
type Analyzer struct{}

// New constructs an Analyzer.
func New() *Analyzer { return &Analyzer{} }

// Analyze runs all seven checks concurrently (they are independent pure
// functions) and assembles a Report once all return or the context is
// cancelled.
func (a *Analyzer) Analyze(ctx context.Context, original, processed *pixelops.Image) (*Report, error) {
	if !pixelops.SameShape(original, processed) {
		return nil, aqerrors.New(aqerrors.InvalidInput, "quality.Analyze", errShapeMismatch)
	}

	results := make([]CheckResult, len(checks))
	group, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		i, check := i, check
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return aqerrors.New(aqerrors.Cancelled, "quality.Analyze", err)
			}
			results[i] = runCheck(checkNames[i], check, original, processed)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	overall := clampScore(sum / float64(len(results)))

	return &Report{Checks: results, OverallScore: overall, ComputedAt: time.Now()}, nil
}

type shapeMismatchErr struct{}

func (shapeMismatchErr) Error() string { return "original and processed images have different dimensions" }

var errShapeMismatch = shapeMismatchErr{}
