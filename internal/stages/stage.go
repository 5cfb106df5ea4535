package stages

import (
	"github.com/dotsoulja/aqualens/internal/pixelops"
	"github.com/dotsoulja/aqualens/internal/scenesig"
)

// Stage is the common contract all six pipeline transforms implement:
// typed parameters with declared bounds, a pure Apply, and an auto-tune
// routine driven by a precomputed scene signature. Stage implementations
// never read or write the enabled flag themselves — that lives in the
// engine's PipelineConfig.
type Stage interface {
	ID() StageID
	Describe() string
	Bounds() map[string]Bound
	DefaultParams() Params
	// Apply transforms img using params, returning a new image of the
	// same dimensions with every channel clamped to [0,1].
	Apply(img *pixelops.Image, params Params) (*pixelops.Image, error)
	// AutoTune derives parameters from a precomputed scene signature. It
	// must be pure: the same signature always yields the same params,
	// independent of any prior pipeline output.
	AutoTune(img *pixelops.Image, sig *scenesig.Signature) (Params, error)
}

// Registry returns every stage in fixed pipeline order, fresh instances
// with no shared mutable state.
func Registry() []Stage {
	return []Stage{
		NewWhiteBalance(),
		NewUDCP(),
		NewBeerLambert(),
		NewColorRebalance(),
		NewCLAHE(),
		NewMultiscaleFusion(),
	}
}
