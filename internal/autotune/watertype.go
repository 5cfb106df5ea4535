// Package autotune computes the scene signature once per source image,
// classifies the water type from it, and drives each enabled stage's
// AutoTune from the shared signature.
package autotune

import "github.com/dotsoulja/aqualens/internal/scenesig"

// WaterTypeTag is the closed set of deterministic scene classifications.
type WaterTypeTag string

const (
	Lake               WaterTypeTag = "lake"
	OceanDeep          WaterTypeTag = "ocean_deep"
	Tropical           WaterTypeTag = "tropical"
	ClearHighContrast  WaterTypeTag = "clear_high_contrast"
	Standard           WaterTypeTag = "standard"
)

// ClassifyWater runs an ordered rule list top to bottom; the first match
// wins.
func ClassifyWater(sig *scenesig.Signature) WaterTypeTag {
	total := sig.ChannelMeans[0] + sig.ChannelMeans[1] + sig.ChannelMeans[2]

	gRatio := channelRatio(sig.ChannelMeans[1], total)
	bRatio := channelRatio(sig.ChannelMeans[2], total)
	rRatio := channelRatio(sig.ChannelMeans[0], total)

	switch {
	case gRatio > 0.4:
		return Lake
	case bRatio < 0.25:
		return OceanDeep
	case rRatio < 0.2:
		return Tropical
	case sig.SobelMagnitudeMean > 0.1 && sig.HistogramSpread > 0.5:
		return ClearHighContrast
	default:
		return Standard
	}
}

func channelRatio(channelMean, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return channelMean / total
}
