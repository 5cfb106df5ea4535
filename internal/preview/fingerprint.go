package preview

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/dotsoulja/aqualens/internal/engine"
	"github.com/dotsoulja/aqualens/internal/stages"
)

// Fingerprint is a compact deterministic hash of every stage's enabled
// flag and parameter values, used to validate cached processed images.
type Fingerprint uint64

// ComputeFingerprint hashes config in a stable, stage-and-param-name
// sorted order so the same logical configuration always yields the same
// fingerprint regardless of map iteration order.
func ComputeFingerprint(config *engine.PipelineConfig) Fingerprint {
	h := fnv.New64a()
	for _, id := range stages.Order {
		sc := config.Get(id)
		fmt.Fprintf(h, "%s|%v|", id, sc.Enabled)

		names := make([]string, 0, len(sc.Params))
		for name := range sc.Params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v := sc.Params[name]
			fmt.Fprintf(h, "%s=%d:%g:%d:%v:%s;", name, v.Kind, v.Float, v.Int, v.Bool, v.Enum)
		}
	}
	return Fingerprint(h.Sum64())
}
