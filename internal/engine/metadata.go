package engine

import "github.com/dotsoulja/aqualens/internal/stages"

// RunMetadata accompanies the image returned by a Process/ProcessFrame
// call. Degraded lists stages whose Apply failed and were skipped
// pass-through; each failing stage is marked degraded in the returned
// metadata rather than aborting the run.
type RunMetadata struct {
	Degraded []stages.StageID
}

func (m *RunMetadata) markDegraded(id stages.StageID) {
	m.Degraded = append(m.Degraded, id)
}
