// Package engine orders and executes the six pipeline stages, holds the
// per-stage parameter store, and distributes progress across enabled
// stages.
package engine

import (
	"github.com/dotsoulja/aqualens/internal/stages"
)

// StageConfig holds one stage's enabled flag, its current (already
// clamped) parameters, and whether auto-tune drives those parameters.
// Enabled and AutoTuneOn are independent of each other.
type StageConfig struct {
	Enabled    bool
	Params     stages.Params
	AutoTuneOn bool
}

// PipelineConfig maps every StageID to its StageConfig. NewPipelineConfig
// guarantees every StageID in stages.Order is present.
type PipelineConfig struct {
	stageConfigs map[stages.StageID]StageConfig
}

// NewPipelineConfig builds a config seeded with each stage's default
// parameters, enabled, auto-tune off.
func NewPipelineConfig() *PipelineConfig {
	cfg := &PipelineConfig{stageConfigs: make(map[stages.StageID]StageConfig, len(stages.Order))}
	for _, stage := range stages.Registry() {
		cfg.stageConfigs[stage.ID()] = StageConfig{
			Enabled:    true,
			Params:     stage.DefaultParams(),
			AutoTuneOn: false,
		}
	}
	return cfg
}

// Snapshot returns a deep-enough copy (each stage's Params map is cloned)
// so a running Process is unaffected by concurrent parameter writes: a
// write concurrent with a running process is never observed by that run.
func (c *PipelineConfig) Snapshot() *PipelineConfig {
	out := &PipelineConfig{stageConfigs: make(map[stages.StageID]StageConfig, len(c.stageConfigs))}
	for id, sc := range c.stageConfigs {
		out.stageConfigs[id] = StageConfig{
			Enabled:    sc.Enabled,
			Params:     sc.Params.Clone(),
			AutoTuneOn: sc.AutoTuneOn,
		}
	}
	return out
}

func (c *PipelineConfig) Get(id stages.StageID) StageConfig {
	return c.stageConfigs[id]
}

func (c *PipelineConfig) SetEnabled(id stages.StageID, enabled bool) {
	sc := c.stageConfigs[id]
	sc.Enabled = enabled
	c.stageConfigs[id] = sc
}

func (c *PipelineConfig) SetAutoTuneOn(id stages.StageID, on bool) {
	sc := c.stageConfigs[id]
	sc.AutoTuneOn = on
	c.stageConfigs[id] = sc
}

// SetParams replaces a stage's parameter record outright (used by
// auto-tune, which writes a fresh Params map per stage).
func (c *PipelineConfig) SetParams(id stages.StageID, params stages.Params) {
	sc := c.stageConfigs[id]
	sc.Params = params
	c.stageConfigs[id] = sc
}

// SetParam clamps a single named value against the stage's declared
// bounds and writes it into the stage's parameter record.
func (c *PipelineConfig) SetParam(id stages.StageID, stage stages.Stage, name string, value stages.ParameterValue) error {
	bound, ok := stage.Bounds()[name]
	if !ok {
		return unknownParamError(id, name)
	}
	clamped, err := bound.Clamp(value)
	if err != nil {
		return invalidParamError(id, name, err)
	}
	sc := c.stageConfigs[id]
	if sc.Params == nil {
		sc.Params = stage.DefaultParams()
	} else {
		sc.Params = sc.Params.Clone()
	}
	sc.Params[name] = clamped
	c.stageConfigs[id] = sc
	return nil
}
