// Package config loads and saves PipelineConfig as a JSON wire format,
// and loads the five water-type YAML presets via the same
// extension-sniffing and defaults-application pattern.
package config

import (
	"github.com/dotsoulja/aqualens/internal/engine"
	"github.com/dotsoulja/aqualens/internal/stages"
)

const currentVersion = 1

// document is the shared wire shape for both persisted configuration and
// presets, so the two unmarshal/clamp/default paths never drift.
type document struct {
	Version int                        `json:"version" yaml:"version"`
	Stages  map[string]stageDocument   `json:"stages" yaml:"stages"`
}

type stageDocument struct {
	Enabled  bool                   `json:"enabled" yaml:"enabled"`
	AutoTune bool                   `json:"auto_tune" yaml:"auto_tune"`
	Params   map[string]interface{} `json:"params" yaml:"params"`
}

// toConfig builds a PipelineConfig from a document, seeding every stage
// with its defaults first so missing keys inherit defaults, then
// overlaying and clamping whatever the document specifies. Unknown stage
// or param keys are ignored.
func (d *document) toConfig() *engine.PipelineConfig {
	cfg := engine.NewPipelineConfig()
	registry := make(map[stages.StageID]stages.Stage, len(stages.Order))
	for _, s := range stages.Registry() {
		registry[s.ID()] = s
	}

	for _, id := range stages.Order {
		stageDoc, ok := d.Stages[string(id)]
		if !ok {
			continue
		}
		cfg.SetEnabled(id, stageDoc.Enabled)
		cfg.SetAutoTuneOn(id, stageDoc.AutoTune)

		stage := registry[id]
		bounds := stage.Bounds()
		params := stage.DefaultParams()
		for name, raw := range stageDoc.Params {
			bound, ok := bounds[name]
			if !ok {
				continue // unknown param key, ignored
			}
			value, ok := decodeValue(bound, raw)
			if !ok {
				continue
			}
			clamped, err := bound.Clamp(value)
			if err != nil {
				continue
			}
			params[name] = clamped
		}
		cfg.SetParams(id, params)
	}
	return cfg
}

// decodeValue converts a loosely-typed decoded JSON/YAML value into the
// ParameterValue shape the bound declares.
func decodeValue(bound stages.Bound, raw interface{}) (stages.ParameterValue, bool) {
	switch bound.Kind {
	case stages.KindFloat:
		switch v := raw.(type) {
		case float64:
			return stages.Float(v), true
		case int:
			return stages.Float(float64(v)), true
		}
	case stages.KindInt:
		switch v := raw.(type) {
		case float64:
			return stages.Int(int(v)), true
		case int:
			return stages.Int(v), true
		}
	case stages.KindBool:
		if v, ok := raw.(bool); ok {
			return stages.Bool(v), true
		}
	case stages.KindEnum:
		if v, ok := raw.(string); ok {
			return stages.Enum(v), true
		}
	}
	return stages.ParameterValue{}, false
}

// fromConfig builds the wire document from a live PipelineConfig, used by
// Save.
func fromConfig(cfg *engine.PipelineConfig) *document {
	doc := &document{Version: currentVersion, Stages: make(map[string]stageDocument, len(stages.Order))}
	for _, id := range stages.Order {
		sc := cfg.Get(id)
		params := make(map[string]interface{}, len(sc.Params))
		for name, v := range sc.Params {
			params[name] = encodeValue(v)
		}
		doc.Stages[string(id)] = stageDocument{
			Enabled:  sc.Enabled,
			AutoTune: sc.AutoTuneOn,
			Params:   params,
		}
	}
	return doc
}

func encodeValue(v stages.ParameterValue) interface{} {
	switch v.Kind {
	case stages.KindFloat:
		return v.Float
	case stages.KindInt:
		return v.Int
	case stages.KindBool:
		return v.Bool
	case stages.KindEnum:
		return v.Enum
	default:
		return nil
	}
}
