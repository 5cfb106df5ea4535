package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/engine"
)

// presetNames mirrors autotune.WaterTypeTag's five values; kept as plain
// strings here so this package doesn't need to import autotune.
var presetNames = map[string]bool{
	"lake":                true,
	"ocean_deep":          true,
	"tropical":            true,
	"clear_high_contrast": true,
	"standard":            true,
}

// LoadPreset loads a named water-type preset from the presets/ directory.
// A preset is a hand-picked starting point; an auto-tune run can still
// override it.
func LoadPreset(name string) (*engine.PipelineConfig, error) {
	if !presetNames[name] {
		return nil, aqerrors.New(aqerrors.InvalidParameter, "config.LoadPreset", fmt.Errorf("unknown preset %q", name))
	}

	path := filepath.Join("presets", name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, aqerrors.New(aqerrors.InvalidInput, "config.LoadPreset", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, aqerrors.New(aqerrors.InvalidParameter, "config.LoadPreset", err)
	}
	return doc.toConfig(), nil
}
