package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/engine"
)

// Load reads a persisted PipelineConfig from path, sniffing the format
// from its extension. Missing keys inherit defaults; unknown keys are
// ignored; a version mismatch is a non-fatal warning.
func Load(path string) (*engine.PipelineConfig, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, aqerrors.New(aqerrors.InvalidParameter, "config.Load", fmt.Errorf("unsupported extension %q", ext))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, aqerrors.New(aqerrors.InvalidInput, "config.Load", err)
	}

	var doc document
	switch ext {
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, aqerrors.New(aqerrors.InvalidParameter, "config.Load", err)
	}

	if doc.Version != currentVersion {
		fmt.Printf("[aqualens][config] warning: %s has version %d, expected %d\n", path, doc.Version, currentVersion)
	}

	return doc.toConfig(), nil
}

// Save marshals cfg to the persisted JSON shape and writes it atomically
// via write-to-temp-then-rename.
func Save(path string, cfg *engine.PipelineConfig) error {
	doc := fromConfig(cfg)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return aqerrors.New(aqerrors.ResourceExhaustion, "config.Save", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return aqerrors.New(aqerrors.ResourceExhaustion, "config.Save", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return aqerrors.New(aqerrors.ResourceExhaustion, "config.Save", err)
	}
	return nil
}
