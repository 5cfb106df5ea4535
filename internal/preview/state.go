// Package preview maintains the two live representations of the current
// source image — a downsampled preview and the full-resolution original —
// and caches their processed results behind a ConfigFingerprint so
// interactive display never reprocesses the same configuration twice.
package preview

import (
	"context"
	"sync"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/engine"
	"github.com/dotsoulja/aqualens/internal/pixelops"
)

// maxPreviewSide is the longest-side cap for the downsampled preview:
// max(H', W') <= 1024.
const maxPreviewSide = 1024

// State holds the source image, its downsampled preview, and the two
// independent processed-image caches (preview and full resolution). Its
// cache invariants are enforced by SetSource, Invalidate, and the
// double-checked-locked install in getProcessed.
type State struct {
	mu sync.Mutex

	source        *pixelops.Image
	sourcePreview *pixelops.Image
	scaleFactor   float64

	processedPreview     *pixelops.Image
	processedPreviewFp   Fingerprint
	processedPreviewSet  bool

	processedFull    *pixelops.Image
	processedFullFp  Fingerprint
	processedFullSet bool
}

// New builds an empty State; SetSource must be called before any
// GetProcessed* call.
func New() *State { return &State{} }

// SetSource replaces the source image, resets every cache, and
// recomputes source_preview.
func (s *State) SetSource(img *pixelops.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = img
	preview, scale := img.DownsampleAreaAverage(maxPreviewSide)
	s.sourcePreview = preview
	s.scaleFactor = scale

	s.processedPreview = nil
	s.processedPreviewSet = false
	s.processedFull = nil
	s.processedFullSet = false
}

// Invalidate clears both processed caches without touching the source.
func (s *State) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processedPreview = nil
	s.processedPreviewSet = false
	s.processedFull = nil
	s.processedFullSet = false
}

// ScaleFactor reports the ratio applied to derive source_preview from
// source.
func (s *State) ScaleFactor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scaleFactor
}

// SourcePreview returns the cached downsampled source.
func (s *State) SourcePreview() *pixelops.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourcePreview
}

// GetProcessedPreview returns processed_preview from cache when its
// fingerprint matches config's current fingerprint, else runs eng on
// source_preview, installs the result, and updates the fingerprint.
func (s *State) GetProcessedPreview(ctx context.Context, eng *engine.PipelineEngine, config *engine.PipelineConfig, cb engine.ProgressFunc) (*pixelops.Image, *engine.RunMetadata, error) {
	fp := ComputeFingerprint(config)

	s.mu.Lock()
	if s.processedPreviewSet && s.processedPreviewFp == fp {
		cached := s.processedPreview
		s.mu.Unlock()
		return cached, &engine.RunMetadata{}, nil
	}
	source := s.sourcePreview
	s.mu.Unlock()

	if source == nil {
		return nil, nil, aqerrors.New(aqerrors.InvalidInput, "preview.GetProcessedPreview", errNoSource)
	}

	result, meta, err := eng.Process(ctx, source, config, cb)
	if err != nil {
		return nil, meta, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Double-checked: only install if nothing newer raced us while the
	// engine ran without the lock held.
	freshFp := ComputeFingerprint(config)
	if freshFp == fp {
		s.processedPreview = result
		s.processedPreviewFp = fp
		s.processedPreviewSet = true
	}
	return result, meta, nil
}

// GetProcessedFull mirrors GetProcessedPreview against the full-resolution
// source; its cache is independent of the preview cache.
func (s *State) GetProcessedFull(ctx context.Context, eng *engine.PipelineEngine, config *engine.PipelineConfig, cb engine.ProgressFunc) (*pixelops.Image, *engine.RunMetadata, error) {
	fp := ComputeFingerprint(config)

	s.mu.Lock()
	if s.processedFullSet && s.processedFullFp == fp {
		cached := s.processedFull
		s.mu.Unlock()
		return cached, &engine.RunMetadata{}, nil
	}
	source := s.source
	s.mu.Unlock()

	if source == nil {
		return nil, nil, aqerrors.New(aqerrors.InvalidInput, "preview.GetProcessedFull", errNoSource)
	}

	result, meta, err := eng.Process(ctx, source, config, cb)
	if err != nil {
		return nil, meta, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	freshFp := ComputeFingerprint(config)
	if freshFp == fp {
		s.processedFull = result
		s.processedFullFp = fp
		s.processedFullSet = true
	}
	return result, meta, nil
}

type noSourceErr struct{}

func (noSourceErr) Error() string { return "preview: no source image loaded" }

var errNoSource = noSourceErr{}
