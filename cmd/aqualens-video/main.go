package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dotsoulja/aqualens"
	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/imageio"
	"github.com/dotsoulja/aqualens/internal/pixelops"
)

// pngSequenceSource and pngSequenceSink stand in for a real video
// decoder/encoder: a directory of numbered frame_NNNN.png files. Actual
// container demuxing/muxing is out of scope; this exists to exercise
// internal/video end to end, as its own one-binary-per-package command.
type pngSequenceSource struct {
	paths []string
	index int
}

func newPNGSequenceSource(dir string) (*pngSequenceSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".png" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return &pngSequenceSource{paths: paths}, nil
}

func (s *pngSequenceSource) FrameCount() int { return len(s.paths) }

func (s *pngSequenceSource) Next(ctx context.Context) (*pixelops.Image, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.index >= len(s.paths) {
		return nil, false, nil
	}
	path := s.paths[s.index]
	s.index++

	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	img, err := imageio.Decode(f)
	if err != nil {
		return nil, false, err
	}
	return img, true, nil
}

type pngSequenceSink struct {
	dir   string
	index int
}

func (s *pngSequenceSink) Write(ctx context.Context, frame *pixelops.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, fmt.Sprintf("frame_%05d.png", s.index))
	s.index++

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return imageio.EncodePNG(f, frame)
}

func main() {
	start := time.Now()

	inputDir := flag.String("input-dir", "", "directory of frame_NNNN.png frames")
	outputDir := flag.String("output-dir", "", "directory to write enhanced frames")
	flag.Parse()

	if *inputDir == "" || *outputDir == "" {
		log.Fatal("❌ -input-dir and -output-dir are required")
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("❌ Failed to create output dir: %v", err)
	}

	src, err := newPNGSequenceSource(*inputDir)
	if err != nil {
		log.Fatalf("❌ Failed to scan %s: %v", *inputDir, err)
	}
	if src.FrameCount() == 0 {
		log.Fatalf("❌ No PNG frames found in %s", *inputDir)
	}
	log.Printf("🎞️ Found %d frames in %s", src.FrameCount(), *inputDir)

	first, ok, err := src.Next(context.Background())
	if err != nil || !ok {
		log.Fatalf("❌ Failed to read first frame: %v", err)
	}
	src.index = 0

	eng := aqualens.New()
	eng.LoadSource(first)
	eng.GlobalAutoTune(true)
	log.Printf("🌊 Water type: %s", eng.WaterType())

	sink := &pngSequenceSink{dir: *outputDir}
	cb := func(messageKey string, percent int) {
		log.Printf("⏳ [%3d%%] %s", percent, messageKey)
	}

	if err := eng.ProcessVideo(context.Background(), src, sink, cb); err != nil {
		if aqerrors.Is(err, aqerrors.Cancelled) {
			log.Println("🛑 Processing cancelled")
			return
		}
		log.Fatalf("❌ Video processing failed: %v", err)
	}

	log.Printf("✅ Wrote %d enhanced frames to %s", sink.index, *outputDir)
	log.Printf("🕒 Total time: %s", time.Since(start))
}
