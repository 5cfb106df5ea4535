package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/dotsoulja/aqualens"
	"github.com/dotsoulja/aqualens/internal/imageio"
)

func main() {
	start := time.Now()

	inputPath := flag.String("input", "", "path to the source image (png/jpeg/bmp/tiff)")
	outputPath := flag.String("output", "enhanced.png", "path to write the enhanced PNG")
	autoTune := flag.Bool("auto-tune", false, "enable auto-tune for every stage before processing")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("❌ -input is required")
	}

	f, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("❌ Failed to open %s: %v", *inputPath, err)
	}
	defer f.Close()

	img, err := imageio.Decode(f)
	if err != nil {
		log.Fatalf("❌ Failed to decode %s: %v", *inputPath, err)
	}
	log.Printf("🌊 Loaded %s (%dx%d)", *inputPath, img.Width, img.Height)

	eng := aqualens.New()
	eng.LoadSource(img)

	if *autoTune {
		log.Println("🎛️ Auto-tune enabled, classifying water type...")
		eng.GlobalAutoTune(true)
		log.Printf("🌊 Water type: %s", eng.WaterType())
	}

	ctx := context.Background()
	cb := func(messageKey string, percent int) {
		log.Printf("⏳ [%3d%%] %s", percent, messageKey)
	}

	full, err := eng.ProcessFull(ctx, cb)
	if err != nil {
		log.Fatalf("❌ Processing failed: %v", err)
	}

	out, err := os.Create(*outputPath)
	if err != nil {
		log.Fatalf("❌ Failed to create %s: %v", *outputPath, err)
	}
	defer out.Close()

	if err := imageio.EncodePNG(out, full); err != nil {
		log.Fatalf("❌ Failed to encode %s: %v", *outputPath, err)
	}
	log.Printf("✅ Wrote enhanced image to %s", *outputPath)

	report, err := eng.AnalyzeQuality(ctx)
	if err != nil {
		log.Printf("⚠️ Quality analysis failed: %v", err)
	} else {
		log.Printf("📊 Quality report: overall=%.2f/10", report.OverallScore)
		for _, check := range report.Checks {
			log.Printf("   • %-28s %.2f/10", check.Name, check.Score)
			for _, rec := range check.Recommendations {
				log.Printf("       ↳ %s", rec)
			}
		}
	}

	log.Printf("🕒 Total time: %s", time.Since(start))
}
