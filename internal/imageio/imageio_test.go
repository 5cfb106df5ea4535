package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/dotsoulja/aqualens/internal/pixelops"
)

func TestEncodePNGDecodeRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}

	img, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Width != 6 || img.Height != 4 {
		t.Fatalf("expected 6x4, got %dx%d", img.Width, img.Height)
	}

	var out bytes.Buffer
	if err := EncodePNG(&out, img); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	decoded, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("png.Decode of our own output failed: %v", err)
	}
	if decoded.Bounds().Dx() != 6 || decoded.Bounds().Dy() != 4 {
		t.Fatalf("expected round-tripped PNG to keep dimensions, got %v", decoded.Bounds())
	}
}

func TestDecode_RejectsGarbageInput(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")))
	if err == nil {
		t.Fatal("expected garbage input to fail decoding")
	}
}

func TestEncodePNG_ClampsOutOfRangeValues(t *testing.T) {
	img := pixelops.New(1, 1)
	img.Set(0, 0, 1.5, -0.5, 2.0)
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	r, g, b, _ := decoded.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 255 {
		t.Fatalf("expected out-of-range channels to clamp to [0,255], got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}
