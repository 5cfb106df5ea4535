// Package imageio owns the boundary where images cross the engine's API
// surface: decode into the RGB float [0,1] representation pixelops.Image
// uses internally, and encode back out to PNG. Images crossing the API
// surface are always RGB float [0,1]; callers may represent them
// differently internally but must convert at the boundary.
package imageio

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/pixelops"
)

// Decode reads an image in any of PNG, JPEG, or GIF via the stdlib
// format registry, and falls back to golang.org/x/image's bmp/tiff
// decoders for the two formats the stdlib doesn't cover.
func Decode(r io.Reader) (*pixelops.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, aqerrors.New(aqerrors.InvalidInput, "imageio.Decode", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if img, err = bmp.Decode(bytes.NewReader(data)); err != nil {
			if img, err = tiff.Decode(bytes.NewReader(data)); err != nil {
				return nil, aqerrors.New(aqerrors.InvalidInput, "imageio.Decode", err)
			}
		}
	}

	return fromStdImage(img)
}

func fromStdImage(img image.Image) (*pixelops.Image, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 1 || h < 1 {
		return nil, aqerrors.New(aqerrors.InvalidInput, "imageio.Decode", errZeroSize)
	}

	out := pixelops.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.Set(x, y, float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff)
		}
	}

	if out.HasNonFinite() {
		return nil, aqerrors.New(aqerrors.InvalidInput, "imageio.Decode", errNonFinite)
	}
	return out, nil
}

// EncodePNG clamps img to [0,1], converts to 8-bit RGBA, and writes it as
// a PNG.
func EncodePNG(w io.Writer, img *pixelops.Image) error {
	img.Clamp01()
	rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := img.At(x, y)
			i := rgba.PixOffset(x, y)
			rgba.Pix[i] = uint8(r * 255)
			rgba.Pix[i+1] = uint8(g * 255)
			rgba.Pix[i+2] = uint8(b * 255)
			rgba.Pix[i+3] = 255
		}
	}
	if err := png.Encode(w, rgba); err != nil {
		return aqerrors.New(aqerrors.ResourceExhaustion, "imageio.EncodePNG", err)
	}
	return nil
}

var (
	errZeroSize  = zeroSizeErr{}
	errNonFinite = nonFiniteErr{}
)

type zeroSizeErr struct{}

func (zeroSizeErr) Error() string { return "image has zero width or height" }

type nonFiniteErr struct{}

func (nonFiniteErr) Error() string { return "image contains non-finite pixel values" }
