// Package imageproc holds the image primitives used before OCR: region
// crops, grayscale, contrast boost, global and adaptive binarization,
// sharpening and upscaling.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Step transforms a decoded image.
type Step func(image.Image) image.Image

// Decode decodes JPEG, PNG, GIF, BMP, TIFF and WebP bytes, applying EXIF
// orientation.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode image: empty input")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Transform decodes data, applies steps in order and re-encodes as PNG.
func Transform(data []byte, steps ...Step) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	for _, s := range steps {
		img = s(img)
	}
	return EncodePNG(img)
}

// Crop keeps the part of the image inside r (clipped to the bounds).
func Crop(r image.Rectangle) Step {
	return func(img image.Image) image.Image {
		return imaging.Crop(img, r)
	}
}

// BottomBand keeps the bottom fraction of the image, full width.
func BottomBand(fraction float64) Step {
	return func(img image.Image) image.Image {
		b := img.Bounds()
		top := b.Min.Y + int(float64(b.Dy())*(1-fraction))
		return imaging.Crop(img, image.Rect(b.Min.X, top, b.Max.X, b.Max.Y))
	}
}

func Grayscale() Step {
	return func(img image.Image) image.Image {
		return imaging.Grayscale(img)
	}
}

// Contrast multiplies every channel by alpha, saturating at 255.
func Contrast(alpha float64) Step {
	scale := func(v uint8) uint8 {
		f := float64(v)*alpha + 0.5
		switch {
		case f >= 255:
			return 255
		case f <= 0:
			return 0
		}
		return uint8(f)
	}
	return func(img image.Image) image.Image {
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
		})
	}
}

func Sharpen(sigma float64) Step {
	return func(img image.Image) image.Image {
		return imaging.Sharpen(img, sigma)
	}
}

// Upscale resizes by factor with Catmull-Rom (bicubic) resampling.
func Upscale(factor float64) Step {
	return func(img image.Image) image.Image {
		w := int(float64(img.Bounds().Dx()) * factor)
		h := int(float64(img.Bounds().Dy()) * factor)
		if w <= 0 || h <= 0 {
			return img
		}
		return imaging.Resize(img, w, h, imaging.CatmullRom)
	}
}
