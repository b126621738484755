package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func twoTone(w, h int, left, right uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := left
			if x >= w/2 {
				v = right
			}
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Error("expected error for non-image bytes")
	}
	if _, err := Transform([]byte("not an image"), Grayscale()); err == nil {
		t.Error("Transform should propagate decode errors")
	}
}

func TestBottomBand(t *testing.T) {
	out := BottomBand(0.3)(twoTone(100, 100, 0, 255))
	if got := out.Bounds().Dy(); got != 30 {
		t.Errorf("height = %d, want 30", got)
	}
	if got := out.Bounds().Dx(); got != 100 {
		t.Errorf("width = %d, want 100", got)
	}
}

func TestUpscale(t *testing.T) {
	out := Upscale(1.5)(twoTone(10, 20, 0, 255))
	if out.Bounds().Dx() != 15 || out.Bounds().Dy() != 30 {
		t.Errorf("size = %v, want 15x30", out.Bounds().Size())
	}
}

func TestContrastSaturates(t *testing.T) {
	out := Luminance(Contrast(2)(twoTone(4, 1, 100, 200)))
	if got := out.GrayAt(0, 0).Y; got != 200 {
		t.Errorf("left = %d, want 200", got)
	}
	if got := out.GrayAt(3, 0).Y; got != 255 {
		t.Errorf("right = %d, want 255", got)
	}
}

func TestOtsu(t *testing.T) {
	src := twoTone(20, 4, 40, 200)
	if got := OtsuLevel(Luminance(src)); got < 40 || got >= 200 {
		t.Fatalf("OtsuLevel = %d, want in [40, 200)", got)
	}

	out := Luminance(Otsu()(src))
	if v := out.GrayAt(0, 0).Y; v != 0 {
		t.Errorf("dark side = %d, want 0", v)
	}
	if v := out.GrayAt(19, 0).Y; v != 255 {
		t.Errorf("bright side = %d, want 255", v)
	}
}

func TestThreshold(t *testing.T) {
	out := Luminance(Threshold(150)(twoTone(2, 1, 150, 151)))
	if out.GrayAt(0, 0).Y != 0 || out.GrayAt(1, 0).Y != 255 {
		t.Errorf("got %d/%d, want 0/255", out.GrayAt(0, 0).Y, out.GrayAt(1, 0).Y)
	}
}

func TestAdaptiveMean(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 9, 9))
	for i := range img.Pix {
		img.Pix[i] = 220
	}
	img.SetGray(4, 4, color.Gray{Y: 10})

	out := Luminance(AdaptiveMean(31, 15)(img))
	if v := out.GrayAt(4, 4).Y; v != 0 {
		t.Errorf("dark dot = %d, want 0", v)
	}
	if v := out.GrayAt(0, 0).Y; v != 255 {
		t.Errorf("background = %d, want 255", v)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	data := encode(t, twoTone(8, 8, 0, 255))
	out, err := Transform(data, Grayscale(), Contrast(1.5), Sharpen(0.5))
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	img, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode(Transform()) error = %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("width = %d, want 8", img.Bounds().Dx())
	}
}
