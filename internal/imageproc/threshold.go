package imageproc

import (
	"image"
	"image/color"
)

// Luminance converts img to 8-bit gray.
func Luminance(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g.SetGray(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray))
		}
	}
	return g
}

// Threshold binarizes: pixels brighter than level become white, the rest black.
func Threshold(level uint8) Step {
	return func(img image.Image) image.Image {
		return binarize(Luminance(img), level)
	}
}

// Otsu binarizes with the global threshold that maximizes between-class
// variance.
func Otsu() Step {
	return func(img image.Image) image.Image {
		g := Luminance(img)
		return binarize(g, OtsuLevel(g))
	}
}

// OtsuLevel returns the Otsu threshold of g.
func OtsuLevel(g *image.Gray) uint8 {
	var hist [256]int
	for _, v := range g.Pix {
		hist[v]++
	}
	total := len(g.Pix)
	if total == 0 {
		return 0
	}

	var sumAll float64
	for i, n := range hist {
		sumAll += float64(i * n)
	}

	var (
		sumB, best float64
		wB         int
		level      uint8
	)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sumAll - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = uint8(t)
		}
	}
	return level
}

// AdaptiveMean binarizes each pixel against the mean of its block x block
// neighbourhood minus c.
func AdaptiveMean(block int, c float64) Step {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	return func(img image.Image) image.Image {
		g := Luminance(img)
		w, h := g.Rect.Dx(), g.Rect.Dy()

		// integral image, (w+1) x (h+1)
		integral := make([]int64, (w+1)*(h+1))
		for y := 1; y <= h; y++ {
			var row int64
			for x := 1; x <= w; x++ {
				row += int64(g.Pix[(y-1)*g.Stride+(x-1)])
				integral[y*(w+1)+x] = integral[(y-1)*(w+1)+x] + row
			}
		}

		r := block / 2
		out := image.NewGray(g.Rect)
		for y := 0; y < h; y++ {
			y0, y1 := max(0, y-r), min(h-1, y+r)
			for x := 0; x < w; x++ {
				x0, x1 := max(0, x-r), min(w-1, x+r)
				sum := integral[(y1+1)*(w+1)+(x1+1)] - integral[y0*(w+1)+(x1+1)] -
					integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
				n := float64((x1 - x0 + 1) * (y1 - y0 + 1))
				if float64(g.Pix[y*g.Stride+x]) > float64(sum)/n-c {
					out.Pix[y*out.Stride+x] = 255
				}
			}
		}
		return out
	}
}

func binarize(g *image.Gray, level uint8) *image.Gray {
	out := image.NewGray(g.Rect)
	for i, v := range g.Pix {
		if v > level {
			out.Pix[i] = 255
		}
	}
	return out
}
