package ocr

import (
	"context"
	"errors"
	"image"
	"regexp"
	"strings"
)

var (
	// ErrEngineUnavailable is returned by engines whose backend could not be
	// initialized (binary missing, tessdata absent, ...).
	ErrEngineUnavailable = errors.New("ocr engine unavailable")
	// ErrNoText is returned by the selector when no variant produced usable text.
	ErrNoText = errors.New("ocr produced no usable text")
)

// Request is a single OCR call.
type Request struct {
	// Image holds encoded image bytes (PNG, JPEG, ...).
	Image []byte
	// Region restricts recognition to part of the image, in pixels.
	Region *image.Rectangle
	// Languages are tesseract language codes; empty means the engine default.
	Languages []string
}

// Engine recognizes text in an image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, req Request) (string, error)
}

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^[ \t]*[_\-]{3,}[ \t]*$`)
)

// Clean collapses noisy whitespace in engine output and drops ruler lines.
// Line breaks are kept since the extractors work line by line.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func langArg(langs []string) string {
	return strings.Join(langs, "+")
}
