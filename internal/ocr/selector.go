package ocr

import (
	"context"
	"log/slog"
	"runtime"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/formfill/internal/imageproc"
)

// minVariantChars is the length a variant's output must exceed to compete.
const minVariantChars = 10

// Variant is one OCR configuration: an optional preprocessing chain and the
// engine that reads its output.
type Variant struct {
	Name      string
	Engine    Engine
	Prepare   func([]byte) ([]byte, error) // nil sends the image unchanged
	Languages []string
}

// Selection is the winning variant output.
type Selection struct {
	Method string
	Text   string
}

// Selector runs several OCR variants over the same image and keeps the
// output with the most alphanumeric content.
type Selector struct {
	logger   *slog.Logger
	variants []Variant
	limit    int
}

func NewSelector(logger *slog.Logger, variants ...Variant) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{logger: logger, variants: variants, limit: runtime.NumCPU()}
}

// Prepare builds a Variant.Prepare from image steps.
func Prepare(steps ...imageproc.Step) func([]byte) ([]byte, error) {
	return func(b []byte) ([]byte, error) {
		return imageproc.Transform(b, steps...)
	}
}

// DefaultVariants returns the standard variant set: four preprocessing
// chains on the primary engine plus two multi-script passes when an accurate
// engine is supplied.
func DefaultVariants(primary, accurate Engine, accurateLangs []string) []Variant {
	var vs []Variant
	if primary != nil {
		vs = append(vs,
			Variant{Name: "gray", Engine: primary, Prepare: Prepare(imageproc.Grayscale())},
			Variant{Name: "simple_thresh", Engine: primary, Prepare: Prepare(imageproc.Threshold(150))},
			Variant{Name: "adaptive", Engine: primary, Prepare: Prepare(imageproc.AdaptiveMean(31, 15))},
			Variant{Name: "contrast", Engine: primary, Prepare: Prepare(imageproc.Grayscale(), imageproc.Contrast(1.5))},
		)
	}
	if accurate != nil {
		vs = append(vs,
			Variant{Name: "multiscript", Engine: accurate, Languages: accurateLangs,
				Prepare: Prepare(imageproc.Upscale(1.5))},
			Variant{Name: "multiscript-sharp", Engine: accurate, Languages: accurateLangs,
				Prepare: Prepare(imageproc.Sharpen(1), imageproc.AdaptiveMean(31, 2))},
		)
	}
	return vs
}

// Variants returns the configured variant names in order.
func (s *Selector) Variants() []string {
	names := make([]string, len(s.variants))
	for i, v := range s.variants {
		names[i] = v.Name
	}
	return names
}

// Best runs every variant concurrently. Variant failures are logged and
// skipped; ties go to the earlier variant.
func (s *Selector) Best(ctx context.Context, img []byte) (Selection, error) {
	start := time.Now()
	outputs := make([]string, len(s.variants))

	var g errgroup.Group
	g.SetLimit(max(1, s.limit))
	for i, v := range s.variants {
		g.Go(func() error {
			data := img
			if v.Prepare != nil {
				p, err := v.Prepare(img)
				if err != nil {
					s.logger.Warn("ocr.variant.prepare_failed", "variant", v.Name, "error", err)
					return nil
				}
				data = p
			}
			text, err := v.Engine.Recognize(ctx, Request{Image: data, Languages: v.Languages})
			if err != nil {
				s.logger.Warn("ocr.variant.failed", "variant", v.Name, "engine", v.Engine.Name(), "error", err)
				return nil
			}
			outputs[i] = text
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Selection{}, err
	}

	best, bestScore := -1, -1
	for i, text := range outputs {
		if utf8.RuneCountInString(text) <= minVariantChars {
			continue
		}
		if score := alnumCount(text); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		s.logger.Warn("ocr.select.empty", "variants", len(s.variants), "duration_ms", time.Since(start).Milliseconds())
		return Selection{}, ErrNoText
	}
	s.logger.Info("ocr.select.ok",
		"method", s.variants[best].Name,
		"alnum", bestScore,
		"variants", len(s.variants),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Selection{Method: s.variants[best].Name, Text: outputs[best]}, nil
}

func alnumCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
