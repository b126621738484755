package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/imageproc"
	"github.com/joseph-ayodele/formfill/internal/ocr"
)

// TextSource reads the best text out of an image. *ocr.Selector implements it.
type TextSource interface {
	Best(ctx context.Context, img []byte) (ocr.Selection, error)
}

type OCRStage struct {
	Source TextSource
	Logger *slog.Logger
}

func NewOCRStage(src TextSource, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStage{Source: src, Logger: logger}
}

// Run validates the image then runs the OCR variants. Undecodable bytes are
// reported as common.ErrInvalidImage, an empty read as common.ErrOCRFailed.
func (s *OCRStage) Run(ctx context.Context, img []byte) (ocr.Selection, error) {
	start := time.Now()
	if _, err := imageproc.Decode(img); err != nil {
		return ocr.Selection{}, fmt.Errorf("%w: %v", common.ErrInvalidImage, err)
	}
	if s.Source == nil {
		return ocr.Selection{}, fmt.Errorf("%w: no ocr engine configured", common.ErrOCRFailed)
	}

	sel, err := s.Source.Best(ctx, img)
	if err != nil {
		if errors.Is(err, ocr.ErrNoText) {
			return ocr.Selection{}, fmt.Errorf("%w: %v", common.ErrOCRFailed, err)
		}
		return ocr.Selection{}, err
	}
	s.Logger.Debug("ocr stage done",
		"request_id", common.RequestIDFromContext(ctx),
		"method", sel.Method,
		"chars", len(sel.Text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return sel, nil
}
