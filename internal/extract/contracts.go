package extract

import (
	"context"

	"github.com/joseph-ayodele/formfill/internal/ocr"
)

// TextRecognizer runs OCR over image bytes. ocr.Engine implementations
// satisfy it; a nil recognizer disables the image-backed tiers.
type TextRecognizer interface {
	Recognize(ctx context.Context, req ocr.Request) (string, error)
}

// PersonRecognizer returns person-name spans found in text, in document order.
type PersonRecognizer interface {
	Persons(ctx context.Context, text string) ([]string, error)
}
