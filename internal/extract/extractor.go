package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/common"
)

// Options wires the optional collaborators of an Extractor.
type Options struct {
	Logger *slog.Logger
	// OCR is the primary engine used for the Aadhaar bottom-band pass.
	OCR TextRecognizer
	// Accurate is the multi-script engine used for the Voter ID re-read.
	Accurate TextRecognizer
	// Persons backs the entity tiers of the Aadhaar name rules.
	Persons PersonRecognizer
	// AccurateLanguages are passed to the Accurate engine; empty means its default.
	AccurateLanguages []string
}

// Extractor turns OCR text of a classified document into a Result. It holds
// no per-call state and is safe for concurrent use.
type Extractor struct {
	logger   *slog.Logger
	ocr      TextRecognizer
	accurate TextRecognizer
	persons  PersonRecognizer
	accLangs []string
}

func New(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger:   logger,
		ocr:      opts.OCR,
		accurate: opts.Accurate,
		persons:  opts.Persons,
		accLangs: opts.AccurateLanguages,
	}
}

// Extract routes raw text to the extractor for docType.
func (e *Extractor) Extract(ctx context.Context, docType constants.DocumentType, raw string, image []byte) (*Result, error) {
	switch docType {
	case constants.Aadhaar:
		return e.Aadhaar(ctx, raw, image), nil
	case constants.PAN:
		return e.PAN(ctx, raw, image), nil
	case constants.VoterID:
		return e.Voter(ctx, raw, image), nil
	default:
		return nil, fmt.Errorf("extract %s: %w", docType, common.ErrUnsupportedDocument)
	}
}

func (e *Extractor) logDone(ctx context.Context, r *Result) {
	e.logger.Info("extract.done",
		"request_id", common.RequestIDFromContext(ctx),
		"card_type", r.Type.String(),
		"found", r.Found(),
		"fields", len(r.keys),
	)
}
