package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/extract"
)

type Classifier interface {
	Classify(raw string) constants.DocumentType
}

type FieldExtractor interface {
	Extract(ctx context.Context, docType constants.DocumentType, raw string, image []byte) (*extract.Result, error)
}

// ParseStage classifies text and runs the matching extractor.
type ParseStage struct {
	Classifier Classifier
	Extractor  FieldExtractor
	Logger     *slog.Logger
}

func NewParseStage(c Classifier, x FieldExtractor, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{Classifier: c, Extractor: x, Logger: logger}
}

// Run returns the document type and, for supported types, its fields. An
// unsupported document is not an error: fields are nil.
func (s *ParseStage) Run(ctx context.Context, raw string, image []byte) (constants.DocumentType, *extract.Result, error) {
	docType := s.Classifier.Classify(raw)
	if !docType.Supported() {
		s.Logger.Warn("processor.unsupported",
			"request_id", common.RequestIDFromContext(ctx),
			"chars", len(raw),
		)
		return docType, nil, nil
	}
	fields, err := s.Extractor.Extract(ctx, docType, raw, image)
	if err != nil {
		return docType, nil, err
	}
	return docType, fields, nil
}
