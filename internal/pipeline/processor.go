package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/extract"
)

// MethodText marks results whose text was supplied by the caller.
const MethodText = "text"

// ImageLoader reads an image file from disk. *ocr.ImageLoader implements it.
type ImageLoader interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// Result is the outcome of processing one document.
type Result struct {
	RequestID  string                 `json:"request_id" yaml:"request_id"`
	Source     string                 `json:"source,omitempty" yaml:"source,omitempty"`
	MethodUsed string                 `json:"method_used" yaml:"method_used"`
	CardType   constants.DocumentType `json:"card_type" yaml:"card_type"`
	RawText    string                 `json:"raw_text" yaml:"raw_text"`
	Fields     *extract.Result        `json:"fields" yaml:"-"`
	Duration   time.Duration          `json:"-" yaml:"-"`
}

// Supported reports whether an extractor ran for the document.
func (r Result) Supported() bool {
	return r.CardType.Supported() && r.Fields != nil
}

// Processor coordinates OCR, classification and field extraction.
type Processor struct {
	Logger *slog.Logger
	OCR    *OCRStage
	Parse  *ParseStage
	Loader ImageLoader
}

func NewProcessor(logger *slog.Logger, classifier Classifier, extractor FieldExtractor, src TextSource) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger: logger,
		OCR:    NewOCRStage(src, logger),
		Parse:  NewParseStage(classifier, extractor, logger),
	}
}

// WithLoader sets the loader used by ProcessFile.
func (p *Processor) WithLoader(l ImageLoader) *Processor {
	p.Loader = l
	return p
}

// ProcessImage runs OCR over img, classifies the text and extracts fields.
func (p *Processor) ProcessImage(ctx context.Context, img []byte) (Result, error) {
	start := time.Now()
	ctx, id := common.EnsureRequestID(ctx)

	sel, err := p.OCR.Run(ctx, img)
	if err != nil {
		p.Logger.Error("processor.ocr.failed", "request_id", id, "err", err)
		return Result{RequestID: id}, err
	}
	p.Logger.Info("processor.ocr.ok", "request_id", id, "method", sel.Method, "chars", len(sel.Text))

	return p.parse(ctx, id, sel.Method, sel.Text, img, start)
}

// ProcessText classifies caller-supplied OCR text. img is optional and only
// feeds the targeted re-reads of the extractors.
func (p *Processor) ProcessText(ctx context.Context, text string, img []byte) (Result, error) {
	start := time.Now()
	ctx, id := common.EnsureRequestID(ctx)
	return p.parse(ctx, id, MethodText, text, img, start)
}

// ProcessFile reads path and processes it as text (.txt) or as an image.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Result, error) {
	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.TEXT:
		var b []byte
		if b, err = os.ReadFile(path); err != nil {
			return Result{Source: path}, fmt.Errorf("read text: %w", err)
		}
		res, err = p.ProcessText(ctx, string(b), nil)
	case constants.IMAGE:
		if p.Loader == nil {
			return Result{Source: path}, fmt.Errorf("no image loader configured")
		}
		var img []byte
		if img, err = p.Loader.Load(ctx, path); err != nil {
			return Result{Source: path}, err
		}
		res, err = p.ProcessImage(ctx, img)
	default:
		return Result{Source: path}, fmt.Errorf("%w: unsupported extension %q", common.ErrInvalidInput, filepath.Ext(path))
	}
	res.Source = path
	return res, err
}

func (p *Processor) parse(ctx context.Context, id, method, text string, img []byte, start time.Time) (Result, error) {
	res := Result{RequestID: id, MethodUsed: method, RawText: text}

	docType, fields, err := p.Parse.Run(ctx, text, img)
	res.CardType = docType
	res.Duration = time.Since(start)
	if err != nil {
		p.Logger.Error("processor.parse.failed", "request_id", id, "card_type", docType.String(), "err", err)
		return res, err
	}
	res.Fields = fields

	p.Logger.Info("processor.parse.ok",
		"request_id", id,
		"card_type", docType.String(),
		"supported", res.Supported(),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
