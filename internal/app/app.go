// Package app wires the extraction stack from configuration. Both binaries
// build on it.
package app

import (
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/formfill/internal/classify"
	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/export"
	"github.com/joseph-ayodele/formfill/internal/extract"
	"github.com/joseph-ayodele/formfill/internal/ner"
	"github.com/joseph-ayodele/formfill/internal/ocr"
	"github.com/joseph-ayodele/formfill/internal/pipeline"
	"github.com/joseph-ayodele/formfill/internal/templates"
)

type App struct {
	Config     *common.Config
	Logger     *slog.Logger
	Classifier *classify.Classifier
	Extractor  *extract.Extractor
	Selector   *ocr.Selector
	Processor  *pipeline.Processor
	Templates  *templates.Registry
	Exporter   *export.Service

	closers []func() error
}

// New builds the stack. The multi-script engine is created lazily on first
// use. It links against libtesseract unless the binary is built with the
// nomultiscript tag, in which case the passes that need it report the engine
// as unavailable.
func New(cfg *common.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	tess := ocr.NewTesseractCLI(ocr.TesseractConfig{
		Binary:      cfg.OCR.Tesseract,
		Languages:   cfg.OCR.Languages,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         cfg.OCR.PSM,
		OEM:         cfg.OCR.OEM,
	}, logger)
	if !tess.Available() {
		logger.Warn("ocr.engine.unavailable", "engine", tess.Name(), "binary", cfg.OCR.Tesseract)
	}

	var accurate ocr.Engine = tess
	if cfg.OCR.MultiScript {
		lazy := ocr.NewLazy(multiScriptName, multiScriptFactory(cfg.OCR, logger), logger)
		a.closers = append(a.closers, lazy.Close)
		accurate = lazy
	}

	opts := extract.Options{
		Logger:            logger,
		OCR:               tess,
		Accurate:          accurate,
		AccurateLanguages: cfg.OCR.MultiScriptLanguages,
	}
	if cfg.OCR.PersonNER {
		opts.Persons = ner.New(logger)
	}
	a.Extractor = extract.New(opts)
	a.Classifier = classify.New(logger)
	a.Selector = ocr.NewSelector(logger, ocr.DefaultVariants(tess, accurate, cfg.OCR.MultiScriptLanguages)...)
	a.Processor = pipeline.NewProcessor(logger, a.Classifier, a.Extractor, a.Selector).
		WithLoader(ocr.NewImageLoader(cfg.OCR.HeicConverter, cfg.OCR.ArtifactCacheDir, logger))

	reg, err := templates.NewRegistry(cfg.Templates.Dir, logger, templates.WithCutoff(cfg.Templates.FuzzyCutoff))
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Templates = reg
	a.Exporter = export.NewService(logger)
	return a, nil
}

// Close releases the OCR engines.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
