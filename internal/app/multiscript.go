//go:build !nomultiscript

package app

import (
	"log/slog"

	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/ocr"
	"github.com/joseph-ayodele/formfill/internal/ocr/gosseract"
)

const multiScriptName = "gosseract"

func multiScriptFactory(cfg common.OCRConfig, logger *slog.Logger) func() (ocr.Engine, error) {
	return func() (ocr.Engine, error) {
		eng, err := gosseract.New(gosseract.Config{
			Languages:     cfg.MultiScriptLanguages,
			TessdataDir:   cfg.TessdataDir,
			MinConfidence: cfg.MinLineConfidence,
		}, logger)
		if err != nil {
			return nil, err
		}
		return eng, nil
	}
}
