//go:build nomultiscript

package app

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/ocr"
)

const multiScriptName = "gosseract"

// multiScriptFactory stands in when libtesseract is not linked.
func multiScriptFactory(common.OCRConfig, *slog.Logger) func() (ocr.Engine, error) {
	return func() (ocr.Engine, error) {
		return nil, fmt.Errorf("%w: built with nomultiscript", ocr.ErrEngineUnavailable)
	}
}
