package app

import (
	"context"
	"testing"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/common"
)

func testConfig() *common.Config {
	return &common.Config{
		OCR: common.OCRConfig{
			Tesseract:            "tesseract",
			Languages:            []string{"eng"},
			HeicConverter:        "magick",
			MultiScript:          true,
			MultiScriptLanguages: []string{"eng", "hin"},
		},
		Templates: common.TemplatesConfig{FuzzyCutoff: 0.65},
		Worker:    common.WorkerConfig{Workers: 1},
	}
}

func TestNewWiresStack(t *testing.T) {
	a, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if got := len(a.Selector.Variants()); got != 6 {
		t.Errorf("selector has %d variants, want 6", got)
	}
	if len(a.Templates.Names()) == 0 {
		t.Error("no templates loaded")
	}

	res, err := a.Processor.ProcessText(context.Background(),
		"INCOME TAX DEPARTMENT\nRAHUL KUMAR\nRAJESH KUMAR\n01/01/1990\nABCDE1234F", nil)
	if err != nil {
		t.Fatalf("ProcessText() error = %v", err)
	}
	if res.CardType != constants.PAN {
		t.Fatalf("CardType = %s, want PAN", res.CardType)
	}
	if got, _ := res.Fields.Get(constants.FieldPAN); got != "ABCDE1234F" {
		t.Errorf("PAN = %q", got)
	}
}

func TestNewWithoutMultiScript(t *testing.T) {
	cfg := testConfig()
	cfg.Templates.Dir = t.TempDir()
	cfg.OCR.MultiScript = false
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := len(a.Selector.Variants()); got != 6 {
		t.Errorf("selector has %d variants, want 6 (accurate falls back to the CLI engine)", got)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := New(nil, nil); err == nil {
		t.Error("New(nil) error = nil")
	}
}
