package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/joseph-ayodele/formfill/internal/imageproc"
)

type TesseractConfig struct {
	Binary      string   // binary name or absolute path; if empty -> "tesseract"
	Languages   []string // default ["eng"]
	TessdataDir string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// TesseractCLI runs the tesseract binary, feeding the image on stdin.
type TesseractCLI struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractCLI(cfg TesseractConfig, logger *slog.Logger) *TesseractCLI {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	return &TesseractCLI{cfg: cfg, runner: ExecRunner{Logger: logger}, logger: logger}
}

// WithRunner swaps the command runner.
func (t *TesseractCLI) WithRunner(r Runner) *TesseractCLI {
	t.runner = r
	return t
}

func (t *TesseractCLI) Name() string { return "tesseract" }

// Available reports whether the tesseract binary can be found.
func (t *TesseractCLI) Available() bool {
	_, err := exec.LookPath(t.cfg.Binary)
	return err == nil
}

func (t *TesseractCLI) args(langs []string) []string {
	if len(langs) == 0 {
		langs = t.cfg.Languages
	}
	// tesseract stdin stdout -l <lang>
	args := []string{"stdin", "stdout", "-l", langArg(langs)}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

func (t *TesseractCLI) Recognize(ctx context.Context, req Request) (string, error) {
	img := req.Image
	if len(img) == 0 {
		return "", fmt.Errorf("tesseract: empty image")
	}
	if req.Region != nil {
		cropped, err := imageproc.Transform(img, imageproc.Crop(*req.Region))
		if err != nil {
			return "", fmt.Errorf("tesseract region: %w", err)
		}
		img = cropped
	}

	out, errb, err := t.runner.Run(ctx, img, t.cfg.Binary, t.args(req.Languages)...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return Clean(string(out)), nil
}
