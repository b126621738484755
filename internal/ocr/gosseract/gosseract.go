//go:build !nomultiscript

package gosseract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	gs "github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/formfill/internal/imageproc"
	"github.com/joseph-ayodele/formfill/internal/ocr"
)

// DefaultMinConfidence drops text lines tesseract is less sure about (0..100).
const DefaultMinConfidence = 30

type Config struct {
	Languages     []string
	TessdataDir   string
	MinConfidence float64
}

// Engine wraps a single gosseract client. Clients are not safe for
// concurrent use, so calls are serialized.
type Engine struct {
	mu     sync.Mutex
	client *gs.Client
	cfg    Config
	logger *slog.Logger
}

var _ ocr.Engine = (*Engine)(nil)

func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng", "hin"}
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = DefaultMinConfidence
	}
	c := gs.NewClient()
	if cfg.TessdataDir != "" {
		c.TessdataPrefix = cfg.TessdataDir
	}
	if err := c.SetLanguage(cfg.Languages...); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("set languages: %w", err)
	}
	logger.Debug("gosseract client created", "languages", cfg.Languages, "version", c.Version())
	return &Engine{client: c, cfg: cfg, logger: logger}, nil
}

func (e *Engine) Name() string { return "gosseract" }

func (e *Engine) Recognize(ctx context.Context, req ocr.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	img := req.Image
	if req.Region != nil {
		cropped, err := imageproc.Transform(img, imageproc.Crop(*req.Region))
		if err != nil {
			return "", fmt.Errorf("gosseract region: %w", err)
		}
		img = cropped
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	langs := req.Languages
	if len(langs) == 0 {
		langs = e.cfg.Languages
	}
	if err := e.client.SetLanguage(langs...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gs.RIL_TEXTLINE)
	if err != nil {
		e.logger.Debug("gosseract bounding boxes failed, using plain text", "error", err)
		text, err := e.client.Text()
		if err != nil {
			return "", fmt.Errorf("recognize text: %w", err)
		}
		return ocr.Clean(text), nil
	}

	lines := make([]string, 0, len(boxes))
	var dropped int
	for _, b := range boxes {
		if b.Confidence < e.cfg.MinConfidence {
			dropped++
			continue
		}
		if w := strings.TrimSpace(b.Word); w != "" {
			lines = append(lines, w)
		}
	}
	e.logger.Debug("gosseract lines", "kept", len(lines), "dropped", dropped)
	return ocr.Clean(strings.Join(lines, "\n")), nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
