package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/formfill/constants"
)

// ImageLoader reads document images from disk. HEIC/HEIF photos are
// converted to PNG with an external converter first.
type ImageLoader struct {
	runner    Runner
	logger    *slog.Logger
	converter string // "heif-convert" | "magick" | "sips"
	cacheDir  string
}

func NewImageLoader(converter, cacheDir string, logger *slog.Logger) *ImageLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageLoader{runner: ExecRunner{Logger: logger}, logger: logger, converter: converter, cacheDir: cacheDir}
}

// WithRunner swaps the command runner.
func (l *ImageLoader) WithRunner(r Runner) *ImageLoader {
	l.runner = r
	return l
}

// Load returns the image bytes at path, converting HEIC to PNG.
func (l *ImageLoader) Load(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if !constants.IsHEICExt(filepath.Ext(path)) {
		return data, nil
	}
	sum := sha256.Sum256(data)
	out, cleanup, err := l.convertHEIC(ctx, path, hex.EncodeToString(sum[:]))
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		l.logger.Error("heic conversion failed", "path", path, "error", err)
		return nil, err
	}
	return os.ReadFile(out)
}

// convertHEIC converts a HEIC/HEIF file to PNG. With a cache directory the PNG
// is persisted (and reused) at {cacheDir}/{hash}.png and cleanup is nil;
// otherwise a temp directory is used and cleanup removes it.
func (l *ImageLoader) convertHEIC(ctx context.Context, in, hashHex string) (string, func(), error) {
	if l.cacheDir != "" {
		cached := filepath.Join(l.cacheDir, hashHex+".png")
		if st, err := os.Stat(cached); err == nil && !st.IsDir() {
			l.logger.Debug("using cached heic->png", "cache", cached)
			return cached, nil, nil
		}
		if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
			return "", nil, err
		}
	}

	tmpDir, err := os.MkdirTemp("", "ff-heic-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "page.png")

	var args []string
	switch l.converter {
	case "heif-convert", "magick":
		args = []string{in, out}
	case "sips":
		args = []string{"-s", "format", "png", in, "--out", out}
	default:
		return "", cleanup, fmt.Errorf("HEIC not supported: set ocr.heic_converter to one of: heif-convert | magick | sips")
	}
	if _, errb, err := l.runner.Run(ctx, nil, l.converter, args...); err != nil {
		return "", cleanup, fmt.Errorf("%s failed: %w: %s", l.converter, err, truncate(string(errb), 512))
	}
	if _, statErr := os.Stat(out); statErr != nil {
		return "", cleanup, fmt.Errorf("HEIC conversion produced no output: %v", statErr)
	}

	if l.cacheDir == "" {
		return out, cleanup, nil
	}
	cached := filepath.Join(l.cacheDir, hashHex+".png")
	data, err := os.ReadFile(out)
	if err != nil {
		return "", cleanup, err
	}
	if err := os.WriteFile(cached, data, 0o644); err != nil {
		l.logger.Warn("failed to cache heic->png", "cache", cached, "error", err)
		return out, cleanup, nil
	}
	cleanup()
	l.logger.Debug("cached heic->png", "cache", cached)
	return cached, nil, nil
}
