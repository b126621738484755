package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/async"
)

// FSIngestor reads from the local filesystem and hands files to a queue.
// Files whose content was already queued are skipped unless Force is set.
type FSIngestor struct {
	Queue       async.Queue
	Logger      *slog.Logger
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> constants.AllowedExtensions
	Force       bool

	mu   sync.Mutex
	seen map[string]string // sha256 hex -> first path
}

func NewFSIngestor(q async.Queue, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Queue: q, Logger: logger, seen: map[string]string{}}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	out := IngestionResult{SourcePath: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, err
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !allowed(abs, i.exts()) {
		return out, fmt.Errorf("unsupported or missing extension %q", ext)
	}
	out.FileExt = ext

	sum, err := hashFile(abs)
	if err != nil {
		return out, err
	}
	out.HashHex = sum

	if first, dup := i.remember(sum, abs); dup && !i.Force {
		out.Deduplicated = true
		i.Logger.Info("ingest.duplicate", "path", abs, "first", first)
		return out, nil
	}

	out.QueuedAt = time.Now().UTC()
	if err := i.Queue.Enqueue(ctx, async.Job{Path: abs, SubmittedAt: out.QueuedAt}); err != nil {
		i.forget(sum, abs)
		return out, fmt.Errorf("enqueue %s: %w", abs, err)
	}
	return out, nil
}

func (i *FSIngestor) exts() map[string]struct{} {
	if i.AllowedExts != nil {
		return i.AllowedExts
	}
	return constants.AllowedExtensions
}

// remember records sum and reports whether another path already had it.
// Re-ingesting the same path with unchanged content also counts as a duplicate.
func (i *FSIngestor) remember(sum, path string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.seen == nil {
		i.seen = map[string]string{}
	}
	if first, ok := i.seen[sum]; ok {
		return first, true
	}
	i.seen[sum] = path
	return "", false
}

func (i *FSIngestor) forget(sum, path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.seen[sum] == path {
		delete(i.seen, sum)
	}
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
