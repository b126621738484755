package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var errEngineClosed = errors.New("engine closed")

// Lazy defers construction of an expensive engine until first use. The
// factory runs at most once; if it fails every call reports
// ErrEngineUnavailable.
type Lazy struct {
	name    string
	factory func() (Engine, error)
	logger  *slog.Logger

	once   sync.Once
	engine Engine
	err    error

	closeOnce sync.Once
	closeErr  error
}

func NewLazy(name string, factory func() (Engine, error), logger *slog.Logger) *Lazy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lazy{name: name, factory: factory, logger: logger}
}

func (l *Lazy) Name() string { return l.name }

func (l *Lazy) get() (Engine, error) {
	l.once.Do(func() {
		l.engine, l.err = l.factory()
		if l.err == nil && l.engine == nil {
			l.err = fmt.Errorf("factory returned no engine")
		}
		if l.err != nil {
			l.logger.Warn("ocr.engine.unavailable", "engine", l.name, "error", l.err)
			return
		}
		l.logger.Info("ocr.engine.ready", "engine", l.name)
	})
	if l.err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEngineUnavailable, l.name, l.err)
	}
	return l.engine, nil
}

// Available initializes the engine if needed and reports whether it is usable.
func (l *Lazy) Available() bool {
	_, err := l.get()
	return err == nil
}

func (l *Lazy) Recognize(ctx context.Context, req Request) (string, error) {
	e, err := l.get()
	if err != nil {
		return "", err
	}
	return e.Recognize(ctx, req)
}

// Close releases the underlying engine when it was initialized and supports
// it. An engine that was never built stays unbuilt and later calls report
// ErrEngineUnavailable.
func (l *Lazy) Close() error {
	l.closeOnce.Do(func() {
		l.once.Do(func() {
			l.err = errEngineClosed
		})
		if l.engine == nil {
			return
		}
		if c, ok := l.engine.(interface{ Close() error }); ok {
			l.closeErr = c.Close()
		}
	})
	return l.closeErr
}
