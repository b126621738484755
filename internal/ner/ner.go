// Package ner finds person names in free text.
package ner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jdkato/prose/v2"
)

const personLabel = "PERSON"

// Recognizer tags PERSON entities with prose's averaged-perceptron model.
type Recognizer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{logger: logger}
}

// Persons returns person-name spans in document order.
func (r *Recognizer) Persons(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("ner: %w", err)
	}
	var out []string
	for _, ent := range doc.Entities() {
		if ent.Label != personLabel {
			continue
		}
		if s := strings.TrimSpace(ent.Text); s != "" {
			out = append(out, s)
		}
	}
	r.logger.Debug("ner.persons", "count", len(out))
	return out, nil
}
