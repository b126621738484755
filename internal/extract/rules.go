package extract

import (
	"context"
	"log/slog"
)

// OutcomeKind is the state of a single rule tier.
type OutcomeKind int

const (
	// NotFound means the tier ran and matched nothing.
	NotFound OutcomeKind = iota
	// Found means the tier produced a value.
	Found
	// Unavailable means the tier could not run because a collaborator
	// (OCR engine, entity recognizer) is missing or failed.
	Unavailable
)

func (k OutcomeKind) String() string {
	switch k {
	case Found:
		return "found"
	case Unavailable:
		return "unavailable"
	default:
		return "not_found"
	}
}

// Outcome is the result of one rule tier.
type Outcome struct {
	Kind  OutcomeKind
	Value string
	Err   error
}

func found(v string) Outcome {
	if v == "" {
		return Outcome{Kind: NotFound}
	}
	return Outcome{Kind: Found, Value: v}
}

func notFound() Outcome { return Outcome{Kind: NotFound} }

func unavailable(err error) Outcome { return Outcome{Kind: Unavailable, Err: err} }

// Tier is one ordered rule for a field.
type Tier struct {
	Name string
	Run  func(ctx context.Context) Outcome
}

// firstMatch evaluates tiers in order and returns the first Found value.
// Unavailable tiers are logged and treated as NotFound.
func firstMatch(ctx context.Context, logger *slog.Logger, field string, tiers ...Tier) (string, bool) {
	for _, t := range tiers {
		out := t.Run(ctx)
		switch out.Kind {
		case Found:
			logger.Debug("extract.tier.found", "field", field, "tier", t.Name, "value", out.Value)
			return out.Value, true
		case Unavailable:
			logger.Debug("extract.tier.unavailable", "field", field, "tier", t.Name, "error", out.Err)
		}
	}
	logger.Debug("extract.field.missing", "field", field)
	return "", false
}
