package grading

import (
	"context"

	"ossql/internal/catalog"
	"ossql/internal/engine"
)

type Evaluator interface {
	Evaluate(ctx context.Context, query string, ex catalog.Exercise, eng engine.Engine) Outcome
}

// Logger receives packaging problems such as an expected query that no
// longer runs.
type Logger interface {
	Error(msg string, fields map[string]any)
}
