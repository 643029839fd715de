package grading

import (
	"context"
	"strings"

	"ossql/internal/catalog"
	"ossql/internal/engine"
)

type Validator struct {
	opts Options
}

func NewValidator(opts Options) *Validator {
	return &Validator{opts: opts}
}

// Evaluate checks query against ex on eng. The submission runs first; the
// expected query only runs once the submission succeeded.
func (v *Validator) Evaluate(ctx context.Context, query string, ex catalog.Exercise, eng engine.Engine) Outcome {
	if missing := v.MissingClauses(query, ex); len(missing) > 0 {
		return Outcome{Kind: RejectedMissingClause, Missing: missing}
	}

	got, err := eng.Run(ctx, query)
	if err != nil {
		return Outcome{Kind: ExecutionError, Message: err.Error()}
	}

	want, err := eng.Run(ctx, ex.ExpectedQuery)
	if err != nil {
		if v.opts.Logger != nil {
			v.opts.Logger.Error("grading.expected_query_failed", map[string]any{
				"exercise": ex.ID,
				"engine":   string(eng.Kind()),
				"error":    err.Error(),
			})
		}
		return Outcome{Kind: ExecutionError, Message: "expected query for " + ex.ID + " failed: " + err.Error()}
	}

	if got.Equal(want) {
		return Outcome{Kind: Accepted, Result: got}
	}
	return Outcome{Kind: RejectedWrongResult, Result: got}
}

// MissingClauses lists the required clauses absent from query, in order.
// Matching is a plain substring test on the upper-cased query.
func (v *Validator) MissingClauses(query string, ex catalog.Exercise) []string {
	upper := strings.ToUpper(query)
	var missing []string
	for _, clause := range v.required(ex) {
		if !strings.Contains(upper, clause) {
			missing = append(missing, clause)
		}
	}
	return missing
}

func (v *Validator) required(ex catalog.Exercise) []string {
	out := append([]string(nil), ex.Mandatory...)
	if !v.opts.RequireFrom {
		return out
	}
	for _, c := range out {
		if c == "FROM" {
			return out
		}
	}
	return append(out, "FROM")
}
