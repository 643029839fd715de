package grading

import (
	"time"

	"ossql/internal/engine"
)

const (
	ResultKind    = "grader_result"
	SchemaVersion = 1
)

type OutcomeKind string

const (
	Accepted              OutcomeKind = "accepted"
	RejectedMissingClause OutcomeKind = "rejected_missing_clause"
	RejectedWrongResult   OutcomeKind = "rejected_wrong_result"
	ExecutionError        OutcomeKind = "execution_error"
)

// Outcome is the verdict for one submission. Result is set for Accepted and
// RejectedWrongResult, Message for ExecutionError and Missing for
// RejectedMissingClause.
type Outcome struct {
	Kind    OutcomeKind
	Result  *engine.Table
	Message string
	Missing []string
}

func (o Outcome) Accepted() bool { return o.Kind == Accepted }

type Options struct {
	// RequireFrom adds FROM to every exercise's mandatory clauses.
	RequireFrom bool
	Logger      Logger
}

// Result is the machine-readable form of an Outcome.
type Result struct {
	Kind          string `json:"kind"`
	SchemaVersion int    `json:"schema_version"`

	ExerciseID string      `json:"exercise_id"`
	Engine     string      `json:"engine"`
	Outcome    OutcomeKind `json:"outcome"`
	Passed     bool        `json:"passed"`
	Missing    []string    `json:"missing,omitempty"`
	Message    string      `json:"message,omitempty"`
	Columns    []string    `json:"columns,omitempty"`
	Rows       [][]any     `json:"rows,omitempty"`
	DurationMS int64       `json:"duration_ms"`
}

func NewResult(exerciseID string, kind engine.Kind, o Outcome, elapsed time.Duration) Result {
	r := Result{
		Kind:          ResultKind,
		SchemaVersion: SchemaVersion,
		ExerciseID:    exerciseID,
		Engine:        string(kind),
		Outcome:       o.Kind,
		Passed:        o.Accepted(),
		Missing:       o.Missing,
		Message:       o.Message,
		DurationMS:    max(0, elapsed.Milliseconds()),
	}
	if o.Result != nil {
		r.Columns = o.Result.ColumnNames()
		r.Rows = o.Result.Rows
	}
	return r
}
