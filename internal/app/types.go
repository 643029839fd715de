package app

import (
	"ossql/internal/catalog"
	"ossql/internal/engine"
	"ossql/internal/state"
)

// ExerciseStatus is one catalog row as the learner sees it.
type ExerciseStatus struct {
	Index    int
	Exercise catalog.Exercise
	Unlocked bool
	Solved   bool
	Stats    state.ExerciseStats
}

// VerifyIssue is a problem found while replaying expected queries.
type VerifyIssue struct {
	ExerciseID string
	Engine     engine.Kind
	Problem    string
}

func (i VerifyIssue) String() string {
	if i.Engine == "" {
		return i.ExerciseID + ": " + i.Problem
	}
	return i.ExerciseID + " [" + string(i.Engine) + "]: " + i.Problem
}

type VerifyReport struct {
	Exercises int
	Engines   []engine.Kind
	Issues    []VerifyIssue
}

func (r VerifyReport) OK() bool { return len(r.Issues) == 0 }
