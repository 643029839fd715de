package app

import (
	"context"
	"fmt"

	"ossql/internal/engine"
)

// crossEngineTolerance absorbs rounding differences between engines on
// floating point aggregates.
const crossEngineTolerance = 1e-9

// Verify replays every expected query twice on each engine. It reports
// failures, results that change between runs and engines that disagree.
func (a *App) Verify(ctx context.Context) VerifyReport {
	kinds := engine.Kinds()
	report := VerifyReport{Exercises: a.catalog.Len(), Engines: kinds}

	for _, ex := range a.catalog.Exercises() {
		results := map[engine.Kind]*engine.Table{}
		for _, kind := range kinds {
			eng, ok := a.engines[kind]
			if !ok {
				report.Issues = append(report.Issues, VerifyIssue{ExerciseID: ex.ID, Engine: kind, Problem: "engine not loaded"})
				continue
			}
			first, err := eng.Run(ctx, ex.ExpectedQuery)
			if err != nil {
				report.Issues = append(report.Issues, VerifyIssue{ExerciseID: ex.ID, Engine: kind, Problem: err.Error()})
				continue
			}
			second, err := eng.Run(ctx, ex.ExpectedQuery)
			if err != nil {
				report.Issues = append(report.Issues, VerifyIssue{ExerciseID: ex.ID, Engine: kind, Problem: "second run: " + err.Error()})
				continue
			}
			if !first.Equal(second) {
				report.Issues = append(report.Issues, VerifyIssue{ExerciseID: ex.ID, Engine: kind, Problem: "result differs between runs"})
				continue
			}
			results[kind] = first
		}

		var base *engine.Table
		var baseKind engine.Kind
		for _, kind := range kinds {
			t, ok := results[kind]
			if !ok {
				continue
			}
			if base == nil {
				base, baseKind = t, kind
				continue
			}
			if !base.EqualApprox(t, crossEngineTolerance) {
				report.Issues = append(report.Issues, VerifyIssue{
					ExerciseID: ex.ID,
					Problem:    fmt.Sprintf("%s and %s disagree (%d vs %d rows)", baseKind, kind, base.NumRows(), t.NumRows()),
				})
			}
		}
		a.logger.Debug("verify.exercise", map[string]any{"exercise": ex.ID, "engines": len(results)})
	}
	a.logger.Info("verify.done", map[string]any{"exercises": report.Exercises, "issues": len(report.Issues)})
	return report
}
