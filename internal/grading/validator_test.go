package grading

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ossql/content"
	"ossql/internal/catalog"
	"ossql/internal/engine"
)

type recordingLogger struct{ msgs []string }

func (l *recordingLogger) Error(msg string, fields map[string]any) { l.msgs = append(l.msgs, msg) }

func loadedEngine(t *testing.T, kind engine.Kind) engine.Engine {
	t.Helper()
	e, err := engine.Open(kind, engine.Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("open %s: %v", kind, err)
	}
	t.Cleanup(func() { _ = e.Close() })
	if err := e.Load(context.Background(), content.FS, "data/atletas.csv", "atletas"); err != nil {
		t.Fatalf("load: %v", err)
	}
	return e
}

func builtinExercise(t *testing.T, id string) catalog.Exercise {
	t.Helper()
	c, err := catalog.Load(content.FS, content.Manifest)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	ex, err := c.Get(id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return ex
}

func TestEvaluateAcceptsExpectedQueryOnBothEngines(t *testing.T) {
	c, err := catalog.Load(content.FS, content.Manifest)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	v := NewValidator(Options{RequireFrom: true})
	for _, kind := range engine.Kinds() {
		eng := loadedEngine(t, kind)
		for _, ex := range c.Exercises() {
			out := v.Evaluate(context.Background(), ex.ExpectedQuery, ex, eng)
			if out.Kind != Accepted {
				t.Fatalf("%s/%s: expected accepted, got %s %q", kind, ex.ID, out.Kind, out.Message)
			}
			if out.Result == nil || out.Result.NumRows() == 0 {
				t.Fatalf("%s/%s: expected a result table", kind, ex.ID)
			}
		}
	}
}

func TestEvaluateLowerCaseSubmissionPassesClauseCheck(t *testing.T) {
	ex := builtinExercise(t, "exercicio-2")
	eng := loadedEngine(t, engine.KindSQLite)
	out := NewValidator(Options{RequireFrom: true}).Evaluate(context.Background(), "select * from atletas where faixa = 'preta'", ex, eng)
	if out.Kind != Accepted {
		t.Fatalf("expected accepted, got %s %q", out.Kind, out.Message)
	}
}

func TestEvaluateMissingClauseDoesNotExecute(t *testing.T) {
	ex := builtinExercise(t, "exercicio-2")
	eng := loadedEngine(t, engine.KindSQLite)
	// The query would fail to run; the clause check must reject it first.
	out := NewValidator(Options{RequireFrom: true}).Evaluate(context.Background(), "SELECT * FROM nao_existe", ex, eng)
	if out.Kind != RejectedMissingClause {
		t.Fatalf("expected missing clause, got %s", out.Kind)
	}
	if len(out.Missing) != 1 || out.Missing[0] != "WHERE" {
		t.Fatalf("unexpected missing clauses %v", out.Missing)
	}
	if out.Result != nil {
		t.Fatalf("missing clause outcome must not carry a result")
	}
}

func TestEvaluateRequireFrom(t *testing.T) {
	ex := catalog.Exercise{ID: "x", ExpectedQuery: "SELECT 1 AS n", Mandatory: []string{"SELECT"}}
	eng := loadedEngine(t, engine.KindSQLite)

	out := NewValidator(Options{RequireFrom: true}).Evaluate(context.Background(), "SELECT 1 AS n", ex, eng)
	if out.Kind != RejectedMissingClause || out.Missing[0] != "FROM" {
		t.Fatalf("expected FROM to be required, got %s %v", out.Kind, out.Missing)
	}

	out = NewValidator(Options{}).Evaluate(context.Background(), "SELECT 1 AS n", ex, eng)
	if out.Kind != Accepted {
		t.Fatalf("expected accepted without FROM requirement, got %s %q", out.Kind, out.Message)
	}
}

func TestEvaluateSubstringMatchIsPermissive(t *testing.T) {
	// "WHERE" inside a string literal satisfies the clause check; the
	// result comparison still decides the verdict.
	ex := builtinExercise(t, "exercicio-2")
	eng := loadedEngine(t, engine.KindSQLite)
	out := NewValidator(Options{RequireFrom: true}).Evaluate(context.Background(), "SELECT *, 'where' AS w FROM atletas", ex, eng)
	if out.Kind != RejectedWrongResult {
		t.Fatalf("expected wrong result, got %s", out.Kind)
	}
}

func TestEvaluateWrongResult(t *testing.T) {
	ex := builtinExercise(t, "exercicio-2")
	for _, kind := range engine.Kinds() {
		eng := loadedEngine(t, kind)
		out := NewValidator(Options{RequireFrom: true}).Evaluate(context.Background(), "SELECT * FROM atletas WHERE faixa = 'azul'", ex, eng)
		if out.Kind != RejectedWrongResult {
			t.Fatalf("%s: expected wrong result, got %s %q", kind, out.Kind, out.Message)
		}
		if out.Result == nil {
			t.Fatalf("%s: wrong result outcome must carry the submission's table", kind)
		}
	}
}

func TestEvaluateColumnOrderIsIgnored(t *testing.T) {
	ex := catalog.Exercise{ID: "x", ExpectedQuery: "SELECT nome, faixa FROM atletas ORDER BY id", Mandatory: []string{"SELECT"}}
	eng := loadedEngine(t, engine.KindDuckDB)
	out := NewValidator(Options{RequireFrom: true}).Evaluate(context.Background(), "SELECT faixa, nome FROM atletas ORDER BY id", ex, eng)
	if out.Kind != Accepted {
		t.Fatalf("expected accepted, got %s %q", out.Kind, out.Message)
	}
}

func TestEvaluateExecutionErrorSkipsExpectedQuery(t *testing.T) {
	logger := &recordingLogger{}
	ex := catalog.Exercise{ID: "x", ExpectedQuery: "SELECT broken FROM", Mandatory: []string{"SELECT"}}
	eng := loadedEngine(t, engine.KindSQLite)
	out := NewValidator(Options{RequireFrom: true, Logger: logger}).Evaluate(context.Background(), "SELECT nada FROM atletas", ex, eng)
	if out.Kind != ExecutionError {
		t.Fatalf("expected execution error, got %s", out.Kind)
	}
	if out.Message == "" || strings.Contains(out.Message, "expected query") {
		t.Fatalf("expected the submission's diagnostic, got %q", out.Message)
	}
	if len(logger.msgs) != 0 {
		t.Fatalf("expected query must not run, logged %v", logger.msgs)
	}
}

func TestEvaluateBrokenExpectedQueryIsReported(t *testing.T) {
	logger := &recordingLogger{}
	ex := catalog.Exercise{ID: "x", ExpectedQuery: "SELECT broken FROM", Mandatory: []string{"SELECT"}}
	eng := loadedEngine(t, engine.KindSQLite)
	out := NewValidator(Options{RequireFrom: true, Logger: logger}).Evaluate(context.Background(), "SELECT * FROM atletas", ex, eng)
	if out.Kind != ExecutionError || !strings.Contains(out.Message, "expected query") {
		t.Fatalf("unexpected outcome %s %q", out.Kind, out.Message)
	}
	if len(logger.msgs) != 1 || logger.msgs[0] != "grading.expected_query_failed" {
		t.Fatalf("unexpected log %v", logger.msgs)
	}
}

func TestNewResultMetadata(t *testing.T) {
	tbl := &engine.Table{Columns: []engine.Column{{Name: "n"}}, Rows: [][]any{{int64(1)}}}
	res := NewResult("exercicio-1", engine.KindDuckDB, Outcome{Kind: Accepted, Result: tbl}, 12*time.Millisecond)
	if res.Kind != ResultKind || res.SchemaVersion != SchemaVersion {
		t.Fatalf("unexpected result metadata: kind=%s schema=%d", res.Kind, res.SchemaVersion)
	}
	if !res.Passed || res.DurationMS != 12 || res.Columns[0] != "n" {
		t.Fatalf("unexpected result %#v", res)
	}
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"outcome":"accepted"`) {
		t.Fatalf("unexpected json %s", b)
	}
}

func TestEvaluateBatchIsExecutionError(t *testing.T) {
	ex := builtinExercise(t, "exercicio-2")
	for _, kind := range engine.Kinds() {
		eng := loadedEngine(t, kind)
		out := NewValidator(Options{RequireFrom: true}).Evaluate(context.Background(),
			"UPDATE atletas SET faixa = 'x'; SELECT * FROM atletas WHERE faixa = 'preta'", ex, eng)
		if out.Kind != ExecutionError {
			t.Fatalf("%s: expected execution error, got %s", kind, out.Kind)
		}
		if out.Message != engine.ErrMultipleStatements.Error() {
			t.Fatalf("%s: unexpected message %q", kind, out.Message)
		}

		out = NewValidator(Options{RequireFrom: true}).Evaluate(context.Background(), ex.ExpectedQuery, ex, eng)
		if out.Kind != Accepted {
			t.Fatalf("%s: expected dataset untouched, got %s", kind, out.Kind)
		}
	}
}

func TestEvaluateTimeoutIsExecutionError(t *testing.T) {
	eng, err := engine.Open(engine.KindSQLite, engine.Options{Timeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer eng.Close()
	if err := eng.Load(context.Background(), content.FS, "data/atletas.csv", "atletas"); err != nil {
		t.Fatalf("load: %v", err)
	}
	ex := catalog.Exercise{ID: "x", ExpectedQuery: "SELECT COUNT(*) FROM atletas", Mandatory: []string{"SELECT"}}
	out := NewValidator(Options{RequireFrom: true}).Evaluate(context.Background(),
		"WITH RECURSIVE r(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM r) SELECT COUNT(*) FROM r", ex, eng)
	if out.Kind != ExecutionError {
		t.Fatalf("expected execution error, got %s", out.Kind)
	}
	if !strings.Contains(out.Message, "time limit") {
		t.Fatalf("unexpected message %q", out.Message)
	}
}
