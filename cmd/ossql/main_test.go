package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ossql/internal/grading"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExercisesListsCatalog(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "", "--data-dir", dir, "exercises")
	if err != nil {
		t.Fatalf("exercises: %v", err)
	}
	for _, want := range []string{"exercicio-1", "disponível", "bloqueado", "0 de "} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCheckAcceptsExpectedQueryFromStdin(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "select *\nfrom atletas", "--data-dir", dir, "check", "--exercise", "exercicio-1", "--json")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	var res grading.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode result: %v\n%s", err, out)
	}
	if !res.Passed || res.Outcome != grading.Accepted || res.Kind != grading.ResultKind {
		t.Fatalf("unexpected result %+v", res)
	}

	out, err = execute(t, "", "--data-dir", dir, "exercises")
	if err != nil {
		t.Fatalf("exercises: %v", err)
	}
	if !strings.Contains(out, "resolvido") || !strings.Contains(out, "1 de ") {
		t.Fatalf("expected solved exercise after check:\n%s", out)
	}
}

func TestCheckRejectsMissingClause(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "", "--data-dir", dir, "check", "--exercise", "exercicio-1", "--query", "pragma table_info(atletas)")
	if !errors.Is(err, errNotAccepted) {
		t.Fatalf("expected errNotAccepted, got %v", err)
	}
	if !strings.Contains(out, "REPROVADA") || !strings.Contains(out, "SELECT") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCheckRejectsLockedExercise(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "--data-dir", dir, "check", "--exercise", "exercicio-3", "--query", "SELECT 1 FROM atletas")
	if err == nil || !strings.Contains(err.Error(), "locked") {
		t.Fatalf("expected locked error, got %v", err)
	}
}

func TestVerifyBuiltinCatalog(t *testing.T) {
	out, err := execute(t, "", "--data-dir", t.TempDir(), "verify")
	if err != nil {
		t.Fatalf("verify: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "ok: ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestProgressExportImport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "progress.json")

	if err := os.WriteFile(file, []byte(`{"kind":"ossql_progress","schema_version":1,"solved_count":2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "", "--data-dir", dir, "progress", "import", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "progresso importado: 2 de ") {
		t.Fatalf("unexpected output %q", out)
	}

	exported := filepath.Join(t.TempDir(), "out.json")
	if _, err := execute(t, "", "--data-dir", dir, "progress", "export", exported); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"solved_count":2`) {
		t.Fatalf("unexpected export %s", data)
	}

	if err := os.WriteFile(file, []byte(`{"solved_count":-1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "", "--data-dir", dir, "progress", "import", file); err == nil {
		t.Fatalf("expected corrupt import to fail")
	}
}

func TestConfigLayersEnvAndFlags(t *testing.T) {
	t.Setenv("OSSQL_STYLE", "cozy_clean")
	t.Setenv("OSSQL_QUERY_TIMEOUT", "9s")

	opts := &rootOptions{}
	root := newRootCmdWithOptions(opts)
	dir := t.TempDir()
	if err := root.ParseFlags([]string{"--data-dir", dir, "--timeout", "2s", "--require-from=false", "--engine", "duckdb"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := opts.config(root)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.DataDir != dir || cfg.Engine != "duckdb" || cfg.RequireFrom {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.QueryTimeout.String() != "2s" {
		t.Fatalf("expected flag to beat env, got %s", cfg.QueryTimeout)
	}
	if cfg.UI.StyleVariant != "cozy_clean" {
		t.Fatalf("expected env style, got %q", cfg.UI.StyleVariant)
	}
	if cfg.ProgressFile != filepath.Join(dir, "progress.json") {
		t.Fatalf("unexpected progress file %q", cfg.ProgressFile)
	}
}
