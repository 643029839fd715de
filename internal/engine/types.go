package engine

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindDuckDB Kind = "duckdb"
)

func Kinds() []Kind { return []Kind{KindSQLite, KindDuckDB} }

func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(KindSQLite), "sqlite3":
		return KindSQLite, nil
	case string(KindDuckDB), "duck":
		return KindDuckDB, nil
	default:
		return "", fmt.Errorf("unknown engine %q (want sqlite or duckdb)", raw)
	}
}

func (k Kind) Label() string {
	switch k {
	case KindSQLite:
		return "SQLite"
	case KindDuckDB:
		return "DuckDB"
	default:
		return string(k)
	}
}

type Options struct {
	// Timeout bounds a single Run. Zero disables it.
	Timeout time.Duration
}

// LoadError reports a dataset that could not be read or written into an engine.
type LoadError struct {
	Engine Kind
	Table  string
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: load %s into %s: %v", e.Engine, e.Path, e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// QueryError carries the engine's own diagnostic for a failed statement.
type QueryError struct {
	Engine  Kind
	Message string
	Err     error
}

func (e *QueryError) Error() string { return e.Message }

func (e *QueryError) Unwrap() error { return e.Err }
