package engine

import (
	"context"
	"io/fs"

	"ossql/internal/dataset"
)

// Engine is implemented only by SQLiteEngine and DuckDBEngine.
type Engine interface {
	Kind() Kind
	Load(ctx context.Context, fsys fs.FS, csvPath, table string) error
	Run(ctx context.Context, query string) (*Table, error)
	Close() error

	dialect() dialect
}

type dialect interface {
	kind() Kind
	driverName() string
	dsn() string
	replaceTable(table string, columns []dataset.Column) []string
	normalize(v any) (any, bool)
}
