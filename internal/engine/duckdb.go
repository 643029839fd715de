package engine

import (
	"fmt"

	"ossql/internal/dataset"

	"github.com/marcboeker/go-duckdb"
)

// DuckDBEngine is the columnar, analytic variant.
type DuckDBEngine struct {
	*sqlDB
}

func NewDuckDB(opts Options) (*DuckDBEngine, error) {
	db, err := openSQL(duckdbDialect{}, opts)
	if err != nil {
		return nil, err
	}
	return &DuckDBEngine{sqlDB: db}, nil
}

type duckdbDialect struct{}

func (duckdbDialect) kind() Kind         { return KindDuckDB }
func (duckdbDialect) driverName() string { return "duckdb" }
func (duckdbDialect) dsn() string        { return "" }

func (duckdbDialect) replaceTable(table string, columns []dataset.Column) []string {
	return []string{
		fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", quoteIdent(table), columnDefs(columns, duckdbType)),
	}
}

func (duckdbDialect) normalize(v any) (any, bool) {
	switch x := v.(type) {
	case duckdb.Decimal:
		return x.Float64(), true
	}
	return nil, false
}

func duckdbType(t dataset.ColumnType) string {
	switch t {
	case dataset.Integer:
		return "BIGINT"
	case dataset.Real:
		return "DOUBLE"
	case dataset.Boolean:
		return "BOOLEAN"
	default:
		return "VARCHAR"
	}
}
