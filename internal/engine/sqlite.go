package engine

import (
	"fmt"

	"ossql/internal/dataset"

	_ "modernc.org/sqlite"
)

// SQLiteEngine is the row-store variant.
type SQLiteEngine struct {
	*sqlDB
}

func NewSQLite(opts Options) (*SQLiteEngine, error) {
	db, err := openSQL(sqliteDialect{}, opts)
	if err != nil {
		return nil, err
	}
	return &SQLiteEngine{sqlDB: db}, nil
}

type sqliteDialect struct{}

func (sqliteDialect) kind() Kind         { return KindSQLite }
func (sqliteDialect) driverName() string { return "sqlite" }
func (sqliteDialect) dsn() string        { return ":memory:" }

func (sqliteDialect) replaceTable(table string, columns []dataset.Column) []string {
	return []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(table)),
		fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), columnDefs(columns, sqliteType)),
	}
}

func (sqliteDialect) normalize(any) (any, bool) { return nil, false }

func sqliteType(t dataset.ColumnType) string {
	switch t {
	case dataset.Integer, dataset.Boolean:
		return "INTEGER"
	case dataset.Real:
		return "REAL"
	default:
		return "TEXT"
	}
}
