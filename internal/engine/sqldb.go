package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"ossql/internal/dataset"
)

// sqlDB carries the database/sql plumbing both variants share. mu keeps a
// single Load or Run in flight per engine.
type sqlDB struct {
	d       dialect
	db      *sql.DB
	timeout time.Duration
	mu      sync.Mutex
}

func openSQL(d dialect, opts Options) (*sqlDB, error) {
	db, err := sql.Open(d.driverName(), d.dsn())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.kind(), err)
	}
	// In-memory databases live and die with their connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", d.kind(), err)
	}
	return &sqlDB{d: d, db: db, timeout: opts.Timeout}, nil
}

func (s *sqlDB) Kind() Kind { return s.d.kind() }

func (s *sqlDB) dialect() dialect { return s.d }

func (s *sqlDB) Load(ctx context.Context, fsys fs.FS, csvPath, table string) error {
	ds, err := dataset.Load(fsys, csvPath)
	if err != nil {
		return &LoadError{Engine: s.d.kind(), Table: table, Path: csvPath, Err: err}
	}
	if err := s.loadDataset(ctx, ds, table); err != nil {
		return &LoadError{Engine: s.d.kind(), Table: table, Path: csvPath, Err: err}
	}
	return nil
}

func (s *sqlDB) loadDataset(ctx context.Context, ds *dataset.Dataset, table string) (err error) {
	if strings.TrimSpace(table) == "" {
		return errors.New("table name is required")
	}
	if len(ds.Columns) == 0 {
		return errors.New("dataset has no columns")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range s.d.replaceTable(table, ds.Columns) {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ds.Columns)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(table), placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, row := range ds.Rows {
		if _, err = stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// Run executes query inside a transaction that is always rolled back, so a
// stray write cannot alter the loaded dataset for later submissions. Input
// holding more than one statement is refused before it reaches the driver.
func (s *sqlDB) Run(ctx context.Context, query string) (*Table, error) {
	query, err := singleStatement(query)
	if err != nil {
		return nil, &QueryError{Engine: s.d.kind(), Message: err.Error(), Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.queryError(ctx, err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, s.queryError(ctx, err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, s.queryError(ctx, err)
	}
	out := &Table{Columns: make([]Column, len(colTypes)), Rows: [][]any{}}
	for i, ct := range colTypes {
		out.Columns[i] = Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
	}

	for rows.Next() {
		vals := make([]any, len(colTypes))
		ptrs := make([]any, len(colTypes))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, s.queryError(ctx, err)
		}
		row := make([]any, len(vals))
		for i, v := range vals {
			row[i] = normalizeValue(s.d, v)
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError(ctx, err)
	}
	return out, nil
}

func (s *sqlDB) queryError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &QueryError{
			Engine:  s.d.kind(),
			Message: fmt.Sprintf("query exceeded the %s time limit", s.timeout),
			Err:     ctx.Err(),
		}
	}
	return &QueryError{Engine: s.d.kind(), Message: strings.TrimSpace(err.Error()), Err: err}
}

func (s *sqlDB) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func columnDefs(columns []dataset.Column, typeName func(dataset.ColumnType) string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c.Name) + " " + typeName(c.Type)
	}
	return strings.Join(defs, ", ")
}
