// Package dataset reads the exercise CSV into typed columns that both
// engines load identically.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
)

// ErrMalformed reports a CSV that cannot be turned into a relation.
var ErrMalformed = errors.New("malformed csv")

type ColumnType string

const (
	Integer ColumnType = "INTEGER"
	Real    ColumnType = "REAL"
	Boolean ColumnType = "BOOLEAN"
	Text    ColumnType = "TEXT"
)

type Column struct {
	Name string
	Type ColumnType
}

// Dataset is a fully materialised CSV. Row cells hold int64, float64, bool,
// string or nil for NULL, matching the column type.
type Dataset struct {
	Columns []Column
	Rows    [][]any
}

func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

var nullLiterals = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"#n/a": {},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func Load(fsys fs.FS, path string) (*Dataset, error) {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	ds, err := Read(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func Read(r io.Reader) (*Dataset, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimPrefix(body, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(body))
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformed)
	}

	header := records[0]
	seen := map[string]struct{}{}
	cols := make([]Column, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, fmt.Errorf("%w: empty column name at position %d", ErrMalformed, i+1)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformed, name)
		}
		seen[key] = struct{}{}
		cols[i] = Column{Name: name}
	}

	data := records[1:]
	for i := range cols {
		cols[i].Type = inferColumnType(data, i)
	}

	rows := make([][]any, 0, len(data))
	for n, rec := range data {
		row := make([]any, len(cols))
		for i, col := range cols {
			v, err := convertValue(rec[i], col.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %v", ErrMalformed, n+2, col.Name, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return &Dataset{Columns: cols, Rows: rows}, nil
}

// inferColumnType picks the narrowest type every non-null cell satisfies.
// Integers mixed with decimals widen to REAL.
func inferColumnType(records [][]string, idx int) ColumnType {
	votes := map[ColumnType]int{}
	total := 0
	for _, rec := range records {
		val := strings.TrimSpace(rec[idx])
		if isNull(val) {
			continue
		}
		total++
		votes[detectValueType(val)]++
	}
	switch {
	case total == 0:
		return Text
	case votes[Integer] == total:
		return Integer
	case votes[Integer]+votes[Real] == total:
		return Real
	case votes[Boolean] == total:
		return Boolean
	default:
		return Text
	}
}

func detectValueType(val string) ColumnType {
	switch strings.ToLower(val) {
	case "true", "false":
		return Boolean
	}
	if _, err := strconv.ParseInt(val, 10, 64); err == nil {
		return Integer
	}
	if _, err := strconv.ParseFloat(val, 64); err == nil {
		return Real
	}
	return Text
}

func isNull(val string) bool {
	_, ok := nullLiterals[strings.ToLower(strings.TrimSpace(val))]
	return ok
}

func convertValue(raw string, typ ColumnType) (any, error) {
	val := strings.TrimSpace(raw)
	if typ != Text && isNull(val) {
		return nil, nil
	}
	switch typ {
	case Integer:
		return strconv.ParseInt(val, 10, 64)
	case Real:
		return strconv.ParseFloat(val, 64)
	case Boolean:
		return strings.EqualFold(val, "true"), nil
	default:
		if val == "" {
			return nil, nil
		}
		return raw, nil
	}
}
