package engine

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"
)

type Column struct {
	Name string
	Type string
}

// Table is the result of one statement. Cells are nil, int64, float64,
// string, bool, time.Time or, for exotic engine types, their string form.
type Table struct {
	Columns []Column
	Rows    [][]any
}

func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Equal reports whether both tables hold the same columns and the same rows
// in the same order. Columns are matched by label, so their order does not
// matter; repeated labels pair up in order of appearance.
func (t *Table) Equal(other *Table) bool {
	return t.equal(other, 0)
}

// EqualApprox is Equal with numeric cells allowed to differ by eps, scaled
// by the larger magnitude once it exceeds 1. Engines round aggregates over
// REAL columns differently, so cross-engine checks use this form.
func (t *Table) EqualApprox(other *Table, eps float64) bool {
	return t.equal(other, eps)
}

func (t *Table) equal(other *Table, eps float64) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Columns) != len(other.Columns) || len(t.Rows) != len(other.Rows) {
		return false
	}
	mapping, ok := alignColumns(t.Columns, other.Columns)
	if !ok {
		return false
	}
	for i, row := range t.Rows {
		otherRow := other.Rows[i]
		if len(row) != len(t.Columns) || len(otherRow) != len(other.Columns) {
			return false
		}
		for j, v := range row {
			if !valuesEqual(v, otherRow[mapping[j]], eps) {
				return false
			}
		}
	}
	return true
}

// alignColumns maps each column index of a to the matching column index of b.
func alignColumns(a, b []Column) ([]int, bool) {
	positions := map[string][]int{}
	for i, c := range b {
		positions[c.Name] = append(positions[c.Name], i)
	}
	mapping := make([]int, len(a))
	for i, c := range a {
		idx := positions[c.Name]
		if len(idx) == 0 {
			return nil, false
		}
		mapping[i] = idx[0]
		positions[c.Name] = idx[1:]
	}
	return mapping, true
}

func valuesEqual(a, b any, eps float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ai, ok := a.(int64); ok {
		if bi, ok := b.(int64); ok {
			return ai == bi
		}
	}
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		if !ok {
			return false
		}
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		if af == bf {
			return true
		}
		if eps <= 0 {
			return false
		}
		scale := math.Max(1, math.Max(math.Abs(af), math.Abs(bf)))
		return math.Abs(af-bf) <= eps*scale
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// normalizeValue folds driver scan results into the cell types Table documents.
func normalizeValue(d dialect, v any) any {
	if v == nil {
		return nil
	}
	if d != nil {
		if out, ok := d.normalize(v); ok {
			return out
		}
	}
	switch x := v.(type) {
	case []byte:
		return string(x)
	case string, bool, int64, float64, time.Time:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return new(big.Int).SetUint64(x).String()
		}
		return int64(x)
	case float32:
		return float64(x)
	case *big.Int:
		if x.IsInt64() {
			return x.Int64()
		}
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
