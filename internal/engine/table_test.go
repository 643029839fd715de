package engine

import (
	"math"
	"math/big"
	"testing"
)

func TestTableEqualIgnoresColumnOrder(t *testing.T) {
	a := &Table{
		Columns: []Column{{Name: "nome"}, {Name: "vitorias"}},
		Rows:    [][]any{{"Ana", int64(42)}, {"Bruno", int64(31)}},
	}
	b := &Table{
		Columns: []Column{{Name: "vitorias"}, {Name: "nome"}},
		Rows:    [][]any{{int64(42), "Ana"}, {int64(31), "Bruno"}},
	}
	if !a.Equal(b) || !b.Equal(a) {
		t.Fatalf("expected tables to be equal regardless of column order")
	}
}

func TestTableEqualRespectsRowOrder(t *testing.T) {
	a := &Table{
		Columns: []Column{{Name: "nome"}},
		Rows:    [][]any{{"Ana"}, {"Bruno"}},
	}
	b := &Table{
		Columns: []Column{{Name: "nome"}},
		Rows:    [][]any{{"Bruno"}, {"Ana"}},
	}
	if a.Equal(b) {
		t.Fatalf("expected row order to matter")
	}
}

func TestTableEqualDetectsShapeDifferences(t *testing.T) {
	base := &Table{Columns: []Column{{Name: "a"}}, Rows: [][]any{{int64(1)}}}
	cases := map[string]*Table{
		"extra column":   {Columns: []Column{{Name: "a"}, {Name: "b"}}, Rows: [][]any{{int64(1), int64(2)}}},
		"renamed column": {Columns: []Column{{Name: "b"}}, Rows: [][]any{{int64(1)}}},
		"extra row":      {Columns: []Column{{Name: "a"}}, Rows: [][]any{{int64(1)}, {int64(1)}}},
		"other value":    {Columns: []Column{{Name: "a"}}, Rows: [][]any{{int64(2)}}},
		"null value":     {Columns: []Column{{Name: "a"}}, Rows: [][]any{{nil}}},
		"nil table":      nil,
	}
	for name, other := range cases {
		if base.Equal(other) {
			t.Fatalf("%s: expected tables to differ", name)
		}
	}
}

func TestTableEqualDuplicateLabels(t *testing.T) {
	a := &Table{
		Columns: []Column{{Name: "x"}, {Name: "x"}},
		Rows:    [][]any{{int64(1), int64(2)}},
	}
	b := &Table{
		Columns: []Column{{Name: "x"}, {Name: "x"}},
		Rows:    [][]any{{int64(2), int64(1)}},
	}
	if !a.Equal(a) {
		t.Fatalf("expected table to equal itself")
	}
	if a.Equal(b) {
		t.Fatalf("expected repeated labels to pair in order")
	}
}

func TestValuesEqual(t *testing.T) {
	cases := []struct {
		a, b any
		want bool
	}{
		{nil, nil, true},
		{nil, int64(0), false},
		{int64(3), float64(3), true},
		{int64(3), float64(3.5), false},
		{math.NaN(), math.NaN(), true},
		{"3", int64(3), false},
		{"preta", "preta", true},
		{true, true, true},
		{[]any{int64(1)}, []any{int64(1)}, true},
	}
	for _, tc := range cases {
		if got := valuesEqual(tc.a, tc.b, 0); got != tc.want {
			t.Fatalf("valuesEqual(%v, %v)=%v want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestTableEqualApproxToleratesRounding(t *testing.T) {
	sqlite := &Table{Columns: []Column{{Name: "a"}}, Rows: [][]any{{72.22999999999999}}}
	duck := &Table{Columns: []Column{{Name: "a"}}, Rows: [][]any{{72.23000000000002}}}
	if sqlite.Equal(duck) {
		t.Fatalf("expected exact comparison to tell the values apart")
	}
	if !sqlite.EqualApprox(duck, 1e-9) {
		t.Fatalf("expected values within tolerance to match")
	}

	far := &Table{Columns: []Column{{Name: "a"}}, Rows: [][]any{{72.24}}}
	if sqlite.EqualApprox(far, 1e-9) {
		t.Fatalf("expected a real difference to be reported")
	}
	big := &Table{Columns: []Column{{Name: "a"}}, Rows: [][]any{{1e12}}}
	bigger := &Table{Columns: []Column{{Name: "a"}}, Rows: [][]any{{1e12 + 0.0001}}}
	if !big.EqualApprox(bigger, 1e-9) {
		t.Fatalf("expected tolerance to scale with magnitude")
	}
	if !big.EqualApprox(&Table{Columns: []Column{{Name: "a"}}, Rows: [][]any{{int64(1e12)}}}, 1e-9) {
		t.Fatalf("expected integer and float cells to compare numerically")
	}
}

func TestNormalizeValue(t *testing.T) {
	if got := normalizeValue(nil, []byte("abc")); got != "abc" {
		t.Fatalf("bytes: got %#v", got)
	}
	if got := normalizeValue(nil, int32(7)); got != int64(7) {
		t.Fatalf("int32: got %#v", got)
	}
	if got := normalizeValue(nil, float32(1.5)); got != float64(1.5) {
		t.Fatalf("float32: got %#v", got)
	}
	if got := normalizeValue(nil, big.NewInt(20)); got != int64(20) {
		t.Fatalf("big int: got %#v", got)
	}
	huge, _ := new(big.Int).SetString("170141183460469231731687303715884105727", 10)
	if got := normalizeValue(nil, huge); got != huge.String() {
		t.Fatalf("huge int: got %#v", got)
	}
}
