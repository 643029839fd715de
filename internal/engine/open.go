package engine

import "fmt"

// Open constructs the variant named by kind.
func Open(kind Kind, opts Options) (Engine, error) {
	switch kind {
	case KindSQLite:
		e, err := NewSQLite(opts)
		if err != nil {
			return nil, err
		}
		return e, nil
	case KindDuckDB:
		e, err := NewDuckDB(opts)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", kind)
	}
}
