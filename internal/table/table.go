package table

import (
	"fmt"
)

// Kind of a predictor column.
type Kind uint8

const (
	KindNumeric Kind = iota
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is a named, typed observation column. Exactly one of Numeric or
// Levels is populated, matching Kind.
type Column struct {
	Name    string
	Kind    Kind
	Numeric []float64
	Levels  []string
}

func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: KindNumeric, Numeric: values}
}

func CategoricalColumn(name string, values []string) Column {
	return Column{Name: name, Kind: KindCategorical, Levels: values}
}

func (c Column) rows() int {
	if c.Kind == KindNumeric {
		return len(c.Numeric)
	}
	return len(c.Levels)
}

// Table is an ordered set of named columns with one row per observation.
type Table struct {
	cols   []Column
	byName map[string]int
	rows   int
}

func New(cols ...Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("table must have at least one column")
	}
	t := &Table{
		cols:   cols,
		byName: make(map[string]int, len(cols)),
		rows:   cols[0].rows(),
	}
	for i, col := range cols {
		if col.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, ok := t.byName[col.Name]; ok {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		if col.rows() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.rows(), t.rows)
		}
		t.byName[col.Name] = i
	}
	return t, nil
}

func (t *Table) Rows() int {
	return t.rows
}

func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i := range t.cols {
		names[i] = t.cols[i].Name
	}
	return names
}

func (t *Table) Column(name string) (Column, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[idx], true
}

// Select returns a table restricted to the named columns, in the given order.
func (t *Table) Select(names []string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		cols = append(cols, col)
	}
	return New(cols...)
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) (*Table, error) {
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[name] = true
	}
	cols := make([]Column, 0, len(t.cols))
	for _, col := range t.cols {
		if !skip[col.Name] {
			cols = append(cols, col)
		}
	}
	return New(cols...)
}
