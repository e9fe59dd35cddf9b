package encode

import (
	"errors"
	"fmt"

	"aoa/internal/table"
)

var ErrSchemaMismatch = errors.New("query schema does not match training schema")

// Column is one column of the encoded feature matrix. Parent names the source
// predictor; Level is set for categorical dummy columns.
type Column struct {
	Name   string
	Parent string
	Level  string
}

// Encoding is a numeric encoding of a predictor table fitted on training
// data. Categorical vocabularies are fixed at fit time, so query-time
// behavior for unseen levels is deterministic: all dummies stay zero.
type Encoding struct {
	vars    []string
	columns []Column
	kinds   map[string]table.Kind
}

// Fit builds the encoding over the selected variables of the training table.
// A nil vars selects every column. Dummy columns follow the order of first
// appearance of each level in the training data.
func Fit(train *table.Table, vars []string) (*Encoding, error) {
	if train == nil {
		return nil, fmt.Errorf("training table is nil")
	}
	if vars == nil {
		vars = train.Names()
	}
	enc := &Encoding{
		vars:  vars,
		kinds: make(map[string]table.Kind, len(vars)),
	}
	for _, name := range vars {
		col, ok := train.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: training table has no column %q", ErrSchemaMismatch, name)
		}
		enc.kinds[name] = col.Kind
		switch col.Kind {
		case table.KindNumeric:
			enc.columns = append(enc.columns, Column{Name: name, Parent: name})
		case table.KindCategorical:
			seen := make(map[string]bool)
			for _, level := range col.Levels {
				if seen[level] {
					continue
				}
				seen[level] = true
				enc.columns = append(enc.columns, Column{
					Name:   name + "=" + level,
					Parent: name,
					Level:  level,
				})
			}
		}
	}
	return enc, nil
}

func (e *Encoding) Columns() []Column {
	return e.columns
}

// Transform encodes a table into a row-major numeric matrix with one column
// per encoded column, in fit order. Every fitted variable must be present and
// of the fitted kind; levels unseen at fit time produce all-zero dummies.
func (e *Encoding) Transform(t *table.Table) ([][]float64, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: table is nil", ErrSchemaMismatch)
	}
	cols := make([]table.Column, len(e.vars))
	for i, name := range e.vars {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, name)
		}
		if col.Kind != e.kinds[name] {
			return nil, fmt.Errorf("%w: column %q is %s, expected %s",
				ErrSchemaMismatch, name, col.Kind, e.kinds[name])
		}
		cols[i] = col
	}

	m := make([][]float64, t.Rows())
	for ri := range m {
		m[ri] = make([]float64, len(e.columns))
	}
	ci := 0
	for _, col := range cols {
		switch col.Kind {
		case table.KindNumeric:
			for ri := range m {
				m[ri][ci] = col.Numeric[ri]
			}
			ci++
		case table.KindCategorical:
			width := 0
			for ; ci+width < len(e.columns) && e.columns[ci+width].Parent == col.Name; width++ {
			}
			for ri, level := range col.Levels {
				for k := 0; k < width; k++ {
					if e.columns[ci+k].Level == level {
						m[ri][ci+k] = 1
					}
				}
			}
			ci += width
		}
	}
	return m, nil
}
