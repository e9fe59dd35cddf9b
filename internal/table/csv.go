package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVOptions controls schema resolution when reading a CSV file. Columns
// listed in Kinds bypass inference.
type CSVOptions struct {
	Kinds map[string]Kind
}

// ReadCSV reads a headered CSV file into a table. A column is numeric when
// every value parses as a float, categorical otherwise, unless overridden.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv must have a header and at least one row")
	}
	header := records[0]
	rows := records[1:]

	cols := make([]Column, 0, len(header))
	for ci, name := range header {
		raw := make([]string, len(rows))
		for ri := range rows {
			if len(rows[ri]) != len(header) {
				return nil, fmt.Errorf("row %d has %d fields, expected %d", ri+1, len(rows[ri]), len(header))
			}
			raw[ri] = rows[ri][ci]
		}
		kind, forced := opts.Kinds[name]
		if !forced {
			kind = inferKind(raw)
		}
		switch kind {
		case KindNumeric:
			values := make([]float64, len(raw))
			for ri, s := range raw {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, fmt.Errorf("column %q row %d: %w", name, ri+1, err)
				}
				values[ri] = v
			}
			cols = append(cols, NumericColumn(name, values))
		case KindCategorical:
			cols = append(cols, CategoricalColumn(name, raw))
		default:
			return nil, fmt.Errorf("column %q: unknown kind %d", name, kind)
		}
	}
	return New(cols...)
}

func inferKind(values []string) Kind {
	for _, s := range values {
		if s == "" {
			return KindCategorical
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return KindCategorical
		}
	}
	return KindNumeric
}
