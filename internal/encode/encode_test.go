package encode

import (
	"errors"
	"testing"

	"aoa/internal/table"
)

func mustTable(t *testing.T, cols ...table.Column) *table.Table {
	t.Helper()
	tbl, err := table.New(cols...)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return tbl
}

func TestFitColumns(t *testing.T) {
	train := mustTable(t,
		table.NumericColumn("elev", []float64{10, 20, 30}),
		table.CategoricalColumn("soil", []string{"clay", "sand", "clay"}),
	)
	enc, err := Fit(train, nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	expected := []Column{
		{Name: "elev", Parent: "elev"},
		{Name: "soil=clay", Parent: "soil", Level: "clay"},
		{Name: "soil=sand", Parent: "soil", Level: "sand"},
	}
	cols := enc.Columns()
	if len(cols) != len(expected) {
		t.Fatalf("columns, got: %d, expected: %d", len(cols), len(expected))
	}
	for i := range expected {
		if cols[i] != expected[i] {
			t.Errorf("column %d, got: %+v, expected: %+v", i, cols[i], expected[i])
		}
	}
}

func TestTransformTraining(t *testing.T) {
	train := mustTable(t,
		table.NumericColumn("elev", []float64{10, 20}),
		table.CategoricalColumn("soil", []string{"clay", "sand"}),
	)
	enc, err := Fit(train, nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	m, err := enc.Transform(train)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	expected := [][]float64{
		{10, 1, 0},
		{20, 0, 1},
	}
	for ri := range expected {
		for ci := range expected[ri] {
			if m[ri][ci] != expected[ri][ci] {
				t.Errorf("cell (%d,%d), got: %f, expected: %f", ri, ci, m[ri][ci], expected[ri][ci])
			}
		}
	}
}

func TestTransformUnseenLevel(t *testing.T) {
	train := mustTable(t, table.CategoricalColumn("soil", []string{"A", "B"}))
	query := mustTable(t, table.CategoricalColumn("soil", []string{"C"}))

	enc, err := Fit(train, nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	m, err := enc.Transform(query)
	if err != nil {
		t.Fatalf("an unseen level is not an error: %v", err)
	}
	for ci, v := range m[0] {
		if v != 0 {
			t.Errorf("dummy %d for unseen level, got: %f, expected: 0", ci, v)
		}
	}
}

func TestTransformSchemaMismatch(t *testing.T) {
	train := mustTable(t,
		table.NumericColumn("elev", []float64{1}),
		table.NumericColumn("slope", []float64{2}),
	)
	query := mustTable(t, table.NumericColumn("elev", []float64{1}))

	enc, err := Fit(train, nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := enc.Transform(query); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("missing column, got: %v, expected ErrSchemaMismatch", err)
	}

	kindSwap := mustTable(t,
		table.CategoricalColumn("elev", []string{"low"}),
		table.NumericColumn("slope", []float64{2}),
	)
	if _, err := enc.Transform(kindSwap); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("kind mismatch, got: %v, expected ErrSchemaMismatch", err)
	}
}

func TestFitVariableSubset(t *testing.T) {
	train := mustTable(t,
		table.NumericColumn("elev", []float64{1, 2}),
		table.NumericColumn("slope", []float64{3, 4}),
		table.NumericColumn("yield", []float64{5, 6}),
	)
	enc, err := Fit(train, []string{"slope", "elev"})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	cols := enc.Columns()
	if len(cols) != 2 || cols[0].Name != "slope" || cols[1].Name != "elev" {
		t.Errorf("subset columns, got: %+v", cols)
	}
	if _, err := Fit(train, []string{"missing"}); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("unknown training variable, got: %v, expected ErrSchemaMismatch", err)
	}
}
