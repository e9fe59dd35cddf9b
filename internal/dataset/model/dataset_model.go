package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aoa/internal/table"
	"aoa/internal/util"
)

// Column mirrors table.Column in an XDR-friendly shape.
type Column struct {
	Name    string
	Kind    uint8
	Numeric []float64
	Levels  []string
}

// Dataset is a named reference (training) dataset: the predictor table a
// model was trained on, its fold labels and optional per-variable importance.
type Dataset struct {
	ID         uuid.UUID
	Name       string
	Columns    []Column
	FoldLabels []string
	Importance map[string]float64
	CreatedAt  time.Time
}

func New(name string, cols []Column, foldLabels []string, importance map[string]float64) Dataset {
	return Dataset{
		ID:         uuid.New(),
		Name:       name,
		Columns:    cols,
		FoldLabels: foldLabels,
		Importance: importance,
		CreatedAt:  time.Now().UTC(),
	}
}

// Table converts the stored columns back into a predictor table.
func (d Dataset) Table() (*table.Table, error) {
	cols := make([]table.Column, len(d.Columns))
	for i, col := range d.Columns {
		switch table.Kind(col.Kind) {
		case table.KindNumeric:
			cols[i] = table.NumericColumn(col.Name, col.Numeric)
		case table.KindCategorical:
			cols[i] = table.CategoricalColumn(col.Name, col.Levels)
		default:
			return nil, fmt.Errorf("dataset %q column %q has unknown kind %d", d.Name, col.Name, col.Kind)
		}
	}
	return table.New(cols...)
}

// Folds returns the fold assignment, nil when the dataset carries no labels.
func (d Dataset) Folds() table.Folds {
	if len(d.FoldLabels) == 0 {
		return nil
	}
	return table.FoldsFromLabels(d.FoldLabels)
}

// ContentHash fingerprints the dataset's observations, folds and importance
// for cache keying; ids and timestamps are not part of the hash.
func (d Dataset) ContentHash() [32]byte {
	buffer := util.GetBytesBuffer()
	defer util.PutBytesBuffer(buffer)
	for _, col := range d.Columns {
		buffer.WriteString(col.Name)
		buffer.WriteByte(col.Kind)
		if table.Kind(col.Kind) == table.KindNumeric {
			h := util.HashVector(col.Numeric)
			buffer.Write(h[:])
		} else {
			h := util.HashStrings(col.Levels)
			buffer.Write(h[:])
		}
	}
	fh := util.HashStrings(d.FoldLabels)
	buffer.Write(fh[:])
	var ih [32]byte
	for name, score := range d.Importance {
		// Map order is irrelevant: entries fold in via XOR of per-entry hashes.
		eh := util.HashStrings([]string{name, fmt.Sprintf("%g", score)})
		for i := range ih {
			ih[i] ^= eh[i]
		}
	}
	buffer.Write(ih[:])
	return sha256.Sum256(buffer.Bytes())
}
