package scale

import (
	"gonum.org/v1/gonum/stat"
)

// Params holds the training-set standardization fitted per encoded column.
// Columns whose training standard deviation is not strictly positive carry no
// discriminative information and are dropped from every matrix the params are
// applied to.
type Params struct {
	Mean     []float64
	Std      []float64
	Retained []int
}

// Fit computes per-column mean and standard deviation from the training
// matrix. dims is the encoded column count, used when train has no rows.
func Fit(train [][]float64, dims int) *Params {
	p := &Params{}
	if len(train) > 0 {
		dims = len(train[0])
	}
	col := make([]float64, len(train))
	for ci := 0; ci < dims; ci++ {
		for ri := range train {
			col[ri] = train[ri][ci]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if !(std > 0) {
			continue
		}
		p.Mean = append(p.Mean, mean)
		p.Std = append(p.Std, std)
		p.Retained = append(p.Retained, ci)
	}
	return p
}

// Apply standardizes a matrix with the fitted parameters, keeping only the
// retained columns. The input is not mutated.
func (p *Params) Apply(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for ri := range m {
		row := make([]float64, len(p.Retained))
		for k, ci := range p.Retained {
			row[k] = (m[ri][ci] - p.Mean[k]) / p.Std[k]
		}
		out[ri] = row
	}
	return out
}

// Select filters an arbitrary column-aligned slice down to the retained
// columns.
func Select(p *Params, items []string) []string {
	out := make([]string, len(p.Retained))
	for k, ci := range p.Retained {
		out[k] = items[ci]
	}
	return out
}
