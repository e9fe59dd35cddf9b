package threshold

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"aoa/internal/dist"
	"aoa/internal/table"
)

// ErrInsufficientTrainingDiversity means no training row kept an eligible
// neighbor after fold exclusion, so the DI normalization and threshold are
// undefined.
var ErrInsufficientTrainingDiversity = errors.New("insufficient training diversity: no row has an eligible neighbor")

// Estimate is the fitted training-DI distribution and the thresholds derived
// from it. MeanMin is the mean nearest eligible-neighbor distance used as the
// DI denominator for both training and query rows.
type Estimate struct {
	Probs      []float64
	Thresholds []float64
	MeanMin    float64
	TrainDI    []float64
	Mean       float64
	IQR        float64
}

type Estimator struct {
	engine *dist.Engine
}

func New(engine *dist.Engine) *Estimator {
	return &Estimator{engine: engine}
}

// Estimate computes each training row's minimum distance to any other
// training row outside its own fold, normalizes the minima by their mean and
// takes the empirical quantile at every requested probability.
func (est *Estimator) Estimate(train [][]float64, w []float64, folds table.Folds, probs []float64) (*Estimate, error) {
	if folds != nil && len(folds) != len(train) {
		return nil, fmt.Errorf("fold assignment covers %d rows, training has %d", len(folds), len(train))
	}
	for _, p := range probs {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("threshold probability %v is outside [0, 1]", p)
		}
	}

	excluded := func(i, j int) bool {
		return i == j || folds.Same(i, j)
	}
	mins, err := est.engine.MinDistances(train, train, w, excluded)
	if err != nil {
		return nil, fmt.Errorf("training self-distances: %w", err)
	}

	valid := make([]float64, 0, len(mins))
	for _, m := range mins {
		if !math.IsNaN(m) {
			valid = append(valid, m)
		}
	}
	if len(valid) == 0 {
		return nil, ErrInsufficientTrainingDiversity
	}
	meanMin := stat.Mean(valid, nil)
	if meanMin == 0 {
		// Every eligible neighbor is coincident; normalization is undefined.
		return nil, ErrInsufficientTrainingDiversity
	}

	trainDI := make([]float64, len(valid))
	for i, m := range valid {
		trainDI[i] = m / meanMin
	}
	sorted := append([]float64(nil), trainDI...)
	sort.Float64s(sorted)

	e := &Estimate{
		Probs:      probs,
		Thresholds: make([]float64, len(probs)),
		MeanMin:    meanMin,
		TrainDI:    trainDI,
		Mean:       stat.Mean(trainDI, nil),
		IQR: stat.Quantile(0.75, stat.Empirical, sorted, nil) -
			stat.Quantile(0.25, stat.Empirical, sorted, nil),
	}
	for pi, p := range probs {
		e.Thresholds[pi] = stat.Quantile(p, stat.Empirical, sorted, nil)
	}
	return e, nil
}
