package applicability

import (
	"errors"
	"fmt"
	"math"

	"aoa/internal/dist"
	"aoa/internal/encode"
	"aoa/internal/scale"
	"aoa/internal/score"
	"aoa/internal/table"
	"aoa/internal/threshold"
	"aoa/internal/weights"
	"aoa/pkg/rworker"
)

// ErrConfigurationConflict means the estimator was given an ambiguous or
// missing source of weights or training data.
var ErrConfigurationConflict = errors.New("conflicting estimator configuration")

const DefaultProb = 0.95

type Option func(*Estimator)

// WithVariables restricts the predictor set. Defaults to every training
// column.
func WithVariables(vars []string) Option {
	return func(e *Estimator) {
		e.vars = vars
	}
}

// WithProbs sets the threshold probabilities. Defaults to {0.95}.
func WithProbs(probs []float64) Option {
	return func(e *Estimator) {
		e.probs = probs
	}
}

// WithWeights supplies explicit per-variable weights, overriding any
// model-derived importance.
func WithWeights(byVar map[string]float64) Option {
	return func(e *Estimator) {
		e.explicit = byVar
	}
}

// WithImportance supplies per-variable importance scores from a fitted model.
func WithImportance(scores map[string]float64) Option {
	return func(e *Estimator) {
		e.importance = scores
	}
}

// WithFolds supplies the training cross-validation assignment used for
// leave-fold-out threshold estimation.
func WithFolds(folds table.Folds) Option {
	return func(e *Estimator) {
		e.folds = folds
	}
}

func WithWorkers(n int) Option {
	return func(e *Estimator) {
		e.workers = n
	}
}

func WithChunkSize(n int) Option {
	return func(e *Estimator) {
		e.chunkSize = n
	}
}

// WithPool injects a caller-owned worker pool for distance evaluation. The
// estimator never creates or tears down workers of its own when one is given.
func WithPool(p *rworker.Pool) Option {
	return func(e *Estimator) {
		e.pool = p
	}
}

// Result is the outcome of one estimation run, aligned one-to-one with the
// query table's rows.
type Result struct {
	DI         []float64
	AOA        [][]bool
	Probs      []float64
	Thresholds []float64
	MeanMin    float64
	TrainMean  float64
	TrainIQR   float64
	Columns    []string
}

// Estimator runs the four-stage applicability pipeline: encode, scale,
// weight, then threshold estimation and scoring. It is pure: identical
// inputs give identical outputs for any worker configuration.
type Estimator struct {
	vars       []string
	probs      []float64
	explicit   map[string]float64
	importance map[string]float64
	folds      table.Folds
	workers    int
	chunkSize  int
	pool       *rworker.Pool
}

func New(opts ...Option) (*Estimator, error) {
	e := &Estimator{}
	for _, opt := range opts {
		opt(e)
	}
	if e.explicit != nil && e.importance != nil {
		return nil, fmt.Errorf("%w: both explicit weights and importance scores supplied", ErrConfigurationConflict)
	}
	if e.probs == nil {
		e.probs = []float64{DefaultProb}
	}
	for _, p := range e.probs {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("%w: threshold probability %v is outside [0, 1]", ErrConfigurationConflict, p)
		}
	}
	return e, nil
}

func (e *Estimator) provider() *weights.Provider {
	switch {
	case e.explicit != nil:
		return weights.Explicit(e.explicit)
	case e.importance != nil:
		return weights.Importance(e.importance)
	default:
		return weights.Uniform()
	}
}

func (e *Estimator) engine() *dist.Engine {
	opts := []dist.Option{dist.WithChunkSize(e.chunkSize)}
	if e.pool != nil {
		opts = append(opts, dist.WithPool(e.pool))
	} else if e.workers > 0 {
		opts = append(opts, dist.WithWorkers(e.workers))
	}
	return dist.New(opts...)
}

// Estimate scores every query row against the training distribution. The
// first failing stage aborts the run; there are no partial results.
func (e *Estimator) Estimate(train, query *table.Table) (*Result, error) {
	if train == nil {
		return nil, fmt.Errorf("%w: no training table supplied", ErrConfigurationConflict)
	}
	if query == nil {
		return nil, fmt.Errorf("%w: no query table supplied", ErrConfigurationConflict)
	}
	if e.folds != nil && len(e.folds) != train.Rows() {
		return nil, fmt.Errorf("%w: fold assignment covers %d rows, training has %d",
			ErrConfigurationConflict, len(e.folds), train.Rows())
	}

	enc, err := encode.Fit(train, e.vars)
	if err != nil {
		return nil, err
	}
	tm, err := enc.Transform(train)
	if err != nil {
		return nil, err
	}
	qm, err := enc.Transform(query)
	if err != nil {
		return nil, err
	}

	params := scale.Fit(tm, len(enc.Columns()))
	ts := params.Apply(tm)
	qs := params.Apply(qm)

	cols := enc.Columns()
	retained := make([]encode.Column, len(params.Retained))
	names := make([]string, len(cols))
	for i := range cols {
		names[i] = cols[i].Name
	}
	for k, ci := range params.Retained {
		retained[k] = cols[ci]
	}

	w, err := e.provider().Vector(retained)
	if err != nil {
		return nil, err
	}

	engine := e.engine()
	est, err := threshold.New(engine).Estimate(ts, w, e.folds, e.probs)
	if err != nil {
		return nil, err
	}
	scored, err := score.New(engine).Score(qs, ts, w, est)
	if err != nil {
		return nil, err
	}

	return &Result{
		DI:         scored.DI,
		AOA:        scored.Inside,
		Probs:      est.Probs,
		Thresholds: est.Thresholds,
		MeanMin:    est.MeanMin,
		TrainMean:  est.Mean,
		TrainIQR:   est.IQR,
		Columns:    scale.Select(params, names),
	}, nil
}
