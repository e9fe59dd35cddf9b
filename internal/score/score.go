package score

import (
	"fmt"

	"aoa/internal/dist"
	"aoa/internal/threshold"
)

// Result holds per-query-row dissimilarity and applicability flags. Inside is
// indexed [probability][row], one flag set per requested threshold.
type Result struct {
	DI     []float64
	Inside [][]bool
}

type Scorer struct {
	engine *dist.Engine
}

func New(engine *dist.Engine) *Scorer {
	return &Scorer{engine: engine}
}

// Score computes each query row's minimum distance to the training set,
// normalizes it by the training mean minimum and thresholds it. A query row
// coincident with a training row gets DI 0 and sits inside every threshold.
func (s *Scorer) Score(query, train [][]float64, w []float64, est *threshold.Estimate) (*Result, error) {
	mins, err := s.engine.MinDistances(query, train, w, nil)
	if err != nil {
		return nil, fmt.Errorf("query distances: %w", err)
	}

	result := &Result{
		DI:     make([]float64, len(mins)),
		Inside: make([][]bool, len(est.Thresholds)),
	}
	for pi := range est.Thresholds {
		result.Inside[pi] = make([]bool, len(mins))
	}
	for i, m := range mins {
		di := m / est.MeanMin
		result.DI[i] = di
		for pi, th := range est.Thresholds {
			result.Inside[pi][i] = di <= th
		}
	}
	return result, nil
}
