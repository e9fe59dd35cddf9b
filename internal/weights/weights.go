package weights

import (
	"errors"
	"fmt"
	"math"

	"aoa/internal/encode"
	"aoa/pkg/math/vector"
)

var ErrInvalidWeight = errors.New("invalid predictor weight")

type Source uint8

const (
	SourceUniform Source = iota
	SourceExplicit
	SourceImportance
)

func (s Source) String() string {
	switch s {
	case SourceUniform:
		return "uniform"
	case SourceExplicit:
		return "explicit"
	case SourceImportance:
		return "importance"
	default:
		return "unknown"
	}
}

// Provider yields a weight per encoded column. Weights are keyed by the
// source predictor, so a categorical predictor's weight repeats across its
// dummy columns.
type Provider struct {
	source Source
	byVar  map[string]float64
}

func Uniform() *Provider {
	return &Provider{source: SourceUniform}
}

func Explicit(byVar map[string]float64) *Provider {
	return &Provider{source: SourceExplicit, byVar: byVar}
}

func Importance(scores map[string]float64) *Provider {
	return &Provider{source: SourceImportance, byVar: scores}
}

func (p *Provider) Source() Source {
	return p.source
}

// Vector resolves the weight of every retained encoded column.
func (p *Provider) Vector(cols []encode.Column) (vector.V, error) {
	w := make(vector.V, len(cols))
	if p.source == SourceUniform {
		for i := range w {
			w[i] = 1
		}
		return w, nil
	}
	var nonZero bool
	for i, col := range cols {
		value, ok := p.byVar[col.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: no %s weight for predictor %q", ErrInvalidWeight, p.source, col.Parent)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: %s weight for predictor %q is not finite", ErrInvalidWeight, p.source, col.Parent)
		}
		if value < 0 {
			return nil, fmt.Errorf("%w: %s weight for predictor %q is negative", ErrInvalidWeight, p.source, col.Parent)
		}
		if value > 0 {
			nonZero = true
		}
		w[i] = value
	}
	if len(cols) > 0 && !nonZero {
		return nil, fmt.Errorf("%w: all weights are zero", ErrInvalidWeight)
	}
	return w, nil
}
