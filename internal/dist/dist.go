package dist

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"aoa/pkg/rworker"
)

var ErrDimNotEqual = errors.New("vector dimensions are not equal")

const defaultChunkSize = 256

// ExcludeFn reports whether the pair (i, j) must be skipped. An excluded pair
// contributes an infinite distance and can never be a minimum.
type ExcludeFn func(i, j int) bool

type Option func(*Engine)

func WithPool(p *rworker.Pool) Option {
	return func(e *Engine) {
		e.pool = p
	}
}

func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pool = rworker.New(n)
		}
	}
}

func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// Engine computes weighted Euclidean nearest-neighbor distances between two
// row sets. Rows of A are scanned in chunks dispatched to the worker pool;
// each chunk writes only its own result slots and reads B without mutation,
// so results are identical for any chunk size and worker count.
type Engine struct {
	pool      *rworker.Pool
	chunkSize int
}

func New(opts ...Option) *Engine {
	e := &Engine{chunkSize: defaultChunkSize}
	for _, opt := range opts {
		opt(e)
	}
	if e.pool == nil {
		e.pool = rworker.New(runtime.NumCPU())
	}
	return e
}

// MinDistances returns, for each row of a, the minimum weighted Euclidean
// distance to any non-excluded row of b:
//
//	d(i, j) = sqrt(sum_k w_k * (a[i][k] - b[j][k])^2)
//
// A row with no eligible partner yields NaN. a and b may be the same matrix;
// pass an exclusion for (i, i) to skip self-matches.
func (e *Engine) MinDistances(a, b [][]float64, w []float64, excluded ExcludeFn) ([]float64, error) {
	for i := range a {
		if len(a[i]) != len(w) {
			return nil, fmt.Errorf("%w: a row %d has %d dims, weight has %d", ErrDimNotEqual, i, len(a[i]), len(w))
		}
	}
	for j := range b {
		if len(b[j]) != len(w) {
			return nil, fmt.Errorf("%w: b row %d has %d dims, weight has %d", ErrDimNotEqual, j, len(b[j]), len(w))
		}
	}

	result := make([]float64, len(a))
	var wg sync.WaitGroup
	errCh := make(chan error, 1)
	for start := 0; start < len(a); start += e.chunkSize {
		start := start
		end := start + e.chunkSize
		if end > len(a) {
			end = len(a)
		}
		e.pool.Job(&wg, func() error {
			scanChunk(a, b, w, excluded, result, start, end)
			return nil
		}, errCh)
	}
	wg.Wait()
	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	return result, nil
}

func scanChunk(a, b [][]float64, w []float64, excluded ExcludeFn, result []float64, start, end int) {
	for i := start; i < end; i++ {
		row := a[i]
		min := math.Inf(1)
		found := false
		for j := range b {
			if excluded != nil && excluded(i, j) {
				continue
			}
			other := b[j]
			var sq float64
			for k := range row {
				d := row[k] - other[k]
				sq += w[k] * d * d
			}
			if sq < min {
				min = sq
			}
			found = true
		}
		if !found {
			result[i] = math.NaN()
			continue
		}
		result[i] = math.Sqrt(min)
	}
}
