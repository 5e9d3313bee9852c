package transport

import (
	"fmt"
	"math"

	"github.com/katalvlaran/otmatch/matrix"
)

// Plan is a solved transport plan. Entries are non-negative; exact zeros mark
// pairs that carry no mass.
type Plan struct {
	m          *matrix.Dense
	cost       float64
	iterations int
}

// Matrix returns the underlying m×n plan (not a copy).
func (p *Plan) Matrix() *matrix.Dense { return p.m }

// Rows returns the source dimension.
func (p *Plan) Rows() int { return p.m.Rows() }

// Cols returns the target dimension.
func (p *Plan) Cols() int { return p.m.Cols() }

// Cost returns Σ P[i,j]·C[i,j] for the cost the plan was solved against.
func (p *Plan) Cost() float64 { return p.cost }

// Iterations returns the number of pivots or augmentations performed.
func (p *Plan) Iterations() int { return p.iterations }

// RowSums returns the realized source marginal.
func (p *Plan) RowSums() ([]float64, error) { return matrix.RowSums(p.m) }

// ColSums returns the realized target marginal.
func (p *Plan) ColSums() ([]float64, error) { return matrix.ColSums(p.m) }

// Nonzeros counts entries carrying mass.
func (p *Plan) Nonzeros() int {
	n := 0
	p.m.Do(func(_, _ int, v float64) bool {
		if v != 0 {
			n++
		}
		return true
	})

	return n
}

// Release drops the plan storage. Accessors on the matrix then fail with
// matrix.ErrReleased.
func (p *Plan) Release() { p.m.Release() }

// Normalize returns w / Σw and Σw. Weights must be finite and non-negative
// with a positive total.
func Normalize(w []float64) ([]float64, float64, error) {
	if len(w) == 0 {
		return nil, 0, fmt.Errorf("%w: empty weight vector", ErrBadMarginal)
	}
	var mass float64
	for i, x := range w {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, 0, fmt.Errorf("%w: weight[%d]=%v", ErrBadMarginal, i, x)
		}
		mass += x
	}
	if mass <= 0 || math.IsInf(mass, 0) {
		return nil, 0, fmt.Errorf("%w: total weight %v", ErrBadMarginal, mass)
	}
	out := make([]float64, len(w))
	for i, x := range w {
		out[i] = x / mass
	}

	return out, mass, nil
}
