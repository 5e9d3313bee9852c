// SPDX-License-Identifier: MIT

package transport

import (
	"fmt"
	"math"

	"github.com/katalvlaran/otmatch/matrix"
)

// prepare runs the input checks shared by every solver and returns the cost
// as row slices.
//
// Order: marginal a, marginal b, cost nil-ness and shape, cost entries. The
// first failure wins, so a bad marginal is reported even when the cost is
// also malformed.
func prepare(a, b []float64, c matrix.Matrix, tol float64) ([][]float64, error) {
	if err := checkMarginal("a", a, tol); err != nil {
		return nil, err
	}
	if err := checkMarginal("b", b, tol); err != nil {
		return nil, err
	}
	if err := matrix.ValidateNotNil(c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}
	if err := matrix.ValidateShape(c, len(a), len(b)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}

	return costRows(c)
}

// checkMarginal validates one marginal vector.
func checkMarginal(name string, v []float64, tol float64) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrBadMarginal, name)
	}
	var sum float64
	for i, x := range v {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s[%d]=%v", ErrBadMarginal, name, i, x)
		}
		sum += x
	}
	if math.Abs(sum-1) > tol {
		return fmt.Errorf("%w: %s sums to %.17g, want 1", ErrBadMarginal, name, sum)
	}

	return nil
}

// costRows rejects negative or non-finite entries and exposes the cost as row
// slices, aliasing Dense storage when possible.
func costRows(c matrix.Matrix) ([][]float64, error) {
	if err := matrix.ValidateFiniteNonNegative(c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNegativeCost, err)
	}
	r, cols := c.Rows(), c.Cols()
	out := make([][]float64, r)
	d, isDense := c.(*matrix.Dense)
	var (
		i, j int
		err  error
	)
	for i = 0; i < r; i++ {
		if isDense {
			if out[i], err = d.Row(i); err != nil {
				return nil, err
			}
		} else {
			out[i] = make([]float64, cols)
			for j = 0; j < cols; j++ {
				if out[i][j], err = c.At(i, j); err != nil {
					return nil, err
				}
			}
		}
	}

	return out, nil
}

// checkFidelity verifies the realized marginals of a finished plan.
func checkFidelity(flow *matrix.Dense, a, b []float64, tol float64) error {
	rs, err := matrix.RowSums(flow)
	if err != nil {
		return err
	}
	for i := range rs {
		if d := math.Abs(rs[i] - a[i]); d > tol {
			return fmt.Errorf("%w: row %d sum %.17g, want %.17g", ErrNonConvergence, i, rs[i], a[i])
		}
	}
	cs, err := matrix.ColSums(flow)
	if err != nil {
		return err
	}
	for j := range cs {
		if d := math.Abs(cs[j] - b[j]); d > tol {
			return fmt.Errorf("%w: column %d sum %.17g, want %.17g", ErrNonConvergence, j, cs[j], b[j])
		}
	}

	return nil
}

// snap rounds residual quantities at or below eps to zero.
func snap(x, eps float64) float64 {
	if x <= eps {
		return 0
	}

	return x
}
