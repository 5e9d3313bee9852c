// SPDX-License-Identifier: MIT

package matrix

import "fmt"

// RowSums returns Σ_j m[i,j] for every row.
func RowSums(m Matrix) ([]float64, error) {
	return sums(m, "RowSums", true)
}

// ColSums returns Σ_i m[i,j] for every column.
func ColSums(m Matrix) ([]float64, error) {
	return sums(m, "ColSums", false)
}

func sums(m Matrix, op string, byRow bool) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	n := m.Cols()
	if byRow {
		n = m.Rows()
	}
	out := make([]float64, n)
	add := func(i, j int, v float64) {
		if byRow {
			out[i] += v
		} else {
			out[j] += v
		}
	}

	if d, ok := m.(*Dense); ok {
		if d.released {
			return nil, fmt.Errorf("%s: %w", op, ErrReleased)
		}
		d.Do(func(i, j int, v float64) bool {
			add(i, j, v)
			return true
		})

		return out, nil
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, err := m.At(i, j)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			add(i, j, v)
		}
	}

	return out, nil
}

// Dot returns the entrywise inner product Σ a[i,j]·b[i,j]. The transport
// solver uses it for the total cost of a plan.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrReleased.
func Dot(a, b Matrix) (float64, error) {
	if err := ValidateNotNil(a); err != nil {
		return 0, fmt.Errorf("Dot: %w", err)
	}
	if err := ValidateShape(b, a.Rows(), a.Cols()); err != nil {
		return 0, fmt.Errorf("Dot: %w", err)
	}
	da, okA := a.(*Dense)
	db, okB := b.(*Dense)
	if okA && okB && !da.released && !db.released {
		var s float64
		for k, v := range da.data {
			s += v * db.data[k]
		}

		return s, nil
	}
	var s float64
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			va, err := a.At(i, j)
			if err != nil {
				return 0, fmt.Errorf("Dot: %w", err)
			}
			vb, err := b.At(i, j)
			if err != nil {
				return 0, fmt.Errorf("Dot: %w", err)
			}
			s += va * vb
		}
	}

	return s, nil
}
