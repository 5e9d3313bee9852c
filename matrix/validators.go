// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
)

// ValidateNotNil rejects a nil interface and a typed nil *Dense.
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return ErrNilMatrix
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return ErrNilMatrix
	}

	return nil
}

// ValidateShape checks that m is rows×cols.
func ValidateShape(m Matrix, rows, cols int) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.Rows() != rows || m.Cols() != cols {
		return fmt.Errorf("shape %dx%d, want %dx%d: %w", m.Rows(), m.Cols(), rows, cols, ErrDimensionMismatch)
	}

	return nil
}

// ValidateFiniteNonNegative scans every entry and reports the first NaN, ±Inf
// or negative value with its position.
func ValidateFiniteNonNegative(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, err := m.At(i, j)
			switch {
			case err != nil:
				return err
			case math.IsNaN(v) || math.IsInf(v, 0):
				return fmt.Errorf("entry (%d,%d)=%v: %w", i, j, v, ErrNaNInf)
			case v < 0:
				return fmt.Errorf("entry (%d,%d)=%v: %w", i, j, v, ErrNegative)
			}
		}
	}

	return nil
}
