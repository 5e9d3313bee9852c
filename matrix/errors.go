// SPDX-License-Identifier: MIT

package matrix

import "errors"

// Sentinels carry the "matrix:" prefix; call sites add context with %w.
var (
	// ErrInvalidDimensions is returned for a non-positive row or column count.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange is returned by At, Set and Row for a bad index.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch is returned when two shapes must agree and do not.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNaNInf is returned when a NaN or ±Inf reaches a Dense or a validator.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNegative is returned by ValidateFiniteNonNegative.
	ErrNegative = errors.New("matrix: negative entry")

	// ErrNilMatrix is returned when a nil Matrix is passed in.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrReleased is returned after Dense.Release.
	ErrReleased = errors.New("matrix: storage released")
)
