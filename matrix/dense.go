// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Matrix is the read-only view the solver needs. *Dense implements it; tests
// may supply their own.
type Matrix interface {
	Rows() int
	Cols() int
	// At returns ErrOutOfRange for an index outside the shape.
	At(i, j int) (float64, error)
}

// Dense is a row-major r×c matrix; entry (i,j) lives at data[i*c+j].
// Set rejects NaN and ±Inf.
type Dense struct {
	r, c     int
	data     []float64
	released bool
}

var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense allocates a zero rows×cols matrix.
//
// Errors: ErrInvalidDimensions.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("NewDense(%d,%d): %w", rows, cols, ErrInvalidDimensions)
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseFrom copies a rectangular slice of rows.
//
// Errors: ErrInvalidDimensions, ErrDimensionMismatch (ragged rows), ErrNaNInf.
func NewDenseFrom(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("NewDenseFrom: %w", ErrInvalidDimensions)
	}
	m, err := NewDense(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != m.c {
			return nil, fmt.Errorf("NewDenseFrom: row %d has %d cols, want %d: %w", i, len(row), m.c, ErrDimensionMismatch)
		}
		for j, v := range row {
			if err = m.Set(i, j, v); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// Rows returns the number of rows. It keeps answering after Release.
//
// Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns. It keeps answering after Release.
//
// Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

// Bytes is the size of the backing buffer, 0 once released.
func (m *Dense) Bytes() int64 { return int64(len(m.data)) * 8 }

func (m *Dense) offset(op string, i, j int) (int, error) {
	switch {
	case m.released:
		return 0, fmt.Errorf("Dense.%s(%d,%d): %w", op, i, j, ErrReleased)
	case i < 0 || i >= m.r || j < 0 || j >= m.c:
		return 0, fmt.Errorf("Dense.%s(%d,%d) on %dx%d: %w", op, i, j, m.r, m.c, ErrOutOfRange)
	}

	return i*m.c + j, nil
}

// At returns the entry at (i, j).
//
// Errors: ErrOutOfRange, ErrReleased.
//
// Complexity: O(1).
func (m *Dense) At(i, j int) (float64, error) {
	k, err := m.offset("At", i, j)
	if err != nil {
		return 0, err
	}

	return m.data[k], nil
}

// Set stores v at (i, j).
//
// Errors: ErrOutOfRange, ErrReleased, ErrNaNInf (v is NaN or ±Inf; the
// entry is left unchanged).
//
// Complexity: O(1).
func (m *Dense) Set(i, j int, v float64) error {
	k, err := m.offset("Set", i, j)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("Dense.Set(%d,%d): %w", i, j, ErrNaNInf)
	}
	m.data[k] = v

	return nil
}

// Row returns row i as a slice aliasing the storage. Writes through it skip
// the NaN/Inf check.
func (m *Dense) Row(i int) ([]float64, error) {
	k, err := m.offset("Row", i, 0)
	if err != nil {
		return nil, err
	}

	return m.data[k : k+m.c : k+m.c], nil
}

// Release drops the storage. Rows and Cols keep answering; every accessor
// then fails with ErrReleased. Safe to call twice.
func (m *Dense) Release() {
	if m == nil {
		return
	}
	m.data = nil
	m.released = true
}

// Released reports whether Release has been called.
func (m *Dense) Released() bool { return m.released }

// Do calls f for every entry in row-major order until f returns false.
// A released matrix visits nothing.
func (m *Dense) Do(f func(i, j int, v float64) bool) {
	if m.released {
		return
	}
	for k, v := range m.data {
		if !f(k/m.c, k%m.c, v) {
			return
		}
	}
}

// String renders one bracketed line per row.
func (m *Dense) String() string {
	var b strings.Builder
	m.Do(func(_, j int, v float64) bool {
		if j == 0 {
			b.WriteByte('[')
		} else {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		if j == m.c-1 {
			b.WriteString("]\n")
		}
		return true
	})

	return b.String()
}
