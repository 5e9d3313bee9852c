// SPDX-License-Identifier: MIT

package cost

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/otmatch/dataset"
	"github.com/katalvlaran/otmatch/matrix"
)

// ErrEmptyView is returned when either side of Build has no records.
var ErrEmptyView = errors.New("cost: empty cell view")

// Build returns the r×c L1 cost matrix between src (rows) and tgt (columns).
//
// Steps:
//  1. Validate corr and reject empty views.
//  2. Gather every source column from src and every target column from tgt.
//     A variable missing on either side fails with dataset.ErrSchemaMismatch;
//     a NaN or ±Inf value fails the same way, naming the record.
//  3. Allocate the matrix and accumulate |Δ| variable by variable into each
//     row (row-major, no per-entry bounds checks).
//
// Errors: ErrEmptyCorrespondence, ErrBadPair, ErrDuplicateVariable,
// ErrEmptyView, dataset.ErrSchemaMismatch.
//
// Complexity: Time O(r·c·k), Space O(r·c + (r+c)·k).
func Build(src, tgt dataset.View, corr Correspondence) (*matrix.Dense, error) {
	if err := corr.Validate(); err != nil {
		return nil, err
	}
	if src.Empty() || tgt.Empty() {
		return nil, fmt.Errorf("%w: %s=%d rows, %s=%d rows", ErrEmptyView, src.Name(), src.Len(), tgt.Name(), tgt.Len())
	}

	srcCols, err := gather(src, corr.Sources())
	if err != nil {
		return nil, err
	}
	tgtCols, err := gather(tgt, corr.Targets())
	if err != nil {
		return nil, err
	}

	m, err := matrix.NewDense(src.Len(), tgt.Len())
	if err != nil {
		return nil, err
	}
	var (
		i, j, k int
		row     []float64
		s       float64
		t       []float64
	)
	for i = 0; i < src.Len(); i++ {
		if row, err = m.Row(i); err != nil {
			return nil, err
		}
		for k = range corr {
			s = srcCols[k][i]
			t = tgtCols[k]
			for j = range row {
				row[j] += math.Abs(s - t[j])
			}
		}
	}

	return m, nil
}

// gather collects the named columns of v and rejects non-finite values.
func gather(v dataset.View, names []string) ([][]float64, error) {
	cols := make([][]float64, len(names))
	for k, name := range names {
		col, err := v.Values(name)
		if err != nil {
			return nil, err
		}
		for p, x := range col {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("dataset %q: record %q variable %q is %v: %w",
					v.Name(), v.ID(p), name, x, dataset.ErrSchemaMismatch)
			}
		}
		cols[k] = col
	}

	return cols, nil
}

// EstimateBytes is the storage needed by a rows×cols cost matrix.
func EstimateBytes(rows, cols int) int64 {
	return int64(rows) * int64(cols) * 8
}
