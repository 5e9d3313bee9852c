package engine

import (
	"time"

	"github.com/katalvlaran/otmatch/cell"
	"github.com/katalvlaran/otmatch/match"
)

// CellOutcome records why a cell produced no entries.
//   - Stage is zero for skips decided before any solve.
//   - Missing lists the datasets lacking the key (ErrCellAlignmentGap only).
//   - Dataset names the dataset whose cell weights sum to zero (ErrZeroMass
//     only).
type CellOutcome struct {
	Key     cell.Key
	Stage   match.Stage
	Missing []string
	Dataset string
	Err     error
}

// Report is the result of a run. Entries are ordered by cell key, then
// row-major within each cell.
type Report struct {
	Entries []match.Entry
	Cells   int
	Matched int
	Skipped []CellOutcome
	Failed  []CellOutcome
	Took    time.Duration
}

// Mass returns the total weight of all entries.
func (r *Report) Mass() float64 { return match.TotalWeight(r.Entries) }

// Complete reports whether no cell failed. Skips do not count as failures.
func (r *Report) Complete() bool { return len(r.Failed) == 0 }
