package engine

import "errors"

var (
	// ErrCellAlignmentGap marks a cell key that is absent from at least one
	// dataset the run requires. The cell contributes no entries.
	ErrCellAlignmentGap = errors.New("engine: cell missing from a dataset")

	// ErrZeroMass marks a cell whose weights sum to zero on some side.
	ErrZeroMass = errors.New("engine: cell has zero total weight")

	// ErrMissingDataset is returned when the primary or secondary dataset is nil.
	ErrMissingDataset = errors.New("engine: primary and secondary datasets are required")

	// ErrNoStage2 is returned when a tertiary dataset is supplied without a
	// stage-2 correspondence.
	ErrNoStage2 = errors.New("engine: tertiary dataset needs a stage-2 correspondence")

	// ErrCellFailed is returned by Run in fail-fast mode, wrapping the first
	// per-cell failure.
	ErrCellFailed = errors.New("engine: cell failed")
)
