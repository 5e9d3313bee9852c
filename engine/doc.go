// Package engine orchestrates a matching run: it checks the schema of every
// input up front, partitions the datasets into cells, aligns the cells by key
// and runs the match chain on each cell, accumulating one correspondence
// table.
//
// Cells are independent. Options.Workers > 1 processes them on a bounded
// errgroup; each worker writes its own result slot and slots are concatenated
// in key order, so the table is identical for every worker count.
//
// Per-cell problems never abort the run unless Options.FailFast is set:
//
//   - a key missing from a required dataset is skipped with ErrCellAlignmentGap
//   - a cell whose weights sum to zero is skipped with ErrZeroMass
//   - a solver failure (typically transport.ErrNonConvergence) marks the cell failed
//
// Schema problems (dataset.ErrSchemaMismatch) and context cancellation are
// fatal. Progress is traced through zap and counted in a private Prometheus
// registry (see Metrics).
package engine
