// Package matrix holds the dense float64 buffers behind cost matrices and
// transport plans.
//
// A cell with m source and n target records needs two m×n buffers at peak
// (the cost and the plan), so Dense exposes its size (Bytes) and can drop its
// storage early (Release). Indexing never panics: At, Set and Row return
// ErrOutOfRange or ErrReleased instead.
//
// RowSums, ColSums and Dot work on any Matrix and take a fast path for *Dense.
package matrix
