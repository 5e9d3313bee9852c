// Package otmatch links survey microdata files by statistical matching: every
// record of a primary dataset (DINA) is paired with records of a secondary
// one (CPS) and optionally a tertiary one (SCF), cell by cell, along the
// minimum-cost transport plan between their survey weights.
//
// What a run does
//
//   - Loads each dataset from CSV with only the declared columns.
//   - Partitions every dataset into cells by the stratification fields
//     and aligns the cell keys across datasets.
//   - In each cell, builds the Euclidean cost between matching variables,
//     solves the balanced transport problem on normalized weights, and scales
//     the plan back to the primary cell mass.
//   - In three-way runs, chains a second solve from the stage-1 pairs to the
//     tertiary cell.
//   - Writes one correspondence table (CSV or Parquet) plus an optional
//     Prometheus textfile.
//
// Layout:
//
//	matrix/    dense row-major float64 storage and reductions
//	dataset/   columnar datasets, CSV loading, views and subsampling
//	cell/      cell keys, partitioning and cross-dataset alignment
//	cost/      variable correspondences and cost-matrix construction
//	transport/ exact balanced transport solvers (network simplex, successive shortest paths)
//	match/     plan extraction and the one- or two-stage cell chain
//	engine/    the per-cell loop: workers, skips, failures, metrics, logging
//	config/    YAML + environment configuration and per-year resolution
//	output/    CSV and Parquet correspondence sinks
//	cmd/otmatch the command-line entry point
//
// Quick start:
//
//	otmatch validate --config otmatch.yaml --year 2019
//	otmatch run --config otmatch.yaml --year 2019
package otmatch
