// Package match turns solved transport plans into weighted record
// correspondences and chains two transport stages into one table.
//
// Extract reads a plan in row-major order and emits one Entry per nonzero
// cell, scaling the normalized plan value back to population units by the
// source side's total mass. Per-cell entry weights therefore sum to the
// source cell's mass.
//
// Chainer runs the per-cell pipeline:
//
//	Stage1: A ↔ B          cost(A, B, stage-1 correspondence) → plan → links
//	Stage2: (A,B) ↔ C      cost(intermediate, C, stage-2 correspondence) → plan → entries
//
// Stage2 runs only when the chainer is built with a stage-2 correspondence.
// The intermediate dataset holds one record per stage-1 link; its mass is
// the link weight and its matching values are the A-side record's values.
// Stage-2 weights are rescaled by the intermediate mass, which equals the A
// cell mass up to rounding.
package match
