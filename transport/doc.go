// SPDX-License-Identifier: MIT

// Package transport solves discrete optimal transport problems between two
// weighted point sets.
//
// Given marginals a (length m) and b (length n), each summing to 1, and a
// non-negative m×n cost matrix C, a transport plan P is a non-negative m×n
// matrix with row sums a and column sums b. The solver returns the plan that
// minimizes Σ P[i,j]·C[i,j].
//
// Solver is the capability the matching engine depends on. Two exact
// implementations are provided; New picks one by name.
//
// NetworkSimplex ("simplex", the default) runs the primal network simplex
// method on the bipartite graph i → j. It starts from an all-artificial
// spanning tree with big-M arcs, prices non-tree arcs in blocks of about
// √(m·n), and keeps the tree strongly feasible so degenerate pivots cannot
// cycle. Each pivot only touches the pivot cycle and the re-hung subtree,
// which makes it the solver for large cells.
//
// SSP ("ssp") is a successive-shortest-path min-cost-flow algorithm over the
// complete bipartite network
//
//	S ─(a_i, 0)→ i ─(∞, C[i,j])→ j ─(b_j, 0)→ T
//
// Each iteration finds a cheapest S→T path in the residual network (dense
// Dijkstra with Johnson potentials, so reduced costs stay non-negative even on
// backward edges) and pushes the bottleneck amount of mass along it. Backward
// arcs are read from per-sink lists of loaded sources.
//
// Both solvers stop with ErrNonConvergence when the iteration cap is spent and
// never return a partial plan.
//
// Complexity:
//
//   - NetworkSimplex: O(P · (√(m·n) + V)) for P pivots, V = m+n+1.
//   - SSP:            O(K · (V² + m·n)) for K augmentations, V = m+n+2.
//   - Space:          O(m·n) for the plan plus O(V) scratch.
//
// Options:
//
//   - MaxIterations: pivot or augmentation cap (ErrNonConvergence when exceeded).
//   - Epsilon:       flows, supplies and demands ≤ Epsilon are snapped to 0.
//   - Tolerance:     allowed |Σa−1|, |Σb−1| and final marginal deviation.
//
// Errors (sentinel):
//
//   - ErrNonConvergence:    cap reached or residual marginal error > Tolerance.
//   - ErrBadMarginal:       empty, negative, non-finite or not summing to 1.
//   - ErrDimensionMismatch: cost shape differs from (len(a), len(b)).
//   - ErrNegativeCost:      negative or non-finite cost entry.
//   - ErrBadOptions:        invalid option values.
//   - ErrUnknownSolver:     New was given an unrecognized kind.
package transport
