// SPDX-License-Identifier: MIT

// Package cost builds the pairwise cost matrix between the records of two
// cells.
//
// Entry (i,j) is the L1 (city-block) distance between source record i and
// target record j over a declared, ordered variable correspondence:
//
//	C[i,j] = Σ_k |src_i[pair_k.Source] − tgt_j[pair_k.Target]|
//
// Variables that are not part of the correspondence never influence the cost.
// No scaling or normalization is applied; units are the caller's concern.
//
// Build checks the schema of both sides before allocating the r×c matrix, so a
// misconfigured run fails in O(variables) instead of after an O(r·c)
// allocation. Memory is r·c·8 bytes; EstimateBytes reports it ahead of time.
package cost
