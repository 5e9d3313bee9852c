// Package cell partitions a dataset into strata ("cells") of records that
// share identical values on an ordered list of stratification fields, and
// aligns the cells of several datasets by key.
//
// Matching only ever pairs records inside the same cell. Partition is applied
// with the same field list to every dataset of a run so that keys are
// comparable; Align then yields the union of keys with a presence flag per
// dataset. A key absent from a dataset is a CellAlignmentGap: the engine
// records it and produces no correspondence for that cell.
//
// Keys are ordered lexicographically by their value tuple, which makes every
// iteration in this package deterministic.
package cell
