// Package output persists the correspondence table of a run.
//
// A Sink receives entries in table order and is closed once. Two formats are
// provided: CSV (header row, one entry per line, shortest round-trip float
// formatting) and Parquet (one row group, string id columns and a double
// weight column). Column names come from the dataset names, e.g.
// dina_id, cps_id, scf_id, weight.
package output
