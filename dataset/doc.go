// Package dataset holds one survey table in columnar form and the views the
// matching engine slices out of it.
//
// A Dataset carries, per record, a unique identifier, a non-negative survey
// weight, string-valued stratification columns and float64 matching
// variables. Only the columns a run declares are loaded; the schema checks in
// this package (Require*) are the single place where a missing or non-numeric
// column turns into ErrSchemaMismatch.
//
// A View is a Dataset plus an ordered subset of row indices. Cells are views;
// so are subsamples of cells. Views never copy the underlying columns.
//
// The CSV reader (ReadCSV / LoadCSV) is the module's default loader. Files
// ending in ".gz" are decompressed transparently.
package dataset
