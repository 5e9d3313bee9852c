package dataset

import "errors"

var (
	// ErrSchemaMismatch is returned when a declared stratification or matching
	// column is absent, or present with missing / non-numeric values where
	// numbers are required. It is a configuration error and fatal for a run.
	ErrSchemaMismatch = errors.New("dataset: schema mismatch")

	// ErrDuplicateID indicates that two records share the same identifier.
	ErrDuplicateID = errors.New("dataset: duplicate record id")

	// ErrEmptyID indicates a record without identifier.
	ErrEmptyID = errors.New("dataset: empty record id")

	// ErrBadWeight indicates a negative, NaN or infinite survey weight.
	ErrBadWeight = errors.New("dataset: weight must be finite and non-negative")

	// ErrLengthMismatch indicates a column whose length differs from the record count.
	ErrLengthMismatch = errors.New("dataset: column length mismatch")

	// ErrRowOutOfRange indicates a view row index outside the dataset.
	ErrRowOutOfRange = errors.New("dataset: row index out of range")
)
