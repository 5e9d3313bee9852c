package cell

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/otmatch/dataset"
)

var (
	// ErrNoFields is returned when Partition is called without stratification fields.
	ErrNoFields = errors.New("cell: no stratification fields")

	// ErrMissingStratum reports a record with an empty stratification value.
	// It is a schema problem, so it also matches dataset.ErrSchemaMismatch.
	ErrMissingStratum = fmt.Errorf("cell: missing stratification value: %w", dataset.ErrSchemaMismatch)

	// ErrFieldMismatch is returned by Align when partitions were built with
	// different field lists and their keys are therefore not comparable.
	ErrFieldMismatch = errors.New("cell: partitions use different stratification fields")
)

// Cells is the partition of one dataset by a field list.
type Cells struct {
	ds     *dataset.Dataset
	fields []string
	keys   []Key
	rows   map[string][]int
}

// Partition groups the records of ds by their values on fields.
//
// Steps:
//  1. Resolve every field column (missing column ⇒ dataset.ErrSchemaMismatch).
//  2. Scan records in file order; an empty value fails with ErrMissingStratum
//     naming the record, so no record is ever grouped under a blank key.
//  3. Sort the distinct keys lexicographically.
//
// Every record lands in exactly one cell and row lists keep file order.
//
// Complexity: O(n·f + k·log k) for n records, f fields and k cells.
func Partition(ds *dataset.Dataset, fields []string) (*Cells, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	cols := make([][]string, len(fields))
	for i, f := range fields {
		col, err := ds.Stratum(f)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	c := &Cells{
		ds:     ds,
		fields: append([]string(nil), fields...),
		rows:   make(map[string][]int),
	}
	vals := make([]string, len(fields))
	for r := 0; r < ds.Len(); r++ {
		for i := range fields {
			v := cols[i][r]
			if v == "" {
				return nil, fmt.Errorf("dataset %q: record %q field %q: %w", ds.Name, ds.ID(r), fields[i], ErrMissingStratum)
			}
			vals[i] = v
		}
		k := NewKey(fields, vals)
		if _, ok := c.rows[k.id]; !ok {
			c.keys = append(c.keys, k)
		}
		c.rows[k.id] = append(c.rows[k.id], r)
	}
	sort.Slice(c.keys, func(i, j int) bool { return less(c.keys[i], c.keys[j]) })

	return c, nil
}

// Dataset returns the partitioned dataset.
func (c *Cells) Dataset() *dataset.Dataset { return c.ds }

// Fields returns the stratification fields used.
func (c *Cells) Fields() []string { return append([]string(nil), c.fields...) }

// Keys returns the cell keys in deterministic order.
func (c *Cells) Keys() []Key { return append([]Key(nil), c.keys...) }

// Len returns the number of cells.
func (c *Cells) Len() int { return len(c.keys) }

// Lookup returns the view of the cell with key k, or false when the dataset
// has no record in that cell.
func (c *Cells) Lookup(k Key) (dataset.View, bool) {
	rows, ok := c.rows[k.id]
	if !ok {
		return dataset.View{}, false
	}
	v, err := c.ds.View(rows)
	if err != nil {
		// rows were produced from this dataset; cannot be out of range.
		return dataset.View{}, false
	}

	return v, true
}
