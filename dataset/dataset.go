package dataset

import (
	"fmt"
	"math"
	"sort"
)

// Dataset is one survey table in columnar form.
//
// IDs and Weights are indexed by record position. Stratification columns are
// kept as raw strings (they are only compared for equality); matching
// variables are float64. Columns are added once and never mutated afterwards,
// so a Dataset is safe for concurrent reads.
type Dataset struct {
	// Name labels the dataset in logs, errors and output column names
	// (e.g. "dina", "cps", "scf").
	Name string

	ids     []string
	weights []float64
	strata  map[string][]string
	vars    map[string][]float64
}

// Record is the row-oriented form of one observation. It is a convenience for
// building small datasets (tests, examples); the engine works on columns.
type Record struct {
	ID     string
	Weight float64
	Strata map[string]string
	Values map[string]float64
}

// New creates a dataset from identifiers and weights.
//
// Errors: ErrLengthMismatch, ErrEmptyID, ErrDuplicateID, ErrBadWeight.
// Complexity: O(n).
func New(name string, ids []string, weights []float64) (*Dataset, error) {
	if len(ids) != len(weights) {
		return nil, fmt.Errorf("dataset %q: %d ids vs %d weights: %w", name, len(ids), len(weights), ErrLengthMismatch)
	}
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("dataset %q: row %d: %w", name, i, ErrEmptyID)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("dataset %q: id %q: %w", name, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
		w := weights[i]
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, fmt.Errorf("dataset %q: row %d (id %q) weight %g: %w", name, i, id, w, ErrBadWeight)
		}
	}

	return &Dataset{
		Name:    name,
		ids:     append([]string(nil), ids...),
		weights: append([]float64(nil), weights...),
		strata:  make(map[string][]string),
		vars:    make(map[string][]float64),
	}, nil
}

// FromRecords builds a dataset from row-oriented records. The union of all
// stratum and value keys becomes the schema; a key absent from some record
// yields an empty stratum value or a NaN variable value, both of which the
// schema checks later reject.
func FromRecords(name string, recs []Record) (*Dataset, error) {
	ids := make([]string, len(recs))
	weights := make([]float64, len(recs))
	strataKeys := map[string]struct{}{}
	varKeys := map[string]struct{}{}
	for i, r := range recs {
		ids[i] = r.ID
		weights[i] = r.Weight
		for k := range r.Strata {
			strataKeys[k] = struct{}{}
		}
		for k := range r.Values {
			varKeys[k] = struct{}{}
		}
	}
	ds, err := New(name, ids, weights)
	if err != nil {
		return nil, err
	}
	for _, k := range sortedKeys(strataKeys) {
		col := make([]string, len(recs))
		for i, r := range recs {
			col[i] = r.Strata[k]
		}
		if err = ds.AddStratum(k, col); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedKeys(varKeys) {
		col := make([]float64, len(recs))
		for i, r := range recs {
			v, ok := r.Values[k]
			if !ok {
				v = math.NaN()
			}
			col[i] = v
		}
		if err = ds.AddVariable(k, col); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// AddStratum attaches a stratification column. Values are stored as given;
// empty strings are treated as missing by the cell partitioner.
func (d *Dataset) AddStratum(name string, values []string) error {
	if len(values) != len(d.ids) {
		return fmt.Errorf("dataset %q: stratum %q has %d values for %d records: %w", d.Name, name, len(values), len(d.ids), ErrLengthMismatch)
	}
	d.strata[name] = append([]string(nil), values...)

	return nil
}

// AddVariable attaches a matching-variable column. NaN marks a missing value
// and is rejected by RequireVariables.
func (d *Dataset) AddVariable(name string, values []float64) error {
	if len(values) != len(d.ids) {
		return fmt.Errorf("dataset %q: variable %q has %d values for %d records: %w", d.Name, name, len(values), len(d.ids), ErrLengthMismatch)
	}
	d.vars[name] = append([]float64(nil), values...)

	return nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.ids) }

// ID returns the identifier of record i.
func (d *Dataset) ID(i int) string { return d.ids[i] }

// Weight returns the survey weight of record i.
func (d *Dataset) Weight(i int) float64 { return d.weights[i] }

// Stratum returns the raw column for a stratification field.
// The returned slice must not be modified.
func (d *Dataset) Stratum(name string) ([]string, error) {
	col, ok := d.strata[name]
	if !ok {
		return nil, fmt.Errorf("dataset %q: stratification field %q not found: %w", d.Name, name, ErrSchemaMismatch)
	}

	return col, nil
}

// Variable returns the raw column for a matching variable.
// The returned slice must not be modified.
func (d *Dataset) Variable(name string) ([]float64, error) {
	col, ok := d.vars[name]
	if !ok {
		return nil, fmt.Errorf("dataset %q: matching variable %q not found: %w", d.Name, name, ErrSchemaMismatch)
	}

	return col, nil
}

// StrataNames lists stratification columns in lexicographic order.
func (d *Dataset) StrataNames() []string { return sortedKeys(d.strata) }

// VariableNames lists matching-variable columns in lexicographic order.
func (d *Dataset) VariableNames() []string { return sortedKeys(d.vars) }

// RequireStrata checks that every named stratification column exists.
// Missing values inside a present column are the partitioner's concern.
func (d *Dataset) RequireStrata(names ...string) error {
	for _, n := range names {
		if _, err := d.Stratum(n); err != nil {
			return err
		}
	}

	return nil
}

// RequireVariables checks that every named matching variable exists and holds
// only finite numbers. The first violation is reported with its row and id.
//
// Complexity: O(k·n) for k names.
func (d *Dataset) RequireVariables(names ...string) error {
	for _, n := range names {
		col, err := d.Variable(n)
		if err != nil {
			return err
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("dataset %q: variable %q row %d (id %q) is missing or not finite: %w", d.Name, n, i, d.ids[i], ErrSchemaMismatch)
			}
		}
	}

	return nil
}

// All returns a view over every record in file order.
func (d *Dataset) All() View {
	rows := make([]int, len(d.ids))
	for i := range rows {
		rows[i] = i
	}

	return View{ds: d, rows: rows}
}

// View returns a view over the given record indices (kept in the given order).
//
// Errors: ErrRowOutOfRange.
func (d *Dataset) View(rows []int) (View, error) {
	for _, r := range rows {
		if r < 0 || r >= len(d.ids) {
			return View{}, fmt.Errorf("dataset %q: row %d: %w", d.Name, r, ErrRowOutOfRange)
		}
	}

	return View{ds: d, rows: append([]int(nil), rows...)}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}
