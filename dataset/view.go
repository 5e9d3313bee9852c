package dataset

// View is a dataset restricted to an ordered subset of its records.
// Position k in a view maps to record Rows()[k] of the underlying dataset.
// The zero View is empty and belongs to no dataset.
type View struct {
	ds   *Dataset
	rows []int
}

// Dataset returns the underlying dataset (nil for the zero View).
func (v View) Dataset() *Dataset { return v.ds }

// Name returns the underlying dataset's name, or "" for the zero View.
func (v View) Name() string {
	if v.ds == nil {
		return ""
	}

	return v.ds.Name
}

// Len returns the number of records in the view.
func (v View) Len() int { return len(v.rows) }

// Empty reports whether the view has no records.
func (v View) Empty() bool { return len(v.rows) == 0 }

// Rows returns the dataset row indices backing the view. Do not modify.
func (v View) Rows() []int { return v.rows }

// ID returns the identifier at view position k.
func (v View) ID(k int) string { return v.ds.ids[v.rows[k]] }

// Weight returns the weight at view position k.
func (v View) Weight(k int) float64 { return v.ds.weights[v.rows[k]] }

// IDs gathers the identifiers of the view in order.
func (v View) IDs() []string {
	out := make([]string, len(v.rows))
	for k, r := range v.rows {
		out[k] = v.ds.ids[r]
	}

	return out
}

// Weights gathers the survey weights of the view in order.
func (v View) Weights() []float64 {
	out := make([]float64, len(v.rows))
	for k, r := range v.rows {
		out[k] = v.ds.weights[r]
	}

	return out
}

// Mass returns the total survey weight of the view.
func (v View) Mass() float64 {
	var s float64
	for _, r := range v.rows {
		s += v.ds.weights[r]
	}

	return s
}

// Values gathers one matching variable for the view in order.
//
// Errors: ErrSchemaMismatch when the variable does not exist.
func (v View) Values(name string) ([]float64, error) {
	if v.ds == nil {
		return nil, nil
	}
	col, err := v.ds.Variable(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(v.rows))
	for k, r := range v.rows {
		out[k] = col[r]
	}

	return out, nil
}

// Subset returns the view restricted to the given view positions.
// Positions are assumed valid (callers derive them from Len()).
func (v View) Subset(positions []int) View {
	rows := make([]int, len(positions))
	for k, p := range positions {
		rows[k] = v.rows[p]
	}

	return View{ds: v.ds, rows: rows}
}
