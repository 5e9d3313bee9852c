package dataset

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Schema declares which columns of a table a run needs.
// Columns that are not declared are skipped while reading.
type Schema struct {
	// Name becomes Dataset.Name.
	Name string
	// IDColumn holds the unique record identifier (default "id").
	IDColumn string
	// WeightColumn holds the survey weight (default "weight").
	WeightColumn string
	// Strata are the stratification fields, read as raw strings.
	Strata []string
	// Variables are the matching variables, parsed as float64.
	Variables []string
}

func (s Schema) idColumn() string {
	if s.IDColumn == "" {
		return "id"
	}

	return s.IDColumn
}

func (s Schema) weightColumn() string {
	if s.WeightColumn == "" {
		return "weight"
	}

	return s.WeightColumn
}

// LoadCSV opens path and reads it with ReadCSV. Paths ending in ".gz" are
// gunzipped on the fly.
func LoadCSV(path string, schema Schema) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: open: %w", schema.Name, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: gzip %s: %w", schema.Name, path, err)
		}
		defer gz.Close()
		r = gz
	}

	return ReadCSV(r, schema)
}

// ReadCSV reads a header-first CSV table and keeps only the declared columns.
//
// Steps:
//  1. Read the header and resolve every declared column to its position;
//     a missing column fails with ErrSchemaMismatch before any row is read.
//  2. Stream rows: ids and strata are kept verbatim (surrounding spaces
//     trimmed), weight and variables are parsed with strconv.ParseFloat.
//     An empty or non-numeric numeric cell fails with ErrSchemaMismatch.
//  3. Assemble the Dataset (id uniqueness and weight sign are checked by New).
//
// Complexity: O(rows × declared columns).
func ReadCSV(r io.Reader, schema Schema) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset %q: empty input: %w", schema.Name, ErrSchemaMismatch)
		}
		return nil, fmt.Errorf("dataset %q: header: %w", schema.Name, err)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	col := func(name string) (int, error) {
		i, ok := pos[name]
		if !ok {
			return 0, fmt.Errorf("dataset %q: column %q not in header: %w", schema.Name, name, ErrSchemaMismatch)
		}
		return i, nil
	}

	idPos, err := col(schema.idColumn())
	if err != nil {
		return nil, err
	}
	wPos, err := col(schema.weightColumn())
	if err != nil {
		return nil, err
	}
	strataPos := make([]int, len(schema.Strata))
	for k, name := range schema.Strata {
		if strataPos[k], err = col(name); err != nil {
			return nil, err
		}
	}
	varPos := make([]int, len(schema.Variables))
	for k, name := range schema.Variables {
		if varPos[k], err = col(name); err != nil {
			return nil, err
		}
	}

	var (
		ids     []string
		weights []float64
		strata  = make([][]string, len(schema.Strata))
		vars    = make([][]float64, len(schema.Variables))
		line    = 1
	)
	parse := func(rec []string, p int, name string) (float64, error) {
		s := strings.TrimSpace(rec[p])
		v, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			return 0, fmt.Errorf("dataset %q: line %d column %q value %q: %w", schema.Name, line, name, s, ErrSchemaMismatch)
		}
		return v, nil
	}
	for {
		rec, rerr := cr.Read()
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("dataset %q: %w", schema.Name, rerr)
		}
		line++
		ids = append(ids, strings.TrimSpace(rec[idPos]))
		w, perr := parse(rec, wPos, schema.weightColumn())
		if perr != nil {
			return nil, perr
		}
		weights = append(weights, w)
		for k, p := range strataPos {
			strata[k] = append(strata[k], strings.TrimSpace(rec[p]))
		}
		for k, p := range varPos {
			v, perr := parse(rec, p, schema.Variables[k])
			if perr != nil {
				return nil, perr
			}
			vars[k] = append(vars[k], v)
		}
	}

	ds, err := New(schema.Name, ids, weights)
	if err != nil {
		return nil, err
	}
	for k, name := range schema.Strata {
		if strata[k] == nil {
			strata[k] = []string{}
		}
		if err = ds.AddStratum(name, strata[k]); err != nil {
			return nil, err
		}
	}
	for k, name := range schema.Variables {
		if vars[k] == nil {
			vars[k] = []float64{}
		}
		if err = ds.AddVariable(name, vars[k]); err != nil {
			return nil, err
		}
	}

	return ds, nil
}
