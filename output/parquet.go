package output

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/katalvlaran/otmatch/match"
)

// Parquet writes entries as rows of a flat schema: one required string
// column per id and a required double weight column.
type Parquet struct {
	w      *parquet.Writer
	c      io.Closer
	cols   Columns
	idx    [4]int // column indexes of A, B, C, Weight
	closed bool
}

// NewParquet prepares a writer on w. If w is an io.Closer, Close closes it.
func NewParquet(w io.Writer, cols Columns) (*Parquet, error) {
	group := parquet.Group{
		cols.A:      parquet.String(),
		cols.B:      parquet.String(),
		cols.Weight: parquet.Leaf(parquet.DoubleType),
	}
	if cols.ThreeWay() {
		group[cols.C] = parquet.String()
	}
	schema := parquet.NewSchema("match", group)

	s := &Parquet{w: parquet.NewWriter(w, schema), cols: cols}
	if c, ok := w.(io.Closer); ok {
		s.c = c
	}
	for k, name := range []string{cols.A, cols.B, cols.C, cols.Weight} {
		if name == "" {
			s.idx[k] = -1
			continue
		}
		leaf, ok := schema.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("output: parquet column %q not in schema", name)
		}
		s.idx[k] = leaf.ColumnIndex
	}

	return s, nil
}

func newParquet(w io.WriteCloser, cols Columns) (Sink, error) {
	s, err := NewParquet(w, cols)
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	return s, nil
}

// Write appends entries as rows.
func (s *Parquet) Write(entries []match.Entry) error {
	if s.closed {
		return ErrClosed
	}
	width := 3
	if s.cols.ThreeWay() {
		width = 4
	}
	rows := make([]parquet.Row, len(entries))
	for k, e := range entries {
		row := make(parquet.Row, width)
		row[s.idx[0]] = parquet.ValueOf(e.A).Level(0, 0, s.idx[0])
		row[s.idx[1]] = parquet.ValueOf(e.B).Level(0, 0, s.idx[1])
		if s.idx[2] >= 0 {
			row[s.idx[2]] = parquet.ValueOf(e.C).Level(0, 0, s.idx[2])
		}
		row[s.idx[3]] = parquet.ValueOf(e.Weight).Level(0, 0, s.idx[3])
		rows[k] = row
	}
	if _, err := s.w.WriteRows(rows); err != nil {
		return fmt.Errorf("output: parquet: %w", err)
	}

	return nil
}

// Close writes the footer and closes the underlying writer.
func (s *Parquet) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.w.Close()
	if s.c != nil {
		if cerr := s.c.Close(); err == nil {
			err = cerr
		}
	}

	return err
}
