package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/katalvlaran/otmatch/match"
)

// CSV writes a header row then one line per entry.
type CSV struct {
	w      *csv.Writer
	c      io.Closer
	cols   Columns
	rec    []string
	closed bool
}

// NewCSV writes the header for cols to w. If w is an io.Closer, Close closes it.
func NewCSV(w io.Writer, cols Columns) (*CSV, error) {
	s := &CSV{w: csv.NewWriter(w), cols: cols}
	if c, ok := w.(io.Closer); ok {
		s.c = c
	}
	s.rec = make([]string, len(cols.header()))
	if err := s.w.Write(cols.header()); err != nil {
		return nil, err
	}

	return s, nil
}

func newCSV(w io.WriteCloser, cols Columns) (Sink, error) {
	s, err := NewCSV(w, cols)
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	return s, nil
}

// Write appends entries.
func (s *CSV) Write(entries []match.Entry) error {
	if s.closed {
		return ErrClosed
	}
	for _, e := range entries {
		s.rec[0], s.rec[1] = e.A, e.B
		if s.cols.ThreeWay() {
			s.rec[2] = e.C
		}
		s.rec[len(s.rec)-1] = strconv.FormatFloat(e.Weight, 'g', -1, 64)
		if err := s.w.Write(s.rec); err != nil {
			return err
		}
	}

	return nil
}

// Close flushes buffered lines and closes the underlying writer.
func (s *CSV) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.w.Flush()
	err := s.w.Error()
	if s.c != nil {
		if cerr := s.c.Close(); err == nil {
			err = cerr
		}
	}

	return err
}
