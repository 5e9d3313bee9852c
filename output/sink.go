package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/katalvlaran/otmatch/match"
)

// Supported formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

var (
	// ErrUnknownFormat is returned by Open for an unsupported format.
	ErrUnknownFormat = errors.New("output: unknown format")

	// ErrClosed is returned when writing to a closed sink.
	ErrClosed = errors.New("output: sink closed")
)

// Columns names the output columns. C is empty for two-way tables.
type Columns struct {
	A, B, C string
	Weight  string
}

// ColumnsFor derives "<name>_id" columns from dataset names. tertiary may be
// empty.
func ColumnsFor(primary, secondary, tertiary string) Columns {
	c := Columns{A: primary + "_id", B: secondary + "_id", Weight: "weight"}
	if tertiary != "" {
		c.C = tertiary + "_id"
	}

	return c
}

// ThreeWay reports whether the table has a third id column.
func (c Columns) ThreeWay() bool { return c.C != "" }

func (c Columns) header() []string {
	if c.ThreeWay() {
		return []string{c.A, c.B, c.C, c.Weight}
	}

	return []string{c.A, c.B, c.Weight}
}

// Sink writes correspondence entries.
type Sink interface {
	Write(entries []match.Entry) error
	Close() error
}

// Open creates path (and its parent directories) and returns a sink for
// format.
func Open(path, format string, cols Columns) (Sink, error) {
	if format != FormatCSV && format != FormatParquet {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if format == FormatParquet {
		return newParquet(f, cols)
	}

	return newCSV(f, cols)
}
