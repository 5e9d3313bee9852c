package cell

import (
	"math"
	"strconv"
	"strings"
)

// keySep separates values inside Key.ID; it cannot appear in CSV-trimmed text
// in practice and keeps IDs unambiguous for map lookups.
const keySep = "\x1f"

// Key identifies one cell: the stratification field names and the values
// shared by every record of the cell, in field order.
type Key struct {
	fields []string
	values []string
	id     string
}

// NewKey builds a key from parallel field and value lists.
// The slices are copied and every value goes through Canonical, so "1" and
// "1.0" name the same cell.
func NewKey(fields, values []string) Key {
	vals := make([]string, len(values))
	for i, v := range values {
		vals[i] = Canonical(v)
	}

	return Key{
		fields: append([]string(nil), fields...),
		values: vals,
		id:     strings.Join(vals, keySep),
	}
}

// Canonical returns the shortest decimal form of a finite numeric value
// ("1.0" and "1e0" become "1", "-0" becomes "0"). Non-numeric values are
// returned unchanged.
func Canonical(v string) string {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return v
	}
	if f == 0 {
		f = 0
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ID is the canonical map key of the cell (values only, field order).
func (k Key) ID() string { return k.id }

// Fields returns the stratification field names.
func (k Key) Fields() []string { return append([]string(nil), k.fields...) }

// Values returns the stratification values in field order.
func (k Key) Values() []string { return append([]string(nil), k.values...) }

// String renders the key as "(married=1, old=0, employed=1)".
func (k Key) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i := range k.values {
		if i > 0 {
			b.WriteString(", ")
		}
		if i < len(k.fields) {
			b.WriteString(k.fields[i])
			b.WriteByte('=')
		}
		b.WriteString(k.values[i])
	}
	b.WriteByte(')')

	return b.String()
}

// less orders keys lexicographically by value tuple.
func less(a, b Key) bool {
	n := len(a.values)
	if len(b.values) < n {
		n = len(b.values)
	}
	for i := 0; i < n; i++ {
		if a.values[i] != b.values[i] {
			return a.values[i] < b.values[i]
		}
	}

	return len(a.values) < len(b.values)
}
