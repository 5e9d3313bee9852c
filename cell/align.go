package cell

import (
	"fmt"
	"sort"
	"strings"
)

// Alignment is one key of the union of several partitions, with a presence
// flag per partition (in the order given to Align).
type Alignment struct {
	Key     Key
	Present []bool
}

// Complete reports whether the key exists in every partition.
func (a Alignment) Complete() bool {
	for _, p := range a.Present {
		if !p {
			return false
		}
	}

	return true
}

// Missing returns the indices of partitions lacking the key.
func (a Alignment) Missing() []int {
	var out []int
	for i, p := range a.Present {
		if !p {
			out = append(out, i)
		}
	}

	return out
}

// Align computes the sorted union of keys across partitions.
// All partitions must share the same field list (ErrFieldMismatch otherwise).
// Nil partitions are allowed and count as "key absent" (an unconfigured
// optional dataset never has any cell).
//
// Complexity: O(K·p) for K distinct keys and p partitions, plus the sort.
func Align(parts ...*Cells) ([]Alignment, error) {
	var fields []string
	for _, p := range parts {
		if p == nil {
			continue
		}
		if fields == nil {
			fields = p.fields
			continue
		}
		if strings.Join(fields, keySep) != strings.Join(p.fields, keySep) {
			return nil, fmt.Errorf("%w: %v vs %v", ErrFieldMismatch, fields, p.fields)
		}
	}

	index := make(map[string]int)
	var out []Alignment
	for pi, p := range parts {
		if p == nil {
			continue
		}
		for _, k := range p.keys {
			at, ok := index[k.id]
			if !ok {
				at = len(out)
				index[k.id] = at
				out = append(out, Alignment{Key: k, Present: make([]bool, len(parts))})
			}
			out[at].Present[pi] = true
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Key, out[j].Key) })

	return out, nil
}
