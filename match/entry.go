package match

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/otmatch/transport"
)

var (
	// ErrIDMismatch is returned when the id lists do not match the plan shape.
	ErrIDMismatch = errors.New("match: id list length does not match plan")

	// ErrBadMass is returned for a negative or non-finite source mass.
	ErrBadMass = errors.New("match: invalid source mass")
)

// Entry is one row of the correspondence table. C is empty in two-way runs.
type Entry struct {
	A      string
	B      string
	C      string
	Weight float64
}

// Link is an index-level plan entry: source position, target position and
// rescaled weight.
type Link struct {
	Src    int
	Tgt    int
	Weight float64
}

// Links returns the nonzero entries of plan in row-major order with weights
// multiplied by mass.
//
// Complexity: O(m·n).
func Links(plan *transport.Plan, mass float64) ([]Link, error) {
	if mass < 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("%w: %v", ErrBadMass, mass)
	}
	var (
		out []Link
		row []float64
		err error
	)
	p := plan.Matrix()
	for i := 0; i < p.Rows(); i++ {
		if row, err = p.Row(i); err != nil {
			return nil, err
		}
		for j, v := range row {
			if v != 0 {
				out = append(out, Link{Src: i, Tgt: j, Weight: v * mass})
			}
		}
	}

	return out, nil
}

// Extract maps the nonzero plan entries to (srcID, tgtID, weight) entries in
// row-major order. It does not modify the plan, so repeated calls return equal
// slices.
//
// Errors: ErrIDMismatch, ErrBadMass, matrix.ErrReleased.
func Extract(plan *transport.Plan, mass float64, srcIDs, tgtIDs []string) ([]Entry, error) {
	if len(srcIDs) != plan.Rows() || len(tgtIDs) != plan.Cols() {
		return nil, fmt.Errorf("%w: plan %d×%d, ids %d×%d", ErrIDMismatch, plan.Rows(), plan.Cols(), len(srcIDs), len(tgtIDs))
	}
	links, err := Links(plan, mass)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(links))
	for k, l := range links {
		out[k] = Entry{A: srcIDs[l.Src], B: tgtIDs[l.Tgt], Weight: l.Weight}
	}

	return out, nil
}

// TotalWeight sums entry weights.
func TotalWeight(entries []Entry) float64 {
	var s float64
	for _, e := range entries {
		s += e.Weight
	}

	return s
}
