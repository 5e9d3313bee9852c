// SPDX-License-Identifier: MIT

package transport

import "fmt"

// Solver kinds accepted by New.
const (
	KindNetworkSimplex = "simplex"
	KindSSP            = "ssp"
)

// Kinds lists the accepted solver kinds, default first.
func Kinds() []string { return []string{KindNetworkSimplex, KindSSP} }

// New builds the solver named by kind; the empty kind selects
// KindNetworkSimplex.
//
// Errors: ErrUnknownSolver, ErrBadOptions.
func New(kind string, opts ...Option) (Solver, error) {
	switch kind {
	case "", KindNetworkSimplex:
		s, err := NewNetworkSimplex(opts...)
		if err != nil {
			return nil, err
		}

		return s, nil
	case KindSSP:
		s, err := NewSSP(opts...)
		if err != nil {
			return nil, err
		}

		return s, nil
	}

	return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownSolver, kind, Kinds())
}
