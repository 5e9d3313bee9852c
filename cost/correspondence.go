package cost

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCorrespondence is returned when no variable pair is declared.
	ErrEmptyCorrespondence = errors.New("cost: empty variable correspondence")

	// ErrBadPair reports a pair with an empty source or target name.
	ErrBadPair = errors.New("cost: variable pair with empty name")

	// ErrDuplicateVariable reports a source variable declared twice.
	ErrDuplicateVariable = errors.New("cost: duplicate source variable")
)

// Pair links a source-side variable to the target-side variable it is
// compared against.
type Pair struct {
	Source string `yaml:"source" json:"source"`
	Target string `yaml:"target" json:"target"`
}

// Correspondence is the ordered list of variable pairs used by one stage.
// Order fixes the summation order of the cost and therefore bit-level
// reproducibility.
type Correspondence []Pair

// NewCorrespondence validates and copies pairs.
func NewCorrespondence(pairs ...Pair) (Correspondence, error) {
	c := Correspondence(append([]Pair(nil), pairs...))
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks that c is non-empty, that names are set and that no source
// variable appears twice.
func (c Correspondence) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCorrespondence
	}
	seen := make(map[string]struct{}, len(c))
	for k, p := range c {
		if p.Source == "" || p.Target == "" {
			return fmt.Errorf("pair %d (%q→%q): %w", k, p.Source, p.Target, ErrBadPair)
		}
		if _, dup := seen[p.Source]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateVariable, p.Source)
		}
		seen[p.Source] = struct{}{}
	}

	return nil
}

// Sources returns the source variable names in order.
func (c Correspondence) Sources() []string {
	out := make([]string, len(c))
	for k, p := range c {
		out[k] = p.Source
	}

	return out
}

// Targets returns the target variable names in order.
func (c Correspondence) Targets() []string {
	out := make([]string, len(c))
	for k, p := range c {
		out[k] = p.Target
	}

	return out
}
