package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/otmatch/matrix"
)

// Sentinel errors returned by solvers in this package.
var (
	// ErrNonConvergence indicates the iteration cap was reached, or the final
	// plan missed a marginal by more than Tolerance.
	ErrNonConvergence = errors.New("transport: solver did not converge")

	// ErrBadMarginal indicates an empty, negative, non-finite or
	// non-normalized marginal.
	ErrBadMarginal = errors.New("transport: invalid marginal")

	// ErrDimensionMismatch indicates that the cost matrix shape does not match
	// the marginal lengths.
	ErrDimensionMismatch = errors.New("transport: dimension mismatch")

	// ErrNegativeCost indicates a negative or non-finite cost entry.
	ErrNegativeCost = errors.New("transport: cost entries must be finite and non-negative")

	// ErrBadOptions indicates invalid solver options.
	ErrBadOptions = errors.New("transport: invalid options")

	// ErrUnknownSolver is returned by New for an unrecognized solver kind.
	ErrUnknownSolver = errors.New("transport: unknown solver")
)

// Solver computes an optimal transport plan for marginals a, b and cost c.
// Implementations must never return a plan whose marginals differ from a and
// b by more than their tolerance.
type Solver interface {
	Solve(ctx context.Context, a, b []float64, c matrix.Matrix) (*Plan, error)
}

// Defaults used by DefaultOptions.
const (
	// DefaultMaxIterations matches the "effectively unbounded" cap used for
	// production runs.
	DefaultMaxIterations = 1_000_000_000
	DefaultEpsilon       = 1e-14
	DefaultTolerance     = 1e-9
)

// Options configures every solver in this package.
//   - MaxIterations: maximum number of SSP augmentations or simplex pivots (> 0).
//   - Epsilon: snapping threshold for residual quantities (≥ 0).
//   - Tolerance: marginal tolerance (> 0, ≥ Epsilon).
type Options struct {
	MaxIterations int
	Epsilon       float64
	Tolerance     float64
}

// DefaultOptions returns Options with the package defaults.
func DefaultOptions() Options {
	return Options{
		MaxIterations: DefaultMaxIterations,
		Epsilon:       DefaultEpsilon,
		Tolerance:     DefaultTolerance,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithMaxIterations sets the iteration cap.
func WithMaxIterations(n int) Option {
	return func(o *Options) { o.MaxIterations = n }
}

// WithEpsilon sets the snapping threshold.
func WithEpsilon(eps float64) Option {
	return func(o *Options) { o.Epsilon = eps }
}

// WithTolerance sets the marginal tolerance.
func WithTolerance(tol float64) Option {
	return func(o *Options) { o.Tolerance = tol }
}

// Validate checks option ranges.
func (o Options) Validate() error {
	switch {
	case o.MaxIterations <= 0:
		return fmt.Errorf("%w: MaxIterations=%d must be > 0", ErrBadOptions, o.MaxIterations)
	case o.Epsilon < 0:
		return fmt.Errorf("%w: Epsilon=%g must be >= 0", ErrBadOptions, o.Epsilon)
	case o.Tolerance <= 0 || o.Tolerance < o.Epsilon:
		return fmt.Errorf("%w: Tolerance=%g must be > 0 and >= Epsilon", ErrBadOptions, o.Tolerance)
	}

	return nil
}
