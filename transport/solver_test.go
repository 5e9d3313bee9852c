package transport_test

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/otmatch/matrix"
	"github.com/katalvlaran/otmatch/transport"
)

const tol = 1e-9

// toy is the 3×2 instance from the two-stage example:
// A weights [1,1,2] with v=[0,1,2], B weights [2,1] with v=[0,2].
func toy(t require.TestingT) ([]float64, []float64, *matrix.Dense) {
	c, err := matrix.NewDenseFrom([][]float64{{0, 2}, {1, 1}, {2, 0}})
	require.NoError(t, err)

	return []float64{0.25, 0.25, 0.5}, []float64{2.0 / 3, 1.0 / 3}, c
}

// SolverSuite runs the same checks against every solver kind.
type SolverSuite struct {
	suite.Suite
	kind   string
	solver transport.Solver
	ctx    context.Context
}

func (s *SolverSuite) newSolver(opts ...transport.Option) transport.Solver {
	solver, err := transport.New(s.kind, opts...)
	s.Require().NoError(err)

	return solver
}

func (s *SolverSuite) SetupTest() {
	s.solver = s.newSolver()
	s.ctx = context.Background()
}

func (s *SolverSuite) TestMarginalFidelity3x2() {
	a, b, c := toy(s.T())
	plan, err := s.solver.Solve(s.ctx, a, b, c)
	s.Require().NoError(err)

	rs, err := plan.RowSums()
	s.Require().NoError(err)
	cs, err := plan.ColSums()
	s.Require().NoError(err)
	s.Require().InDeltaSlice(a, rs, tol)
	s.Require().InDeltaSlice(b, cs, tol)

	plan.Matrix().Do(func(i, j int, v float64) bool {
		s.Require().GreaterOrEqual(v, 0.0, "P[%d,%d]", i, j)
		return true
	})
}

func (s *SolverSuite) TestToyOptimum() {
	a, b, c := toy(s.T())
	plan, err := s.solver.Solve(s.ctx, a, b, c)
	s.Require().NoError(err)

	want := [][]float64{{0.25, 0}, {0.25, 0}, {1.0 / 6, 1.0 / 3}}
	for i := range want {
		for j := range want[i] {
			v, err := plan.Matrix().At(i, j)
			s.Require().NoError(err)
			s.Require().InDelta(want[i][j], v, tol, "P[%d,%d]", i, j)
		}
	}
	s.Require().InDelta(7.0/12, plan.Cost(), tol)
	s.Require().Equal(4, plan.Nonzeros())
	s.Require().Greater(plan.Iterations(), 1)
}

func (s *SolverSuite) TestIterationCapNonConvergence() {
	a, b, c := toy(s.T())
	capped := s.newSolver(transport.WithMaxIterations(1))

	plan, err := capped.Solve(s.ctx, a, b, c)
	s.Require().ErrorIs(err, transport.ErrNonConvergence)
	s.Require().Nil(plan)
}

func (s *SolverSuite) TestIdentityCost() {
	c, err := matrix.NewDenseFrom([][]float64{{0, 1}, {1, 0}})
	s.Require().NoError(err)
	plan, err := s.solver.Solve(s.ctx, []float64{0.5, 0.5}, []float64{0.5, 0.5}, c)
	s.Require().NoError(err)
	s.Require().InDelta(0, plan.Cost(), tol)
	s.Require().Equal(2, plan.Nonzeros())
}

func (s *SolverSuite) TestSingleSource() {
	c, err := matrix.NewDenseFrom([][]float64{{3, 1, 2}})
	s.Require().NoError(err)
	b := []float64{0.2, 0.3, 0.5}
	plan, err := s.solver.Solve(s.ctx, []float64{1}, b, c)
	s.Require().NoError(err)
	cs, err := plan.ColSums()
	s.Require().NoError(err)
	s.Require().InDeltaSlice(b, cs, tol)
	s.Require().InDelta(0.2*3+0.3*1+0.5*2, plan.Cost(), tol)
}

// TestRandomInstancesAreExchangeOptimal checks fidelity and the 2-exchange
// optimality condition: for any two loaded pairs (i,j) and (k,l),
// C[i,j]+C[k,l] ≤ C[i,l]+C[k,j].
func (s *SolverSuite) TestRandomInstancesAreExchangeOptimal() {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		m, n := 2+r.Intn(6), 2+r.Intn(6)
		a := randomMarginal(r, m)
		b := randomMarginal(r, n)
		c, err := matrix.NewDense(m, n)
		s.Require().NoError(err)
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				s.Require().NoError(c.Set(i, j, float64(r.Intn(20))))
			}
		}

		plan, err := s.solver.Solve(s.ctx, a, b, c)
		s.Require().NoError(err, "trial %d", trial)
		rs, _ := plan.RowSums()
		cs, _ := plan.ColSums()
		s.Require().InDeltaSlice(a, rs, tol)
		s.Require().InDeltaSlice(b, cs, tol)

		p := plan.Matrix()
		at := func(x matrix.Matrix, i, j int) float64 {
			v, err := x.At(i, j)
			s.Require().NoError(err)
			return v
		}
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				if at(p, i, j) == 0 {
					continue
				}
				for k := 0; k < m; k++ {
					for l := 0; l < n; l++ {
						if at(p, k, l) == 0 {
							continue
						}
						lhs := at(c, i, j) + at(c, k, l)
						rhs := at(c, i, l) + at(c, k, j)
						s.Require().LessOrEqual(lhs, rhs+1e-9, "trial %d: (%d,%d),(%d,%d)", trial, i, j, k, l)
					}
				}
			}
		}
	}
}

func (s *SolverSuite) TestInvalidInputs() {
	a, b, c := toy(s.T())

	_, err := s.solver.Solve(s.ctx, []float64{0.5, 0.25, 0.1}, b, c)
	s.Require().ErrorIs(err, transport.ErrBadMarginal)

	_, err = s.solver.Solve(s.ctx, []float64{1.25, -0.25, 0}, b, c)
	s.Require().ErrorIs(err, transport.ErrBadMarginal)

	_, err = s.solver.Solve(s.ctx, nil, b, c)
	s.Require().ErrorIs(err, transport.ErrBadMarginal)

	_, err = s.solver.Solve(s.ctx, []float64{0.5, 0.5}, b, c)
	s.Require().ErrorIs(err, transport.ErrDimensionMismatch)

	_, err = s.solver.Solve(s.ctx, a, b, nil)
	s.Require().ErrorIs(err, transport.ErrDimensionMismatch)

	neg, err := matrix.NewDenseFrom([][]float64{{0, 2}, {1, -1}, {2, 0}})
	s.Require().NoError(err)
	_, err = s.solver.Solve(s.ctx, a, b, neg)
	s.Require().ErrorIs(err, transport.ErrNegativeCost)
}

func (s *SolverSuite) TestCanceledContext() {
	a, b, c := toy(s.T())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.solver.Solve(ctx, a, b, c)
	s.Require().ErrorIs(err, context.Canceled)
}

func (s *SolverSuite) TestReleasedPlan() {
	a, b, c := toy(s.T())
	plan, err := s.solver.Solve(s.ctx, a, b, c)
	s.Require().NoError(err)
	plan.Release()
	_, err = plan.RowSums()
	s.Require().ErrorIs(err, matrix.ErrReleased)
}

// TestOneDimensionalClosedForm compares the optimum under |x−y| with the
// closed form ∫|F−G| of the two cumulative distributions.
func (s *SolverSuite) TestOneDimensionalClosedForm() {
	r := rand.New(rand.NewSource(11))
	m, n := 40, 55
	x, y := make([]float64, m), make([]float64, n)
	for i := range x {
		x[i] = float64(r.Intn(100))
	}
	for j := range y {
		y[j] = float64(r.Intn(100))
	}
	a, b := randomMarginal(r, m), randomMarginal(r, n)
	c, err := matrix.NewDense(m, n)
	s.Require().NoError(err)
	for i := range x {
		for j := range y {
			s.Require().NoError(c.Set(i, j, math.Abs(x[i]-y[j])))
		}
	}

	plan, err := s.solver.Solve(s.ctx, a, b, c)
	s.Require().NoError(err)
	s.Require().InDelta(wasserstein1(x, a, y, b), plan.Cost(), 1e-7)
}

func (s *SolverSuite) TestZeroWeightTarget() {
	c, err := matrix.NewDenseFrom([][]float64{{0, 1, 5}, {4, 0, 1}})
	s.Require().NoError(err)
	plan, err := s.solver.Solve(s.ctx, []float64{0.5, 0.5}, []float64{0.5, 0, 0.5}, c)
	s.Require().NoError(err)

	cs, err := plan.ColSums()
	s.Require().NoError(err)
	s.Require().InDeltaSlice([]float64{0.5, 0, 0.5}, cs, tol)
	s.Require().InDelta(0.5, plan.Cost(), tol)
}

func TestSSPSuite(t *testing.T) {
	suite.Run(t, &SolverSuite{kind: transport.KindSSP})
}

func TestNetworkSimplexSuite(t *testing.T) {
	suite.Run(t, &SolverSuite{kind: transport.KindNetworkSimplex})
}

// TestSolversAgree checks that both solvers reach the same optimal cost on
// instances large enough for many degenerate simplex pivots.
func TestSolversAgree(t *testing.T) {
	ssp, err := transport.New(transport.KindSSP)
	require.NoError(t, err)
	ns, err := transport.New(transport.KindNetworkSimplex)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(3))
	for trial := 0; trial < 5; trial++ {
		m, n := 30+r.Intn(40), 30+r.Intn(40)
		a, b := randomMarginal(r, m), randomMarginal(r, n)
		c, err := matrix.NewDense(m, n)
		require.NoError(t, err)
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				require.NoError(t, c.Set(i, j, float64(r.Intn(5))))
			}
		}

		want, err := ssp.Solve(context.Background(), a, b, c)
		require.NoError(t, err)
		got, err := ns.Solve(context.Background(), a, b, c)
		require.NoError(t, err)
		require.InDelta(t, want.Cost(), got.Cost(), 1e-7, "trial %d (%d×%d)", trial, m, n)

		rs, _ := got.RowSums()
		cs, _ := got.ColSums()
		require.InDeltaSlice(t, a, rs, tol)
		require.InDeltaSlice(t, b, cs, tol)
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := transport.New("sinkhorn")
	require.ErrorIs(t, err, transport.ErrUnknownSolver)

	s, err := transport.New("")
	require.NoError(t, err)
	require.IsType(t, &transport.NetworkSimplex{}, s)

	_, err = transport.New(transport.KindSSP, transport.WithMaxIterations(-1))
	require.ErrorIs(t, err, transport.ErrBadOptions)
}

func TestOptionsValidate(t *testing.T) {
	_, err := transport.NewSSP(transport.WithMaxIterations(0))
	require.ErrorIs(t, err, transport.ErrBadOptions)

	_, err = transport.NewSSP(transport.WithEpsilon(-1))
	require.ErrorIs(t, err, transport.ErrBadOptions)

	_, err = transport.NewSSP(transport.WithTolerance(0))
	require.ErrorIs(t, err, transport.ErrBadOptions)

	s, err := transport.NewSSP(transport.WithMaxIterations(10))
	require.NoError(t, err)
	require.Equal(t, 10, s.Options().MaxIterations)
	require.Equal(t, transport.DefaultTolerance, s.Options().Tolerance)

	_, err = transport.NewNetworkSimplex(transport.WithEpsilon(1), transport.WithTolerance(0.5))
	require.ErrorIs(t, err, transport.ErrBadOptions)

	ns, err := transport.NewNetworkSimplex(transport.WithMaxIterations(10))
	require.NoError(t, err)
	require.Equal(t, 10, ns.Options().MaxIterations)
}

func TestNormalize(t *testing.T) {
	m, mass, err := transport.Normalize([]float64{1, 1, 2})
	require.NoError(t, err)
	require.Equal(t, 4.0, mass)
	require.Equal(t, []float64{0.25, 0.25, 0.5}, m)

	_, _, err = transport.Normalize([]float64{0, 0})
	require.ErrorIs(t, err, transport.ErrBadMarginal)

	_, _, err = transport.Normalize([]float64{1, -1})
	require.ErrorIs(t, err, transport.ErrBadMarginal)

	_, _, err = transport.Normalize(nil)
	require.ErrorIs(t, err, transport.ErrBadMarginal)
}

func randomMarginal(r *rand.Rand, n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 + float64(r.Intn(9))
	}
	m, _, _ := transport.Normalize(w)

	return m
}

// wasserstein1 is Σ |F(z)−G(z)|·(z'−z) over the merged support of two
// weighted point sets on the line.
func wasserstein1(x, a, y, b []float64) float64 {
	type atom struct{ at, w float64 }
	atoms := make([]atom, 0, len(x)+len(y))
	for i := range x {
		atoms = append(atoms, atom{x[i], a[i]})
	}
	for j := range y {
		atoms = append(atoms, atom{y[j], -b[j]})
	}
	sort.Slice(atoms, func(i, j int) bool { return atoms[i].at < atoms[j].at })

	var diff, total float64
	for k := 0; k+1 < len(atoms); k++ {
		diff += atoms[k].w
		total += math.Abs(diff) * (atoms[k+1].at - atoms[k].at)
	}

	return total
}
