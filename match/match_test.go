package match_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/otmatch/cost"
	"github.com/katalvlaran/otmatch/dataset"
	"github.com/katalvlaran/otmatch/match"
	"github.com/katalvlaran/otmatch/matrix"
	"github.com/katalvlaran/otmatch/transport"
)

const tol = 1e-9

func view(t *testing.T, name, variable string, ids []string, weights, values []float64) dataset.View {
	t.Helper()
	ds, err := dataset.New(name, ids, weights)
	require.NoError(t, err)
	require.NoError(t, ds.AddVariable(variable, values))

	return ds.All()
}

// toyA and toyB are the hand-checkable two-stage example:
// A weights [1,1,2] v=[0,1,2], B weights [2,1] v=[0,2].
func toyA(t *testing.T) dataset.View {
	return view(t, "dina", "v", []string{"a0", "a1", "a2"}, []float64{1, 1, 2}, []float64{0, 1, 2})
}

func toyB(t *testing.T) dataset.View {
	return view(t, "cps", "v", []string{"b0", "b1"}, []float64{2, 1}, []float64{0, 2})
}

func solver(t *testing.T) transport.Solver {
	t.Helper()
	s, err := transport.New(transport.KindNetworkSimplex)
	require.NoError(t, err)

	return s
}

func corr(src, tgt string) cost.Correspondence {
	return cost.Correspondence{{Source: src, Target: tgt}}
}

func requireEntries(t *testing.T, want, got []match.Entry) {
	t.Helper()
	require.Len(t, got, len(want))
	for k := range want {
		require.Equal(t, want[k].A, got[k].A, "entry %d", k)
		require.Equal(t, want[k].B, got[k].B, "entry %d", k)
		require.Equal(t, want[k].C, got[k].C, "entry %d", k)
		require.InDelta(t, want[k].Weight, got[k].Weight, tol, "entry %d", k)
	}
}

func TestExtractIsRowMajorAndIdempotent(t *testing.T) {
	a, b := toyA(t), toyB(t)
	am, mass, err := transport.Normalize(a.Weights())
	require.NoError(t, err)
	bm, _, err := transport.Normalize(b.Weights())
	require.NoError(t, err)
	c, err := cost.Build(a, b, corr("v", "v"))
	require.NoError(t, err)

	plan, err := solver(t).Solve(context.Background(), am, bm, c)
	require.NoError(t, err)

	first, err := match.Extract(plan, mass, a.IDs(), b.IDs())
	require.NoError(t, err)
	second, err := match.Extract(plan, mass, a.IDs(), b.IDs())
	require.NoError(t, err)
	require.Equal(t, first, second)

	requireEntries(t, []match.Entry{
		{A: "a0", B: "b0", Weight: 1},
		{A: "a1", B: "b0", Weight: 1},
		{A: "a2", B: "b0", Weight: 2.0 / 3},
		{A: "a2", B: "b1", Weight: 4.0 / 3},
	}, first)
	require.InDelta(t, 4.0, match.TotalWeight(first), tol)

	_, err = match.Extract(plan, mass, a.IDs()[:2], b.IDs())
	require.ErrorIs(t, err, match.ErrIDMismatch)

	_, err = match.Extract(plan, -1, a.IDs(), b.IDs())
	require.ErrorIs(t, err, match.ErrBadMass)

	plan.Release()
	_, err = match.Extract(plan, mass, a.IDs(), b.IDs())
	require.ErrorIs(t, err, matrix.ErrReleased)
}

func TestChainerTwoWayToy(t *testing.T) {
	ch, err := match.NewChainer(solver(t), corr("v", "v"), nil)
	require.NoError(t, err)
	require.False(t, ch.ThreeWay())

	res, err := ch.Match(context.Background(), toyA(t), toyB(t), dataset.View{})
	require.NoError(t, err)
	requireEntries(t, []match.Entry{
		{A: "a0", B: "b0", Weight: 1},
		{A: "a1", B: "b0", Weight: 1},
		{A: "a2", B: "b0", Weight: 2.0 / 3},
		{A: "a2", B: "b1", Weight: 4.0 / 3},
	}, res.Entries)
	require.InDelta(t, 4.0, match.TotalWeight(res.Entries), tol, "mass conservation")

	require.Len(t, res.Stages, 1)
	st := res.Stages[0]
	require.Equal(t, match.Stage1, st.Stage)
	require.Equal(t, 3, st.Rows)
	require.Equal(t, 2, st.Cols)
	require.EqualValues(t, 3*2*8, st.CostBytes)
	require.Equal(t, 4, st.Entries)
	require.InDelta(t, 4.0, st.Mass, tol)
	require.InDelta(t, 7.0/12, st.Cost, tol)
}

func TestChainerThreeWayToy(t *testing.T) {
	c := view(t, "scf", "w", []string{"c0", "c1"}, []float64{1, 1}, []float64{0, 2})
	ch, err := match.NewChainer(solver(t), corr("v", "v"), corr("v", "w"))
	require.NoError(t, err)
	require.True(t, ch.ThreeWay())

	res, err := ch.Match(context.Background(), toyA(t), toyB(t), c)
	require.NoError(t, err)
	requireEntries(t, []match.Entry{
		{A: "a0", B: "b0", C: "c0", Weight: 1},
		{A: "a1", B: "b0", C: "c0", Weight: 1},
		{A: "a2", B: "b0", C: "c1", Weight: 2.0 / 3},
		{A: "a2", B: "b1", C: "c1", Weight: 4.0 / 3},
	}, res.Entries)
	require.InDelta(t, 4.0, match.TotalWeight(res.Entries), tol)

	require.Len(t, res.Stages, 2)
	require.Equal(t, match.Stage2, res.Stages[1].Stage)
	require.Equal(t, 4, res.Stages[1].Rows, "one intermediate record per stage-1 link")
	require.InDelta(t, 4.0, res.Stages[1].Mass, tol, "stage 2 rescales by the intermediate mass")
}

func TestChainerSingleTertiaryRecordKeepsStageOneWeights(t *testing.T) {
	c := view(t, "scf", "w", []string{"only"}, []float64{7}, []float64{100})
	ch, err := match.NewChainer(solver(t), corr("v", "v"), corr("v", "w"))
	require.NoError(t, err)

	res, err := ch.Match(context.Background(), toyA(t), toyB(t), c)
	require.NoError(t, err)
	requireEntries(t, []match.Entry{
		{A: "a0", B: "b0", C: "only", Weight: 1},
		{A: "a1", B: "b0", C: "only", Weight: 1},
		{A: "a2", B: "b0", C: "only", Weight: 2.0 / 3},
		{A: "a2", B: "b1", C: "only", Weight: 4.0 / 3},
	}, res.Entries)
}

func TestChainerMissingSideYieldsNoEntries(t *testing.T) {
	ch2, err := match.NewChainer(solver(t), corr("v", "v"), nil)
	require.NoError(t, err)
	res, err := ch2.Match(context.Background(), toyA(t), dataset.View{}, dataset.View{})
	require.NoError(t, err)
	require.Empty(t, res.Entries)

	ch3, err := match.NewChainer(solver(t), corr("v", "v"), corr("v", "w"))
	require.NoError(t, err)
	res, err = ch3.Match(context.Background(), toyA(t), toyB(t), dataset.View{})
	require.NoError(t, err)
	require.Empty(t, res.Entries)
	require.Empty(t, res.Stages)
}

func TestChainerStageErrors(t *testing.T) {
	capped, err := transport.NewSSP(transport.WithMaxIterations(1))
	require.NoError(t, err)
	ch, err := match.NewChainer(capped, corr("v", "v"), nil)
	require.NoError(t, err)

	_, err = ch.Match(context.Background(), toyA(t), toyB(t), dataset.View{})
	require.ErrorIs(t, err, transport.ErrNonConvergence)
	var se *match.StageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, match.Stage1, se.Stage)

	ch, err = match.NewChainer(solver(t), corr("v", "missing"), nil)
	require.NoError(t, err)
	_, err = ch.Match(context.Background(), toyA(t), toyB(t), dataset.View{})
	require.ErrorIs(t, err, dataset.ErrSchemaMismatch)

	_, err = match.NewChainer(nil, corr("v", "v"), nil)
	require.ErrorIs(t, err, match.ErrNilSolver)

	_, err = match.NewChainer(solver(t), nil, nil)
	require.ErrorIs(t, err, cost.ErrEmptyCorrespondence)
}

func TestChainerStageTwoFailureKeepsStageOneStats(t *testing.T) {
	c := view(t, "scf", "w", []string{"c0", "c1"}, []float64{1, 1}, []float64{0, 2})
	ch, err := match.NewChainer(solver(t), corr("v", "v"), corr("v", "missing"))
	require.NoError(t, err)

	res, err := ch.Match(context.Background(), toyA(t), toyB(t), c)
	require.ErrorIs(t, err, dataset.ErrSchemaMismatch)
	var se *match.StageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, match.Stage2, se.Stage)

	require.Empty(t, res.Entries)
	require.Len(t, res.Stages, 1)
	st := res.Stages[0]
	require.Equal(t, match.Stage1, st.Stage)
	require.Equal(t, 3, st.Rows)
	require.Equal(t, 2, st.Cols)
	require.Equal(t, 4, st.Entries, "stage-1 links")
	require.Greater(t, st.Iterations, 0)
	require.InDelta(t, 7.0/12, st.Cost, tol)
}

func TestIntermediateCarriesSourceValues(t *testing.T) {
	a, b := toyA(t), toyB(t)
	links := []match.Link{{Src: 2, Tgt: 0, Weight: 0.5}, {Src: 0, Tgt: 1, Weight: 1.5}}
	im, err := match.NewIntermediate(a, b, links, []string{"v"})
	require.NoError(t, err)
	require.Equal(t, 2, im.Len())
	require.InDelta(t, 2.0, im.Mass(), tol)

	vals, err := im.View().Values("v")
	require.NoError(t, err)
	require.Equal(t, []float64{2, 0}, vals)

	ida, idb := im.Pair(1)
	require.Equal(t, "a0", ida)
	require.Equal(t, "b1", idb)

	_, err = match.NewIntermediate(a, b, links, []string{"nope"})
	require.ErrorIs(t, err, dataset.ErrSchemaMismatch)
}
