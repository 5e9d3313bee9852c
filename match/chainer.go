package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/otmatch/cost"
	"github.com/katalvlaran/otmatch/dataset"
	"github.com/katalvlaran/otmatch/transport"
)

// ErrNilSolver is returned by NewChainer without a solver.
var ErrNilSolver = errors.New("match: nil transport solver")

// Stage names one transport solve of the chain.
type Stage int

const (
	// Stage1 matches the primary dataset against the secondary one.
	Stage1 Stage = iota + 1
	// Stage2 matches the stage-1 intermediate records against the tertiary one.
	Stage2
)

func (s Stage) String() string {
	switch s {
	case Stage1:
		return "stage1"
	case Stage2:
		return "stage2"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError attributes a failure to the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Stage.String() + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// StageStats describes one completed solve, for progress reporting.
type StageStats struct {
	Stage      Stage
	Rows, Cols int
	CostBytes  int64
	Iterations int
	Cost       float64
	Mass       float64
	Entries    int
	BuildTook  time.Duration
	SolveTook  time.Duration
}

// Result is the outcome of one cell.
type Result struct {
	Entries []Entry
	Stages  []StageStats
}

// Chainer runs the one- or two-stage match of a single cell.
type Chainer struct {
	solver transport.Solver
	stage1 cost.Correspondence
	stage2 cost.Correspondence
}

// NewChainer builds a chainer. A nil or empty stage2 makes it two-way.
//
// Errors: ErrNilSolver, cost.ErrEmptyCorrespondence and the other
// correspondence validation errors.
func NewChainer(solver transport.Solver, stage1, stage2 cost.Correspondence) (*Chainer, error) {
	if solver == nil {
		return nil, ErrNilSolver
	}
	if err := stage1.Validate(); err != nil {
		return nil, fmt.Errorf("stage1: %w", err)
	}
	if len(stage2) > 0 {
		if err := stage2.Validate(); err != nil {
			return nil, fmt.Errorf("stage2: %w", err)
		}
	}

	return &Chainer{solver: solver, stage1: stage1, stage2: stage2}, nil
}

// ThreeWay reports whether Stage2 runs.
func (c *Chainer) ThreeWay() bool { return len(c.stage2) > 0 }

// Match processes one cell. a is the primary cell, b the secondary one and t
// the tertiary one (ignored in two-way mode).
//
// An empty b, or an empty t in three-way mode, yields an empty result and no
// error. Failures are wrapped in *StageError. When stage 2 fails the returned
// result has no entries but still carries the stage-1 stats.
func (c *Chainer) Match(ctx context.Context, a, b, t dataset.View) (Result, error) {
	var res Result
	if a.Empty() || b.Empty() || (c.ThreeWay() && t.Empty()) {
		return res, nil
	}

	links, st1, err := c.solve(ctx, Stage1, a, b, c.stage1)
	if err != nil {
		return Result{}, err
	}
	res.Stages = append(res.Stages, st1)

	if !c.ThreeWay() {
		res.Entries = make([]Entry, len(links))
		for k, l := range links {
			res.Entries[k] = Entry{A: a.ID(l.Src), B: b.ID(l.Tgt), Weight: l.Weight}
		}
		res.Stages[0].Entries = len(res.Entries)

		return res, nil
	}

	if err = ctx.Err(); err != nil {
		return res, err
	}
	im, err := NewIntermediate(a, b, links, c.stage2.Sources())
	if err != nil {
		return res, &StageError{Stage: Stage2, Err: err}
	}
	links2, st2, err := c.solve(ctx, Stage2, im.View(), t, c.stage2)
	if err != nil {
		return res, err
	}
	res.Entries = make([]Entry, len(links2))
	for k, l := range links2 {
		ida, idb := im.Pair(l.Src)
		res.Entries[k] = Entry{A: ida, B: idb, C: t.ID(l.Tgt), Weight: l.Weight}
	}
	st2.Entries = len(res.Entries)
	res.Stages = append(res.Stages, st2)

	return res, nil
}

// solve builds the cost, solves, extracts the links and releases both
// matrices before returning.
func (c *Chainer) solve(ctx context.Context, stage Stage, src, tgt dataset.View, corr cost.Correspondence) ([]Link, StageStats, error) {
	st := StageStats{Stage: stage, Rows: src.Len(), Cols: tgt.Len()}
	wrap := func(err error) ([]Link, StageStats, error) {
		return nil, st, &StageError{Stage: stage, Err: err}
	}

	am, mass, err := transport.Normalize(src.Weights())
	if err != nil {
		return wrap(fmt.Errorf("%s weights: %w", src.Name(), err))
	}
	bm, _, err := transport.Normalize(tgt.Weights())
	if err != nil {
		return wrap(fmt.Errorf("%s weights: %w", tgt.Name(), err))
	}
	st.Mass = mass

	began := time.Now()
	cm, err := cost.Build(src, tgt, corr)
	if err != nil {
		return wrap(err)
	}
	st.CostBytes = cm.Bytes()
	st.BuildTook = time.Since(began)

	began = time.Now()
	plan, err := c.solver.Solve(ctx, am, bm, cm)
	cm.Release()
	if err != nil {
		return wrap(err)
	}
	st.SolveTook = time.Since(began)
	st.Iterations = plan.Iterations()
	st.Cost = plan.Cost()

	links, err := Links(plan, mass)
	plan.Release()
	if err != nil {
		return wrap(err)
	}
	st.Entries = len(links)

	return links, st, nil
}
