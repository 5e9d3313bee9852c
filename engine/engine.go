package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/otmatch/cell"
	"github.com/katalvlaran/otmatch/cost"
	"github.com/katalvlaran/otmatch/dataset"
	"github.com/katalvlaran/otmatch/match"
	"github.com/katalvlaran/otmatch/transport"
)

// Inputs are the datasets of one run. Tertiary is nil for a two-way run.
type Inputs struct {
	Primary   *dataset.Dataset
	Secondary *dataset.Dataset
	Tertiary  *dataset.Dataset
}

// Subsample keeps at most N records per dataset in each cell, drawn with a
// seeded per-cell stream. Zero sizes keep every record.
type Subsample struct {
	Primary   int
	Secondary int
	Tertiary  int
	Seed      int64
}

// Options configures a run.
//   - Fields: stratification fields, identical for every dataset.
//   - Stage1: primary ↔ secondary variable correspondence.
//   - Stage2: primary ↔ tertiary variable correspondence (three-way runs).
//   - Workers: concurrent cells (< 1 means 1).
//   - FailFast: abort on the first failed cell.
type Options struct {
	Fields    []string
	Stage1    cost.Correspondence
	Stage2    cost.Correspondence
	Workers   int
	FailFast  bool
	Subsample Subsample
}

// DefaultOptions returns sequential, best-effort options without fields or
// correspondences.
func DefaultOptions() Options {
	return Options{Workers: 1}
}

// Engine runs matches. It is safe to call Run concurrently.
type Engine struct {
	opts    Options
	solver  transport.Solver
	log     *zap.Logger
	metrics *Metrics
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the progress logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics sets the metrics sink (default: a fresh NewMetrics()).
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// New builds an engine around solver.
//
// Errors: cell.ErrNoFields, correspondence validation errors, match.ErrNilSolver.
func New(solver transport.Solver, opts Options, options ...Option) (*Engine, error) {
	if solver == nil {
		return nil, match.ErrNilSolver
	}
	if len(opts.Fields) == 0 {
		return nil, cell.ErrNoFields
	}
	if err := opts.Stage1.Validate(); err != nil {
		return nil, fmt.Errorf("stage1: %w", err)
	}
	if len(opts.Stage2) > 0 {
		if err := opts.Stage2.Validate(); err != nil {
			return nil, fmt.Errorf("stage2: %w", err)
		}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	e := &Engine{opts: opts, solver: solver}
	for _, o := range options {
		o(e)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.metrics == nil {
		e.metrics = NewMetrics()
	}

	return e, nil
}

// Metrics returns the engine's metrics.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// Validate checks every column the run will touch before any cell is
// processed: stratification fields on all datasets, stage-1 sources on the
// primary and targets on the secondary, stage-2 sources on the primary and
// targets on the tertiary. Matching columns must be free of missing values.
//
// Errors: ErrMissingDataset, ErrNoStage2, dataset.ErrSchemaMismatch.
func (e *Engine) Validate(in Inputs) error {
	if in.Primary == nil || in.Secondary == nil {
		return ErrMissingDataset
	}
	if in.Tertiary != nil && len(e.opts.Stage2) == 0 {
		return ErrNoStage2
	}
	for _, ds := range in.datasets() {
		if err := ds.RequireStrata(e.opts.Fields...); err != nil {
			return err
		}
	}
	if err := in.Primary.RequireVariables(e.opts.Stage1.Sources()...); err != nil {
		return err
	}
	if err := in.Secondary.RequireVariables(e.opts.Stage1.Targets()...); err != nil {
		return err
	}
	if in.Tertiary != nil {
		if err := in.Primary.RequireVariables(e.opts.Stage2.Sources()...); err != nil {
			return err
		}
		if err := in.Tertiary.RequireVariables(e.opts.Stage2.Targets()...); err != nil {
			return err
		}
	}

	return nil
}

func (in Inputs) datasets() []*dataset.Dataset {
	out := []*dataset.Dataset{in.Primary, in.Secondary}
	if in.Tertiary != nil {
		out = append(out, in.Tertiary)
	}

	return out
}

// cellResult is the slot one worker fills for one aligned key.
type cellResult struct {
	entries []match.Entry
	skipped *CellOutcome
	failed  *CellOutcome
}

// Run matches every cell and returns the accumulated table.
//
// Steps:
//  1. Validate (fatal on schema problems).
//  2. Partition every dataset by Options.Fields and align the keys.
//  3. For each key, in key order or on Workers goroutines: skip gaps and
//     zero-mass cells, otherwise run the match chain.
//  4. Concatenate the per-cell slots in key order.
//
// The returned error is non-nil only for fatal conditions: schema problems,
// context cancellation, or a cell failure under FailFast. The report is
// always non-nil when err is nil.
func (e *Engine) Run(ctx context.Context, in Inputs) (*Report, error) {
	began := time.Now()
	if err := e.Validate(in); err != nil {
		return nil, err
	}

	stage2 := e.opts.Stage2
	if in.Tertiary == nil {
		stage2 = nil
	}
	chain, err := match.NewChainer(e.solver, e.opts.Stage1, stage2)
	if err != nil {
		return nil, err
	}

	parts := make([]*cell.Cells, 0, 3)
	for _, ds := range in.datasets() {
		p, err := cell.Partition(ds, e.opts.Fields)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	aligned, err := cell.Align(parts...)
	if err != nil {
		return nil, err
	}
	e.log.Info("cells aligned",
		zap.Int("cells", len(aligned)),
		zap.Int("workers", e.opts.Workers),
		zap.Bool("three_way", chain.ThreeWay()),
	)

	results := make([]cellResult, len(aligned))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for k := range aligned {
		k := k
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			e.metrics.ActiveWorkers.Inc()
			defer e.metrics.ActiveWorkers.Dec()

			return e.runCell(gctx, chain, parts, aligned[k], &results[k])
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report{Cells: len(aligned)}
	for k := range results {
		r := &results[k]
		switch {
		case r.skipped != nil:
			rep.Skipped = append(rep.Skipped, *r.skipped)
		case r.failed != nil:
			rep.Failed = append(rep.Failed, *r.failed)
		default:
			rep.Matched++
			rep.Entries = append(rep.Entries, r.entries...)
		}
	}
	rep.Took = time.Since(began)

	e.log.Info("run finished",
		zap.Int("cells", rep.Cells),
		zap.Int("matched", rep.Matched),
		zap.Int("skipped", len(rep.Skipped)),
		zap.Int("failed", len(rep.Failed)),
		zap.Int("entries", len(rep.Entries)),
		zap.Float64("mass", rep.Mass()),
		zap.Duration("took", rep.Took),
	)

	return rep, nil
}

// runCell fills out for one aligned key. It returns an error only when the
// run must stop.
func (e *Engine) runCell(ctx context.Context, chain *match.Chainer, parts []*cell.Cells, al cell.Alignment, out *cellResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := al.Key
	log := e.log.With(zap.Stringer("cell", key))

	if !al.Complete() {
		missing := make([]string, 0, len(parts))
		for _, i := range al.Missing() {
			missing = append(missing, parts[i].Dataset().Name)
		}
		out.skipped = &CellOutcome{Key: key, Missing: missing, Err: ErrCellAlignmentGap}
		e.metrics.Cells.WithLabelValues(OutcomeSkipped).Inc()
		log.Warn("cell skipped", zap.Strings("missing", missing), zap.Error(ErrCellAlignmentGap))

		return nil
	}

	views := make([]dataset.View, len(parts))
	sizes := []int{e.opts.Subsample.Primary, e.opts.Subsample.Secondary, e.opts.Subsample.Tertiary}
	for i, p := range parts {
		v, _ := p.Lookup(key)
		if sizes[i] > 0 {
			v = v.Sample(sizes[i], dataset.StreamRNG(e.opts.Subsample.Seed, key.ID()+"|"+v.Name()))
		}
		views[i] = v
		if v.Mass() <= 0 {
			out.skipped = &CellOutcome{Key: key, Dataset: v.Name(), Err: ErrZeroMass}
			e.metrics.Cells.WithLabelValues(OutcomeSkipped).Inc()
			log.Warn("cell skipped", zap.String("dataset", v.Name()), zap.Error(ErrZeroMass))

			return nil
		}
	}
	var tertiary dataset.View
	if len(views) > 2 {
		tertiary = views[2]
	}

	fields := make([]zap.Field, 0, len(views))
	for _, v := range views {
		fields = append(fields, zap.Int(v.Name(), v.Len()))
	}
	log.Info("processing cell", fields...)

	res, err := chain.Match(ctx, views[0], views[1], tertiary)
	for _, st := range res.Stages {
		e.metrics.observeStage(st)
		log.Debug("stage done",
			zap.Stringer("stage", st.Stage),
			zap.Int("rows", st.Rows),
			zap.Int("cols", st.Cols),
			zap.Int64("cost_bytes", st.CostBytes),
			zap.Duration("build_took", st.BuildTook),
			zap.Duration("solve_took", st.SolveTook),
			zap.Int("iterations", st.Iterations),
			zap.Int("entries", st.Entries),
		)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var se *match.StageError
		stage := match.Stage(0)
		if errors.As(err, &se) {
			stage = se.Stage
		}
		out.failed = &CellOutcome{Key: key, Stage: stage, Err: err}
		e.metrics.Cells.WithLabelValues(OutcomeFailed).Inc()
		log.Error("cell failed", zap.Stringer("stage", stage), zap.Error(err))
		if e.opts.FailFast {
			return fmt.Errorf("%w: %s: %w", ErrCellFailed, key, err)
		}

		return nil
	}

	out.entries = res.Entries
	e.metrics.Cells.WithLabelValues(OutcomeMatched).Inc()
	e.metrics.Entries.Add(float64(len(res.Entries)))
	log.Info("cell matched", zap.Int("entries", len(res.Entries)), zap.Float64("mass", match.TotalWeight(res.Entries)))

	return nil
}
