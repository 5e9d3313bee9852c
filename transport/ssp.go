// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/otmatch/matrix"
)

// ctxCheckEvery is how many solver iterations run between context checks.
const ctxCheckEvery = 64

// SSP is a successive-shortest-path transport solver. It is safe for
// concurrent use; every Solve call owns its scratch state.
type SSP struct {
	opts Options
}

var _ Solver = (*SSP)(nil)

// NewSSP builds a solver from DefaultOptions and the given overrides.
//
// Errors: ErrBadOptions.
func NewSSP(opts ...Option) (*SSP, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	return &SSP{opts: o}, nil
}

// Options returns the effective options.
func (s *SSP) Options() Options { return s.opts }

// network is the residual state of one Solve call.
//
// Node numbering: 0 = S, 1..m = sources, m+1..m+n = sinks, m+n+1 = T.
type network struct {
	m, n   int
	cost   [][]float64 // cost rows, len m, each len n
	flow   *matrix.Dense
	loaded [][]int   // per sink j, the sources i with flow[i,j] > 0
	supply []float64 // remaining a_i
	demand []float64 // remaining b_j
	pi     []float64 // Johnson potentials
	dist   []float64
	prev   []int
	done   []bool
	eps    float64
}

// Solve returns the minimum-cost plan for marginals a, b and cost c.
//
// Steps:
//  1. Validate marginals (finite, non-negative, Σ=1 within Tolerance), the
//     cost shape and the cost entries.
//  2. Repeat: shortest S→T path under reduced costs; stop when T is
//     unreachable (supply or demand exhausted); fail with ErrNonConvergence if
//     the cap is already spent; otherwise push the bottleneck and update
//     potentials.
//  3. Verify row and column sums against a and b within Tolerance.
//
// The context is checked every ctxCheckEvery augmentations.
//
// Complexity: O(k·(m+n)² + k·m·n) for k augmentations; k itself grows with
// m+n, so NetworkSimplex is the better fit for cells past a few hundred
// records per side.
func (s *SSP) Solve(ctx context.Context, a, b []float64, c matrix.Matrix) (*Plan, error) {
	rows, err := prepare(a, b, c, s.opts.Tolerance)
	if err != nil {
		return nil, err
	}

	nw, err := newNetwork(a, b, rows, s.opts.Epsilon)
	if err != nil {
		return nil, err
	}

	iter := 0
	for {
		if iter%ctxCheckEvery == 0 {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !nw.shortestPath() {
			break
		}
		if iter >= s.opts.MaxIterations {
			return nil, fmt.Errorf("%w: iteration cap %d reached on %d×%d problem", ErrNonConvergence, s.opts.MaxIterations, nw.m, nw.n)
		}
		nw.augment()
		nw.reprice()
		iter++
	}

	if err = checkFidelity(nw.flow, a, b, s.opts.Tolerance); err != nil {
		return nil, err
	}
	total, err := matrix.Dot(nw.flow, c)
	if err != nil {
		return nil, err
	}

	return &Plan{m: nw.flow, cost: total, iterations: iter}, nil
}

func newNetwork(a, b []float64, rows [][]float64, eps float64) (*network, error) {
	m, n := len(a), len(b)
	flow, err := matrix.NewDense(m, n)
	if err != nil {
		return nil, err
	}
	v := m + n + 2

	return &network{
		m:      m,
		n:      n,
		cost:   rows,
		flow:   flow,
		loaded: make([][]int, n),
		supply: append([]float64(nil), a...),
		demand: append([]float64(nil), b...),
		pi:     make([]float64, v),
		dist:   make([]float64, v),
		prev:   make([]int, v),
		done:   make([]bool, v),
		eps:    eps,
	}, nil
}

func (nw *network) sink() int { return nw.m + nw.n + 1 }

// relax records a tentative distance through u if it improves v.
// Slightly negative reduced costs from rounding are clamped to zero.
func (nw *network) relax(u, v int, reduced float64) {
	if nw.done[v] {
		return
	}
	if reduced < 0 {
		reduced = 0
	}
	if d := nw.dist[u] + reduced; d < nw.dist[v] {
		nw.dist[v] = d
		nw.prev[v] = u
	}
}

// shortestPath runs a dense Dijkstra from S over the residual network and
// reports whether T is reachable.
//
// Residual arcs:
//   - S→i while supply[i] > 0 (cost 0)
//   - i→j always (cost C[i,j], unbounded capacity)
//   - j→i while flow[i,j] > 0 (cost −C[i,j]); only the loaded rows of j
//     are visited
//   - j→T while demand[j] > 0 (cost 0)
func (nw *network) shortestPath() bool {
	t := nw.sink()
	for k := range nw.dist {
		nw.dist[k] = math.Inf(1)
		nw.prev[k] = -1
		nw.done[k] = false
	}
	nw.dist[0] = 0

	var (
		u, k, i, j int
		best       float64
	)
	for {
		u, best = -1, math.Inf(1)
		for k = range nw.dist {
			if !nw.done[k] && nw.dist[k] < best {
				u, best = k, nw.dist[k]
			}
		}
		if u < 0 {
			break
		}
		nw.done[u] = true

		switch {
		case u == 0:
			for i = 0; i < nw.m; i++ {
				if nw.supply[i] > 0 {
					nw.relax(0, 1+i, nw.pi[0]-nw.pi[1+i])
				}
			}
		case u <= nw.m:
			i = u - 1
			for j = 0; j < nw.n; j++ {
				nw.relax(u, 1+nw.m+j, nw.cost[i][j]+nw.pi[u]-nw.pi[1+nw.m+j])
			}
		case u < t:
			j = u - 1 - nw.m
			for _, i = range nw.loaded[j] {
				nw.relax(u, 1+i, -nw.cost[i][j]+nw.pi[u]-nw.pi[1+i])
			}
			if nw.demand[j] > 0 {
				nw.relax(u, t, nw.pi[u]-nw.pi[t])
			}
		}
	}

	return !math.IsInf(nw.dist[t], 1)
}

// augment pushes the bottleneck amount along the path found by shortestPath.
func (nw *network) augment() {
	t := nw.sink()
	delta := math.Inf(1)
	var i, j int
	var row []float64
	for v := t; v != 0; v = nw.prev[v] {
		u := nw.prev[v]
		switch {
		case u == 0:
			delta = math.Min(delta, nw.supply[v-1])
		case v == t:
			delta = math.Min(delta, nw.demand[u-1-nw.m])
		case u > nw.m: // backward arc sink u → source v
			i, j = v-1, u-1-nw.m
			row, _ = nw.flow.Row(i)
			delta = math.Min(delta, row[j])
		}
	}

	for v := t; v != 0; v = nw.prev[v] {
		u := nw.prev[v]
		switch {
		case u == 0:
			nw.supply[v-1] = snap(nw.supply[v-1]-delta, nw.eps)
		case v == t:
			j = u - 1 - nw.m
			nw.demand[j] = snap(nw.demand[j]-delta, nw.eps)
		case u <= nw.m: // forward arc source u → sink v
			i, j = u-1, v-1-nw.m
			row, _ = nw.flow.Row(i)
			if row[j] == 0 {
				nw.loaded[j] = append(nw.loaded[j], i)
			}
			row[j] += delta
		default: // backward arc
			i, j = v-1, u-1-nw.m
			row, _ = nw.flow.Row(i)
			if row[j] = snap(row[j]-delta, nw.eps); row[j] == 0 {
				nw.unload(i, j)
			}
		}
	}
}

// reprice adds min(dist, dist[T]) to every potential, keeping all residual
// reduced costs non-negative for the next search.
func (nw *network) reprice() {
	dt := nw.dist[nw.sink()]
	for k, d := range nw.dist {
		nw.pi[k] += math.Min(d, dt)
	}
}

// unload drops source i from the loaded list of sink j.
func (nw *network) unload(i, j int) {
	l := nw.loaded[j]
	for k, x := range l {
		if x == i {
			l[k] = l[len(l)-1]
			nw.loaded[j] = l[:len(l)-1]

			return
		}
	}
}
