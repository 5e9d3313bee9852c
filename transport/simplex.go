// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/otmatch/matrix"
)

const (
	// reducedCostRel scales the big-M arc cost into the pricing tolerance:
	// arcs whose reduced cost is above −reducedCostRel·M never enter.
	reducedCostRel = 1e-13

	// minBlock is the smallest pricing block.
	minBlock = 16
)

// NetworkSimplex is a primal network simplex transport solver with a
// strongly feasible spanning tree and block pricing. It is safe for
// concurrent use; every Solve call owns its tree.
//
// One iteration is one pivot, so Options.MaxIterations caps pivots.
type NetworkSimplex struct {
	opts Options
}

var _ Solver = (*NetworkSimplex)(nil)

// NewNetworkSimplex builds a solver from DefaultOptions and the given
// overrides.
//
// Errors: ErrBadOptions.
func NewNetworkSimplex(opts ...Option) (*NetworkSimplex, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	return &NetworkSimplex{opts: o}, nil
}

// Options returns the effective options.
func (s *NetworkSimplex) Options() Options { return s.opts }

// Solve returns the minimum-cost plan for marginals a, b and cost c.
//
// Steps:
//  1. Validate marginals, cost shape and cost entries exactly as SSP does.
//  2. Start from the all-artificial tree: every node hangs off an artificial
//     root through a big-M arc carrying its supply or demand.
//  3. Repeat: price a block of non-tree arcs and take the most negative
//     reduced cost; stop when none is left; fail with ErrNonConvergence if
//     the cap is already spent; otherwise pivot.
//  4. Verify row and column sums against a and b within Tolerance. Flow
//     stuck on an artificial arc shows up here as a missed marginal.
//
// The context is checked every ctxCheckEvery pivots.
//
// Complexity: O(m·n) memory; each pivot costs one pricing block of about
// √(m·n) arcs plus the cycle and the re-hung subtree.
func (s *NetworkSimplex) Solve(ctx context.Context, a, b []float64, c matrix.Matrix) (*Plan, error) {
	rows, err := prepare(a, b, c, s.opts.Tolerance)
	if err != nil {
		return nil, err
	}

	t, err := newSpanningTree(a, b, rows, s.opts.Epsilon)
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
		e := t.entering()
		if e < 0 {
			break
		}
		if iter >= s.opts.MaxIterations {
			return nil, fmt.Errorf("%w: iteration cap %d reached on %d×%d problem", ErrNonConvergence, s.opts.MaxIterations, t.m, t.n)
		}
		t.pivot(e)
		iter++
	}

	if err = checkFidelity(t.flow, a, b, s.opts.Tolerance); err != nil {
		return nil, err
	}
	total, err := matrix.Dot(t.flow, c)
	if err != nil {
		return nil, err
	}

	return &Plan{m: t.flow, cost: total, iterations: iter}, nil
}

// spanningTree is the basis of one Solve call.
//
// Nodes: 0..m-1 = sources, m..m+n-1 = sinks, m+n = artificial root.
// Arcs: e < m·n is the real arc i→m+j with e = i·n+j; e = m·n+v is the
// artificial arc of node v, pointing to the root when v has non-negative
// supply and away from it otherwise.
//
// Invariants:
//   - every node except the root has exactly one tree arc to its parent;
//   - pi[head] = pi[tail] + cost for every tree arc;
//   - zero-flow tree arcs point toward the root (strong feasibility).
type spanningTree struct {
	m, n, root, arcs int
	cost             [][]float64
	flow             *matrix.Dense
	rows             [][]float64 // flow rows, aliasing flow
	art              []float64   // artificial flow per node
	up               []bool      // artificial arc of v points to the root
	bigM             float64

	basic  []bool // real arcs in the tree
	adj    [][]int
	slot   map[int][2]int // arc → position in adj[tail], adj[head]
	parent []int
	pred   []int // tree arc to the parent
	depth  []int
	pi     []float64

	block, next int
	eps, rcTol  float64

	kside, lside, stack []int
}

func newSpanningTree(a, b []float64, rows [][]float64, eps float64) (*spanningTree, error) {
	m, n := len(a), len(b)
	flow, err := matrix.NewDense(m, n)
	if err != nil {
		return nil, err
	}
	v := m + n + 1

	maxC := 0.0
	for _, row := range rows {
		for _, x := range row {
			maxC = math.Max(maxC, x)
		}
	}
	bigM := (maxC + 1) * float64(v)

	t := &spanningTree{
		m:      m,
		n:      n,
		root:   m + n,
		arcs:   m * n,
		cost:   rows,
		flow:   flow,
		rows:   make([][]float64, m),
		art:    make([]float64, v),
		up:     make([]bool, v),
		bigM:   bigM,
		basic:  make([]bool, m*n),
		adj:    make([][]int, v),
		slot:   make(map[int][2]int, v),
		parent: make([]int, v),
		pred:   make([]int, v),
		depth:  make([]int, v),
		pi:     make([]float64, v),
		block:  max(int(math.Sqrt(float64(m*n))), minBlock),
		eps:    eps,
		rcTol:  reducedCostRel * bigM,
	}
	for i := range t.rows {
		if t.rows[i], err = flow.Row(i); err != nil {
			return nil, err
		}
	}

	t.parent[t.root], t.pred[t.root] = -1, -1
	var supply float64
	for u := 0; u < t.root; u++ {
		if u < m {
			supply = a[u]
		} else {
			supply = -b[u-m]
		}
		t.up[u] = supply >= 0
		t.art[u] = math.Abs(supply)
		t.parent[u], t.pred[u], t.depth[u] = t.root, t.arcs+u, 1
		t.link(t.arcs + u)
		if t.up[u] {
			t.pi[u] = -bigM
		} else {
			t.pi[u] = bigM
		}
	}

	return t, nil
}

// ends returns the tail and head of arc e.
func (t *spanningTree) ends(e int) (tail, head int) {
	if e < t.arcs {
		return e / t.n, t.m + e%t.n
	}
	v := e - t.arcs
	if t.up[v] {
		return v, t.root
	}

	return t.root, v
}

func (t *spanningTree) arcCost(e int) float64 {
	if e < t.arcs {
		return t.cost[e/t.n][e%t.n]
	}

	return t.bigM
}

func (t *spanningTree) arcFlow(e int) float64 {
	if e < t.arcs {
		return t.rows[e/t.n][e%t.n]
	}

	return t.art[e-t.arcs]
}

func (t *spanningTree) setFlow(e int, x float64) {
	if e < t.arcs {
		t.rows[e/t.n][e%t.n] = x
	} else {
		t.art[e-t.arcs] = x
	}
}

// link adds arc e to the tree adjacency.
func (t *spanningTree) link(e int) {
	tail, head := t.ends(e)
	t.slot[e] = [2]int{len(t.adj[tail]), len(t.adj[head])}
	t.adj[tail] = append(t.adj[tail], e)
	t.adj[head] = append(t.adj[head], e)
	if e < t.arcs {
		t.basic[e] = true
	}
}

// unlink removes arc e from the tree adjacency in O(1).
func (t *spanningTree) unlink(e int) {
	tail, head := t.ends(e)
	pos := t.slot[e]
	t.removeAt(tail, pos[0])
	t.removeAt(head, pos[1])
	delete(t.slot, e)
	if e < t.arcs {
		t.basic[e] = false
	}
}

// removeAt swaps the last arc of adj[v] into position p.
func (t *spanningTree) removeAt(v, p int) {
	list := t.adj[v]
	last := list[len(list)-1]
	list[p] = last
	t.adj[v] = list[:len(list)-1]

	s := t.slot[last]
	if tail, _ := t.ends(last); tail == v {
		s[0] = p
	} else {
		s[1] = p
	}
	t.slot[last] = s
}

// entering prices real non-tree arcs block by block, resuming where the last
// call stopped, and returns the arc with the most negative reduced cost in
// the first block that has one. It returns -1 at optimality.
func (t *spanningTree) entering() int {
	best, bestRC := -1, -t.rcTol
	var (
		e, i, j int
		rc      float64
	)
	for cnt := 0; cnt < t.arcs; cnt++ {
		e = t.next
		if t.next++; t.next == t.arcs {
			t.next = 0
		}
		if !t.basic[e] {
			i, j = e/t.n, e%t.n
			if rc = t.cost[i][j] + t.pi[i] - t.pi[t.m+j]; rc < bestRC {
				best, bestRC = e, rc
			}
		}
		if (cnt+1)%t.block == 0 && best >= 0 {
			return best
		}
	}

	return best
}

// blocking reports whether pushing flow around the cycle lowers the flow on
// the tree arc above x. The k side of the cycle is walked from the apex down
// to k, the l side from l up to the apex.
func (t *spanningTree) blocking(x int, kside bool) bool {
	tail, _ := t.ends(t.pred[x])
	down := tail == t.parent[x]

	return down != kside
}

// pivot brings arc e into the tree.
//
// Steps:
//  1. Walk both endpoints up to their common ancestor (the apex).
//  2. δ = least flow on a blocking arc; the leaving arc is the last blocking
//     arc with that flow met when walking the cycle from the apex in the
//     direction of e. This rule keeps the tree strongly feasible.
//  3. Push δ around the cycle.
//  4. Swap the arcs and re-hang the subtree cut off by the leaving arc under
//     the entering one, refreshing parent, depth and potentials.
func (t *spanningTree) pivot(e int) {
	k, l := t.ends(e)
	t.kside, t.lside = t.kside[:0], t.lside[:0]
	for u, v := k, l; u != v; {
		if t.depth[u] >= t.depth[v] {
			t.kside = append(t.kside, u)
			u = t.parent[u]
		} else {
			t.lside = append(t.lside, v)
			v = t.parent[v]
		}
	}

	delta := math.Inf(1)
	for _, x := range t.kside {
		if t.blocking(x, true) {
			delta = math.Min(delta, t.arcFlow(t.pred[x]))
		}
	}
	for _, x := range t.lside {
		if t.blocking(x, false) {
			delta = math.Min(delta, t.arcFlow(t.pred[x]))
		}
	}

	// The arc graph has no directed cycle, so some cycle arc is blocking and
	// delta is finite.
	leave, onK := -1, false
	limit := delta + t.eps
	for p := len(t.kside) - 1; p >= 0; p-- {
		if x := t.kside[p]; t.blocking(x, true) && t.arcFlow(t.pred[x]) <= limit {
			leave, onK = x, true
		}
	}
	for _, x := range t.lside {
		if t.blocking(x, false) && t.arcFlow(t.pred[x]) <= limit {
			leave, onK = x, false
		}
	}

	if delta > 0 {
		t.push(t.kside, true, delta)
		t.push(t.lside, false, delta)
		t.setFlow(e, delta)
	}

	out := t.pred[leave]
	q, p := l, k
	if onK {
		q, p = k, l
	}
	t.unlink(out)
	t.link(e)
	t.parent[q], t.pred[q] = p, e
	t.rehang(q)
}

func (t *spanningTree) push(side []int, kside bool, delta float64) {
	for _, x := range side {
		arc := t.pred[x]
		if t.blocking(x, kside) {
			t.setFlow(arc, snap(t.arcFlow(arc)-delta, t.eps))
		} else {
			t.setFlow(arc, t.arcFlow(arc)+delta)
		}
	}
}

// rehang walks the subtree now rooted at q, whose parent and pred are
// already set, and recomputes parent, pred, depth and pi below it.
func (t *spanningTree) rehang(q int) {
	stack := append(t.stack[:0], q)
	var x, par, arc, y, tail, head int
	for len(stack) > 0 {
		x = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		par = t.parent[x]
		t.depth[x] = t.depth[par] + 1
		if tail, _ = t.ends(t.pred[x]); tail == par {
			t.pi[x] = t.pi[par] + t.arcCost(t.pred[x])
		} else {
			t.pi[x] = t.pi[par] - t.arcCost(t.pred[x])
		}

		for _, arc = range t.adj[x] {
			if arc == t.pred[x] {
				continue
			}
			tail, head = t.ends(arc)
			if y = head; y == x {
				y = tail
			}
			t.parent[y], t.pred[y] = x, arc
			stack = append(stack, y)
		}
	}
	t.stack = stack
}
