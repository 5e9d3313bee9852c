package transport_test

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/katalvlaran/otmatch/matrix"
	"github.com/katalvlaran/otmatch/transport"
)

// benchInstance builds a square instance with uniform weights and random
// integer costs.
func benchInstance(b *testing.B, n int) ([]float64, *matrix.Dense) {
	r := rand.New(rand.NewSource(int64(n)))
	c, err := matrix.NewDense(n, n)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			_ = c.Set(i, j, float64(r.Intn(1000)))
		}
	}
	u := make([]float64, n)
	for i := range u {
		u[i] = 1
	}
	m, _, _ := transport.Normalize(u)

	return m, c
}

func benchSolver(b *testing.B, kind string, sizes []int) {
	solver, err := transport.New(kind)
	if err != nil {
		b.Fatal(err)
	}
	for _, n := range sizes {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			m, c := benchInstance(b, n)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := solver.Solve(context.Background(), m, m, c); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSSP(b *testing.B) {
	benchSolver(b, transport.KindSSP, []int{25, 50, 100, 250})
}

// BenchmarkNetworkSimplex covers the cell sizes of full production years.
func BenchmarkNetworkSimplex(b *testing.B) {
	benchSolver(b, transport.KindNetworkSimplex, []int{25, 100, 250, 1000, 2000})
}
