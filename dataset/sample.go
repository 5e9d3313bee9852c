// Package dataset - deterministic subsampling of views.
//
// Used for quick test runs on very large cells: keep n records of a cell,
// chosen without replacement by a seeded RNG, in their original order.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Derive one stream per cell with
//     StreamRNG instead of sharing a *rand.Rand across workers.
package dataset

import (
	"hash/fnv"
	"math/rand"
	"sort"
)

// defaultRNGSeed is the fixed seed used when callers pass seed==0.
const defaultRNGSeed int64 = 1

// RNG returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ defaultRNGSeed; otherwise the seed is used verbatim.
func RNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(seed))
}

// StreamRNG derives an independent deterministic stream from a base seed and
// a stream label (e.g. cell key + dataset name). The same (seed, label) pair
// always yields the same stream, whatever order cells are processed in.
func StreamRNG(seed int64, label string) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(deriveSeed(seed, streamID(label))))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed with a SplitMix64-style finalizer.
func deriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// streamID hashes a label into a stream id with 64-bit FNV-1a.
func streamID(label string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(label))

	return h.Sum64()
}

// Sample keeps n records of v chosen uniformly without replacement.
// The result preserves the view's original record order. When n <= 0 or
// n >= v.Len() the view is returned unchanged.
//
// Complexity: O(len) time and space.
func (v View) Sample(n int, rng *rand.Rand) View {
	if n <= 0 || n >= v.Len() {
		return v
	}
	if rng == nil {
		rng = RNG(0)
	}
	perm := rng.Perm(v.Len())[:n]
	sort.Ints(perm)

	return v.Subset(perm)
}
