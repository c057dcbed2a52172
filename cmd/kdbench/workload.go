// Grounded on the root workload.go's synthetic op generator, retargeted
// from mixed insert/get/range ops onto generating a random item set to
// build over and a random query stream to run against the built tree.
package main

import (
	"math/rand"
	"time"

	"github.com/btree-query-bench/kdindex/kdtree"
)

type syntheticBox struct {
	min, max []float64
}

// generateBoxes produces n random unit-hypercube boxes (span <= 0.5),
// the same distribution the package's randomized brute-force tests use.
func generateBoxes(dims, n int, seed int64) map[int32]syntheticBox {
	r := rand.New(rand.NewSource(seed))
	boxes := make(map[int32]syntheticBox, n)
	for i := 1; i <= n; i++ {
		min := make([]float64, dims)
		max := make([]float64, dims)
		for a := 0; a < dims; a++ {
			lo := r.Float64()
			span := r.Float64() * 0.5
			min[a] = lo
			max[a] = lo + span
		}
		boxes[int32(i)] = syntheticBox{min: min, max: max}
	}
	return boxes
}

func boundsFromBoxes(boxes map[int32]syntheticBox) kdtree.BoundsFunc {
	return func(item int32, minScratch, maxScratch []float64) ([]float64, []float64, error) {
		b := boxes[item]
		copy(minScratch, b.min)
		copy(maxScratch, b.max)
		return minScratch[:len(b.min)], maxScratch[:len(b.max)], nil
	}
}

// runQueries fires queryCount random small-window queries against tr and
// returns the total elapsed time, the same "time a batch of ops, divide by
// count" shape ExecuteWorkload's callers use at the repo root.
func runQueries(tr *kdtree.Tree, dims, queryCount int, seed int64) (int64, error) {
	r := rand.New(rand.NewSource(seed))
	start := time.Now()
	for q := 0; q < queryCount; q++ {
		qMin := make([]float64, dims)
		qMax := make([]float64, dims)
		for a := 0; a < dims; a++ {
			lo := r.Float64()
			qMin[a] = lo
			qMax[a] = lo + 0.1
		}
		it, err := tr.Query(qMin, qMax)
		if err != nil {
			return 0, err
		}
		for {
			_, ok := it.Next()
			if !ok {
				break
			}
		}
		if err := it.Err(); err != nil {
			return 0, err
		}
	}
	return time.Since(start).Nanoseconds(), nil
}
