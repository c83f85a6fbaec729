package game

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/dots/genome"
)

// bestIndex returns the index of the first agent holding the highest fitness.
func bestIndex(fitness []float64) int {
	if len(fitness) == 0 {
		return 0
	}
	return floats.MaxIdx(fitness)
}

// cumulativeFitness returns the running fitness sums used by SelectParent.
func cumulativeFitness(fitness []float64) []float64 {
	return floats.CumSum(make([]float64, len(fitness)), fitness)
}

// SelectParent performs roulette-wheel selection over the running fitness
// sums in cumulative. It draws r in [0, total) and returns the first index
// whose running sum exceeds r. When the total is zero or not finite it
// returns 0 without drawing.
func SelectParent(cumulative []float64, rng genome.RNG) int {
	n := len(cumulative)
	if n == 0 {
		return 0
	}
	total := cumulative[n-1]
	if !(total > 0) || math.IsInf(total, 1) {
		return 0
	}

	r := rng.Float64() * total
	i := sort.Search(n, func(i int) bool { return cumulative[i] > r })
	if i == n {
		// r rounded up to total.
		return n - 1
	}
	return i
}
