package genome

import (
	"math"
	"math/rand"
)

// RNG is the random source used for brain construction, mutation and
// parent selection. Implementations must be deterministic for a given seed.
type RNG interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
	// Angle returns a uniform draw in [0, 2π).
	Angle() float64
}

// Rand is the default RNG backed by math/rand.
type Rand struct {
	r *rand.Rand
}

// NewRand returns a Rand seeded with seed.
func NewRand(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform draw in [0, 1).
func (r *Rand) Float64() float64 {
	return r.r.Float64()
}

// Angle returns a uniform draw in [0, 2π).
func (r *Rand) Angle() float64 {
	a := r.r.Float64() * 2 * math.Pi
	// Float64 rounding can land exactly on 2π.
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}
