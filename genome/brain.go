// Package genome holds the evolvable movement script carried by each agent.
package genome

import (
	"errors"

	"github.com/pthm-cable/dots/components"
)

// ErrExhausted is returned by Next when every direction has been consumed.
var ErrExhausted = errors.New("genome: brain has no remaining directions")

// Brain is a fixed-length sequence of unit direction vectors read in order
// by a cursor. The cursor only moves forward.
type Brain struct {
	directions []components.Vec2
	step       int
}

// NewBrain returns a brain of size directions, each at an independent
// uniform random angle.
func NewBrain(size int, rng RNG) *Brain {
	dirs := make([]components.Vec2, size)
	for i := range dirs {
		dirs[i] = components.FromAngle(rng.Angle())
	}
	return &Brain{directions: dirs}
}

// FromDirections returns a brain that replays dirs. The slice is copied.
func FromDirections(dirs []components.Vec2) *Brain {
	cp := make([]components.Vec2, len(dirs))
	copy(cp, dirs)
	return &Brain{directions: cp}
}

// Len returns the number of directions.
func (b *Brain) Len() int {
	return len(b.directions)
}

// Step returns the cursor, i.e. the number of directions consumed so far.
func (b *Brain) Step() int {
	return b.step
}

// HasNext reports whether another direction is available.
func (b *Brain) HasNext() bool {
	return b.step < len(b.directions)
}

// Next returns the direction under the cursor and advances it.
// Callers are expected to check HasNext first.
func (b *Brain) Next() (components.Vec2, error) {
	if !b.HasNext() {
		return components.Vec2{}, ErrExhausted
	}
	d := b.directions[b.step]
	b.step++
	return d, nil
}

// Directions returns a copy of the direction sequence.
func (b *Brain) Directions() []components.Vec2 {
	cp := make([]components.Vec2, len(b.directions))
	copy(cp, b.directions)
	return cp
}

// Clone returns an independent copy with the cursor rewound to 0.
func (b *Brain) Clone() *Brain {
	return FromDirections(b.directions)
}

// Mutate replaces each direction, independently with probability rate,
// by a fresh random unit vector. The cursor is left alone.
func (b *Brain) Mutate(rate float64, rng RNG) {
	for i := range b.directions {
		if rng.Float64() < rate {
			b.directions[i] = components.FromAngle(rng.Angle())
		}
	}
}
