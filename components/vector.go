// Package components defines the value types shared by the simulation.
package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is a 2D point or vector.
type Vec2 r2.Vec

// FromAngle returns the unit vector pointing at theta radians.
func FromAngle(theta float64) Vec2 {
	return Vec2{X: math.Cos(theta), Y: math.Sin(theta)}
}

// Add adds o to v in place.
func (v *Vec2) Add(o Vec2) {
	*v = Vec2(r2.Add(r2.Vec(*v), r2.Vec(o)))
}

// Mag returns the length of v.
func (v Vec2) Mag() float64 {
	return r2.Norm(r2.Vec(v))
}

// Limit scales v down to max if it is longer than max.
func (v *Vec2) Limit(max float64) {
	mag := v.Mag()
	if mag > max {
		*v = Vec2(r2.Scale(max/mag, r2.Vec(*v)))
	}
}

// Dist returns the euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	return r2.Norm(r2.Sub(r2.Vec(v), r2.Vec(o)))
}
