package components

// Goal is the circular target agents steer towards.
type Goal struct {
	Center Vec2
	Radius float64
}

// Obstacle is an axis-aligned rectangle anchored at its top-left corner.
type Obstacle struct {
	X, Y float64
	W, H float64
}

// Contains reports whether p lies strictly inside the rectangle.
// Points on the edge are outside.
func (o Obstacle) Contains(p Vec2) bool {
	return p.X > o.X && p.X < o.X+o.W && p.Y > o.Y && p.Y < o.Y+o.H
}
