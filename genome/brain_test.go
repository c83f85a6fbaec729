package genome

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/dots/components"
)

// stepRNG returns a fixed Float64 and an angle that advances by delta on
// every draw, so consecutive directions always differ.
type stepRNG struct {
	float float64
	angle float64
	delta float64
}

func (r *stepRNG) Float64() float64 { return r.float }

func (r *stepRNG) Angle() float64 {
	a := r.angle
	r.angle = math.Mod(r.angle+r.delta, 2*math.Pi)
	return a
}

func TestNewBrainUnitDirections(t *testing.T) {
	b := NewBrain(50, NewRand(7))
	if b.Len() != 50 {
		t.Fatalf("Len = %d, want 50", b.Len())
	}
	if b.Step() != 0 {
		t.Errorf("Step = %d, want 0", b.Step())
	}
	for i, d := range b.Directions() {
		if math.Abs(d.Mag()-1) > 1e-12 {
			t.Errorf("direction %d has magnitude %v", i, d.Mag())
		}
	}
}

func TestNewBrainSeeded(t *testing.T) {
	a := NewBrain(20, NewRand(99)).Directions()
	b := NewBrain(20, NewRand(99)).Directions()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("direction %d differs for same seed: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestBrainNextAdvancesCursor(t *testing.T) {
	dirs := []components.Vec2{{X: 1}, {Y: 1}, {X: -1}}
	b := FromDirections(dirs)

	for i, want := range dirs {
		if !b.HasNext() {
			t.Fatalf("HasNext false at step %d", i)
		}
		got, err := b.Next()
		if err != nil {
			t.Fatalf("Next at step %d: %v", i, err)
		}
		if got != want {
			t.Errorf("Next at step %d = %v, want %v", i, got, want)
		}
		if b.Step() != i+1 {
			t.Errorf("Step = %d, want %d", b.Step(), i+1)
		}
	}

	if b.HasNext() {
		t.Error("HasNext should be false once exhausted")
	}
	if _, err := b.Next(); !errors.Is(err, ErrExhausted) {
		t.Errorf("Next past end error = %v, want ErrExhausted", err)
	}
	if b.Step() != len(dirs) {
		t.Errorf("failed Next moved the cursor to %d", b.Step())
	}
}

func TestEmptyBrain(t *testing.T) {
	b := NewBrain(0, NewRand(1))
	if b.HasNext() {
		t.Error("empty brain should have no next direction")
	}
	if _, err := b.Next(); !errors.Is(err, ErrExhausted) {
		t.Errorf("Next on empty brain = %v, want ErrExhausted", err)
	}
}

func TestBrainClone(t *testing.T) {
	for _, n := range []int{1, 5, 400} {
		orig := NewBrain(n, NewRand(int64(n)))
		orig.Next()
		before := orig.Directions()

		clone := orig.Clone()
		if clone.Step() != 0 {
			t.Errorf("n=%d: clone Step = %d, want 0", n, clone.Step())
		}
		cd := clone.Directions()
		if len(cd) != len(before) {
			t.Fatalf("n=%d: clone Len = %d, want %d", n, len(cd), len(before))
		}
		for i := range cd {
			if cd[i] != before[i] {
				t.Fatalf("n=%d: clone direction %d = %v, want %v", n, i, cd[i], before[i])
			}
		}

		clone.Mutate(1, &stepRNG{float: 0, angle: 0.5, delta: 0.7})
		after := orig.Directions()
		for i := range after {
			if after[i] != before[i] {
				t.Fatalf("n=%d: mutating the clone changed original direction %d", n, i)
			}
		}
		if orig.Step() != 1 {
			t.Errorf("n=%d: original Step = %d, want 1", n, orig.Step())
		}
	}
}

func TestBrainMutateRateZero(t *testing.T) {
	b := NewBrain(30, NewRand(3))
	before := b.Directions()

	b.Mutate(0, NewRand(4))

	for i, d := range b.Directions() {
		if d != before[i] {
			t.Errorf("direction %d changed with rate 0", i)
		}
	}
}

func TestBrainMutateRateOne(t *testing.T) {
	// Original directions all point along angle 0; replacements start at 1.
	b := NewBrain(30, &stepRNG{angle: 0, delta: 0})
	before := b.Directions()

	b.Mutate(1, &stepRNG{float: 0.999, angle: 1, delta: 0.1})

	for i, d := range b.Directions() {
		if d == before[i] {
			t.Errorf("direction %d unchanged with rate 1", i)
		}
		if math.Abs(d.Mag()-1) > 1e-12 {
			t.Errorf("mutated direction %d has magnitude %v", i, d.Mag())
		}
	}
}

func TestBrainMutateKeepsCursor(t *testing.T) {
	b := NewBrain(10, NewRand(5))
	b.Next()
	b.Next()
	b.Mutate(1, NewRand(6))
	if b.Step() != 2 {
		t.Errorf("Step after Mutate = %d, want 2", b.Step())
	}
}

func TestRandAngleRange(t *testing.T) {
	r := NewRand(11)
	for i := 0; i < 10000; i++ {
		a := r.Angle()
		if a < 0 || a >= 2*math.Pi {
			t.Fatalf("Angle out of range: %v", a)
		}
		f := r.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
	}
}
